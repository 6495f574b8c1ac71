package patterns

import (
	"strconv"

	"github.com/otsob/musii-kit/discovery"
	"github.com/otsob/musii-kit/pointset"
)

// MatchSource is the source label recorded on patterns produced by
// point-set matching. The spelling is part of the document format
// written by existing tooling and must not be corrected.
const MatchSource = "GeometricMathing"

// SiatecCSource returns the source label recorded on patterns produced
// by SIATEC-C discovery with the given onset gap bound.
func SiatecCSource(maxIOI float64) string {
	return "SIATEC-C (" + strconv.FormatFloat(maxIOI, 'g', -1, 64) + ")"
}

// FromTEC converts one discovered equivalence class into an occurrence
// group: the class pattern becomes the prototype and each translator
// contributes one occurrence. The zero translator yields a copy of the
// prototype itself.
func FromTEC(piece string, tec discovery.TEC, maxIOI float64) *Occurrences {
	source := SiatecCSource(maxIOI)
	proto := Pattern{Source: source, Piece: piece, Points: tec.Pattern()}
	occs := make([]Pattern, 0, len(tec.Translators()))
	for _, v := range tec.Translators() {
		occs = append(occs, Pattern{Source: source, Piece: piece, Points: tec.Pattern().Translate(v)})
	}
	return NewOccurrences(piece, proto, occs)
}

// FromTECs converts a full discovery result into occurrence groups.
func FromTECs(piece string, tecs []discovery.TEC, maxIOI float64) []*Occurrences {
	out := make([]*Occurrences, 0, len(tecs))
	for _, tec := range tecs {
		out = append(out, FromTEC(piece, tec, maxIOI))
	}
	return out
}

// FromMatch converts matcher output into an occurrence group: the
// query stays the prototype with its own labels and every found
// occurrence is labeled with MatchSource.
func FromMatch(piece string, query Pattern, found []pointset.Pattern) *Occurrences {
	occs := make([]Pattern, 0, len(found))
	for _, f := range found {
		occs = append(occs, Pattern{Source: MatchSource, Piece: piece, Points: f})
	}
	return NewOccurrences(piece, query, occs)
}
