package pointio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/otsob/musii-kit/patterns"
	"github.com/otsob/musii-kit/pointset"
)

// RepresentationPointSet is the representation name carried by all
// point-set based documents.
const RepresentationPointSet = "point_set"

// ErrUnsupportedDocument is returned when a payload is not one of the
// recognized document formats.
var ErrUnsupportedDocument = errors.New("unsupported document")

// PointSetDocument is the serialized form of a piece. Field names and
// null conventions follow the musii-kit point-set JSON format.
type PointSetDocument struct {
	PieceName            *string      `json:"piece_name"`
	DType                string       `json:"dtype"`
	Representation       string       `json:"representation"`
	PitchType            *string      `json:"pitch_type"`
	QuarterLength        float64      `json:"quarter_length"`
	MeasureLinePositions []float64    `json:"measure_line_positions"`
	Data                 [][2]float64 `json:"data"`
}

// NewPointSetDocument converts a piece into its serialized form.
func NewPointSetDocument(piece *pointset.Piece) *PointSetDocument {
	doc := &PointSetDocument{
		DType:          piece.DType.String(),
		Representation: RepresentationPointSet,
		QuarterLength:  piece.QuarterLength,
	}
	if piece.Name != "" {
		name := piece.Name
		doc.PieceName = &name
	}
	if pt := piece.PitchType.String(); pt != "" {
		doc.PitchType = &pt
	}
	if len(piece.MeasureLines) > 0 {
		doc.MeasureLinePositions = append([]float64(nil), piece.MeasureLines...)
	}
	if piece.Set != nil {
		doc.Data = piece.Set.AsPairs()
	}
	return doc
}

// Piece converts the document back into a piece.
func (d *PointSetDocument) Piece() (*pointset.Piece, error) {
	if d.Representation != "" && d.Representation != RepresentationPointSet {
		return nil, fmt.Errorf("%w: representation %q", ErrUnsupportedDocument, d.Representation)
	}
	set, err := pointset.FromPairs(pairsToRows(d.Data))
	if err != nil {
		return nil, err
	}
	piece := &pointset.Piece{
		DType:         pointset.ParseDType(d.DType),
		QuarterLength: d.QuarterLength,
		Set:           set,
	}
	if d.PieceName != nil {
		piece.Name = *d.PieceName
	}
	if d.PitchType != nil {
		piece.PitchType = pointset.ParsePitchType(*d.PitchType)
	}
	if len(d.MeasureLinePositions) > 0 {
		piece.MeasureLines = append([]float64(nil), d.MeasureLinePositions...)
	}
	return piece, nil
}

// PatternDocument is the serialized form of a labeled pattern.
type PatternDocument struct {
	Label          string       `json:"label"`
	Source         string       `json:"source"`
	Representation string       `json:"representation"`
	DType          string       `json:"dtype"`
	Data           [][2]float64 `json:"data"`
}

// NewPatternDocument converts a labeled pattern into its serialized form.
func NewPatternDocument(p patterns.Pattern) *PatternDocument {
	return &PatternDocument{
		Label:          p.Label,
		Source:         p.Source,
		Representation: RepresentationPointSet,
		DType:          p.DType.String(),
		Data:           p.Points.AsPairs(),
	}
}

// Pattern converts the document back into a labeled pattern occurring
// in the named piece.
func (d *PatternDocument) Pattern(piece string) (patterns.Pattern, error) {
	points, err := pointset.PatternFromPairs(pairsToRows(d.Data))
	if err != nil {
		return patterns.Pattern{}, err
	}
	return patterns.Pattern{
		Label:  d.Label,
		Source: d.Source,
		Piece:  piece,
		DType:  pointset.ParseDType(d.DType),
		Points: points,
	}, nil
}

// OccurrencesDocument is the serialized form of a pattern and its
// occurrences in a piece.
type OccurrencesDocument struct {
	Piece          string             `json:"piece"`
	Pattern        *PatternDocument   `json:"pattern"`
	OccurrenceDocs []*PatternDocument `json:"occurrences"`
}

// NewOccurrencesDocument converts an occurrence group into its
// serialized form.
func NewOccurrencesDocument(o *patterns.Occurrences) *OccurrencesDocument {
	doc := &OccurrencesDocument{
		Piece:          o.Piece,
		Pattern:        NewPatternDocument(o.Pattern),
		OccurrenceDocs: make([]*PatternDocument, 0, len(o.Occurrences)),
	}
	for _, p := range o.Occurrences {
		doc.OccurrenceDocs = append(doc.OccurrenceDocs, NewPatternDocument(p))
	}
	return doc
}

// Occurrences converts the document back into an occurrence group.
func (d *OccurrencesDocument) Occurrences() (*patterns.Occurrences, error) {
	if d.Pattern == nil {
		return nil, fmt.Errorf("%w: missing pattern", ErrUnsupportedDocument)
	}
	proto, err := d.Pattern.Pattern(d.Piece)
	if err != nil {
		return nil, err
	}
	occs := make([]patterns.Pattern, 0, len(d.OccurrenceDocs))
	for _, od := range d.OccurrenceDocs {
		occ, err := od.Pattern(d.Piece)
		if err != nil {
			return nil, err
		}
		occs = append(occs, occ)
	}
	return patterns.NewOccurrences(d.Piece, proto, occs), nil
}

// OccurrencesList unmarshals from either a single occurrences document
// or a list of them, the way pattern files occur in the wild.
type OccurrencesList []*OccurrencesDocument

// UnmarshalJSON implements json.Unmarshaler.
func (l *OccurrencesList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(data, (*[]*OccurrencesDocument)(l))
	}
	var single OccurrencesDocument
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = OccurrencesList{&single}
	return nil
}

// PatternSetEntry is one piece of a pattern-set document: the piece's
// point set and all pattern analyses annotated for it.
type PatternSetEntry struct {
	PointSet *PointSetDocument `json:"point-set"`
	Patterns OccurrencesList   `json:"patterns"`
}

// PatternSetDocument is the serialized form of a pattern set, keyed by
// piece name.
type PatternSetDocument map[string]*PatternSetEntry

// NewPatternSetDocument converts a pattern set into its serialized form.
func NewPatternSetDocument(s *patterns.Set) PatternSetDocument {
	doc := make(PatternSetDocument, s.Len())
	for item := range s.All() {
		entry := &PatternSetEntry{
			PointSet: NewPointSetDocument(item.Piece),
			Patterns: make(OccurrencesList, 0, len(item.Patterns)),
		}
		for _, occ := range item.Patterns {
			entry.Patterns = append(entry.Patterns, NewOccurrencesDocument(occ))
		}
		doc[item.Piece.Name] = entry
	}
	return doc
}

// Set converts the document back into a pattern set. Entries are added
// in sorted piece-name order so the result does not depend on map
// iteration.
func (doc PatternSetDocument) Set() (*patterns.Set, error) {
	set := patterns.NewSet()
	for _, name := range sortedKeys(doc) {
		entry := doc[name]
		if entry == nil || entry.PointSet == nil {
			return nil, fmt.Errorf("%w: entry %q has no point set", ErrUnsupportedDocument, name)
		}
		piece, err := entry.PointSet.Piece()
		if err != nil {
			return nil, err
		}
		if piece.Name == "" {
			piece.Name = name
		}
		occs := make([]*patterns.Occurrences, 0, len(entry.Patterns))
		for _, od := range entry.Patterns {
			occ, err := od.Occurrences()
			if err != nil {
				return nil, err
			}
			occs = append(occs, occ)
		}
		if err := set.Add(piece, occs...); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func sortedKeys(doc PatternSetDocument) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func pairsToRows(pairs [][2]float64) [][]float64 {
	rows := make([][]float64, len(pairs))
	for i, p := range pairs {
		rows[i] = []float64{p[0], p[1]}
	}
	return rows
}
