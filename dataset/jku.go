package dataset

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/otsob/musii-kit/patterns"
	"github.com/otsob/musii-kit/pointio"
	"github.com/otsob/musii-kit/pointset"
)

// Corpus directory names of the JKU Patterns Development Database.
const (
	CorpusPolyphonic = "polyphonic"
	CorpusMonophonic = "monophonic"
)

// ErrInvalidPitchType is returned when the requested pitch numbering is
// not available in the JKU-PDD encoding.
var ErrInvalidPitchType = errors.New("pitch type must be chromatic or morphetic")

// JKUOptions control loading of the JKU Patterns Development Database.
type JKUOptions struct {
	// Corpora selects which corpus directories to load.
	Corpora []string

	// PitchType selects the pitch numbering of the loaded points,
	// chromatic or morphetic.
	PitchType pointset.PitchType

	// Logger receives loading diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// DefaultJKUOptions load both corpora with chromatic pitches.
var DefaultJKUOptions = JKUOptions{
	Corpora:   []string{CorpusPolyphonic, CorpusMonophonic},
	PitchType: pointset.PitchChromatic,
}

// The Barlow and Morgenstern analyses only apply to the monophonic
// versions of the pieces.
const excludedPolyphonicAnalyst = "barlowAndMorgenstern"

// LoadJKU loads an extracted JKU Patterns Development Database from the
// store into a pattern set. Each piece directory holds the composition
// under `<piece>/<corpus>/csv/` and its ground-truth analyses under
// `<piece>/<corpus>/repeatedPatterns/<analyst>/<label>/occurrences/csv/`,
// where the first occurrence file is the prototypical version of the
// pattern. Pieces are named `<piece>_<corpus>`.
func LoadJKU(ctx context.Context, store Store, optFns ...func(o *JKUOptions)) (*patterns.Set, error) {
	opts := DefaultJKUOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	pitchCol, err := jkuPitchColumn(opts.PitchType)
	if err != nil {
		return nil, err
	}

	names, err := store.List(ctx, "")
	if err != nil {
		return nil, err
	}

	pieces := indexJKU(names, opts.Corpora)
	set := patterns.NewSet()
	for _, piece := range pieces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := loadJKUPiece(ctx, store, set, piece, pitchCol, opts); err != nil {
			return nil, fmt.Errorf("loading %s: %w", piece.dataPath, err)
		}
	}

	if opts.Logger != nil {
		opts.Logger.InfoContext(ctx, "dataset loaded",
			slog.Int("pieces", set.Len()),
			slog.String("pitch_type", opts.PitchType.String()),
		)
	}
	return set, nil
}

func jkuPitchColumn(pitchType pointset.PitchType) (int, error) {
	switch pitchType {
	case pointset.PitchChromatic:
		return 1, nil
	case pointset.PitchMorphetic:
		return 2, nil
	}
	return 0, ErrInvalidPitchType
}

// jkuPiece gathers the file names that make up one piece of the
// database: the composition CSVs and the occurrence CSVs per analyst
// and pattern label.
type jkuPiece struct {
	dataPath string
	name     string
	compCSVs []string
	// analyst -> label -> occurrence files, all in sorted order.
	occurrenceCSVs map[string]map[string][]string
}

// indexJKU groups the store's file names by piece. A piece is rooted at
// any directory whose name is one of the corpora.
func indexJKU(names, corpora []string) []*jkuPiece {
	byPath := make(map[string]*jkuPiece)
	var order []string

	for _, name := range names {
		parts := strings.Split(name, "/")
		corpus := corpusIndex(parts, corpora)
		if corpus < 0 {
			continue
		}
		dataPath := path.Join(parts[:corpus+1]...)
		rest := parts[corpus+1:]

		piece, ok := byPath[dataPath]
		if !ok {
			piece = &jkuPiece{
				dataPath:       dataPath,
				name:           jkuPieceName(parts, corpus),
				occurrenceCSVs: make(map[string]map[string][]string),
			}
			byPath[dataPath] = piece
			order = append(order, dataPath)
		}

		switch {
		case len(rest) == 2 && rest[0] == "csv" && strings.HasSuffix(rest[1], ".csv"):
			piece.compCSVs = append(piece.compCSVs, name)
		case len(rest) == 6 && rest[0] == "repeatedPatterns" &&
			rest[3] == "occurrences" && rest[4] == "csv" && strings.HasSuffix(rest[5], ".csv"):
			analyst, label := rest[1], rest[2]
			labels := piece.occurrenceCSVs[analyst]
			if labels == nil {
				labels = make(map[string][]string)
				piece.occurrenceCSVs[analyst] = labels
			}
			labels[label] = append(labels[label], name)
		}
	}

	pieces := make([]*jkuPiece, 0, len(order))
	for _, dataPath := range order {
		pieces = append(pieces, byPath[dataPath])
	}
	return pieces
}

func corpusIndex(parts, corpora []string) int {
	for i, part := range parts[:max(len(parts)-1, 0)] {
		if slices.Contains(corpora, part) {
			return i
		}
	}
	return -1
}

func jkuPieceName(parts []string, corpus int) string {
	if corpus == 0 {
		return parts[0]
	}
	return parts[corpus-1] + "_" + parts[corpus]
}

func loadJKUPiece(ctx context.Context, store Store, set *patterns.Set, piece *jkuPiece, pitchCol int, opts JKUOptions) error {
	if len(piece.compCSVs) == 0 {
		return fmt.Errorf("no composition csv: %w", ErrNotFound)
	}
	composition, err := readJKUTable(ctx, store, piece.compCSVs[0])
	if err != nil {
		return err
	}

	// The composition rows double as the chromatic-to-morphetic lookup,
	// which assumes ascending lexicographic order.
	lookup := sortedByOnsetPitch(composition)

	var groups []*patterns.Occurrences
	for _, analyst := range sortedKeys(piece.occurrenceCSVs) {
		if analyst == excludedPolyphonicAnalyst && strings.Contains(piece.dataPath, CorpusPolyphonic) {
			continue
		}
		labels := piece.occurrenceCSVs[analyst]
		for _, label := range sortedKeys(labels) {
			group, err := loadJKUPattern(ctx, store, piece.name, analyst, label, labels[label], lookup, pitchCol)
			if err != nil {
				return err
			}
			groups = append(groups, group)
		}
	}

	points := make([][]float64, len(composition))
	for i, row := range composition {
		if pitchCol >= len(row) {
			return fmt.Errorf("composition row %d has no column %d", i, pitchCol)
		}
		points[i] = []float64{row[0], row[pitchCol]}
	}
	ps, err := pointset.FromPairs(points)
	if err != nil {
		return err
	}

	p := pointset.NewPiece(piece.name, ps)
	p.PitchType = opts.PitchType
	if err := set.Add(p, groups...); err != nil {
		return err
	}

	if opts.Logger != nil {
		opts.Logger.DebugContext(ctx, "piece loaded",
			slog.String("piece", piece.name),
			slog.Int("points", ps.Len()),
			slog.Int("patterns", len(groups)),
		)
	}
	return nil
}

func loadJKUPattern(ctx context.Context, store Store, piece, analyst, label string, files []string, lookup [][]float64, pitchCol int) (*patterns.Occurrences, error) {
	occurrences := make([]patterns.Pattern, 0, len(files))
	for _, file := range files {
		rows, err := readJKUTable(ctx, store, file)
		if err != nil {
			return nil, err
		}
		if pitchCol != 1 {
			rows = chromaticToMorphetic(sortedByOnsetPitch(rows), lookup)
		}
		points, err := pointset.PatternFromPairs(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		occurrences = append(occurrences, patterns.Pattern{
			Label:  label,
			Source: analyst,
			Piece:  piece,
			Points: points,
		})
	}
	return patterns.NewOccurrences(piece, occurrences[0], occurrences[1:]), nil
}

func readJKUTable(ctx context.Context, store Store, name string) ([][]float64, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()
	table, err := pointio.ReadCSVTableFrom(blob, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return table, nil
}

// chromaticToMorphetic matches chromatic pattern points against the
// composition to find their morphetic pitch numbers. Both inputs must
// be in ascending lexicographic order; pattern points missing from the
// composition are dropped.
func chromaticToMorphetic(pattern, composition [][]float64) [][]float64 {
	out := make([][]float64, 0, len(pattern))
	pi, ci := 0, 0
	for pi < len(pattern) && ci < len(composition) {
		p, c := pattern[pi], composition[ci]
		switch {
		case len(c) < 3:
			ci++
		case p[0] == c[0] && p[1] == c[1]:
			out = append(out, []float64{c[0], c[2]})
			pi++
			ci++
		case p[0] < c[0] || (p[0] == c[0] && p[1] < c[1]):
			pi++
		default:
			ci++
		}
	}
	return out
}

func sortedByOnsetPitch(rows [][]float64) [][]float64 {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b []float64) int {
		if len(a) < 2 || len(b) < 2 {
			return cmp.Compare(len(a), len(b))
		}
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})
	return sorted
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
