package eval

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/otsob/musii-kit/patterns"
)

// Occurrence thresholds used in the MIREX evaluation procedure.
const (
	OccurrenceThresholdStrict  = 0.75
	OccurrenceThresholdRelaxed = 0.5
)

// Options contains configuration options for the evaluator.
type Options struct {
	// Parallelism is the number of pieces evaluated concurrently.
	Parallelism int

	// Logger receives evaluation diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions contains the default configuration options for the
// evaluator.
var DefaultOptions = Options{
	Parallelism: 8,
}

// Scores groups the precision, recall and F1 of one metric family.
type Scores struct {
	Precision float64
	Recall    float64
	F1        float64
}

func newScores(precision, recall float64) Scores {
	return Scores{Precision: precision, Recall: recall, F1: FScore(precision, recall)}
}

// PieceResult holds the metrics of a single evaluated piece.
type PieceResult struct {
	Piece            string
	PointCount       int
	PatternCount     int
	GroundTruthCount int

	Establishment  Scores
	ThreeLayer     Scores
	OccurrenceAt75 Scores
	OccurrenceAt50 Scores
}

// Result of evaluating a dataset: one row per piece present in both
// the dataset and the ground truth, sorted by piece name.
type Result struct {
	Pieces []PieceResult
}

// Mean holds the column means over all evaluated pieces.
type Mean struct {
	PointCount       float64
	PatternCount     float64
	GroundTruthCount float64

	Establishment  Scores
	ThreeLayer     Scores
	OccurrenceAt75 Scores
	OccurrenceAt50 Scores
}

// Mean returns the column means over all evaluated pieces.
func (r *Result) Mean() Mean {
	var m Mean
	if len(r.Pieces) == 0 {
		return m
	}
	for _, p := range r.Pieces {
		m.PointCount += float64(p.PointCount)
		m.PatternCount += float64(p.PatternCount)
		m.GroundTruthCount += float64(p.GroundTruthCount)
		m.Establishment = addScores(m.Establishment, p.Establishment)
		m.ThreeLayer = addScores(m.ThreeLayer, p.ThreeLayer)
		m.OccurrenceAt75 = addScores(m.OccurrenceAt75, p.OccurrenceAt75)
		m.OccurrenceAt50 = addScores(m.OccurrenceAt50, p.OccurrenceAt50)
	}
	n := float64(len(r.Pieces))
	m.PointCount /= n
	m.PatternCount /= n
	m.GroundTruthCount /= n
	m.Establishment = divScores(m.Establishment, n)
	m.ThreeLayer = divScores(m.ThreeLayer, n)
	m.OccurrenceAt75 = divScores(m.OccurrenceAt75, n)
	m.OccurrenceAt50 = divScores(m.OccurrenceAt50, n)
	return m
}

func addScores(a, b Scores) Scores {
	return Scores{Precision: a.Precision + b.Precision, Recall: a.Recall + b.Recall, F1: a.F1 + b.F1}
}

func divScores(s Scores, n float64) Scores {
	return Scores{Precision: s.Precision / n, Recall: s.Recall / n, F1: s.F1 / n}
}

// WriteTable writes the result as a tab-aligned table with a mean row
// at the bottom.
func (r *Result) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	columns := []string{
		"piece", "N_points", "N_pattern", "N_gt",
		"P_est", "R_est", "F1_est",
		"P_3L", "R_3L", "F1_3L",
		"P_occ (c=0.75)", "R_occ (c=0.75)", "F1_occ (c=0.75)",
		"P_occ (c=0.5)", "R_occ (c=0.5)", "F1_occ (c=0.5)",
	}
	writeRow(tw, columns)
	for _, p := range r.Pieces {
		row := []string{
			p.Piece,
			humanize.Comma(int64(p.PointCount)),
			strconv.Itoa(p.PatternCount),
			strconv.Itoa(p.GroundTruthCount),
		}
		row = appendScores(row, p.Establishment, p.ThreeLayer, p.OccurrenceAt75, p.OccurrenceAt50)
		writeRow(tw, row)
	}
	m := r.Mean()
	row := []string{
		"Mean",
		formatScore(m.PointCount),
		formatScore(m.PatternCount),
		formatScore(m.GroundTruthCount),
	}
	row = appendScores(row, m.Establishment, m.ThreeLayer, m.OccurrenceAt75, m.OccurrenceAt50)
	writeRow(tw, row)
	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, cell)
	}
	fmt.Fprintln(w)
}

func appendScores(row []string, scores ...Scores) []string {
	for _, s := range scores {
		row = append(row, formatScore(s.Precision), formatScore(s.Recall), formatScore(s.F1))
	}
	return row
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Evaluator computes the MIREX metrics for a pattern set against a
// ground-truth pattern set. Pieces are matched by name; pieces present
// in only one of the two sets are skipped.
type Evaluator struct {
	groundTruth *patterns.Set
	opts        Options
}

// New creates an evaluator that scores datasets against the given
// ground truth.
func New(groundTruth *patterns.Set, optFns ...func(o *Options)) *Evaluator {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &Evaluator{groundTruth: groundTruth, opts: opts}
}

// Evaluate scores the dataset against the ground truth, evaluating up
// to Parallelism pieces concurrently.
func (e *Evaluator) Evaluate(ctx context.Context, dataset *patterns.Set) (*Result, error) {
	common := e.commonPieces(dataset)

	results := make([]PieceResult, len(common))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Parallelism)
	for i, piece := range common {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			gt, _ := e.groundTruth.Item(piece)
			item, _ := dataset.Item(piece)
			results[i] = evaluatePiece(gt, item)
			if e.opts.Logger != nil {
				e.opts.Logger.DebugContext(ctx, "piece evaluated",
					slog.String("piece", piece),
					slog.String("points", humanize.Comma(int64(item.PointCount()))),
					slog.Int("patterns", item.PatternCount()),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if e.opts.Logger != nil {
		e.opts.Logger.InfoContext(ctx, "evaluation completed", slog.Int("pieces", len(common)))
	}
	return &Result{Pieces: results}, nil
}

// commonPieces returns the sorted piece names present in both sets and
// logs the ones that take part in only one of them.
func (e *Evaluator) commonPieces(dataset *patterns.Set) []string {
	gtNames := e.groundTruth.PieceNames()
	datasetNames := dataset.PieceNames()

	var common, gtOnly []string
	for _, name := range gtNames {
		if _, ok := dataset.Item(name); ok {
			common = append(common, name)
		} else {
			gtOnly = append(gtOnly, name)
		}
	}
	var datasetOnly []string
	for _, name := range datasetNames {
		if _, ok := e.groundTruth.Item(name); !ok {
			datasetOnly = append(datasetOnly, name)
		}
	}
	if e.opts.Logger != nil {
		if len(gtOnly) > 0 {
			e.opts.Logger.Warn("ground-truth pieces missing from evaluated dataset",
				slog.Any("pieces", gtOnly))
		}
		if len(datasetOnly) > 0 {
			e.opts.Logger.Warn("evaluated pieces missing from ground truth",
				slog.Any("pieces", datasetOnly))
		}
	}
	slices.Sort(common)
	return common
}

func evaluatePiece(groundTruth, dataset *patterns.Item) PieceResult {
	s := newStudy(groundTruth.Patterns, dataset.Patterns)
	establishment := s.establishment()
	layerTwo := s.layerTwo()

	result := PieceResult{
		Piece:            dataset.Piece.Name,
		PointCount:       dataset.PointCount(),
		PatternCount:     dataset.PatternCount(),
		GroundTruthCount: groundTruth.PatternCount(),
		Establishment:    newScores(EstablishmentPrecision(establishment), EstablishmentRecall(establishment)),
		ThreeLayer:       newScores(ThreeLayerPrecision(layerTwo), ThreeLayerRecall(layerTwo)),
	}
	for _, threshold := range []float64{OccurrenceThresholdStrict, OccurrenceThresholdRelaxed} {
		pairs := indicesAtOrAbove(establishment, threshold)
		scores := newScores(s.occurrencePrecision(pairs), s.occurrenceRecall(pairs))
		if threshold == OccurrenceThresholdStrict {
			result.OccurrenceAt75 = scores
		} else {
			result.OccurrenceAt50 = scores
		}
	}
	return result
}
