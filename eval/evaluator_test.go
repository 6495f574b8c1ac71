package eval

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otsob/musii-kit/patterns"
	"github.com/otsob/musii-kit/pointset"
)

func testPieceSet(t *testing.T, n int) *pointset.PointSet {
	t.Helper()
	pts := make([]pointset.Point, 0, n)
	for i := range n {
		pts = append(pts, point(t, float64(i), 60))
	}
	return pointset.New(pts)
}

func TestEvaluatorEvaluate(t *testing.T) {
	occA, occB := occurrencesA(t), occurrencesB(t)

	groundTruth := patterns.NewSet()
	require.NoError(t, groundTruth.Add(pointset.NewPiece("identity", testPieceSet(t, 9)), occA))
	require.NoError(t, groundTruth.Add(pointset.NewPiece("partial", testPieceSet(t, 16)), occA, occB))
	require.NoError(t, groundTruth.Add(pointset.NewPiece("gt only", testPieceSet(t, 3)), occA))

	dataset := patterns.NewSet()
	require.NoError(t, dataset.Add(pointset.NewPiece("identity", testPieceSet(t, 9)), occA))
	require.NoError(t, dataset.Add(pointset.NewPiece("partial", testPieceSet(t, 16)), occA))
	require.NoError(t, dataset.Add(pointset.NewPiece("dataset only", testPieceSet(t, 3)), occB))

	ev := New(groundTruth, func(o *Options) {
		o.Parallelism = 2
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	})
	result, err := ev.Evaluate(context.Background(), dataset)
	require.NoError(t, err)
	require.Len(t, result.Pieces, 2)

	identity := result.Pieces[0]
	assert.Equal(t, "identity", identity.Piece)
	assert.Equal(t, 9, identity.PointCount)
	assert.Equal(t, 1, identity.PatternCount)
	assert.Equal(t, 1, identity.GroundTruthCount)
	perfect := Scores{Precision: 1, Recall: 1, F1: 1}
	assert.Equal(t, perfect, identity.Establishment)
	assert.Equal(t, perfect, identity.ThreeLayer)
	assert.Equal(t, perfect, identity.OccurrenceAt75)
	assert.Equal(t, perfect, identity.OccurrenceAt50)

	partial := result.Pieces[1]
	assert.Equal(t, "partial", partial.Piece)
	assert.Equal(t, 16, partial.PointCount)
	assert.Equal(t, 1, partial.PatternCount)
	assert.Equal(t, 2, partial.GroundTruthCount)

	assert.Equal(t, 1.0, partial.Establishment.Precision)
	assert.Equal(t, 0.75, partial.Establishment.Recall)
	assert.InDelta(t, 6.0/7.0, partial.Establishment.F1, 1e-12)

	assert.Equal(t, 1.0, partial.ThreeLayer.Precision)
	assert.InDelta(t, 73.0/98.0, partial.ThreeLayer.Recall, 1e-12)
	assert.InDelta(t, 146.0/171.0, partial.ThreeLayer.F1, 1e-12)

	// Only the A-to-A pair reaches the strict threshold.
	assert.Equal(t, perfect, partial.OccurrenceAt75)
	assert.Equal(t, 1.0, partial.OccurrenceAt50.Precision)
	assert.InDelta(t, 0.6875, partial.OccurrenceAt50.Recall, 1e-12)
	assert.InDelta(t, 22.0/27.0, partial.OccurrenceAt50.F1, 1e-12)
}

func TestEvaluatorCancellation(t *testing.T) {
	occA := occurrencesA(t)

	groundTruth := patterns.NewSet()
	require.NoError(t, groundTruth.Add(pointset.NewPiece("piece", testPieceSet(t, 4)), occA))
	dataset := patterns.NewSet()
	require.NoError(t, dataset.Add(pointset.NewPiece("piece", testPieceSet(t, 4)), occA))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(groundTruth).Evaluate(ctx, dataset)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEvaluatorNoCommonPieces(t *testing.T) {
	occA := occurrencesA(t)

	groundTruth := patterns.NewSet()
	require.NoError(t, groundTruth.Add(pointset.NewPiece("only gt", testPieceSet(t, 4)), occA))
	dataset := patterns.NewSet()
	require.NoError(t, dataset.Add(pointset.NewPiece("only dataset", testPieceSet(t, 4)), occA))

	result, err := New(groundTruth).Evaluate(context.Background(), dataset)
	require.NoError(t, err)
	assert.Empty(t, result.Pieces)
}

func TestResultMean(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		result := &Result{}
		assert.Equal(t, Mean{}, result.Mean())
	})

	t.Run("two pieces", func(t *testing.T) {
		result := &Result{Pieces: []PieceResult{
			{
				PointCount:       10,
				PatternCount:     2,
				GroundTruthCount: 4,
				Establishment:    Scores{Precision: 1, Recall: 1, F1: 1},
			},
			{
				PointCount:       20,
				PatternCount:     4,
				GroundTruthCount: 2,
				Establishment:    Scores{Precision: 0.5, Recall: 0.25, F1: 0.5},
			},
		}}

		m := result.Mean()
		assert.Equal(t, 15.0, m.PointCount)
		assert.Equal(t, 3.0, m.PatternCount)
		assert.Equal(t, 3.0, m.GroundTruthCount)
		assert.Equal(t, Scores{Precision: 0.75, Recall: 0.625, F1: 0.75}, m.Establishment)
	})
}

func TestResultWriteTable(t *testing.T) {
	result := &Result{Pieces: []PieceResult{{
		Piece:            "piece one",
		PointCount:       1234,
		PatternCount:     3,
		GroundTruthCount: 2,
		Establishment:    Scores{Precision: 1, Recall: 0.5, F1: 2.0 / 3.0},
	}}}

	var buf strings.Builder
	require.NoError(t, result.WriteTable(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "F1_occ (c=0.5)")
	assert.Contains(t, lines[1], "piece one")
	assert.Contains(t, lines[1], "1,234")
	assert.True(t, strings.HasPrefix(lines[2], "Mean"))
}
