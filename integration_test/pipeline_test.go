package integration_test

import (
	"context"
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	musiikit "github.com/otsob/musii-kit"
	"github.com/otsob/musii-kit/discovery"
	"github.com/otsob/musii-kit/eval"
	"github.com/otsob/musii-kit/patterns"
	"github.com/otsob/musii-kit/pointio"
	"github.com/otsob/musii-kit/pointset"
)

// A three-note motif stated at onset 0, restated at onset 8 and
// restated an octave higher at onset 16.
var pipelineRows = [][]float64{
	{0, 60}, {1, 62}, {2, 64},
	{8, 60}, {9, 62}, {10, 64},
	{16, 72}, {17, 74}, {18, 76},
}

const pipelineMaxIOI = 2.0

// TestE2E_DiscoverPersistEvaluate drives a full analysis run: ingest,
// discovery, bridging into occurrence groups, a compressed JSON round
// trip, a self-evaluation and persisting the run into the SQLite store.
func TestE2E_DiscoverPersistEvaluate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kit := musiikit.New()

	// 1. Ingest and discover.
	ps, err := kit.FromPairs(ctx, pipelineRows)
	require.NoError(t, err)
	require.Equal(t, len(pipelineRows), ps.Len())

	tecs, err := kit.Discover(ps, pipelineMaxIOI).MinPatternLen(2).Run(ctx)
	require.NoError(t, err)
	require.Len(t, tecs, 2)

	motif := requireClassOfLen(t, tecs, 3)
	wantMotif, err := kit.PatternFromPairs(ctx, [][]float64{{0, 60}, {1, 62}, {2, 64}})
	require.NoError(t, err)
	require.True(t, motif.Pattern().Equal(wantMotif), "motif pattern: got %s", motif.Pattern())

	requireTranslators(t, motif.Translators(), ratVector(0, 0), ratVector(8, 0), ratVector(16, 12))

	// 2. Bridge into occurrence groups under a named piece.
	piece := pointset.NewPiece("motifStudy", ps)
	groups := patterns.FromTECs(piece.Name, tecs, pipelineMaxIOI)
	require.Len(t, groups, 2)
	for _, g := range groups {
		assert.Equal(t, patterns.SiatecCSource(pipelineMaxIOI), g.Pattern.Source)
		assert.Equal(t, piece.Name, g.Piece)
	}

	estimate := patterns.NewSet()
	require.NoError(t, estimate.Add(piece, groups...))

	// 3. Compressed JSON round trip.
	path := filepath.Join(dir, "estimate.json.zst")
	require.NoError(t, pointio.WritePatternSet(path, estimate))

	loaded, err := pointio.ReadPatternSet(path)
	require.NoError(t, err)
	require.Equal(t, estimate.PieceNames(), loaded.PieceNames())

	item, ok := loaded.Item("motifStudy")
	require.True(t, ok)
	require.Equal(t, 2, item.PatternCount())
	assert.True(t, item.Piece.Set.Equal(ps))

	// 4. A dataset evaluated against itself scores 1.0 everywhere.
	result, err := eval.New(loaded).Evaluate(ctx, loaded)
	require.NoError(t, err)
	require.Len(t, result.Pieces, 1)

	perfect := eval.Scores{Precision: 1, Recall: 1, F1: 1}
	row := result.Pieces[0]
	assert.Equal(t, perfect, row.Establishment)
	assert.Equal(t, perfect, row.ThreeLayer)
	assert.Equal(t, perfect, row.OccurrenceAt75)
	assert.Equal(t, perfect, row.OccurrenceAt50)

	var table strings.Builder
	require.NoError(t, result.WriteTable(&table))
	assert.Contains(t, table.String(), "motifStudy")

	// 5. Persist the run and load it back.
	store, err := eval.OpenRunStore(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	run := &eval.Run{Algorithm: patterns.SiatecCSource(pipelineMaxIOI), Notes: "self evaluation", Result: result}
	require.NoError(t, store.Save(run))
	require.NotEmpty(t, run.ID)

	loadedRun, err := store.Load(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Algorithm, loadedRun.Algorithm)
	assert.Equal(t, run.Notes, loadedRun.Notes)
	require.Len(t, loadedRun.Result.Pieces, 1)
	assert.Equal(t, row, loadedRun.Result.Pieces[0])

	runs, err := store.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}

// requireClassOfLen returns the single class whose pattern has the
// given number of points.
func requireClassOfLen(t *testing.T, tecs []discovery.TEC, n int) discovery.TEC {
	t.Helper()
	var found []discovery.TEC
	for _, tec := range tecs {
		if tec.Pattern().Len() == n {
			found = append(found, tec)
		}
	}
	require.Len(t, found, 1, "classes with %d-point patterns", n)
	return found[0]
}

// requireTranslators asserts the exact translator sequence of a class.
func requireTranslators(t *testing.T, got []pointset.Vector, want ...pointset.Vector) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, got[i].Equal(want[i]), "translator %d: got %s, want %s", i, got[i], want[i])
	}
}

func ratVector(onset int64, pitch float64) pointset.Vector {
	return pointset.NewVector(big.NewRat(onset, 1), pitch)
}
