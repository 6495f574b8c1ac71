package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otsob/musii-kit/pointset"
)

// jkuFixture lays out a miniature Patterns Development Database with
// one polyphonic and one monophonic piece. Composition rows carry
// onset, chromatic pitch, morphetic pitch, duration and staff.
func jkuFixture(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	ctx := context.Background()

	files := map[string]string{
		"bachBWV889Fg/polyphonic/csv/wtc2f20.csv": "0.0,60.0,53.0,1.0,0\n" +
			"1.0,62.0,54.0,1.0,0\n" +
			"2.0,64.0,55.0,1.0,0\n" +
			"3.0,65.0,56.0,1.0,0\n",
		"bachBWV889Fg/polyphonic/repeatedPatterns/schoenberg/A/occurrences/csv/occ1.csv": "0.0,60.0\n1.0,62.0\n",
		"bachBWV889Fg/polyphonic/repeatedPatterns/schoenberg/A/occurrences/csv/occ2.csv": "2.0,64.0\n3.0,65.0\n",
		// One point of this pattern does not occur in the composition.
		"bachBWV889Fg/polyphonic/repeatedPatterns/schoenberg/B/occurrences/csv/occ1.csv": "1.0,62.0\n9.0,99.0\n",
		// Excluded for polyphonic pieces.
		"bachBWV889Fg/polyphonic/repeatedPatterns/barlowAndMorgenstern/1/occurrences/csv/occ1.csv": "0.0,60.0\n1.0,62.0\n",

		"chopinOp62No1/monophonic/csv/mazurka.csv": "0.0,72.0,64.0,1.0,0\n" +
			"1.0,71.0,63.0,1.0,0\n" +
			"2.0,69.0,62.0,1.0,0\n",
		"chopinOp62No1/monophonic/repeatedPatterns/barlowAndMorgenstern/1/occurrences/csv/occ1.csv": "0.0,72.0\n1.0,71.0\n",

		// Neither a composition nor an occurrence file.
		"bachBWV889Fg/polyphonic/lisp/wtc2f20.txt": "ignored",
		"README.md":                                "ignored",
	}
	for name, content := range files {
		require.NoError(t, store.Put(ctx, name, []byte(content)))
	}
	return store
}

func TestLoadJKUChromatic(t *testing.T) {
	store := jkuFixture(t)

	set, err := LoadJKU(context.Background(), store)
	require.NoError(t, err)

	require.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"bachBWV889Fg_polyphonic", "chopinOp62No1_monophonic"}, set.PieceNames())

	bach, ok := set.Item("bachBWV889Fg_polyphonic")
	require.True(t, ok)
	assert.Equal(t, pointset.PitchChromatic, bach.Piece.PitchType)
	assert.Equal(t, 4, bach.PointCount())

	expected, err := pointset.FromPairs([][]float64{{0, 60}, {1, 62}, {2, 64}, {3, 65}})
	require.NoError(t, err)
	assert.True(t, bach.Piece.Set.Equal(expected))

	// The Barlow and Morgenstern analysis is excluded for polyphonic
	// pieces, leaving the two Schoenberg patterns in label order.
	require.Equal(t, 2, bach.PatternCount())

	groupA := bach.Patterns[0]
	assert.Equal(t, "bachBWV889Fg_polyphonic", groupA.Piece)
	require.Equal(t, 2, groupA.Len())
	assert.Equal(t, "A", groupA.At(0).Label)
	assert.Equal(t, "schoenberg", groupA.At(0).Source)
	assert.Equal(t, [][2]float64{{0, 60}, {1, 62}}, groupA.At(0).Points.AsPairs())
	assert.Equal(t, [][2]float64{{2, 64}, {3, 65}}, groupA.At(1).Points.AsPairs())

	groupB := bach.Patterns[1]
	assert.Equal(t, "B", groupB.At(0).Label)
	assert.Equal(t, [][2]float64{{1, 62}, {9, 99}}, groupB.At(0).Points.AsPairs())

	chopin, ok := set.Item("chopinOp62No1_monophonic")
	require.True(t, ok)
	require.Equal(t, 1, chopin.PatternCount())
	assert.Equal(t, "barlowAndMorgenstern", chopin.Patterns[0].At(0).Source)
	assert.Equal(t, "1", chopin.Patterns[0].At(0).Label)
}

func TestLoadJKUMorphetic(t *testing.T) {
	store := jkuFixture(t)

	set, err := LoadJKU(context.Background(), store, func(o *JKUOptions) {
		o.PitchType = pointset.PitchMorphetic
	})
	require.NoError(t, err)

	bach, ok := set.Item("bachBWV889Fg_polyphonic")
	require.True(t, ok)
	assert.Equal(t, pointset.PitchMorphetic, bach.Piece.PitchType)

	expected, err := pointset.FromPairs([][]float64{{0, 53}, {1, 54}, {2, 55}, {3, 56}})
	require.NoError(t, err)
	assert.True(t, bach.Piece.Set.Equal(expected))

	groupA := bach.Patterns[0]
	assert.Equal(t, [][2]float64{{0, 53}, {1, 54}}, groupA.At(0).Points.AsPairs())
	assert.Equal(t, [][2]float64{{2, 55}, {3, 56}}, groupA.At(1).Points.AsPairs())

	// The point missing from the composition is dropped.
	groupB := bach.Patterns[1]
	assert.Equal(t, [][2]float64{{1, 54}}, groupB.At(0).Points.AsPairs())
}

func TestLoadJKUCorporaFilter(t *testing.T) {
	store := jkuFixture(t)

	set, err := LoadJKU(context.Background(), store, func(o *JKUOptions) {
		o.Corpora = []string{CorpusPolyphonic}
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"bachBWV889Fg_polyphonic"}, set.PieceNames())
}

func TestLoadJKUInvalidPitchType(t *testing.T) {
	store := jkuFixture(t)

	_, err := LoadJKU(context.Background(), store, func(o *JKUOptions) {
		o.PitchType = pointset.PitchUnknown
	})
	assert.ErrorIs(t, err, ErrInvalidPitchType)
}

func TestLoadJKUMissingComposition(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	name := "gibbonsSilverSwan/monophonic/repeatedPatterns/tomCollins/1/occurrences/csv/occ1.csv"
	require.NoError(t, store.Put(ctx, name, []byte("0.0,60.0\n")))

	_, err := LoadJKU(ctx, store)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadJKUCancellation(t *testing.T) {
	store := jkuFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadJKU(ctx, store)
	assert.ErrorIs(t, err, context.Canceled)
}
