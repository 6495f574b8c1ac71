package patterns

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otsob/musii-kit/pointset"
)

func mustPoint(t *testing.T, onset, pitch float64) pointset.Point {
	t.Helper()
	p, err := pointset.NewPointFromFloats(onset, pitch)
	require.NoError(t, err)
	return p
}

func mustPattern(t *testing.T, points ...pointset.Point) pointset.Pattern {
	t.Helper()
	p, err := pointset.NewPattern(points)
	require.NoError(t, err)
	return p
}

func labeled(t *testing.T, label string, points ...pointset.Point) Pattern {
	t.Helper()
	return Pattern{Label: label, Source: "analyst", Piece: "piece", Points: mustPattern(t, points...)}
}

func TestPatternTranslateKeepsLabels(t *testing.T) {
	p := labeled(t, "A", mustPoint(t, 0, 60), mustPoint(t, 1, 62))

	moved := p.Translate(mustPoint(t, 10, 2).Sub(mustPoint(t, 0, 0)))

	assert.Equal(t, "A", moved.Label)
	assert.Equal(t, "analyst", moved.Source)
	assert.Equal(t, "piece", moved.Piece)
	assert.True(t, moved.Points.Equal(mustPattern(t, mustPoint(t, 10, 62), mustPoint(t, 11, 64))))
	// The receiver is unchanged.
	assert.True(t, p.Points.Equal(mustPattern(t, mustPoint(t, 0, 60), mustPoint(t, 1, 62))))
}

func TestPatternTimeScaledKeepsLabels(t *testing.T) {
	p := labeled(t, "A", mustPoint(t, 1, 60), mustPoint(t, 2, 62))

	scaled := p.TimeScaled(big.NewRat(1, 2))

	assert.Equal(t, "A", scaled.Label)
	assert.True(t, scaled.Points.Equal(mustPattern(t, mustPoint(t, 0.5, 60), mustPoint(t, 1, 62))))
}

func TestPatternEqualIgnoresLabels(t *testing.T) {
	a := labeled(t, "A", mustPoint(t, 0, 60))
	b := Pattern{Label: "B", Points: mustPattern(t, mustPoint(t, 0, 60))}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(labeled(t, "A", mustPoint(t, 0, 61))))
}

func TestOccurrencesIndexing(t *testing.T) {
	proto := labeled(t, "A", mustPoint(t, 0, 60), mustPoint(t, 1, 62))
	first := proto.Translate(mustPoint(t, 4, 0).Sub(mustPoint(t, 0, 0)))
	occ := NewOccurrences("piece", proto, []Pattern{proto, first})

	require.Equal(t, 3, occ.Len())
	assert.True(t, occ.At(0).Equal(proto))
	assert.True(t, occ.At(1).Equal(proto))
	assert.True(t, occ.At(2).Equal(first))

	all := occ.All()
	require.Len(t, all, 3)
	assert.True(t, all[0].Equal(proto))
	assert.True(t, all[2].Equal(first))
}
