package pointset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRowsColumnConvention(t *testing.T) {
	// Column 0 is producer-specific and ignored, column 1 is the pitch,
	// column 2 is the exact onset time.
	rows := [][]float64{
		{99, 60, 0},
		{98, 62, 1},
		{97, 60, 4},
	}

	s, err := FromRows(rows)
	require.NoError(t, err)

	require.Equal(t, 3, s.Len())
	assert.True(t, s.At(0).Equal(mustPoint(t, 0, 60)))
	assert.True(t, s.At(1).Equal(mustPoint(t, 1, 62)))
	assert.True(t, s.At(2).Equal(mustPoint(t, 4, 60)))
}

func TestFromRowsIgnoresExtraColumns(t *testing.T) {
	rows := [][]float64{
		{0, 60, 0, 123, 456},
	}

	s, err := FromRows(rows)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestFromRowsErrors(t *testing.T) {
	t.Run("empty buffer", func(t *testing.T) {
		_, err := FromRows(nil)
		require.ErrorIs(t, err, ErrEmptyBuffer)
	})

	t.Run("ragged row", func(t *testing.T) {
		_, err := FromRows([][]float64{
			{0, 60, 0},
			{0, 60},
		})
		require.Error(t, err)

		var ragged *ErrRaggedBuffer
		require.ErrorAs(t, err, &ragged)
		assert.Equal(t, 1, ragged.Row)
		assert.Equal(t, 2, ragged.Cols)
		assert.Equal(t, 3, ragged.Want)
	})

	t.Run("non-finite onset", func(t *testing.T) {
		_, err := FromRows([][]float64{
			{0, 60, math.Inf(1)},
		})
		require.Error(t, err)

		var nf *ErrNonFiniteCoordinate
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, 0, nf.Row)
		assert.Equal(t, AxisOnset, nf.Axis)
	})

	t.Run("non-finite pitch", func(t *testing.T) {
		_, err := FromRows([][]float64{
			{0, 60, 0},
			{0, math.NaN(), 1},
		})
		require.Error(t, err)

		var nf *ErrNonFiniteCoordinate
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, 1, nf.Row)
		assert.Equal(t, AxisPitch, nf.Axis)
	})
}

func TestFromPairs(t *testing.T) {
	s, err := FromPairs([][]float64{
		{1, 62},
		{0, 60},
	})
	require.NoError(t, err)

	require.Equal(t, 2, s.Len())
	assert.True(t, s.At(0).Equal(mustPoint(t, 0, 60)))
	assert.True(t, s.At(1).Equal(mustPoint(t, 1, 62)))
}

func TestPatternFromRowsKeepsRowOrder(t *testing.T) {
	p, err := PatternFromRows([][]float64{
		{0, 62, 5},
		{0, 60, 0},
	})
	require.NoError(t, err)

	require.Equal(t, 2, p.Len())
	assert.True(t, p.At(0).Equal(mustPoint(t, 5, 62)))
	assert.True(t, p.At(1).Equal(mustPoint(t, 0, 60)))
}

func TestPatternFromPairs(t *testing.T) {
	p, err := PatternFromPairs([][]float64{
		{0, 60},
		{1, 62},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())

	_, err = PatternFromPairs(nil)
	assert.ErrorIs(t, err, ErrEmptyBuffer)
}
