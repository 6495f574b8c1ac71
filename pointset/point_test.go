package pointset

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointOrdering(t *testing.T) {
	t.Run("onset takes precedence", func(t *testing.T) {
		a := NewPoint(big.NewRat(1, 1), 72)
		b := NewPoint(big.NewRat(2, 1), 60)

		assert.Equal(t, -1, a.Cmp(b))
		assert.Equal(t, 1, b.Cmp(a))
	})

	t.Run("pitch breaks onset ties", func(t *testing.T) {
		a := NewPoint(big.NewRat(1, 1), 60)
		b := NewPoint(big.NewRat(1, 1), 62)

		assert.Equal(t, -1, a.Cmp(b))
		assert.Equal(t, 1, b.Cmp(a))
	})

	t.Run("equal points", func(t *testing.T) {
		a := NewPoint(big.NewRat(3, 2), 60)
		b := NewPoint(big.NewRat(6, 4), 60)

		assert.Equal(t, 0, a.Cmp(b))
		assert.True(t, a.Equal(b))
	})
}

func TestPointExactOnsetArithmetic(t *testing.T) {
	// 0.1 + 0.2 != 0.3 in float64, but the rational onsets must compare
	// exactly through translation round trips.
	a, err := NewPointFromFloats(0.1, 60)
	require.NoError(t, err)
	b, err := NewPointFromFloats(0.2, 60)
	require.NoError(t, err)

	v := b.Sub(a)
	restored := a.Add(v)
	assert.True(t, restored.Equal(b))

	back := restored.Add(a.Sub(b))
	assert.True(t, back.Equal(a))
}

func TestNewPointFromFloatsRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name  string
		onset float64
		pitch float64
		axis  Axis
	}{
		{name: "NaN onset", onset: math.NaN(), pitch: 60, axis: AxisOnset},
		{name: "positive infinite onset", onset: math.Inf(1), pitch: 60, axis: AxisOnset},
		{name: "NaN pitch", onset: 1, pitch: math.NaN(), axis: AxisPitch},
		{name: "negative infinite pitch", onset: 1, pitch: math.Inf(-1), axis: AxisPitch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPointFromFloats(tt.onset, tt.pitch)
			require.Error(t, err)

			var nf *ErrNonFiniteCoordinate
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.axis, nf.Axis)
		})
	}
}

func TestPointImmutability(t *testing.T) {
	onset := big.NewRat(1, 2)
	p := NewPoint(onset, 60)

	// Mutating the source or the returned onset must not affect the point.
	onset.SetInt64(99)
	p.Onset().SetInt64(100)

	assert.Equal(t, 0, p.Onset().Cmp(big.NewRat(1, 2)))
}

func TestVectorArithmetic(t *testing.T) {
	v := NewVector(big.NewRat(4, 1), 0)
	w := NewVector(big.NewRat(1, 1), 2)

	sum := v.Add(w)
	assert.Equal(t, 0, sum.Onset().Cmp(big.NewRat(5, 1)))
	assert.InDelta(t, 2.0, sum.Pitch(), 0)

	diff := sum.Sub(w)
	assert.True(t, diff.Equal(v))

	assert.True(t, v.Sub(v).IsZero())
	assert.False(t, v.IsZero())

	assert.Equal(t, [2]float64{5, 2}, sum.AsPair())
}

func TestVectorOrdering(t *testing.T) {
	a := NewVector(big.NewRat(1, 1), 10)
	b := NewVector(big.NewRat(1, 1), 12)
	c := NewVector(big.NewRat(2, 1), -100)

	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, -1, b.Cmp(c))
	assert.Equal(t, 1, c.Cmp(a))
	assert.True(t, a.Equal(NewVector(big.NewRat(2, 2), 10)))
}

func TestPointString(t *testing.T) {
	p := NewPoint(big.NewRat(3, 2), 60)
	assert.Equal(t, "(3/2, 60)", p.String())

	q := NewPoint(big.NewRat(2, 1), 62.5)
	assert.Equal(t, "(2, 62.5)", q.String())
}
