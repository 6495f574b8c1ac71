package pointset

import (
	"iter"
	"math/big"
	"slices"
	"strings"
)

// Pattern is an ordered, non-empty sequence of distinct points. The order
// is preserved for output reproducibility; it has no bearing on pattern
// equivalence. A pattern need not be a subsequence of any point set.
//
// The zero value is empty and not a valid pattern; obtain patterns from
// NewPattern or from the ingestion helpers.
type Pattern struct {
	points []Point
}

// NewPattern builds a pattern from the given points, preserving their
// order. Coordinate-equal duplicates are dropped, keeping the first
// occurrence. An empty input is rejected with ErrEmptyPattern.
func NewPattern(points []Point) (Pattern, error) {
	if len(points) == 0 {
		return Pattern{}, ErrEmptyPattern
	}

	seen := make(map[string]struct{}, len(points))
	pts := make([]Point, 0, len(points))
	for _, p := range points {
		k := p.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		pts = append(pts, p)
	}

	return Pattern{points: pts}, nil
}

// Len returns the number of points in the pattern.
func (p Pattern) Len() int {
	return len(p.points)
}

// At returns the point at index i in pattern order.
func (p Pattern) At(i int) Point {
	return p.points[i]
}

// Points returns a copy of the points in pattern order.
func (p Pattern) Points() []Point {
	return slices.Clone(p.points)
}

// All iterates over the points in pattern order together with their
// indices.
func (p Pattern) All() iter.Seq2[int, Point] {
	return func(yield func(int, Point) bool) {
		for i, pt := range p.points {
			if !yield(i, pt) {
				return
			}
		}
	}
}

// Translate returns a new pattern with every point shifted by v. The
// point order is preserved.
func (p Pattern) Translate(v Vector) Pattern {
	pts := make([]Point, len(p.points))
	for i, pt := range p.points {
		pts[i] = pt.Add(v)
	}
	return Pattern{points: pts}
}

// NormalizeToOrigin returns the pattern translated so that its first
// point lies at the origin. Two patterns are translationally equivalent
// exactly when their normalized forms are equal point for point.
func (p Pattern) NormalizeToOrigin() Pattern {
	if len(p.points) == 0 {
		return p
	}
	first := p.points[0]
	var v Vector
	v.onset.Neg(&first.onset)
	v.pitch = -first.pitch
	return p.Translate(v)
}

// Sorted returns a copy of the points in ascending lexicographic order.
func (p Pattern) Sorted() []Point {
	pts := slices.Clone(p.points)
	slices.SortFunc(pts, Point.Cmp)
	return pts
}

// Equal reports whether p and q contain the same points, regardless of
// order.
func (p Pattern) Equal(q Pattern) bool {
	if len(p.points) != len(q.points) {
		return false
	}
	return slices.EqualFunc(p.Sorted(), q.Sorted(), Point.Equal)
}

// TimeScaled returns a copy of the pattern with every onset time
// multiplied by the given factor. Pitches and point order are unchanged.
func (p Pattern) TimeScaled(factor *big.Rat) Pattern {
	pts := make([]Point, len(p.points))
	for i, pt := range p.points {
		pts[i].onset.Mul(&pt.onset, factor)
		pts[i].pitch = pt.pitch
	}
	return Pattern{points: pts}
}

// AsPairs returns the points as (onset, pitch) float64 pairs in pattern
// order. Onset times are rounded to the nearest float64.
func (p Pattern) AsPairs() [][2]float64 {
	pairs := make([][2]float64, len(p.points))
	for i, pt := range p.points {
		pairs[i] = [2]float64{pt.OnsetFloat(), pt.pitch}
	}
	return pairs
}

func (p Pattern) String() string {
	var b strings.Builder
	b.WriteString("Pattern{")
	for i, pt := range p.points {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pt.String())
	}
	b.WriteString("}")
	return b.String()
}
