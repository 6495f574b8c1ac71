package pointset

import (
	"iter"
	"math/big"
	"slices"
	"sort"
	"strings"
)

// PointSet is an immutable, duplicate-free collection of points kept in
// ascending lexicographic order (onset first, pitch second). It is safe
// to share a PointSet between concurrent readers.
type PointSet struct {
	points []Point
}

// New builds a point set from the given points. The input is copied,
// sorted and de-duplicated; the argument is not retained.
func New(points []Point) *PointSet {
	pts := make([]Point, len(points))
	copy(pts, points)
	slices.SortFunc(pts, Point.Cmp)
	pts = slices.CompactFunc(pts, Point.Equal)
	return &PointSet{points: pts}
}

// Len returns the number of points in the set.
func (s *PointSet) Len() int {
	return len(s.points)
}

// At returns the point at index i in lexicographic order.
func (s *PointSet) At(i int) Point {
	return s.points[i]
}

// Points returns a copy of the points in ascending order.
func (s *PointSet) Points() []Point {
	return slices.Clone(s.points)
}

// All iterates over the points in ascending order together with their
// indices.
func (s *PointSet) All() iter.Seq2[int, Point] {
	return func(yield func(int, Point) bool) {
		for i, p := range s.points {
			if !yield(i, p) {
				return
			}
		}
	}
}

// Contains reports whether p is a member of the set.
func (s *PointSet) Contains(p Point) bool {
	_, ok := s.IndexOf(p)
	return ok
}

// IndexOf returns the index of p in the set, if present.
func (s *PointSet) IndexOf(p Point) (int, bool) {
	return slices.BinarySearchFunc(s.points, p, Point.Cmp)
}

// Equal reports whether both sets contain exactly the same points.
func (s *PointSet) Equal(other *PointSet) bool {
	return slices.EqualFunc(s.points, other.points, Point.Equal)
}

// Intersect returns a new set containing the points present in both sets.
func (s *PointSet) Intersect(other *PointSet) *PointSet {
	common := make([]Point, 0, min(len(s.points), len(other.points)))

	i, j := 0, 0
	for i < len(s.points) && j < len(other.points) {
		switch s.points[i].Cmp(other.points[j]) {
		case 0:
			common = append(common, s.points[i])
			i++
			j++
		case -1:
			i++
		default:
			j++
		}
	}

	return &PointSet{points: common}
}

// Range returns the points whose onset time lies in [start, end],
// in ascending lexicographic order.
func (s *PointSet) Range(start, end *big.Rat) []Point {
	lo := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].onset.Cmp(start) >= 0
	})
	hi := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].onset.Cmp(end) > 0
	})
	if lo >= hi {
		return nil
	}
	return slices.Clone(s.points[lo:hi])
}

// TimeScaled returns a copy of the set with every onset time multiplied
// by the given factor. Pitches are unchanged.
func (s *PointSet) TimeScaled(factor *big.Rat) *PointSet {
	scaled := make([]Point, len(s.points))
	for i, p := range s.points {
		scaled[i].onset.Mul(&p.onset, factor)
		scaled[i].pitch = p.pitch
	}
	return New(scaled)
}

// AsPairs returns the points as (onset, pitch) float64 pairs in ascending
// order. Onset times are rounded to the nearest float64.
func (s *PointSet) AsPairs() [][2]float64 {
	pairs := make([][2]float64, len(s.points))
	for i, p := range s.points {
		pairs[i] = [2]float64{p.OnsetFloat(), p.pitch}
	}
	return pairs
}

func (s *PointSet) String() string {
	var b strings.Builder
	b.WriteString("PointSet{")
	for i, p := range s.points {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString("}")
	return b.String()
}
