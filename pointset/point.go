// Package pointset provides the core value types for two-dimensional
// point-set analysis of symbolic music: points with an exact rational
// onset-time coordinate and a real-valued pitch coordinate, immutable
// sorted point sets, and translatable patterns.
//
// Onset times are kept as arbitrary-precision rationals so that equality
// and ordering stay exact under repeated translation arithmetic. Pitch
// values are plain float64 and compare by strict equality.
package pointset

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Point is an immutable point with an exact onset-time coordinate and a
// real-valued pitch coordinate. The zero value is the origin (0, 0).
type Point struct {
	onset big.Rat
	pitch float64
}

// NewPoint returns a point with the given exact onset time and pitch.
// The onset is copied; nil is treated as zero.
func NewPoint(onset *big.Rat, pitch float64) Point {
	var p Point
	if onset != nil {
		p.onset.Set(onset)
	}
	p.pitch = pitch
	return p
}

// NewPointFromFloats returns a point whose onset is the exact rational
// value of the given float64. Non-finite coordinates are rejected.
func NewPointFromFloats(onset, pitch float64) (Point, error) {
	var p Point
	if p.onset.SetFloat64(onset) == nil {
		return Point{}, &ErrNonFiniteCoordinate{Row: -1, Axis: AxisOnset, Value: onset}
	}
	if math.IsNaN(pitch) || math.IsInf(pitch, 0) {
		return Point{}, &ErrNonFiniteCoordinate{Row: -1, Axis: AxisPitch, Value: pitch}
	}
	p.pitch = pitch
	return p, nil
}

// Onset returns a copy of the exact onset-time coordinate.
func (p Point) Onset() *big.Rat {
	return new(big.Rat).Set(&p.onset)
}

// OnsetFloat returns the onset time rounded to the nearest float64.
func (p Point) OnsetFloat() float64 {
	f, _ := p.onset.Float64()
	return f
}

// Pitch returns the pitch coordinate.
func (p Point) Pitch() float64 {
	return p.pitch
}

// Cmp compares p and q lexicographically, onset first.
// It returns -1 if p < q, 0 if p == q and +1 if p > q.
func (p Point) Cmp(q Point) int {
	if c := p.onset.Cmp(&q.onset); c != 0 {
		return c
	}
	switch {
	case p.pitch < q.pitch:
		return -1
	case p.pitch > q.pitch:
		return 1
	}
	return 0
}

// Equal reports whether p and q have identical coordinates.
func (p Point) Equal(q Point) bool {
	return p.Cmp(q) == 0
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Vector {
	var v Vector
	v.onset.Sub(&p.onset, &q.onset)
	v.pitch = p.pitch - q.pitch
	return v
}

// Add returns the point translated by v.
func (p Point) Add(v Vector) Point {
	var q Point
	q.onset.Add(&p.onset, &v.onset)
	q.pitch = p.pitch + v.pitch
	return q
}

func (p Point) String() string {
	return fmt.Sprintf("(%s, %v)", p.onset.RatString(), p.pitch)
}

// key returns a canonical string for exact-equality grouping. Negative
// zero pitch is folded into positive zero to agree with Cmp.
func (p Point) key() string {
	bits := math.Float64bits(p.pitch)
	if p.pitch == 0 {
		bits = 0
	}
	return p.onset.RatString() + "|" + strconv.FormatUint(bits, 16)
}

// Vector is the coordinate-wise difference of two points. Like points,
// vectors order lexicographically with the exact onset component first.
type Vector struct {
	onset big.Rat
	pitch float64
}

// NewVector returns a vector with the given exact onset component and
// pitch component. The onset is copied; nil is treated as zero.
func NewVector(onset *big.Rat, pitch float64) Vector {
	var v Vector
	if onset != nil {
		v.onset.Set(onset)
	}
	v.pitch = pitch
	return v
}

// Onset returns a copy of the exact onset-time component.
func (v Vector) Onset() *big.Rat {
	return new(big.Rat).Set(&v.onset)
}

// OnsetFloat returns the onset-time component rounded to the nearest float64.
func (v Vector) OnsetFloat() float64 {
	f, _ := v.onset.Float64()
	return f
}

// Pitch returns the pitch component.
func (v Vector) Pitch() float64 {
	return v.pitch
}

// AsPair returns the components as an (onset, pitch) float64 pair, with
// the onset rounded to the nearest float64.
func (v Vector) AsPair() [2]float64 {
	f, _ := v.onset.Float64()
	return [2]float64{f, v.pitch}
}

// Cmp compares v and w lexicographically, onset component first.
func (v Vector) Cmp(w Vector) int {
	if c := v.onset.Cmp(&w.onset); c != 0 {
		return c
	}
	switch {
	case v.pitch < w.pitch:
		return -1
	case v.pitch > w.pitch:
		return 1
	}
	return 0
}

// Equal reports whether v and w have identical components.
func (v Vector) Equal(w Vector) bool {
	return v.Cmp(w) == 0
}

// IsZero reports whether both components are zero.
func (v Vector) IsZero() bool {
	return v.onset.Sign() == 0 && v.pitch == 0
}

// Add returns the component-wise sum of v and w.
func (v Vector) Add(w Vector) Vector {
	var out Vector
	out.onset.Add(&v.onset, &w.onset)
	out.pitch = v.pitch + w.pitch
	return out
}

// Sub returns the component-wise difference of v and w.
func (v Vector) Sub(w Vector) Vector {
	var out Vector
	out.onset.Sub(&v.onset, &w.onset)
	out.pitch = v.pitch - w.pitch
	return out
}

func (v Vector) String() string {
	return fmt.Sprintf("(%s, %v)", v.onset.RatString(), v.pitch)
}
