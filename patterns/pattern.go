// Package patterns provides labeled point patterns, occurrence
// groupings and per-piece pattern collections, plus bridges that turn
// discovery and matching output into labeled form.
package patterns

import (
	"math/big"

	"github.com/otsob/musii-kit/pointset"
)

// Pattern is a point pattern annotated with the labels pattern
// documents carry: a name for the pattern, the analyst or algorithm
// that produced it and the piece it occurs in.
type Pattern struct {
	Label  string
	Source string
	Piece  string
	DType  pointset.DType
	Points pointset.Pattern
}

// Len returns the number of points in the pattern.
func (p Pattern) Len() int {
	return p.Points.Len()
}

// Translate returns a copy of the pattern moved by v, keeping labels.
func (p Pattern) Translate(v pointset.Vector) Pattern {
	q := p
	q.Points = p.Points.Translate(v)
	return q
}

// TimeScaled returns a copy of the pattern with onsets multiplied by
// factor, keeping labels.
func (p Pattern) TimeScaled(factor *big.Rat) Pattern {
	q := p
	q.Points = p.Points.TimeScaled(factor)
	return q
}

// Equal reports whether the two patterns contain the same points.
// Labels do not participate in equality.
func (p Pattern) Equal(q Pattern) bool {
	return p.Points.Equal(q.Points)
}

func (p Pattern) String() string {
	label := p.Label
	if label == "" {
		label = "pattern"
	}
	return label + " " + p.Points.String()
}
