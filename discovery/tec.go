package discovery

import (
	"fmt"
	"slices"

	"github.com/otsob/musii-kit/pointset"
)

// TEC is a translational equivalence class: a pattern together with every
// vector that maps it onto an occurrence inside the analysed point set.
// The translators are in ascending order and include the zero vector for
// the pattern's own position. The pattern is positioned at its earliest
// occurrence, so equivalence classes compare directly.
type TEC struct {
	pattern     pointset.Pattern
	translators []pointset.Vector
}

// NewTEC builds an equivalence class from a pattern and its translators.
// The translators are copied and sorted into ascending order.
func NewTEC(pattern pointset.Pattern, translators []pointset.Vector) TEC {
	ts := slices.Clone(translators)
	slices.SortFunc(ts, pointset.Vector.Cmp)
	return TEC{pattern: pattern, translators: ts}
}

// Pattern returns the representative pattern of the class.
func (t TEC) Pattern() pointset.Pattern {
	return t.pattern
}

// Translators returns a copy of the translator vectors in ascending order.
func (t TEC) Translators() []pointset.Vector {
	return slices.Clone(t.translators)
}

// Occurrences expands the class into concrete patterns, one per
// translator, in translator order.
func (t TEC) Occurrences() []pointset.Pattern {
	occs := make([]pointset.Pattern, len(t.translators))
	for i, tr := range t.translators {
		occs[i] = t.pattern.Translate(tr)
	}
	return occs
}

// Coverage returns the set of points covered by the occurrences of the
// class.
func (t TEC) Coverage() *pointset.PointSet {
	pts := make([]pointset.Point, 0, len(t.translators)*t.pattern.Len())
	for _, tr := range t.translators {
		pts = append(pts, t.pattern.Translate(tr).Points()...)
	}
	return pointset.New(pts)
}

func (t TEC) String() string {
	return fmt.Sprintf("TEC{pattern=%s, occurrences=%d}", t.pattern, len(t.translators))
}
