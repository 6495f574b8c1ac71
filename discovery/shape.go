package discovery

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/otsob/musii-kit/pointset"
	"github.com/otsob/musii-kit/search"
)

// consolidator expands pattern segments into full translational
// equivalence classes, expanding each distinct shape only once.
type consolidator struct {
	matcher *search.Matcher
	seen    map[string]struct{}
}

func newConsolidator() *consolidator {
	return &consolidator{
		matcher: search.New(),
		seen:    make(map[string]struct{}),
	}
}

// consolidate turns one segment into its equivalence class. The second
// return is false when a translation of the segment has already been
// consolidated.
func (c *consolidator) consolidate(ctx context.Context, segment pointset.Pattern, ps *pointset.PointSet) (TEC, bool, error) {
	key := shapeKey(segment)
	if _, ok := c.seen[key]; ok {
		return TEC{}, false, nil
	}
	c.seen[key] = struct{}{}

	// The segment's points lie in the set, so the identity translator
	// guarantees at least one occurrence.
	ts, err := c.matcher.FindTranslators(ctx, segment, ps)
	if err != nil {
		return TEC{}, false, err
	}

	// Re-anchor on the earliest occurrence so that the zero vector leads
	// the translators and equal classes come out identical.
	first := ts[0]
	translators := make([]pointset.Vector, len(ts))
	for i, t := range ts {
		translators[i] = t.Sub(first)
	}
	return TEC{pattern: segment.Translate(first), translators: translators}, true, nil
}

// shapeKey serializes the segment normalized to the origin, identifying
// its shape up to translation. Negative zero pitch folds into positive
// zero to agree with coordinate comparison.
func shapeKey(segment pointset.Pattern) string {
	var b strings.Builder
	for _, p := range segment.NormalizeToOrigin().Points() {
		bits := math.Float64bits(p.Pitch())
		if p.Pitch() == 0 {
			bits = 0
		}
		b.WriteString(p.Onset().RatString())
		b.WriteByte('|')
		b.WriteString(strconv.FormatUint(bits, 16))
		b.WriteByte(';')
	}
	return b.String()
}
