// Package gen generates synthetic point sets for tests, examples and
// benchmarks: sets with planted translated patterns, degenerate sets on
// a line and sets guaranteed to contain no repeated pattern.
package gen

import (
	"fmt"
	"math/big"
	"math/rand"

	"github.com/otsob/musii-kit/pointset"
)

// Generator produces deterministic pseudo-random point sets.
// It is not safe for concurrent use.
type Generator struct {
	rand *rand.Rand
	seed int64
}

// New creates a generator with the specified seed.
func New(seed int64) *Generator {
	return &Generator{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the generator to its initial seed.
func (g *Generator) Reset() {
	g.rand.Seed(g.seed)
}

// Seed returns the initial seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Planted is a generated point set together with the pattern blocks
// that were placed into it. Every planted point is contained in the
// set; the set holds each distinct point once.
type Planted struct {
	Set      *pointset.PointSet
	Patterns []pointset.Pattern
}

// RandomPatterns generates a point set of exactly n distinct points
// built from randomly generated patterns repeated as translated
// copies. Coordinates are integral values in [lo, hi). Pattern sizes
// are drawn from [minSize, maxSize] and each pattern is planted up to
// maxReps times.
func (g *Generator) RandomPatterns(n, minSize, maxSize, maxReps, lo, hi int) (*Planted, error) {
	span := hi - lo
	switch {
	case n < 1:
		return nil, fmt.Errorf("point set size must be positive: %d", n)
	case minSize < 1 || maxSize < minSize:
		return nil, fmt.Errorf("invalid pattern size range [%d, %d]", minSize, maxSize)
	case maxReps < 1:
		return nil, fmt.Errorf("maximum repetitions must be positive: %d", maxReps)
	case span < 1 || span*span < n:
		return nil, fmt.Errorf("value range [%d, %d) cannot hold %d distinct points", lo, hi, n)
	}

	var (
		points  []pointset.Point
		planted []pointset.Pattern
	)
	for len(points) < n {
		size := minSize + g.rand.Intn(maxSize-minSize+1)
		if remaining := n - len(points); size > remaining {
			size = remaining
		}
		block := g.randomBlock(size, lo, span)
		reps := 1 + g.rand.Intn(maxReps)

		for rep := 0; rep < reps && len(points)+len(block) <= n; rep++ {
			placed := block
			if rep > 0 {
				placed = translateBlock(block, g.intVector(lo, span))
			}
			points = append(points, placed...)
			if pat, err := pointset.NewPattern(placed); err == nil {
				planted = append(planted, pat)
			}
		}
	}

	// Deduplication may shrink the set; top it up with fresh points.
	set := pointset.New(points)
	for set.Len() < n {
		p := g.randomPoint(lo, span)
		if !set.Contains(p) {
			points = append(points, p)
			set = pointset.New(points)
		}
	}
	return &Planted{Set: set, Patterns: planted}, nil
}

// OnLine generates n points placed equidistantly on a horizontal line.
func (g *Generator) OnLine(n int) *pointset.PointSet {
	points := make([]pointset.Point, 0, max(n, 0))
	for i := 0; i < n; i++ {
		points = append(points, pointset.NewPoint(big.NewRat(int64(i), 1), 0))
	}
	return pointset.New(points)
}

// NoRepeats generates n points such that all pairwise difference
// vectors are distinct, so the set contains no translatable pattern of
// more than one point. The pitch increments grow with the onset index.
func (g *Generator) NoRepeats(n int) *pointset.PointSet {
	points := make([]pointset.Point, 0, max(n, 0))
	y := 0.0
	for x := 0; x < n; x++ {
		y += float64(x) * 0.01
		points = append(points, pointset.NewPoint(big.NewRat(int64(x), 1), y))
	}
	return pointset.New(points)
}

func (g *Generator) randomPoint(lo, span int) pointset.Point {
	onset := int64(lo + g.rand.Intn(span))
	pitch := float64(lo + g.rand.Intn(span))
	return pointset.NewPoint(big.NewRat(onset, 1), pitch)
}

func (g *Generator) randomBlock(size, lo, span int) []pointset.Point {
	block := make([]pointset.Point, size)
	for i := range block {
		block[i] = g.randomPoint(lo, span)
	}
	return block
}

func (g *Generator) intVector(lo, span int) pointset.Vector {
	onset := int64(lo + g.rand.Intn(span))
	pitch := float64(lo + g.rand.Intn(span))
	return pointset.NewVector(big.NewRat(onset, 1), pitch)
}

func translateBlock(block []pointset.Point, v pointset.Vector) []pointset.Point {
	out := make([]pointset.Point, len(block))
	for i, p := range block {
		out[i] = p.Add(v)
	}
	return out
}
