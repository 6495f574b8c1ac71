package benchmark_test

import (
	"sync"
	"testing"

	"github.com/otsob/musii-kit/gen"
	"github.com/otsob/musii-kit/pointset"
)

// FixtureConfig defines a benchmark fixture's parameters.
type FixtureConfig struct {
	Name    string
	Points  int
	MinSize int
	MaxSize int
	MaxReps int
	Lo      int
	Hi      int
	MaxIOI  float64
	Seed    int64
}

// StandardFixtures defines the canonical set of benchmark fixtures.
// Sparse fixtures spread points over a wide coordinate range so few
// difference vectors repeat; dense fixtures pack the same point count
// into a narrow range, which multiplies repeated vectors and pattern
// candidates. Larger inputs belong in manual profiling runs.
var StandardFixtures = []FixtureConfig{
	{Name: "sparse_500", Points: 500, MinSize: 3, MaxSize: 6, MaxReps: 4, Lo: 0, Hi: 400, MaxIOI: 4, Seed: 42},
	{Name: "dense_500", Points: 500, MinSize: 3, MaxSize: 6, MaxReps: 8, Lo: 0, Hi: 60, MaxIOI: 4, Seed: 42},
	{Name: "sparse_2k", Points: 2000, MinSize: 4, MaxSize: 8, MaxReps: 4, Lo: 0, Hi: 800, MaxIOI: 4, Seed: 42},
	{Name: "dense_2k", Points: 2000, MinSize: 4, MaxSize: 8, MaxReps: 8, Lo: 0, Hi: 120, MaxIOI: 4, Seed: 42},
}

// QuickFixtures are fast fixtures for CI.
var QuickFixtures = []FixtureConfig{
	{Name: "sparse_500", Points: 500, MinSize: 3, MaxSize: 6, MaxReps: 4, Lo: 0, Hi: 400, MaxIOI: 4, Seed: 42},
}

// FixtureData holds a generated point set together with the planted
// patterns, which double as realistic match queries.
type FixtureData struct {
	Config  FixtureConfig
	Set     *pointset.PointSet
	Queries []pointset.Pattern
}

var (
	fixtureCache   = make(map[string]*FixtureData)
	fixtureCacheMu sync.Mutex
)

// loadFixture generates fixture data on first use and caches it so
// repeated benchmark invocations share one deterministic input.
func loadFixture(b *testing.B, cfg FixtureConfig) *FixtureData {
	b.Helper()

	fixtureCacheMu.Lock()
	defer fixtureCacheMu.Unlock()

	if data, ok := fixtureCache[cfg.Name]; ok {
		return data
	}

	planted, err := gen.New(cfg.Seed).RandomPatterns(cfg.Points, cfg.MinSize, cfg.MaxSize, cfg.MaxReps, cfg.Lo, cfg.Hi)
	if err != nil {
		b.Fatalf("generate fixture %s: %v", cfg.Name, err)
	}
	if len(planted.Patterns) == 0 {
		b.Fatalf("fixture %s planted no patterns", cfg.Name)
	}

	data := &FixtureData{Config: cfg, Set: planted.Set, Queries: planted.Patterns}
	fixtureCache[cfg.Name] = data
	return data
}
