package benchmark_test

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"

	musiikit "github.com/otsob/musii-kit"
	"github.com/otsob/musii-kit/gen"
)

// BenchmarkDiscovery measures full pattern discovery across the
// standard fixtures.
func BenchmarkDiscovery(b *testing.B) {
	for _, cfg := range StandardFixtures {
		b.Run(cfg.Name, func(b *testing.B) {
			data := loadFixture(b, cfg)
			kit := musiikit.New()
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				tecs, err := kit.DiscoverTECs(ctx, data.Set, cfg.MaxIOI)
				if err != nil {
					b.Fatal(err)
				}
				if len(tecs) == 0 {
					b.Fatal("no classes discovered")
				}
			}
		})
	}
}

// BenchmarkDiscoveryWorkers measures how consolidation throughput
// scales with the worker count on the densest fixture.
func BenchmarkDiscoveryWorkers(b *testing.B) {
	cfg := StandardFixtures[3] // dense_2k
	data := loadFixture(b, cfg)
	ctx := context.Background()

	for _, workers := range []int{1, 2, 4, 8} {
		b.Run("workers="+strconv.Itoa(workers), func(b *testing.B) {
			kit := musiikit.New()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := kit.Discover(data.Set, cfg.MaxIOI).Parallelism(workers).Run(ctx)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkDiscoveryFirst measures the latency until the streaming
// sweep surfaces its first class, without draining the remainder.
func BenchmarkDiscoveryFirst(b *testing.B) {
	cfg := StandardFixtures[1] // dense_500
	data := loadFixture(b, cfg)
	kit := musiikit.New()
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := kit.Discover(data.Set, cfg.MaxIOI).First(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMatch measures exact occurrence search with planted
// patterns as queries. Every query occurs at least once.
func BenchmarkMatch(b *testing.B) {
	for _, cfg := range StandardFixtures {
		b.Run(cfg.Name, func(b *testing.B) {
			data := loadFixture(b, cfg)
			kit := musiikit.New()
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				q := data.Queries[i%len(data.Queries)]
				occurrences, err := kit.FindOccurrences(ctx, q, data.Set)
				if err != nil {
					b.Fatal(err)
				}
				if len(occurrences) == 0 {
					b.Fatal("planted pattern not found")
				}
			}
		})
	}
}

// BenchmarkMatch_Parallel runs occurrence searches from concurrent
// goroutines against a shared point set.
func BenchmarkMatch_Parallel(b *testing.B) {
	cfg := StandardFixtures[3] // dense_2k
	data := loadFixture(b, cfg)
	kit := musiikit.New()

	var qIdx atomic.Uint64
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			q := data.Queries[qIdx.Add(1)%uint64(len(data.Queries))]
			if _, err := kit.FindOccurrences(context.Background(), q, data.Set); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkIngest measures row validation and point set construction.
func BenchmarkIngest(b *testing.B) {
	for _, n := range []int{500, 2000, 10000} {
		b.Run("n="+strconv.Itoa(n), func(b *testing.B) {
			// Pre-generate rows outside the timed region.
			pairs := gen.New(7).NoRepeats(n).AsPairs()
			rows := make([][]float64, len(pairs))
			for i, p := range pairs {
				rows[i] = []float64{p[0], p[1]}
			}

			kit := musiikit.New()
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ps, err := kit.FromPairs(ctx, rows)
				if err != nil {
					b.Fatal(err)
				}
				if ps.Len() != n {
					b.Fatalf("expected %d points, got %d", n, ps.Len())
				}
			}
		})
	}
}

// BenchmarkTranslators measures translator-only search, which skips
// materializing the translated occurrence patterns.
func BenchmarkTranslators(b *testing.B) {
	cfg := StandardFixtures[0] // sparse_500
	data := loadFixture(b, cfg)
	kit := musiikit.New()
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q := data.Queries[i%len(data.Queries)]
		if _, err := kit.FindTranslators(ctx, q, data.Set); err != nil {
			b.Fatal(err)
		}
	}
}
