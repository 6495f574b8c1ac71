// Package musiikit provides point-set analysis of symbolic music for Go.
//
// A piece of music is modelled as a set of two-dimensional points with an
// exact rational onset-time coordinate and a real-valued pitch coordinate.
// On top of this model the kit offers repeated-pattern discovery, exact
// pattern matching, dataset handling, pattern generation and evaluation.
//
// # Quick Start
//
// Discover repeated patterns:
//
//	ctx := context.Background()
//	kit := musiikit.New()
//
//	ps, _ := kit.FromPairs(ctx, [][]float64{{0, 60}, {1, 62}, {4, 60}, {5, 62}})
//	tecs, _ := kit.DiscoverTECs(ctx, ps, 2.0)
//	for _, tec := range tecs {
//	    fmt.Println(tec.Pattern(), len(tec.Translators()))
//	}
//
// Find where a query pattern occurs:
//
//	query, _ := kit.PatternFromPairs(ctx, [][]float64{{0, 60}, {1, 62}})
//	occurrences, _ := kit.FindOccurrences(ctx, query, ps)
//
// Fluent API with streaming and early termination:
//
//	for tec, err := range kit.Discover(ps, 2.0).Parallelism(4).Stream(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if tec.Pattern().Len() < 3 {
//	        continue
//	    }
//	    process(tec)
//	}
//
// # Key Features
//
//   - Repeated-pattern discovery into translational equivalence classes,
//     bounded by a maximum inter-onset interval (SIATEC-C family)
//   - Exact point-set pattern matching under translation
//   - Exact rational onset arithmetic, so time comparisons never drift
//   - Streaming APIs with early termination
//   - JSON and CSV point-set I/O with gzip/zstd/lz4 compression
//   - JKU Patterns Development Database loading
//   - MIREX-style evaluation of discovery output with SQLite reporting
//   - Local, in-memory, S3 and MinIO dataset stores
//   - Synthetic point-set generators for benchmarking
package musiikit
