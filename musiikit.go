package musiikit

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/otsob/musii-kit/discovery"
	"github.com/otsob/musii-kit/pointset"
	"github.com/otsob/musii-kit/search"
)

var (
	// ErrNotFound is returned when an item is not found.
	ErrNotFound = errors.New("not found")
)

// Kit is the front door to point-set pattern analysis. It bundles
// repeated-pattern discovery, exact pattern matching and point ingestion
// behind shared logging and metrics.
//
// A Kit is cheap and safe to share between goroutines.
type Kit struct {
	metrics     MetricsCollector
	logger      *Logger
	parallelism int
}

// New creates a Kit.
func New(optFns ...Option) *Kit {
	opts := applyOptions(optFns)
	return &Kit{
		metrics:     opts.metricsCollector,
		logger:      opts.logger,
		parallelism: opts.parallelism,
	}
}

// FromRows converts an n-by-3 row buffer into a point set. The third
// column is the onset time and the second column the pitch; the first
// column is ignored, as are any extra columns. Duplicate points collapse
// into one.
func (k *Kit) FromRows(ctx context.Context, rows [][]float64) (*pointset.PointSet, error) {
	start := time.Now()
	ps, err := pointset.FromRows(rows)
	err = translateError(err)
	k.metrics.RecordIngest(setLen(ps), time.Since(start), err)
	k.logger.LogIngest(ctx, setLen(ps), err)
	return ps, err
}

// FromPairs converts (onset, pitch) rows into a point set.
func (k *Kit) FromPairs(ctx context.Context, rows [][]float64) (*pointset.PointSet, error) {
	start := time.Now()
	ps, err := pointset.FromPairs(rows)
	err = translateError(err)
	k.metrics.RecordIngest(setLen(ps), time.Since(start), err)
	k.logger.LogIngest(ctx, setLen(ps), err)
	return ps, err
}

// PatternFromRows converts an n-by-3 row buffer into a query pattern,
// using the same column convention as FromRows.
func (k *Kit) PatternFromRows(ctx context.Context, rows [][]float64) (pointset.Pattern, error) {
	p, err := pointset.PatternFromRows(rows)
	return p, translateError(err)
}

// PatternFromPairs converts (onset, pitch) rows into a query pattern.
func (k *Kit) PatternFromPairs(ctx context.Context, rows [][]float64) (pointset.Pattern, error) {
	p, err := pointset.PatternFromPairs(rows)
	return p, translateError(err)
}

// DiscoverTECs discovers every repeated pattern of the point set as a
// translational equivalence class. maxIOI bounds the onset gap between
// consecutive points of a discovered pattern. The classes come back in
// deterministic order.
func (k *Kit) DiscoverTECs(ctx context.Context, ps *pointset.PointSet, maxIOI float64) ([]discovery.TEC, error) {
	start := time.Now()
	var tecs []discovery.TEC
	d, err := k.discoverer(maxIOI)
	if err == nil {
		tecs, err = d.ComputeTECs(ctx, ps)
		err = translateError(err)
	}
	duration := time.Since(start)
	k.metrics.RecordDiscovery(len(tecs), duration, err)
	k.logger.LogDiscovery(ctx, setLen(ps), len(tecs), err)
	if err != nil {
		return nil, err
	}
	return tecs, nil
}

// DiscoverTECsToSink streams each discovered class to the sink as soon
// as it is consolidated. The sink is invoked sequentially from the
// calling goroutine; a sink error aborts the discovery and is returned
// unchanged.
func (k *Kit) DiscoverTECsToSink(ctx context.Context, ps *pointset.PointSet, maxIOI float64, sink func(tec discovery.TEC) error) error {
	start := time.Now()
	count := 0
	d, err := k.discoverer(maxIOI)
	if err == nil {
		err = d.ComputeTECsToSink(ctx, ps, func(tec discovery.TEC) error {
			count++
			return sink(tec)
		})
		err = translateError(err)
	}
	k.metrics.RecordDiscovery(count, time.Since(start), err)
	k.logger.LogDiscovery(ctx, setLen(ps), count, err)
	return err
}

// DiscoverTECsStream returns an iterator over discovered classes.
// Classes are yielded in the same deterministic order as DiscoverTECs.
// The iterator supports early termination - stop iterating to cancel.
//
// Example:
//
//	for tec, err := range kit.DiscoverTECsStream(ctx, ps, 2.0) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if tec.Pattern().Len() >= 4 {
//	        break // Early termination
//	    }
//	    process(tec)
//	}
func (k *Kit) DiscoverTECsStream(ctx context.Context, ps *pointset.PointSet, maxIOI float64) iter.Seq2[discovery.TEC, error] {
	return func(yield func(discovery.TEC, error) bool) {
		start := time.Now()
		d, err := k.discoverer(maxIOI)
		if err != nil {
			k.metrics.RecordDiscovery(0, time.Since(start), err)
			k.logger.LogDiscovery(ctx, setLen(ps), 0, err)
			yield(discovery.TEC{}, err)
			return
		}

		count := 0
		for tec, err := range d.ComputeTECsStream(ctx, ps) {
			if err != nil {
				err = translateError(err)
				k.metrics.RecordDiscovery(count, time.Since(start), err)
				k.logger.LogDiscovery(ctx, setLen(ps), count, err)
				yield(discovery.TEC{}, err)
				return
			}

			count++
			if !yield(tec, nil) {
				// Early termination
				k.metrics.RecordDiscovery(count, time.Since(start), nil)
				k.logger.LogDiscovery(ctx, setLen(ps), count, nil)
				return
			}
		}

		k.metrics.RecordDiscovery(count, time.Since(start), nil)
		k.logger.LogDiscovery(ctx, setLen(ps), count, nil)
	}
}

// FindOccurrences returns every translated occurrence of the query
// pattern in the point set, ordered by ascending translator. The query
// itself counts as an occurrence when it lies in the set. Finding no
// occurrences is not an error.
func (k *Kit) FindOccurrences(ctx context.Context, query pointset.Pattern, ps *pointset.PointSet) ([]pointset.Pattern, error) {
	start := time.Now()
	occs, err := k.matcher().FindOccurrences(ctx, query, ps)
	err = translateError(err)
	k.metrics.RecordMatch(len(occs), time.Since(start), err)
	k.logger.LogMatch(ctx, query.Len(), len(occs), err)
	return occs, err
}

// FindTranslators returns the vectors that translate the query pattern
// onto an occurrence in the point set, in ascending order.
func (k *Kit) FindTranslators(ctx context.Context, query pointset.Pattern, ps *pointset.PointSet) ([]pointset.Vector, error) {
	ts, err := k.matcher().FindTranslators(ctx, query, ps)
	return ts, translateError(err)
}

// FindOccurrencesToSink streams each occurrence to the sink as it is
// found. The sink is invoked sequentially from the calling goroutine; a
// sink error aborts the match and is returned unchanged.
func (k *Kit) FindOccurrencesToSink(ctx context.Context, query pointset.Pattern, ps *pointset.PointSet, sink func(occurrence pointset.Pattern) error) error {
	start := time.Now()
	count := 0
	err := k.matcher().FindOccurrencesToSink(ctx, query, ps, func(occurrence pointset.Pattern) error {
		count++
		return sink(occurrence)
	})
	err = translateError(err)
	k.metrics.RecordMatch(count, time.Since(start), err)
	k.logger.LogMatch(ctx, query.Len(), count, err)
	return err
}

// FindOccurrencesStream returns an iterator over the occurrences of the
// query pattern, ordered by ascending translator. The iterator supports
// early termination - stop iterating to cancel.
func (k *Kit) FindOccurrencesStream(ctx context.Context, query pointset.Pattern, ps *pointset.PointSet) iter.Seq2[pointset.Pattern, error] {
	return func(yield func(pointset.Pattern, error) bool) {
		start := time.Now()
		count := 0
		for occurrence, err := range k.matcher().FindOccurrencesStream(ctx, query, ps) {
			if err != nil {
				err = translateError(err)
				k.metrics.RecordMatch(count, time.Since(start), err)
				k.logger.LogMatch(ctx, query.Len(), count, err)
				yield(pointset.Pattern{}, err)
				return
			}

			count++
			if !yield(occurrence, nil) {
				// Early termination
				k.metrics.RecordMatch(count, time.Since(start), nil)
				k.logger.LogMatch(ctx, query.Len(), count, nil)
				return
			}
		}

		k.metrics.RecordMatch(count, time.Since(start), nil)
		k.logger.LogMatch(ctx, query.Len(), count, nil)
	}
}

func (k *Kit) discoverer(maxIOI float64, optFns ...func(o *discovery.Options)) (*discovery.SiatecC, error) {
	fns := append([]func(o *discovery.Options){func(o *discovery.Options) {
		o.Parallelism = k.parallelism
		o.Logger = k.logger.Logger
	}}, optFns...)
	d, err := discovery.New(maxIOI, fns...)
	if err != nil {
		return nil, translateError(err)
	}
	return d, nil
}

func (k *Kit) matcher() *search.Matcher {
	return search.New(func(o *search.Options) {
		o.Logger = k.logger.Logger
	})
}

func setLen(ps *pointset.PointSet) int {
	if ps == nil {
		return 0
	}
	return ps.Len()
}
