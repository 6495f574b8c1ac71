package musiikit

import (
	"context"
	"iter"

	"github.com/otsob/musii-kit/discovery"
	"github.com/otsob/musii-kit/pointset"
)

// Discover creates a fluent builder for repeated-pattern discovery on
// the point set. maxIOI bounds the onset gap between consecutive points
// of a discovered pattern.
//
// Example:
//
//	tecs, err := kit.Discover(ps, 2.0).
//	    Parallelism(4).
//	    MinPatternLen(3).
//	    Run(ctx)
//
//	// Or with streaming and early termination:
//	for tec, err := range kit.Discover(ps, 2.0).Stream(ctx) {
//	    if err != nil { break }
//	    process(tec)
//	}
func (k *Kit) Discover(ps *pointset.PointSet, maxIOI float64) *DiscoverBuilder {
	return &DiscoverBuilder{
		kit:    k,
		ps:     ps,
		maxIOI: maxIOI,
	}
}

// DiscoverBuilder is a fluent builder for discovery queries.
type DiscoverBuilder struct {
	kit         *Kit
	ps          *pointset.PointSet
	maxIOI      float64
	parallelism int
	minLen      int
}

// Parallelism overrides the number of discovery workers for this query.
// Values below one keep the Kit's setting.
func (b *DiscoverBuilder) Parallelism(n int) *DiscoverBuilder {
	b.parallelism = n
	return b
}

// MinPatternLen drops discovered classes whose pattern has fewer than n
// points. Singleton classes are a common artifact of gap splitting;
// MinPatternLen(2) removes them.
func (b *DiscoverBuilder) MinPatternLen(n int) *DiscoverBuilder {
	b.minLen = n
	return b
}

// Run discovers every class and returns them in deterministic order.
func (b *DiscoverBuilder) Run(ctx context.Context) ([]discovery.TEC, error) {
	tecs, err := b.effectiveKit().DiscoverTECs(ctx, b.ps, b.maxIOI)
	if err != nil {
		return nil, err
	}
	if b.minLen <= 1 {
		return tecs, nil
	}
	kept := tecs[:0]
	for _, tec := range tecs {
		if tec.Pattern().Len() >= b.minLen {
			kept = append(kept, tec)
		}
	}
	return kept, nil
}

// Stream returns an iterator over discovered classes in the same
// deterministic order as Run. The iterator supports early termination -
// stop iterating to cancel.
func (b *DiscoverBuilder) Stream(ctx context.Context) iter.Seq2[discovery.TEC, error] {
	return func(yield func(discovery.TEC, error) bool) {
		for tec, err := range b.effectiveKit().DiscoverTECsStream(ctx, b.ps, b.maxIOI) {
			if err != nil {
				yield(discovery.TEC{}, err)
				return
			}
			if b.minLen > 1 && tec.Pattern().Len() < b.minLen {
				continue
			}
			if !yield(tec, nil) {
				return
			}
		}
	}
}

// ToSink streams each discovered class to the sink as soon as it is
// consolidated. A sink error aborts the discovery and is returned
// unchanged.
func (b *DiscoverBuilder) ToSink(ctx context.Context, sink func(tec discovery.TEC) error) error {
	return b.effectiveKit().DiscoverTECsToSink(ctx, b.ps, b.maxIOI, func(tec discovery.TEC) error {
		if b.minLen > 1 && tec.Pattern().Len() < b.minLen {
			return nil
		}
		return sink(tec)
	})
}

// First returns the first discovered class, or ErrNotFound if the
// discovery yields none.
func (b *DiscoverBuilder) First(ctx context.Context) (discovery.TEC, error) {
	for tec, err := range b.Stream(ctx) {
		return tec, err
	}
	return discovery.TEC{}, ErrNotFound
}

// Count discovers all classes and returns how many there are.
func (b *DiscoverBuilder) Count(ctx context.Context) (int, error) {
	count := 0
	for _, err := range b.Stream(ctx) {
		if err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

func (b *DiscoverBuilder) effectiveKit() *Kit {
	if b.parallelism < 1 || b.parallelism == b.kit.parallelism {
		return b.kit
	}
	k := *b.kit
	k.parallelism = b.parallelism
	return &k
}

// Find creates a fluent builder for locating the occurrences of a query
// pattern in the point set.
//
// Example:
//
//	occurrences, err := kit.Find(query, ps).Run(ctx)
//
//	exists, err := kit.Find(query, ps).Exists(ctx)
func (k *Kit) Find(query pointset.Pattern, ps *pointset.PointSet) *FindBuilder {
	return &FindBuilder{
		kit:   k,
		query: query,
		ps:    ps,
	}
}

// FindBuilder is a fluent builder for pattern matching queries.
type FindBuilder struct {
	kit   *Kit
	query pointset.Pattern
	ps    *pointset.PointSet
}

// Run returns every translated occurrence of the query pattern, ordered
// by ascending translator.
func (b *FindBuilder) Run(ctx context.Context) ([]pointset.Pattern, error) {
	return b.kit.FindOccurrences(ctx, b.query, b.ps)
}

// Translators returns the vectors that translate the query onto an
// occurrence, in ascending order.
func (b *FindBuilder) Translators(ctx context.Context) ([]pointset.Vector, error) {
	return b.kit.FindTranslators(ctx, b.query, b.ps)
}

// Stream returns an iterator over the occurrences, ordered by ascending
// translator. The iterator supports early termination - stop iterating
// to cancel.
func (b *FindBuilder) Stream(ctx context.Context) iter.Seq2[pointset.Pattern, error] {
	return b.kit.FindOccurrencesStream(ctx, b.query, b.ps)
}

// First returns the first occurrence, or ErrNotFound when the pattern
// does not occur in the set.
func (b *FindBuilder) First(ctx context.Context) (pointset.Pattern, error) {
	for occurrence, err := range b.Stream(ctx) {
		return occurrence, err
	}
	return pointset.Pattern{}, ErrNotFound
}

// Exists checks whether the pattern occurs in the set at least once.
func (b *FindBuilder) Exists(ctx context.Context) (bool, error) {
	for _, err := range b.Stream(ctx) {
		if err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Count returns the number of occurrences.
func (b *FindBuilder) Count(ctx context.Context) (int, error) {
	count := 0
	for _, err := range b.Stream(ctx) {
		if err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}
