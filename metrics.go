package musiikit

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    discoveryCounter   prometheus.Counter
//	    discoveryHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordDiscovery(tecs int, duration time.Duration, err error) {
//	    p.discoveryCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordIngest is called after each point ingestion.
	// points is the number of ingested points, err is nil if successful.
	RecordIngest(points int, duration time.Duration, err error)

	// RecordDiscovery is called after each pattern discovery run.
	// tecs is the number of discovered classes, duration is the total
	// time taken, err is nil if successful.
	RecordDiscovery(tecs int, duration time.Duration, err error)

	// RecordMatch is called after each pattern matching run.
	// occurrences is the number of found occurrences, duration is the
	// time taken, err is nil if successful.
	RecordMatch(occurrences int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIngest(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordDiscovery(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordMatch(int, time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	IngestCount         atomic.Int64
	IngestErrors        atomic.Int64
	IngestedPoints      atomic.Int64
	DiscoveryCount      atomic.Int64
	DiscoveryErrors     atomic.Int64
	DiscoveryTotalNanos atomic.Int64
	DiscoveredClasses   atomic.Int64
	MatchCount          atomic.Int64
	MatchErrors         atomic.Int64
	MatchTotalNanos     atomic.Int64
	MatchedOccurrences  atomic.Int64
}

// RecordIngest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIngest(points int, duration time.Duration, err error) {
	b.IngestCount.Add(1)
	b.IngestedPoints.Add(int64(points))
	if err != nil {
		b.IngestErrors.Add(1)
	}
}

// RecordDiscovery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDiscovery(tecs int, duration time.Duration, err error) {
	b.DiscoveryCount.Add(1)
	b.DiscoveryTotalNanos.Add(duration.Nanoseconds())
	b.DiscoveredClasses.Add(int64(tecs))
	if err != nil {
		b.DiscoveryErrors.Add(1)
	}
}

// RecordMatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMatch(occurrences int, duration time.Duration, err error) {
	b.MatchCount.Add(1)
	b.MatchTotalNanos.Add(duration.Nanoseconds())
	b.MatchedOccurrences.Add(int64(occurrences))
	if err != nil {
		b.MatchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		IngestCount:        b.IngestCount.Load(),
		IngestErrors:       b.IngestErrors.Load(),
		IngestedPoints:     b.IngestedPoints.Load(),
		DiscoveryCount:     b.DiscoveryCount.Load(),
		DiscoveryErrors:    b.DiscoveryErrors.Load(),
		DiscoveryAvgNanos:  b.getAvgDiscoveryNanos(),
		DiscoveredClasses:  b.DiscoveredClasses.Load(),
		MatchCount:         b.MatchCount.Load(),
		MatchErrors:        b.MatchErrors.Load(),
		MatchAvgNanos:      b.getAvgMatchNanos(),
		MatchedOccurrences: b.MatchedOccurrences.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgDiscoveryNanos() int64 {
	count := b.DiscoveryCount.Load()
	if count == 0 {
		return 0
	}
	return b.DiscoveryTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgMatchNanos() int64 {
	count := b.MatchCount.Load()
	if count == 0 {
		return 0
	}
	return b.MatchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	IngestCount        int64
	IngestErrors       int64
	IngestedPoints     int64
	DiscoveryCount     int64
	DiscoveryErrors    int64
	DiscoveryAvgNanos  int64
	DiscoveredClasses  int64
	MatchCount         int64
	MatchErrors        int64
	MatchAvgNanos      int64
	MatchedOccurrences int64
}
