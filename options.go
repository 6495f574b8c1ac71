package musiikit

import (
	"log/slog"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	parallelism      int
}

// Option configures Kit behavior.
//
// Today options primarily exist to avoid exploding the API surface
// (e.g. logger-specific constructor variants).
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &musiikit.BasicMetricsCollector{}
//	kit := musiikit.New(musiikit.WithMetricsCollector(metrics))
//	// ... use kit ...
//	stats := metrics.GetStats()
//	fmt.Printf("Discoveries: %d, Avg latency: %dns\n", stats.DiscoveryCount, stats.DiscoveryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := musiikit.NewJSONLogger(slog.LevelInfo)
//	kit := musiikit.New(musiikit.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithParallelism configures the number of workers used during pattern
// discovery. Values below one run discovery sequentially. The discovered
// classes do not depend on this setting.
func WithParallelism(parallelism int) Option {
	return func(o *options) {
		o.parallelism = parallelism
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		parallelism:      1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
