package musiikit

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with musiikit-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPiece adds a piece name field to the logger.
func (l *Logger) WithPiece(piece string) *Logger {
	return &Logger{
		Logger: l.Logger.With("piece", piece),
	}
}

// WithMaxIOI adds a max inter-onset interval field to the logger.
func (l *Logger) WithMaxIOI(maxIOI float64) *Logger {
	return &Logger{
		Logger: l.Logger.With("max_ioi", maxIOI),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogIngest logs a point ingestion operation.
func (l *Logger) LogIngest(ctx context.Context, points int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "point ingestion failed",
			"points", points,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "point ingestion completed",
			"points", points,
		)
	}
}

// LogDiscovery logs a pattern discovery operation.
func (l *Logger) LogDiscovery(ctx context.Context, points, tecs int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "pattern discovery failed",
			"points", points,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "pattern discovery completed",
			"points", points,
			"tecs", tecs,
		)
	}
}

// LogMatch logs a pattern matching operation.
func (l *Logger) LogMatch(ctx context.Context, querySize, occurrences int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "pattern matching failed",
			"query_size", querySize,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "pattern matching completed",
			"query_size", querySize,
			"occurrences", occurrences,
		)
	}
}

// LogEvaluation logs an evaluation run over a set of pieces.
func (l *Logger) LogEvaluation(ctx context.Context, pieces int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "evaluation failed",
			"pieces", pieces,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "evaluation completed",
			"pieces", pieces,
		)
	}
}
