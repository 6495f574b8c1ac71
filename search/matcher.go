// Package search implements exact translational matching of a query
// pattern against a point set: it finds every vector under which the
// fully translated query is contained in the target set.
package search

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/otsob/musii-kit/pointset"
)

// ErrEmptyQuery is returned when the query pattern contains no points.
var ErrEmptyQuery = errors.New("query pattern is empty")

// ErrQueryTooLarge indicates a query with more points than the target
// point set. Such a query cannot have any occurrence.
type ErrQueryTooLarge struct {
	QueryLen int
	SetLen   int
}

func (e *ErrQueryTooLarge) Error() string {
	return fmt.Sprintf("query cannot be longer than the point set: %d > %d", e.QueryLen, e.SetLen)
}

// errStopIteration terminates a sink-driven scan without reporting an
// error to the caller. Used by the stream adapters.
var errStopIteration = errors.New("stop iteration")

// ctxCheckInterval is the number of anchor candidates scanned between
// context cancellation checks.
const ctxCheckInterval = 1024

// Options contains configuration options for the matcher.
type Options struct {
	// Logger receives match diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions contains the default configuration options for the matcher.
var DefaultOptions = Options{}

// Matcher finds exact, translated (unscaled) occurrences of query
// patterns in point sets. A Matcher is stateless and safe for
// concurrent use.
type Matcher struct {
	opts Options
}

// New creates a new exact matcher.
func New(optFns ...func(o *Options)) *Matcher {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Matcher{opts: opts}
}

// FindTranslators returns every vector t such that the query translated
// by t is entirely contained in ps. The vectors are returned in
// ascending lexicographic order. The zero vector is included whenever
// the query itself is a subset of ps.
func (m *Matcher) FindTranslators(ctx context.Context, query pointset.Pattern, ps *pointset.PointSet) ([]pointset.Vector, error) {
	var translators []pointset.Vector
	err := m.scan(ctx, query, ps, func(t pointset.Vector) error {
		translators = append(translators, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return translators, nil
}

// FindOccurrences returns the query translated to every location in ps
// where a full occurrence exists, in ascending order of location.
func (m *Matcher) FindOccurrences(ctx context.Context, query pointset.Pattern, ps *pointset.PointSet) ([]pointset.Pattern, error) {
	var occurrences []pointset.Pattern
	err := m.FindOccurrencesToSink(ctx, query, ps, func(p pointset.Pattern) error {
		occurrences = append(occurrences, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return occurrences, nil
}

// FindOccurrencesToSink invokes sink once per occurrence, in ascending
// order of location. The sink is called synchronously on the calling
// goroutine; returning a non-nil error stops the scan and propagates
// the error.
func (m *Matcher) FindOccurrencesToSink(ctx context.Context, query pointset.Pattern, ps *pointset.PointSet, sink func(pointset.Pattern) error) error {
	return m.scan(ctx, query, ps, func(t pointset.Vector) error {
		return sink(query.Translate(t))
	})
}

// FindOccurrencesStream returns an iterator over occurrences of the
// query in ps. The iterator supports early termination - stop iterating
// to cancel.
//
// Example:
//
//	for occ, err := range matcher.FindOccurrencesStream(ctx, query, ps) {
//	    if err != nil {
//	        return err
//	    }
//	    process(occ)
//	}
func (m *Matcher) FindOccurrencesStream(ctx context.Context, query pointset.Pattern, ps *pointset.PointSet) iter.Seq2[pointset.Pattern, error] {
	return func(yield func(pointset.Pattern, error) bool) {
		err := m.FindOccurrencesToSink(ctx, query, ps, func(p pointset.Pattern) error {
			if !yield(p, nil) {
				return errStopIteration
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopIteration) {
			yield(pointset.Pattern{}, err)
		}
	}
}

// scan walks every point of ps as a candidate anchor location and emits
// the translators under which the whole query maps into ps.
func (m *Matcher) scan(ctx context.Context, query pointset.Pattern, ps *pointset.PointSet, emit func(pointset.Vector) error) error {
	if err := validate(query, ps); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	anchor := query.At(0)
	found := 0

	for i := 0; i < ps.Len(); i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		t := ps.At(i).Sub(anchor)
		if !containsTranslated(query, t, ps) {
			continue
		}

		found++
		if err := emit(t); err != nil {
			return err
		}
	}

	if m.opts.Logger != nil {
		m.opts.Logger.DebugContext(ctx, "match completed",
			"query_size", query.Len(),
			"set_size", ps.Len(),
			"occurrences", found,
		)
	}

	return nil
}

// containsTranslated reports whether every query point translated by t
// is a member of ps. The anchor point is skipped: its translate is the
// candidate location itself.
func containsTranslated(query pointset.Pattern, t pointset.Vector, ps *pointset.PointSet) bool {
	for j := 1; j < query.Len(); j++ {
		if !ps.Contains(query.At(j).Add(t)) {
			return false
		}
	}
	return true
}

func validate(query pointset.Pattern, ps *pointset.PointSet) error {
	if query.Len() == 0 {
		return ErrEmptyQuery
	}

	setLen := 0
	if ps != nil {
		setLen = ps.Len()
	}
	if query.Len() > setLen {
		return &ErrQueryTooLarge{QueryLen: query.Len(), SetLen: setLen}
	}

	return nil
}
