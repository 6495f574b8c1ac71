// Package discovery finds repeated patterns in point-set representations
// of symbolic music. It enumerates inter-point difference vectors in
// bands of increasing onset distance, splits the maximal translatable
// pattern of each vector wherever consecutive onsets are further apart
// than a configurable bound, and expands every distinct pattern shape
// into its full translational equivalence class.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"math/big"
	"time"

	"golang.org/x/time/rate"

	"github.com/otsob/musii-kit/pointset"
)

// ErrInvalidMaxIOI is returned by New when the inter-onset bound is
// negative or not a finite number.
type ErrInvalidMaxIOI struct {
	MaxIOI float64
}

func (e *ErrInvalidMaxIOI) Error() string {
	return fmt.Sprintf("max inter-onset interval must be finite and non-negative: %v", e.MaxIOI)
}

var errStopIteration = errors.New("stop iteration")

// Options for pattern discovery.
type Options struct {
	// Parallelism is the number of workers used to collect difference
	// vectors. Values below one run the collection sequentially. The
	// discovered classes do not depend on this setting.
	Parallelism int

	// Logger for progress reporting. No logging when nil.
	Logger *slog.Logger
}

// DefaultOptions for pattern discovery.
var DefaultOptions = Options{
	Parallelism: 1,
}

// SiatecC discovers the repeated patterns of a point set as translational
// equivalence classes. The maximum inter-onset interval bounds the time
// gap between consecutive points of a discovered pattern, which keeps
// pattern enumeration output-sensitive on long inputs.
type SiatecC struct {
	maxIOI *big.Rat
	opts   Options
}

// New returns a discoverer with the given maximum inter-onset interval.
func New(maxIOI float64, optFns ...func(o *Options)) (*SiatecC, error) {
	r := new(big.Rat)
	if maxIOI < 0 || r.SetFloat64(maxIOI) == nil {
		return nil, &ErrInvalidMaxIOI{MaxIOI: maxIOI}
	}
	return newSiatecC(r, optFns), nil
}

// NewExact is like New but takes the maximum inter-onset interval as an
// exact rational, for bounds that have no float64 representation.
func NewExact(maxIOI *big.Rat, optFns ...func(o *Options)) (*SiatecC, error) {
	if maxIOI == nil || maxIOI.Sign() < 0 {
		f := math.NaN()
		if maxIOI != nil {
			f, _ = maxIOI.Float64()
		}
		return nil, &ErrInvalidMaxIOI{MaxIOI: f}
	}
	return newSiatecC(new(big.Rat).Set(maxIOI), optFns), nil
}

func newSiatecC(maxIOI *big.Rat, optFns []func(o *Options)) *SiatecC {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &SiatecC{maxIOI: maxIOI, opts: opts}
}

// MaxIOI returns a copy of the maximum inter-onset interval.
func (s *SiatecC) MaxIOI() *big.Rat {
	return new(big.Rat).Set(s.maxIOI)
}

// ComputeTECs discovers all translational equivalence classes of the
// point set and returns them in deterministic order.
func (s *SiatecC) ComputeTECs(ctx context.Context, ps *pointset.PointSet) ([]TEC, error) {
	var tecs []TEC
	err := s.ComputeTECsToSink(ctx, ps, func(tec TEC) error {
		tecs = append(tecs, tec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tecs, nil
}

// ComputeTECsToSink discovers translational equivalence classes and
// hands each one to the sink as soon as it is consolidated. The sink is
// invoked sequentially from the calling goroutine; a sink error aborts
// the discovery and is returned as is. The classes and their order are
// the same as from ComputeTECs.
func (s *SiatecC) ComputeTECsToSink(ctx context.Context, ps *pointset.PointSet, sink func(tec TEC) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ps == nil || ps.Len() == 0 {
		return nil
	}

	sw := newSweep(ps)
	cons := newConsolidator()
	progress := rate.Sometimes{Interval: 5 * time.Second}
	bands, emitted := 0, 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		bound, ok := sw.nextWindow(s.maxIOI)
		if !ok {
			break
		}

		entries, err := sw.collect(ctx, bound, s.opts.Parallelism)
		if err != nil {
			return err
		}
		bands++
		sortEntries(entries)

		for start := 0; start < len(entries); {
			end := start + 1
			for end < len(entries) && entries[end].vec.Equal(entries[start].vec) {
				end++
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			for _, srcs := range sw.segmentRun(entries[start:end], s.maxIOI) {
				segment, err := sw.pattern(srcs)
				if err != nil {
					return err
				}
				tec, fresh, err := cons.consolidate(ctx, segment, ps)
				if err != nil {
					return err
				}
				if !fresh {
					continue
				}
				if err := sink(tec); err != nil {
					return err
				}
				emitted++
			}
			start = end
		}

		if s.opts.Logger != nil {
			progress.Do(func() {
				s.opts.Logger.DebugContext(ctx, "pattern discovery progress",
					slog.Int("bands", bands),
					slog.Int("tecs", emitted))
			})
		}

		// A zero bound admits only simultaneities; later bands stay empty.
		if s.maxIOI.Sign() == 0 {
			break
		}
	}

	if s.opts.Logger != nil {
		s.opts.Logger.DebugContext(ctx, "pattern discovery completed",
			slog.Int("points", ps.Len()),
			slog.Int("bands", bands),
			slog.Int("tecs", emitted))
	}
	return nil
}

// ComputeTECsStream discovers translational equivalence classes as an
// iterator. Iteration can be abandoned early; a discovery error is
// yielded as the final element.
func (s *SiatecC) ComputeTECsStream(ctx context.Context, ps *pointset.PointSet) iter.Seq2[TEC, error] {
	return func(yield func(TEC, error) bool) {
		err := s.ComputeTECsToSink(ctx, ps, func(tec TEC) error {
			if !yield(tec, nil) {
				return errStopIteration
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopIteration) {
			yield(TEC{}, err)
		}
	}
}
