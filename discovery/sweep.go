package discovery

import (
	"cmp"
	"context"
	"math/big"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/otsob/musii-kit/pointset"
)

// collectChunk is the number of source points handed to one worker when
// a band is collected in parallel.
const collectChunk = 64

// vecEntry records one inter-point difference vector together with the
// index of its source point.
type vecEntry struct {
	vec pointset.Vector
	src int
}

// sweep enumerates the difference vectors of a sorted point set in bands
// of increasing onset distance. Each source point keeps a cursor to its
// next unvisited target, so every ordered pair is produced exactly once
// across all bands.
type sweep struct {
	points []pointset.Point
	onsets []*big.Rat
	next   []int
}

func newSweep(ps *pointset.PointSet) *sweep {
	points := ps.Points()
	onsets := make([]*big.Rat, len(points))
	next := make([]int, len(points))
	for i, p := range points {
		onsets[i] = p.Onset()
		next[i] = i + 1
	}
	return &sweep{points: points, onsets: onsets, next: next}
}

// nextWindow returns the upper onset-distance bound of the next band to
// collect: the smallest positive multiple of the band width that covers
// the smallest pending onset difference. The second return is false once
// every pair has been consumed. A zero width degenerates to the single
// window of simultaneities.
func (sw *sweep) nextWindow(width *big.Rat) (*big.Rat, bool) {
	var minD *big.Rat
	d := new(big.Rat)
	for i, j := range sw.next {
		if j >= len(sw.points) {
			continue
		}
		d.Sub(sw.onsets[j], sw.onsets[i])
		if minD == nil || d.Cmp(minD) < 0 {
			minD = new(big.Rat).Set(d)
		}
	}
	if minD == nil {
		return nil, false
	}
	if width.Sign() == 0 || minD.Cmp(width) <= 0 {
		return new(big.Rat).Set(width), true
	}
	return ratCeilMultiple(minD, width), true
}

// ratCeilMultiple returns the smallest integer multiple of width that is
// at least d. Both arguments must be positive.
func ratCeilMultiple(d, width *big.Rat) *big.Rat {
	q := new(big.Rat).Quo(d, width)
	n := new(big.Int).Sub(q.Denom(), big.NewInt(1))
	n.Add(n, q.Num())
	n.Quo(n, q.Denom())
	return new(big.Rat).Mul(new(big.Rat).SetInt(n), width)
}

// collect advances every cursor through the pairs whose onset difference
// does not exceed bound and returns their difference vectors. With
// parallelism above one the source points are partitioned across
// workers; cursors are per source point, so the partitions are
// independent.
func (sw *sweep) collect(ctx context.Context, bound *big.Rat, parallelism int) ([]vecEntry, error) {
	n := len(sw.points)
	if parallelism <= 1 || n <= collectChunk {
		return sw.collectRange(0, n, bound), nil
	}

	chunks := (n + collectChunk - 1) / collectChunk
	parts := make([][]vecEntry, chunks)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for c := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lo := c * collectChunk
			parts[c] = sw.collectRange(lo, min(lo+collectChunk, n), bound)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, part := range parts {
		total += len(part)
	}
	entries := make([]vecEntry, 0, total)
	for _, part := range parts {
		entries = append(entries, part...)
	}
	return entries, nil
}

func (sw *sweep) collectRange(lo, hi int, bound *big.Rat) []vecEntry {
	var entries []vecEntry
	var d big.Rat
	n := len(sw.points)
	for i := lo; i < hi; i++ {
		j := sw.next[i]
		for j < n {
			d.Sub(sw.onsets[j], sw.onsets[i])
			if d.Cmp(bound) > 0 {
				break
			}
			entries = append(entries, vecEntry{vec: sw.points[j].Sub(sw.points[i]), src: i})
			j++
		}
		sw.next[i] = j
	}
	return entries
}

// sortEntries orders a band lexicographically by vector and then by
// source index, so that equal vectors form runs of ascending sources.
func sortEntries(entries []vecEntry) {
	slices.SortFunc(entries, func(a, b vecEntry) int {
		if c := a.vec.Cmp(b.vec); c != 0 {
			return c
		}
		return cmp.Compare(a.src, b.src)
	})
}

// segmentRun splits the ascending source points of one vector run into
// segments wherever two consecutive onsets are more than maxIOI apart.
func (sw *sweep) segmentRun(run []vecEntry, maxIOI *big.Rat) [][]int {
	var segs [][]int
	seg := []int{run[0].src}
	var gap big.Rat
	for k := 1; k < len(run); k++ {
		prev, cur := run[k-1].src, run[k].src
		gap.Sub(sw.onsets[cur], sw.onsets[prev])
		if gap.Cmp(maxIOI) > 0 {
			segs = append(segs, seg)
			seg = []int{cur}
			continue
		}
		seg = append(seg, cur)
	}
	return append(segs, seg)
}

// pattern builds a pattern from source point indices in ascending order.
func (sw *sweep) pattern(srcs []int) (pointset.Pattern, error) {
	pts := make([]pointset.Point, len(srcs))
	for k, idx := range srcs {
		pts[k] = sw.points[idx]
	}
	return pointset.NewPattern(pts)
}
