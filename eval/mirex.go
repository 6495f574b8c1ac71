// Package eval scores pattern-discovery output against ground-truth
// analyses with the metrics used in the MIREX task on discovery of
// repeated themes and sections: cardinality scores, establishment and
// occurrence precision/recall and the three-layer F1. Evaluation runs
// can be persisted to an embedded SQLite database for comparison
// across algorithm revisions.
package eval

import (
	"math"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/otsob/musii-kit/patterns"
	"github.com/otsob/musii-kit/pointset"
)

// FScore returns the harmonic mean of precision and recall, zero when
// both are zero.
func FScore(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// CardinalityScore returns the size of the intersection of the two
// patterns divided by the size of the larger one.
func CardinalityScore(groundTruth, found patterns.Pattern) float64 {
	ix := newInterner()
	return cardinality(ix.bitmap(groundTruth), ix.bitmap(found))
}

// ScoreMatrix returns the matrix of cardinality scores between every
// pattern of the ground-truth group (rows, prototype first) and every
// pattern of the found group (columns, prototype first).
func ScoreMatrix(groundTruth, found *patterns.Occurrences) [][]float64 {
	ix := newInterner()
	return scoreMatrix(ix.group(groundTruth), ix.group(found), cardinality)
}

// EstablishmentMatrix returns, for every pair of one ground-truth
// group (rows) and one found group (columns), the best cardinality
// score between any two of their patterns. An entry near one means
// the found group establishes the ground-truth pattern somewhere.
func EstablishmentMatrix(groundTruth, found []*patterns.Occurrences) [][]float64 {
	return newStudy(groundTruth, found).establishment()
}

// EstablishmentPrecision is the mean over found groups of the best
// establishment score any ground-truth group gives them.
func EstablishmentPrecision(establishment [][]float64) float64 {
	return mean(columnMaxima(establishment))
}

// EstablishmentRecall is the mean over ground-truth groups of the best
// establishment score any found group gives them.
func EstablishmentRecall(establishment [][]float64) float64 {
	return mean(rowMaxima(establishment))
}

// EstablishmentF1 combines EstablishmentPrecision and
// EstablishmentRecall.
func EstablishmentF1(establishment [][]float64) float64 {
	return FScore(EstablishmentPrecision(establishment), EstablishmentRecall(establishment))
}

// LayerTwoFScoreMatrix returns, for every pair of one ground-truth
// group (rows) and one found group (columns), the F1 of matching their
// occurrences to each other under the per-pattern F-score. This is the
// middle layer of the three-layer metric.
func LayerTwoFScoreMatrix(groundTruth, found []*patterns.Occurrences) [][]float64 {
	return newStudy(groundTruth, found).layerTwo()
}

// ThreeLayerPrecision is the mean over found groups of their best
// layer-two F-score.
func ThreeLayerPrecision(layerTwo [][]float64) float64 {
	return mean(columnMaxima(layerTwo))
}

// ThreeLayerRecall is the mean over ground-truth groups of their best
// layer-two F-score.
func ThreeLayerRecall(layerTwo [][]float64) float64 {
	return mean(rowMaxima(layerTwo))
}

// ThreeLayerF1 combines ThreeLayerPrecision and ThreeLayerRecall.
func ThreeLayerF1(layerTwo [][]float64) float64 {
	return FScore(ThreeLayerPrecision(layerTwo), ThreeLayerRecall(layerTwo))
}

// PairIndex addresses one (ground truth, found) group pair.
type PairIndex struct {
	GroundTruth int
	Found       int
}

// OccurrenceIndices returns the group pairs whose establishment score
// reaches the threshold. Only these pairs take part in the occurrence
// metrics; the customary thresholds are 0.75 and 0.5.
func OccurrenceIndices(groundTruth, found []*patterns.Occurrences, threshold float64) []PairIndex {
	return indicesAtOrAbove(EstablishmentMatrix(groundTruth, found), threshold)
}

// OccurrencePrecision scores how precisely the found groups of the
// established pairs reproduce the ground-truth occurrences: for each
// pair the mean over found occurrences of their best cardinality
// score, reduced to the mean over the participating found groups of
// their best pair score. Zero when no pair is established.
func OccurrencePrecision(groundTruth, found []*patterns.Occurrences, pairs []PairIndex) float64 {
	return newStudy(groundTruth, found).occurrencePrecision(pairs)
}

// OccurrenceRecall is the counterpart of OccurrencePrecision over the
// ground-truth side of the established pairs.
func OccurrenceRecall(groundTruth, found []*patterns.Occurrences, pairs []PairIndex) float64 {
	return newStudy(groundTruth, found).occurrenceRecall(pairs)
}

// OccurrenceF1 combines OccurrencePrecision and OccurrenceRecall.
func OccurrenceF1(groundTruth, found []*patterns.Occurrences, pairs []PairIndex) float64 {
	s := newStudy(groundTruth, found)
	return FScore(s.occurrencePrecision(pairs), s.occurrenceRecall(pairs))
}

// interner assigns dense ids to points so that patterns become roaring
// bitmaps and intersection cardinalities come from bitmap ANDs. Ground
// truth and discovery output for one piece share most of their points,
// so the id space stays small.
type interner struct {
	ids map[string]uint32
}

func newInterner() *interner {
	return &interner{ids: make(map[string]uint32)}
}

func (ix *interner) id(p pointset.Point) uint32 {
	key := pointKey(p)
	id, ok := ix.ids[key]
	if !ok {
		id = uint32(len(ix.ids))
		ix.ids[key] = id
	}
	return id
}

func (ix *interner) bitmap(p patterns.Pattern) *roaring.Bitmap {
	bm := roaring.New()
	for _, pt := range p.Points.Points() {
		bm.Add(ix.id(pt))
	}
	return bm
}

// group interns every pattern of an occurrence group, prototype first.
func (ix *interner) group(occ *patterns.Occurrences) []*roaring.Bitmap {
	bms := make([]*roaring.Bitmap, occ.Len())
	for i := range bms {
		bms[i] = ix.bitmap(occ.At(i))
	}
	return bms
}

// pointKey folds negative zero pitch into positive zero so that keys
// agree with coordinate comparison.
func pointKey(p pointset.Point) string {
	bits := math.Float64bits(p.Pitch())
	if p.Pitch() == 0 {
		bits = 0
	}
	return p.Onset().RatString() + "|" + strconv.FormatUint(bits, 16)
}

// study holds the interned bitmaps of both datasets so that the
// matrix-valued metrics share one interning pass.
type study struct {
	groundTruth [][]*roaring.Bitmap
	found       [][]*roaring.Bitmap
}

func newStudy(groundTruth, found []*patterns.Occurrences) *study {
	ix := newInterner()
	s := &study{
		groundTruth: make([][]*roaring.Bitmap, len(groundTruth)),
		found:       make([][]*roaring.Bitmap, len(found)),
	}
	for i, occ := range groundTruth {
		s.groundTruth[i] = ix.group(occ)
	}
	for i, occ := range found {
		s.found[i] = ix.group(occ)
	}
	return s
}

func (s *study) establishment() [][]float64 {
	return s.groupMatrix(func(gt, found []*roaring.Bitmap) float64 {
		return matrixMax(scoreMatrix(gt, found, cardinality))
	})
}

func (s *study) layerTwo() [][]float64 {
	return s.groupMatrix(func(gt, found []*roaring.Bitmap) float64 {
		scores := scoreMatrix(gt, found, layerOneFScore)
		return FScore(mean(columnMaxima(scores)), mean(rowMaxima(scores)))
	})
}

func (s *study) occurrencePrecision(pairs []PairIndex) float64 {
	occ := s.occurrenceMatrix(pairs, columnMaxima)
	cols := uniqueColumns(pairs)
	if len(cols) == 0 {
		return 0
	}
	best := make([]float64, 0, len(cols))
	for _, col := range cols {
		m := 0.0
		for row := range occ {
			m = max(m, occ[row][col])
		}
		best = append(best, m)
	}
	return mean(best)
}

func (s *study) occurrenceRecall(pairs []PairIndex) float64 {
	occ := s.occurrenceMatrix(pairs, rowMaxima)
	rows := uniqueRows(pairs)
	if len(rows) == 0 {
		return 0
	}
	best := make([]float64, 0, len(rows))
	for _, row := range rows {
		best = append(best, matrixMax(occ[row:row+1]))
	}
	return mean(best)
}

// occurrenceMatrix fills, for each established pair, the mean of the
// per-occurrence maxima of the pair's score matrix. The summarize
// argument picks the direction: column maxima for precision, row
// maxima for recall.
func (s *study) occurrenceMatrix(pairs []PairIndex, summarize func([][]float64) []float64) [][]float64 {
	occ := make([][]float64, len(s.groundTruth))
	for i := range occ {
		occ[i] = make([]float64, len(s.found))
	}
	for _, pair := range pairs {
		scores := scoreMatrix(s.groundTruth[pair.GroundTruth], s.found[pair.Found], cardinality)
		occ[pair.GroundTruth][pair.Found] = mean(summarize(scores))
	}
	return occ
}

func (s *study) groupMatrix(score func(gt, found []*roaring.Bitmap) float64) [][]float64 {
	m := make([][]float64, len(s.groundTruth))
	for i, gt := range s.groundTruth {
		m[i] = make([]float64, len(s.found))
		for j, found := range s.found {
			m[i][j] = score(gt, found)
		}
	}
	return m
}

func cardinality(a, b *roaring.Bitmap) float64 {
	larger := max(a.GetCardinality(), b.GetCardinality())
	if larger == 0 {
		return 0
	}
	return float64(a.AndCardinality(b)) / float64(larger)
}

func layerOneFScore(gt, found *roaring.Bitmap) float64 {
	if gt.IsEmpty() || found.IsEmpty() {
		return 0
	}
	common := float64(gt.AndCardinality(found))
	return FScore(common/float64(found.GetCardinality()), common/float64(gt.GetCardinality()))
}

func scoreMatrix(gt, found []*roaring.Bitmap, score func(a, b *roaring.Bitmap) float64) [][]float64 {
	m := make([][]float64, len(gt))
	for i := range gt {
		m[i] = make([]float64, len(found))
		for j := range found {
			m[i][j] = score(gt[i], found[j])
		}
	}
	return m
}

func indicesAtOrAbove(m [][]float64, threshold float64) []PairIndex {
	var pairs []PairIndex
	for i, row := range m {
		for j, v := range row {
			if v >= threshold {
				pairs = append(pairs, PairIndex{GroundTruth: i, Found: j})
			}
		}
	}
	return pairs
}

func rowMaxima(m [][]float64) []float64 {
	maxima := make([]float64, len(m))
	for i, row := range m {
		for _, v := range row {
			maxima[i] = max(maxima[i], v)
		}
	}
	return maxima
}

func columnMaxima(m [][]float64) []float64 {
	if len(m) == 0 {
		return nil
	}
	maxima := make([]float64, len(m[0]))
	for _, row := range m {
		for j, v := range row {
			maxima[j] = max(maxima[j], v)
		}
	}
	return maxima
}

func matrixMax(m [][]float64) float64 {
	v := 0.0
	for _, row := range m {
		for _, x := range row {
			v = max(v, x)
		}
	}
	return v
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func uniqueRows(pairs []PairIndex) []int {
	return uniqueInts(pairs, func(p PairIndex) int { return p.GroundTruth })
}

func uniqueColumns(pairs []PairIndex) []int {
	return uniqueInts(pairs, func(p PairIndex) int { return p.Found })
}

func uniqueInts(pairs []PairIndex, pick func(PairIndex) int) []int {
	seen := make(map[int]struct{}, len(pairs))
	var out []int
	for _, p := range pairs {
		v := pick(p)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
