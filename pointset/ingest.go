package pointset

import "math"

// Buffer ingestion converts rectangular numeric buffers produced by
// external tooling into points. The buffer convention has one point per
// row with column 2 holding the exact onset time and column 1 the pitch;
// column 0 is producer-specific and ignored here. The two-column variant
// holds plain (onset, pitch) pairs.

// FromRows builds a point set from a buffer with at least three columns
// per row, reading the onset from column 2 and the pitch from column 1.
func FromRows(rows [][]float64) (*PointSet, error) {
	points, err := pointsFromColumns(rows, 2, 1, 3)
	if err != nil {
		return nil, err
	}
	return New(points), nil
}

// FromPairs builds a point set from rows of (onset, pitch) pairs.
func FromPairs(rows [][]float64) (*PointSet, error) {
	points, err := pointsFromColumns(rows, 0, 1, 2)
	if err != nil {
		return nil, err
	}
	return New(points), nil
}

// PatternFromRows builds a pattern from a buffer with at least three
// columns per row, using the same column convention as FromRows. Row
// order becomes pattern order.
func PatternFromRows(rows [][]float64) (Pattern, error) {
	points, err := pointsFromColumns(rows, 2, 1, 3)
	if err != nil {
		return Pattern{}, err
	}
	return NewPattern(points)
}

// PatternFromPairs builds a pattern from rows of (onset, pitch) pairs.
// Row order becomes pattern order.
func PatternFromPairs(rows [][]float64) (Pattern, error) {
	points, err := pointsFromColumns(rows, 0, 1, 2)
	if err != nil {
		return Pattern{}, err
	}
	return NewPattern(points)
}

func pointsFromColumns(rows [][]float64, onsetCol, pitchCol, minCols int) ([]Point, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyBuffer
	}

	points := make([]Point, 0, len(rows))
	for i, row := range rows {
		if len(row) < minCols {
			return nil, &ErrRaggedBuffer{Row: i, Cols: len(row), Want: minCols}
		}

		onset := row[onsetCol]
		pitch := row[pitchCol]

		var p Point
		if p.onset.SetFloat64(onset) == nil {
			return nil, &ErrNonFiniteCoordinate{Row: i, Axis: AxisOnset, Value: onset}
		}
		if math.IsNaN(pitch) || math.IsInf(pitch, 0) {
			return nil, &ErrNonFiniteCoordinate{Row: i, Axis: AxisPitch, Value: pitch}
		}
		p.pitch = pitch

		points = append(points, p)
	}

	return points, nil
}
