package pointset

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBuffer is returned when an input buffer contains no rows.
	ErrEmptyBuffer = errors.New("point buffer is empty")

	// ErrEmptyPattern is returned when a pattern would contain no points.
	ErrEmptyPattern = errors.New("pattern must contain at least one point")
)

// Axis identifies one of the two point coordinates.
type Axis int

const (
	// AxisOnset is the exact onset-time axis.
	AxisOnset Axis = iota
	// AxisPitch is the real-valued pitch axis.
	AxisPitch
)

func (a Axis) String() string {
	switch a {
	case AxisOnset:
		return "onset"
	case AxisPitch:
		return "pitch"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// ErrRaggedBuffer indicates an input row with too few columns.
type ErrRaggedBuffer struct {
	Row  int
	Cols int
	Want int
}

func (e *ErrRaggedBuffer) Error() string {
	return fmt.Sprintf("row %d has %d columns, want at least %d", e.Row, e.Cols, e.Want)
}

// ErrNonFiniteCoordinate indicates a NaN or infinite input coordinate.
// Row is -1 when the error did not originate from a buffer row.
type ErrNonFiniteCoordinate struct {
	Row   int
	Axis  Axis
	Value float64
}

func (e *ErrNonFiniteCoordinate) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("row %d: non-finite %s coordinate %v", e.Row, e.Axis, e.Value)
	}
	return fmt.Sprintf("non-finite %s coordinate %v", e.Axis, e.Value)
}
