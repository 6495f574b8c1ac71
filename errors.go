package musiikit

import (
	"errors"
	"fmt"

	"github.com/otsob/musii-kit/discovery"
	"github.com/otsob/musii-kit/pointset"
	"github.com/otsob/musii-kit/search"
)

var (
	// ErrEmptyQuery is returned when a query pattern has no points.
	ErrEmptyQuery = errors.New("query pattern is empty")
)

// ErrInvalidMaxIOI indicates a maximum inter-onset interval that is
// negative or not a finite number.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidMaxIOI struct {
	MaxIOI float64
	cause  error
}

func (e *ErrInvalidMaxIOI) Error() string {
	return fmt.Sprintf("invalid max inter-onset interval: %v", e.MaxIOI)
}

func (e *ErrInvalidMaxIOI) Unwrap() error { return e.cause }

// ErrQueryTooLarge indicates a query pattern with more points than the
// searched point set.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrQueryTooLarge struct {
	QueryLen int
	SetLen   int
	cause    error
}

func (e *ErrQueryTooLarge) Error() string {
	return fmt.Sprintf("query cannot be longer than the point set: %d > %d", e.QueryLen, e.SetLen)
}

func (e *ErrQueryTooLarge) Unwrap() error { return e.cause }

// ErrMalformedInput indicates an input buffer that cannot be converted
// into points. Row is the offending row index, or -1 when the value did
// not come from a row buffer.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrMalformedInput struct {
	Row   int
	cause error
}

func (e *ErrMalformedInput) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("malformed input at row %d", e.Row)
	}
	return "malformed input"
}

func (e *ErrMalformedInput) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Empty query unification.
	if errors.Is(err, search.ErrEmptyQuery) || errors.Is(err, pointset.ErrEmptyPattern) {
		return fmt.Errorf("%w: %w", ErrEmptyQuery, err)
	}

	// Argument normalization.
	var qtl *search.ErrQueryTooLarge
	if errors.As(err, &qtl) {
		return &ErrQueryTooLarge{QueryLen: qtl.QueryLen, SetLen: qtl.SetLen, cause: err}
	}
	var imi *discovery.ErrInvalidMaxIOI
	if errors.As(err, &imi) {
		return &ErrInvalidMaxIOI{MaxIOI: imi.MaxIOI, cause: err}
	}

	// Buffer normalization.
	var rb *pointset.ErrRaggedBuffer
	if errors.As(err, &rb) {
		return &ErrMalformedInput{Row: rb.Row, cause: err}
	}
	var nfc *pointset.ErrNonFiniteCoordinate
	if errors.As(err, &nfc) {
		return &ErrMalformedInput{Row: nfc.Row, cause: err}
	}

	return err
}
