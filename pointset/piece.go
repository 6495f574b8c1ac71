package pointset

// DType identifies the numeric type the components of a serialized
// point set are declared with. It has no effect on in-memory
// arithmetic; it is carried so that documents round-trip unchanged.
type DType int

const (
	// DTypeFloat marks floating-point components. The zero value.
	DTypeFloat DType = iota
	// DTypeInt marks integral components.
	DTypeInt
)

func (d DType) String() string {
	if d == DTypeInt {
		return "int"
	}
	return "float"
}

// ParseDType maps a serialized dtype name to a DType. Unrecognized
// names fall back to DTypeFloat, matching the tolerant readers of the
// musii-kit document formats.
func ParseDType(s string) DType {
	if s == "int" {
		return DTypeInt
	}
	return DTypeFloat
}

// PitchType identifies the pitch numbering of a piece.
type PitchType int

const (
	// PitchUnknown is used when the numbering is not recorded.
	PitchUnknown PitchType = iota
	// PitchChromatic numbers pitches like MIDI (C4 = 60).
	PitchChromatic
	// PitchMorphetic numbers diatonic steps, aligned with MIDI at C4.
	PitchMorphetic
)

func (p PitchType) String() string {
	switch p {
	case PitchChromatic:
		return "chromatic"
	case PitchMorphetic:
		return "morphetic"
	}
	return ""
}

// ParsePitchType maps a serialized pitch-type name to a PitchType.
// Unrecognized names map to PitchUnknown.
func ParsePitchType(s string) PitchType {
	switch s {
	case "chromatic":
		return PitchChromatic
	case "morphetic":
		return PitchMorphetic
	}
	return PitchUnknown
}

// Piece couples a point set with the score-level metadata that
// point-set documents carry: the piece name, the declared component
// type, the pitch numbering, the length of a quarter note in onset
// time units and the onset positions of measure lines.
type Piece struct {
	Name          string
	DType         DType
	PitchType     PitchType
	QuarterLength float64
	MeasureLines  []float64
	Set           *PointSet
}

// NewPiece returns a piece with the given name and points and the
// default metadata (float components, quarter-note length 1).
func NewPiece(name string, set *PointSet) *Piece {
	return &Piece{Name: name, QuarterLength: 1, Set: set}
}

// Len returns the number of points in the piece, zero when no point
// set is attached.
func (p *Piece) Len() int {
	if p == nil || p.Set == nil {
		return 0
	}
	return p.Set.Len()
}
