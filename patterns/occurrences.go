package patterns

// Occurrences groups a pattern with all of its occurrences in a piece.
// The prototype pattern is held separately from its occurrences, which
// typically include a copy of the prototype itself.
type Occurrences struct {
	Piece       string
	Pattern     Pattern
	Occurrences []Pattern
}

// NewOccurrences returns an occurrence group for the given piece.
func NewOccurrences(piece string, pattern Pattern, occurrences []Pattern) *Occurrences {
	return &Occurrences{Piece: piece, Pattern: pattern, Occurrences: occurrences}
}

// Len returns the number of patterns in the group, counting the
// prototype pattern followed by each occurrence.
func (o *Occurrences) Len() int {
	return 1 + len(o.Occurrences)
}

// At returns the pattern at the given position: index 0 is the
// prototype, positions 1..Len()-1 are the occurrences in order.
func (o *Occurrences) At(i int) Pattern {
	if i == 0 {
		return o.Pattern
	}
	return o.Occurrences[i-1]
}

// All returns the prototype pattern followed by all occurrences as a
// single slice.
func (o *Occurrences) All() []Pattern {
	out := make([]Pattern, 0, o.Len())
	out = append(out, o.Pattern)
	out = append(out, o.Occurrences...)
	return out
}
