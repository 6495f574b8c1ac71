package patterns

import (
	"errors"
	"iter"
	"slices"

	"github.com/otsob/musii-kit/pointset"
)

var (
	// ErrUnknownPiece is returned when a piece name does not occur in a set.
	ErrUnknownPiece = errors.New("unknown piece")

	// ErrDuplicatePiece is returned when a piece name is added to a set twice.
	ErrDuplicatePiece = errors.New("duplicate piece")
)

// Item pairs one piece with the pattern analyses annotated for it.
type Item struct {
	Piece    *pointset.Piece
	Patterns []*Occurrences
}

// PointCount returns the number of points in the piece.
func (it *Item) PointCount() int {
	return it.Piece.Len()
}

// PatternCount returns the number of occurrence groups annotated for
// the piece.
func (it *Item) PatternCount() int {
	return len(it.Patterns)
}

// Set is a collection of pieces and their pattern analyses, keyed by
// piece name. Iteration order is insertion order; PieceNames reports
// names in sorted order.
type Set struct {
	items   []*Item
	byPiece map[string]*Item
}

// NewSet returns an empty pattern set.
func NewSet() *Set {
	return &Set{byPiece: make(map[string]*Item)}
}

// Add inserts a piece and its pattern analyses. The piece name must
// not already occur in the set.
func (s *Set) Add(piece *pointset.Piece, occurrences ...*Occurrences) error {
	if _, ok := s.byPiece[piece.Name]; ok {
		return ErrDuplicatePiece
	}
	item := &Item{Piece: piece, Patterns: slices.Clone(occurrences)}
	s.items = append(s.items, item)
	s.byPiece[piece.Name] = item
	return nil
}

// AddPatterns appends pattern analyses to an already added piece.
func (s *Set) AddPatterns(piece string, occurrences ...*Occurrences) error {
	item, ok := s.byPiece[piece]
	if !ok {
		return ErrUnknownPiece
	}
	item.Patterns = append(item.Patterns, occurrences...)
	return nil
}

// Remove deletes the named piece and its patterns from the set,
// reporting whether it was present.
func (s *Set) Remove(piece string) bool {
	item, ok := s.byPiece[piece]
	if !ok {
		return false
	}
	delete(s.byPiece, piece)
	s.items = slices.DeleteFunc(s.items, func(it *Item) bool { return it == item })
	return true
}

// Len returns the number of pieces in the set.
func (s *Set) Len() int {
	return len(s.items)
}

// At returns the item at position i in insertion order.
func (s *Set) At(i int) *Item {
	return s.items[i]
}

// Item returns the analyses for the named piece.
func (s *Set) Item(piece string) (*Item, bool) {
	item, ok := s.byPiece[piece]
	return item, ok
}

// PieceNames returns all piece names in sorted order.
func (s *Set) PieceNames() []string {
	names := make([]string, 0, len(s.items))
	for _, item := range s.items {
		names = append(names, item.Piece.Name)
	}
	slices.Sort(names)
	return names
}

// All iterates over the items in insertion order.
func (s *Set) All() iter.Seq[*Item] {
	return func(yield func(*Item) bool) {
		for _, item := range s.items {
			if !yield(item) {
				return
			}
		}
	}
}
