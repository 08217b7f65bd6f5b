package notebook

import (
	"github.com/celldown/celldown/pkg/document"
)

// Direction of a single-step cell move.
type Direction int

const (
	Up Direction = iota + 1
	Down
)

// Store is the ordered collection of cell records. Order is document
// order: it defines both run-all order and serialized order. No two cells
// share an id; operations targeting an absent id are no-ops because UI
// double-fires are expected.
type Store struct {
	cells   []*document.Cell
	focused string
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Len() int { return len(s.cells) }

// Cells returns the cell records in document order. The slice is a copy;
// the records are shared.
func (s *Store) Cells() []*document.Cell {
	result := make([]*document.Cell, len(s.cells))
	copy(result, s.cells)
	return result
}

func (s *Store) At(index int) *document.Cell {
	if index < 0 || index >= len(s.cells) {
		return nil
	}
	return s.cells[index]
}

func (s *Store) Get(id string) (*document.Cell, bool) {
	if i := s.Index(id); i >= 0 {
		return s.cells[i], true
	}
	return nil, false
}

// Index returns the position of the cell with id, or -1.
func (s *Store) Index(id string) int {
	for i, c := range s.cells {
		if c.ID() == id {
			return i
		}
	}
	return -1
}

// Append adds the cell at the end.
func (s *Store) Append(cell *document.Cell) {
	s.InsertAt(cell, len(s.cells))
}

// InsertAt inserts the cell before the cell currently at index. Indices
// beyond the end clamp to append; negative indices append as well.
// Inserting a duplicate id is a no-op.
func (s *Store) InsertAt(cell *document.Cell, index int) {
	if cell == nil || s.Index(cell.ID()) >= 0 {
		return
	}
	if index < 0 || index > len(s.cells) {
		index = len(s.cells)
	}
	s.cells = append(s.cells, nil)
	copy(s.cells[index+1:], s.cells[index:])
	s.cells[index] = cell
}

// Delete removes the cell with id and reports whether it was present.
// Deleting an absent id is not an error.
func (s *Store) Delete(id string) bool {
	i := s.Index(id)
	if i < 0 {
		return false
	}
	s.cells = append(s.cells[:i], s.cells[i+1:]...)
	if s.focused == id {
		s.focused = ""
	}
	return true
}

// Move swaps the cell with its immediate neighbor. At the boundary it is
// a no-op: the first cell cannot move up, the last cannot move down.
func (s *Store) Move(id string, dir Direction) bool {
	i := s.Index(id)
	if i < 0 {
		return false
	}

	j := i
	switch dir {
	case Up:
		j = i - 1
	case Down:
		j = i + 1
	}
	if j == i || j < 0 || j >= len(s.cells) {
		return false
	}

	s.cells[i], s.cells[j] = s.cells[j], s.cells[i]
	return true
}

// Reorder implements drag-drop: removes the cell at oldIndex and
// reinserts it at newIndex, preserving all other relative orders. Equal
// or out-of-range indices are a no-op.
func (s *Store) Reorder(oldIndex, newIndex int) bool {
	n := len(s.cells)
	if oldIndex == newIndex || oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n {
		return false
	}

	cell := s.cells[oldIndex]
	rest := append(s.cells[:oldIndex], s.cells[oldIndex+1:]...)
	rest = append(rest, nil)
	copy(rest[newIndex+1:], rest[newIndex:])
	rest[newIndex] = cell
	s.cells = rest
	return true
}

// SetFocused records the cell whose editing surface gained focus most
// recently.
func (s *Store) SetFocused(id string) {
	if s.Index(id) >= 0 {
		s.focused = id
	}
}

// FocusedID returns the id of the most recently focused cell without any
// fallback, or "" when nothing is (or remains) focused.
func (s *Store) FocusedID() string {
	if s.focused != "" && s.Index(s.focused) >= 0 {
		return s.focused
	}
	return ""
}

// Focused returns the most recently focused cell, falling back to the
// first cell if none has focus, and nil if the store is empty.
func (s *Store) Focused() *document.Cell {
	if s.focused != "" {
		if c, ok := s.Get(s.focused); ok {
			return c
		}
	}
	if len(s.cells) > 0 {
		return s.cells[0]
	}
	return nil
}
