package notebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celldown/celldown/pkg/document"
)

func newStoreWith(n int) (*Store, []*document.Cell) {
	s := NewStore()
	cells := make([]*document.Cell, n)
	for i := range cells {
		cells[i] = document.NewCodeCell()
		s.Append(cells[i])
	}
	return s, cells
}

func ids(s *Store) []string {
	var result []string
	for _, c := range s.Cells() {
		result = append(result, c.ID())
	}
	return result
}

func TestStore_InsertAt(t *testing.T) {
	s, cells := newStoreWith(2)

	middle := document.NewTextCell(document.EditingMode)
	s.InsertAt(middle, 1)
	assert.Equal(t, []string{cells[0].ID(), middle.ID(), cells[1].ID()}, ids(s))

	// Beyond the end clamps to append.
	tail := document.NewCodeCell()
	s.InsertAt(tail, 99)
	assert.Equal(t, tail.ID(), s.At(s.Len()-1).ID())

	// Negative index appends as well.
	tail2 := document.NewCodeCell()
	s.InsertAt(tail2, -1)
	assert.Equal(t, tail2.ID(), s.At(s.Len()-1).ID())

	// Duplicate id is a no-op.
	before := s.Len()
	s.InsertAt(middle, 0)
	assert.Equal(t, before, s.Len())
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	s, cells := newStoreWith(2)

	assert.True(t, s.Delete(cells[0].ID()))
	assert.False(t, s.Delete(cells[0].ID()))
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get(cells[0].ID())
	assert.False(t, ok)
}

func TestStore_MoveBoundaries(t *testing.T) {
	s, cells := newStoreWith(3)

	assert.False(t, s.Move(cells[0].ID(), Up))
	assert.False(t, s.Move(cells[2].ID(), Down))
	assert.False(t, s.Move("missing", Up))

	assert.True(t, s.Move(cells[1].ID(), Up))
	assert.Equal(t, []string{cells[1].ID(), cells[0].ID(), cells[2].ID()}, ids(s))

	assert.True(t, s.Move(cells[1].ID(), Down))
	assert.Equal(t, []string{cells[0].ID(), cells[1].ID(), cells[2].ID()}, ids(s))
}

func TestStore_Reorder(t *testing.T) {
	s, cells := newStoreWith(4)

	assert.False(t, s.Reorder(1, 1))
	assert.False(t, s.Reorder(-1, 2))
	assert.False(t, s.Reorder(0, 4))

	require.True(t, s.Reorder(0, 2))
	assert.Equal(t, []string{cells[1].ID(), cells[2].ID(), cells[0].ID(), cells[3].ID()}, ids(s))

	require.True(t, s.Reorder(3, 0))
	assert.Equal(t, []string{cells[3].ID(), cells[1].ID(), cells[2].ID(), cells[0].ID()}, ids(s))
}

func TestStore_FocusedFallbacks(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Focused())

	s2, cells := newStoreWith(2)
	assert.Equal(t, cells[0].ID(), s2.Focused().ID())

	s2.SetFocused(cells[1].ID())
	assert.Equal(t, cells[1].ID(), s2.Focused().ID())

	// Focusing an unknown id changes nothing.
	s2.SetFocused("missing")
	assert.Equal(t, cells[1].ID(), s2.Focused().ID())

	// Deleting the focused cell falls back to the first cell.
	s2.Delete(cells[1].ID())
	assert.Equal(t, cells[0].ID(), s2.Focused().ID())
	assert.Empty(t, s2.FocusedID())
}

func TestStore_OrderInvariantUnderMutation(t *testing.T) {
	s, cells := newStoreWith(5)

	s.Move(cells[2].ID(), Up)
	s.Reorder(0, 4)
	s.Delete(cells[1].ID())
	s.InsertAt(document.NewTextCell(document.EditingMode), 2)
	s.Reorder(3, 1)

	// Creations minus deletions.
	assert.Equal(t, 5, s.Len())

	seen := map[string]bool{}
	for _, id := range ids(s) {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
