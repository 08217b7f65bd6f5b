package notebook

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celldown/celldown/internal/editor"
	"github.com/celldown/celldown/pkg/document"
)

func loadNotebook(t *testing.T, data string, events Events) *Notebook {
	t.Helper()
	n := New(Options{Events: events})
	n.Load(document.Parse([]byte(data)))
	t.Cleanup(func() {
		require.NoError(t, n.Close())
	})
	return n
}

func buffer(t *testing.T, n *Notebook, id string) *editor.Buffer {
	t.Helper()
	surface, ok := n.Editor(id)
	require.True(t, ok)
	return surface.(*editor.Buffer)
}

const twoCellDoc = `// [CODE STARTS]
echo one
// [CODE ENDS]

/* [TEXT]
some *markdown*
*/
`

func TestNotebook_Load(t *testing.T) {
	n := loadNotebook(t, twoCellDoc, Events{})

	cells := n.Cells()
	require.Len(t, cells, 2)
	assert.Equal(t, document.CodeKind, cells[0].Kind())
	assert.Equal(t, "echo one", n.Text(cells[0].ID()))
	assert.Equal(t, "some *markdown*", n.Text(cells[1].ID()))
}

func TestNotebook_EditInvalidatesExecution(t *testing.T) {
	var stateChanges int
	n := loadNotebook(t, twoCellDoc, Events{
		ExecutionStateChanged: func(*document.Cell) { stateChanges++ },
	})
	code := n.Cells()[0]

	n.RunCell(context.Background(), code.ID())
	require.True(t, code.Execution().Executed)
	assert.False(t, n.Stale(code.ID()))
	outputsBefore := code.Outputs()
	require.NotEmpty(t, outputsBefore)

	buffer(t, n, code.ID()).SetText("echo two")

	assert.False(t, code.Execution().Executed)
	assert.True(t, n.Stale(code.ID()))
	// Stale outputs stay visible until the next run overwrites them.
	assert.Equal(t, outputsBefore, code.Outputs())

	// Editing back to the executed text does not restore freshness.
	buffer(t, n, code.ID()).SetText("echo one")
	assert.True(t, n.Stale(code.ID()))

	assert.GreaterOrEqual(t, stateChanges, 2)
}

func TestNotebook_TextCellRunTogglesMode(t *testing.T) {
	var markups []string
	n := loadNotebook(t, twoCellDoc, Events{
		TextModeChanged: func(_ *document.Cell, markup string) {
			markups = append(markups, markup)
		},
	})
	text := n.Cells()[1]
	require.Equal(t, document.EditingMode, text.Mode())

	n.RunCell(context.Background(), text.ID())
	assert.Equal(t, document.RenderedMode, text.Mode())
	require.Len(t, markups, 1)
	assert.Contains(t, markups[0], "<em>markdown</em>")

	n.RunCell(context.Background(), text.ID())
	assert.Equal(t, document.EditingMode, text.Mode())
	require.Len(t, markups, 2)
	assert.Empty(t, markups[1])

	// No outputs and no execution state from text-cell runs.
	assert.Empty(t, text.Outputs())
	assert.False(t, text.Execution().Executed)
}

func TestNotebook_RunAllScopeOrdering(t *testing.T) {
	n := loadNotebook(t, `// [CODE STARTS]
VALUE=ready
// [CODE ENDS]

/* [TEXT]
interlude
*/

// [CODE STARTS]
echo "${VALUE:-missing}"
// [CODE ENDS]
`, Events{})

	n.RunAll(context.Background())

	reader := n.Cells()[2]
	require.Len(t, reader.Outputs(), 1)
	assert.Equal(t, "ready", reader.Outputs()[0].Text)

	n.Restart()
	assert.Empty(t, reader.Outputs())

	n.RunCell(context.Background(), reader.ID())
	require.Len(t, reader.Outputs(), 1)
	assert.Equal(t, "missing", reader.Outputs()[0].Text)
}

func TestNotebook_CutPasteOnlyCell(t *testing.T) {
	n := loadNotebook(t, "// [CODE STARTS]\necho solo\n// [CODE ENDS]\n", Events{})
	original := n.Cells()[0]

	// Nothing is focused; cut falls back to the first cell.
	require.True(t, n.Cut())
	assert.Zero(t, n.Len())

	pasted := n.Paste()
	require.NotNil(t, pasted)
	assert.Equal(t, 1, n.Len())
	assert.Equal(t, document.CodeKind, pasted.Kind())
	assert.Equal(t, "echo solo", n.Text(pasted.ID()))
	assert.NotEqual(t, original.ID(), pasted.ID())
}

func TestNotebook_PasteIsRepeatableAndAfterFocused(t *testing.T) {
	n := loadNotebook(t, twoCellDoc, Events{})
	code := n.Cells()[0]

	buffer(t, n, code.ID()).Focus()
	require.True(t, n.Copy())

	first := n.Paste()
	require.NotNil(t, first)
	second := n.Paste()
	require.NotNil(t, second)

	assert.Equal(t, 4, n.Len())
	assert.NotEqual(t, first.ID(), second.ID())

	// Both pasted right after the focused first cell.
	cells := n.Cells()
	assert.Equal(t, second.ID(), cells[1].ID())
	assert.Equal(t, first.ID(), cells[2].ID())
	assert.Equal(t, "echo one", n.Text(first.ID()))
}

func TestNotebook_PasteEmptyClipboard(t *testing.T) {
	n := loadNotebook(t, twoCellDoc, Events{})
	assert.Nil(t, n.Paste())
	assert.Equal(t, 2, n.Len())
}

func TestNotebook_DeleteIsSafeToRepeat(t *testing.T) {
	deleted := 0
	n := loadNotebook(t, twoCellDoc, Events{
		CellDeleted: func(*document.Cell, int) { deleted++ },
	})
	id := n.Cells()[0].ID()

	n.DeleteCell(id)
	n.DeleteCell(id)

	assert.Equal(t, 1, n.Len())
	assert.Equal(t, 1, deleted)
}

func TestNotebook_LifecycleEvents(t *testing.T) {
	var created, moved int
	n := loadNotebook(t, twoCellDoc, Events{
		CellCreated: func(*document.Cell, int) { created++ },
		CellMoved:   func(*document.Cell, int, int) { moved++ },
	})
	require.Equal(t, 2, created)

	cell := n.AddCell(document.TextKind, 1)
	require.NotNil(t, cell)
	assert.Equal(t, 3, created)
	assert.Equal(t, cell.ID(), n.Cells()[1].ID())

	assert.True(t, n.MoveCell(cell.ID(), Down))
	assert.True(t, n.Reorder(0, 2))
	assert.Equal(t, 2, moved)
	assert.False(t, n.Reorder(5, 0))
}

func TestNotebook_ExportRoundTrips(t *testing.T) {
	n := loadNotebook(t, twoCellDoc, Events{})

	exported := string(n.Export())
	assert.Equal(t, twoCellDoc, exported)

	// Run the code cell, then export with outputs.
	n.RunCell(context.Background(), n.Cells()[0].ID())
	exported = string(n.Export())
	assert.Contains(t, exported, "/* [OUTPUT]")
	assert.True(t, strings.Contains(exported, "\none\n"))
}

func TestStaleHelper(t *testing.T) {
	cell := document.NewCodeCell()
	assert.True(t, Stale(cell, "anything"))

	cell.MarkExecuted("echo hi")
	assert.False(t, Stale(cell, "echo hi"))
	assert.True(t, Stale(cell, "echo hi "))
}
