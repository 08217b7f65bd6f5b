package notebook

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/celldown/celldown/internal/editor"
	"github.com/celldown/celldown/internal/renderer"
	"github.com/celldown/celldown/internal/runner"
	"github.com/celldown/celldown/pkg/document"
)

// Events are the notifications the core exposes to the view layer. All
// fields are optional.
type Events struct {
	CellCreated func(cell *document.Cell, index int)
	CellDeleted func(cell *document.Cell, index int)
	CellMoved   func(cell *document.Cell, from, to int)

	// TextModeChanged fires on text-cell run. markup carries the sanitized
	// rendering when the cell switched to Rendered, and is empty when it
	// switched back to Editing.
	TextModeChanged func(cell *document.Cell, markup string)

	OutputAppended        func(cell *document.Cell, out document.Output)
	ExecutionStateChanged func(cell *document.Cell)
}

type Options struct {
	Engine   *runner.Engine
	Surfaces editor.Factory
	Renderer *renderer.Markdown
	Events   Events
	Logger   *zap.Logger
}

// Notebook binds the cell store, the editing surfaces, the execution
// engine and the clipboard into one document.
type Notebook struct {
	mu       sync.Mutex
	store    *Store
	editors  map[string]editor.Surface
	engine   *runner.Engine
	clip     *Clipboard
	markdown *renderer.Markdown

	newSurface editor.Factory
	events     Events
	logger     *zap.Logger
}

func New(opts Options) *Notebook {
	n := &Notebook{
		store:      NewStore(),
		editors:    make(map[string]editor.Surface),
		engine:     opts.Engine,
		clip:       NewClipboard(),
		markdown:   opts.Renderer,
		newSurface: opts.Surfaces,
		events:     opts.Events,
		logger:     opts.Logger,
	}
	if n.newSurface == nil {
		n.newSurface = func(initial string) editor.Surface {
			return editor.NewBuffer(initial)
		}
	}
	if n.markdown == nil {
		n.markdown = renderer.NewMarkdown()
	}
	if n.logger == nil {
		n.logger = zap.NewNop()
	}
	if n.engine == nil {
		n.engine = runner.NewEngine(runner.Options{
			Logger: n.logger,
			Events: runner.Events{
				OutputAppended:        opts.Events.OutputAppended,
				ExecutionStateChanged: opts.Events.ExecutionStateChanged,
			},
		})
	}
	return n
}

// Load replaces the notebook content with the given snapshots, typically
// straight from document.Parse.
func (n *Notebook) Load(cells []document.Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, surface := range n.editors {
		_ = surface.Dispose()
		delete(n.editors, id)
	}
	n.store = NewStore()

	for _, snap := range cells {
		n.attachLocked(snap.Cell, snap.Text, n.store.Len())
	}
}

// Engine returns the notebook's execution engine.
func (n *Notebook) Engine() *runner.Engine { return n.engine }

func (n *Notebook) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Len()
}

func (n *Notebook) Cells() []*document.Cell {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Cells()
}

func (n *Notebook) Cell(id string) (*document.Cell, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Get(id)
}

// Editor returns the editing surface for a cell id.
func (n *Notebook) Editor(id string) (editor.Surface, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	surface, ok := n.editors[id]
	return surface, ok
}

// Text returns the live text of a cell, or "" for an unknown id.
func (n *Notebook) Text(id string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.textLocked(id)
}

func (n *Notebook) textLocked(id string) string {
	if surface, ok := n.editors[id]; ok {
		return surface.Text()
	}
	return ""
}

// AddCell creates a cell of the given kind before index (clamped to
// append) with an empty editing surface.
func (n *Notebook) AddCell(kind document.CellKind, index int) *document.Cell {
	var cell *document.Cell
	switch kind {
	case document.CodeKind:
		cell = document.NewCodeCell()
	case document.TextKind:
		cell = document.NewTextCell(document.EditingMode)
	default:
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.attachLocked(cell, "", index)
	return cell
}

func (n *Notebook) attachLocked(cell *document.Cell, text string, index int) {
	n.store.InsertAt(cell, index)

	surface := n.newSurface(text)
	n.editors[cell.ID()] = surface

	id := cell.ID()
	surface.OnContentChanged(func(newText string) {
		n.contentChanged(id, newText)
	})
	surface.OnFocusGained(func() {
		n.focusGained(id)
	})

	if n.events.CellCreated != nil {
		n.events.CellCreated(cell, n.store.Index(id))
	}
}

func (n *Notebook) contentChanged(id, newText string) {
	n.mu.Lock()
	cell, ok := n.store.Get(id)
	n.mu.Unlock()
	if !ok {
		return
	}

	wasExecuted := cell.Execution().Executed
	cell.Invalidate(newText)
	if wasExecuted && !cell.Execution().Executed && n.events.ExecutionStateChanged != nil {
		n.events.ExecutionStateChanged(cell)
	}
}

func (n *Notebook) focusGained(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.store.SetFocused(id)
}

// DeleteCell removes a cell and disposes its surface. Unknown ids are a
// no-op so double-triggered deletes are safe.
func (n *Notebook) DeleteCell(id string) {
	n.mu.Lock()
	cell, ok := n.store.Get(id)
	if !ok {
		n.mu.Unlock()
		return
	}
	index := n.store.Index(id)
	n.store.Delete(id)
	if surface, ok := n.editors[id]; ok {
		_ = surface.Dispose()
		delete(n.editors, id)
	}
	n.mu.Unlock()

	if n.events.CellDeleted != nil {
		n.events.CellDeleted(cell, index)
	}
}

func (n *Notebook) MoveCell(id string, dir Direction) bool {
	n.mu.Lock()
	from := n.store.Index(id)
	moved := n.store.Move(id, dir)
	to := n.store.Index(id)
	cell, _ := n.store.Get(id)
	n.mu.Unlock()

	if moved && n.events.CellMoved != nil {
		n.events.CellMoved(cell, from, to)
	}
	return moved
}

// Reorder consumes a drag-drop (oldIndex, newIndex) pair.
func (n *Notebook) Reorder(oldIndex, newIndex int) bool {
	n.mu.Lock()
	cell := n.store.At(oldIndex)
	moved := n.store.Reorder(oldIndex, newIndex)
	n.mu.Unlock()

	if moved && n.events.CellMoved != nil {
		n.events.CellMoved(cell, oldIndex, newIndex)
	}
	return moved
}

// Focused returns the focused cell per the store's fallback rules.
func (n *Notebook) Focused() *document.Cell {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Focused()
}

// Cut snapshots the focused cell into the clipboard and deletes it.
func (n *Notebook) Cut() bool {
	n.mu.Lock()
	cell := n.store.Focused()
	if cell == nil {
		n.mu.Unlock()
		return false
	}
	snap := document.Snapshot{Cell: cell.Clone(), Text: n.textLocked(cell.ID())}
	n.mu.Unlock()

	n.clip.Put(snap)
	n.DeleteCell(cell.ID())
	return true
}

// Copy snapshots the focused cell into the clipboard.
func (n *Notebook) Copy() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	cell := n.store.Focused()
	if cell == nil {
		return false
	}
	n.clip.Put(document.Snapshot{Cell: cell.Clone(), Text: n.textLocked(cell.ID())})
	return true
}

// Paste inserts a fresh cell copied from the clipboard snapshot right
// after the focused cell, or at the end when nothing is focused. The
// clipboard is left untouched, so paste is repeatable.
func (n *Notebook) Paste() *document.Cell {
	snap, ok := n.clip.Snapshot()
	if !ok {
		return nil
	}

	cell := snap.Cell.Duplicate()

	n.mu.Lock()
	index := n.store.Len()
	if id := n.store.FocusedID(); id != "" {
		index = n.store.Index(id) + 1
	}
	n.attachLocked(cell, snap.Text, index)
	n.mu.Unlock()

	return cell
}

// RunCell runs one cell: code cells execute, text cells toggle between
// Editing and Rendered.
func (n *Notebook) RunCell(ctx context.Context, id string) {
	n.mu.Lock()
	cell, ok := n.store.Get(id)
	if !ok {
		n.mu.Unlock()
		return
	}
	text := n.textLocked(id)
	n.mu.Unlock()

	switch cell.Kind() {
	case document.CodeKind:
		n.engine.RunCode(ctx, cell, text)
	case document.TextKind:
		n.toggleText(cell, text)
	}
}

func (n *Notebook) toggleText(cell *document.Cell, text string) {
	switch cell.Mode() {
	case document.EditingMode:
		markup, err := n.markdown.Render(text)
		if err != nil {
			n.logger.Warn("markdown rendering failed", zap.String("cell", cell.ID()), zap.Error(err))
			return
		}
		cell.SetMode(document.RenderedMode)
		if n.events.TextModeChanged != nil {
			n.events.TextModeChanged(cell, markup)
		}
	case document.RenderedMode:
		cell.SetMode(document.EditingMode)
		if n.events.TextModeChanged != nil {
			n.events.TextModeChanged(cell, "")
		}
	}
}

// RunAll executes every code cell in document order.
func (n *Notebook) RunAll(ctx context.Context) {
	n.engine.RunAll(ctx, n.Snapshots())
}

// Restart clears the persistent scope and all code-cell outputs and
// execution state.
func (n *Notebook) Restart() {
	n.engine.Restart(n.Cells())
}

func (n *Notebook) RestartAndRunAll(ctx context.Context) {
	n.engine.RestartAndRunAll(ctx, n.Snapshots())
}

// Stale reports whether the cell's last run no longer matches its live
// text. Unexecuted cells are stale by definition.
func (n *Notebook) Stale(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	cell, ok := n.store.Get(id)
	if !ok {
		return false
	}
	return Stale(cell, n.textLocked(id))
}

// Stale is a pure function of the execution state and the live text.
func Stale(cell *document.Cell, liveText string) bool {
	state := cell.Execution()
	return !state.Executed || state.LastExecutedText != liveText
}

// Snapshots pairs every cell with its live text, in document order.
func (n *Notebook) Snapshots() []document.Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()

	cells := n.store.Cells()
	result := make([]document.Snapshot, len(cells))
	for i, cell := range cells {
		result[i] = document.Snapshot{Cell: cell, Text: n.textLocked(cell.ID())}
	}
	return result
}

// Export serializes the live notebook back into the flat document form.
func (n *Notebook) Export() []byte {
	return document.Serialize(n.Snapshots())
}

// Close disposes every editing surface.
func (n *Notebook) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var err error
	for id, surface := range n.editors {
		err = multierr.Append(err, surface.Dispose())
		delete(n.editors, id)
	}
	return err
}
