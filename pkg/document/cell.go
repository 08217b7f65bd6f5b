package document

import (
	"github.com/celldown/celldown/internal/ulid"
)

type CellKind int

const (
	CodeKind CellKind = iota + 1
	TextKind
)

func (k CellKind) String() string {
	switch k {
	case CodeKind:
		return "code"
	case TextKind:
		return "text"
	default:
		return "unknown"
	}
}

// TextMode is the display mode of a text cell. It is irrelevant for code cells.
type TextMode int

const (
	EditingMode TextMode = iota + 1
	RenderedMode
)

type OutputKind int

const (
	LogOutput OutputKind = iota + 1
	ErrorOutput
	ImageOutput
)

// Output is a tagged result of running a code cell. Exactly one variant
// applies: Log and Error carry Text, Image carries Data and Mime.
type Output struct {
	Kind OutputKind
	Text string
	Data []byte
	Mime string
}

func NewLogOutput(text string) Output {
	return Output{Kind: LogOutput, Text: text}
}

func NewErrorOutput(text string) Output {
	return Output{Kind: ErrorOutput, Text: text}
}

func NewImageOutput(data []byte, mime string) Output {
	return Output{Kind: ImageOutput, Data: data, Mime: mime}
}

func (o Output) clone() Output {
	if o.Data != nil {
		data := make([]byte, len(o.Data))
		copy(data, o.Data)
		o.Data = data
	}
	return o
}

// ExecutionState records whether the cell's last run still matches its
// current text. LastExecutedText is only meaningful while Executed is true.
type ExecutionState struct {
	Executed         bool
	LastExecutedText string
}

// Cell is the unit of document content. It does not own the cell's source
// text; the editing surface keyed by ID does. The record is metadata about
// that text's execution and display state.
type Cell struct {
	id            string
	kind          CellKind
	mode          TextMode
	outputs       []Output
	outputVisible bool
	exec          ExecutionState
}

func NewCodeCell() *Cell {
	return &Cell{
		id:   ulid.GenerateID(),
		kind: CodeKind,
	}
}

func NewTextCell(mode TextMode) *Cell {
	if mode == 0 {
		mode = EditingMode
	}
	return &Cell{
		id:   ulid.GenerateID(),
		kind: TextKind,
		mode: mode,
	}
}

func (c *Cell) ID() string { return c.id }

func (c *Cell) Kind() CellKind { return c.kind }

func (c *Cell) Mode() TextMode { return c.mode }

func (c *Cell) SetMode(mode TextMode) {
	if c.kind != TextKind {
		return
	}
	c.mode = mode
}

// Outputs returns the cell's outputs in append order.
func (c *Cell) Outputs() []Output {
	result := make([]Output, len(c.outputs))
	for i, o := range c.outputs {
		result[i] = o.clone()
	}
	return result
}

func (c *Cell) AppendOutput(o Output) {
	if c.kind != CodeKind {
		return
	}
	c.outputs = append(c.outputs, o.clone())
	c.outputVisible = true
}

func (c *Cell) ClearOutputs() {
	c.outputs = nil
}

func (c *Cell) OutputVisible() bool { return c.outputVisible }

func (c *Cell) SetOutputVisible(visible bool) { c.outputVisible = visible }

func (c *Cell) Execution() ExecutionState { return c.exec }

// MarkExecuted records a completed run (successful or failed) of text.
func (c *Cell) MarkExecuted(text string) {
	c.exec = ExecutionState{Executed: true, LastExecutedText: text}
}

// Invalidate handles a content change: once the live text diverges from the
// last-executed text the cell is stale until the next run. Editing the text
// back does not make it fresh again.
func (c *Cell) Invalidate(newText string) {
	if !c.exec.Executed && c.exec.LastExecutedText == "" {
		return
	}
	if newText == c.exec.LastExecutedText {
		return
	}
	c.exec = ExecutionState{}
}

// ResetExecution clears the execution state entirely, e.g. on restart.
func (c *Cell) ResetExecution() {
	c.exec = ExecutionState{}
}

// Clone returns a deep copy sharing the cell's identity. Used for snapshots.
func (c *Cell) Clone() *Cell {
	clone := *c
	clone.outputs = c.Outputs()
	return &clone
}

// Duplicate returns a deep copy under a fresh identity. Used by paste.
func (c *Cell) Duplicate() *Cell {
	clone := c.Clone()
	clone.id = ulid.GenerateID()
	return clone
}

// Snapshot pairs a cell record with its source text at a point in time.
// The parser produces snapshots at load; the serializer and the clipboard
// consume them.
type Snapshot struct {
	Cell *Cell
	Text string
}

func (s Snapshot) Clone() Snapshot {
	return Snapshot{Cell: s.Cell.Clone(), Text: s.Text}
}
