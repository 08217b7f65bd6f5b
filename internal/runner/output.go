package runner

import (
	"bytes"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/celldown/celldown/pkg/document"
)

// capture is the per-run surface collecting a cell's outputs. It is built
// fresh for every run; appends go straight onto the cell record and mark
// the output area visible.
type capture struct {
	cell   *document.Cell
	notify func(cell *document.Cell, out document.Output)

	stdout *lineWriter
	stderr *lineWriter
}

func newCapture(cell *document.Cell, notify func(*document.Cell, document.Output)) *capture {
	c := &capture{cell: cell, notify: notify}
	c.stdout = &lineWriter{emit: c.Log}
	c.stderr = &lineWriter{emit: c.Error}
	return c
}

func (c *capture) Log(values ...string) {
	c.append(document.NewLogOutput(strings.Join(values, " ")))
}

func (c *capture) Error(values ...string) {
	c.append(document.NewErrorOutput(strings.Join(values, " ")))
}

func (c *capture) Image(data []byte, mime string) {
	if mime == "" {
		mime = mimetype.Detect(data).String()
	}
	c.append(document.NewImageOutput(data, mime))
}

func (c *capture) append(out document.Output) {
	c.cell.AppendOutput(out)
	c.cell.SetOutputVisible(true)
	if c.notify != nil {
		c.notify(c.cell, out)
	}
}

// Flush drains partially written lines on both streams.
func (c *capture) Flush() {
	c.stdout.Flush()
	c.stderr.Flush()
}

// lineWriter is an io.Writer that emits one output per completed line.
type lineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(values ...string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Partial line; keep it buffered.
			w.buf.WriteString(line)
			break
		}
		w.emit(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() == 0 {
		return
	}
	w.emit(strings.TrimRight(w.buf.String(), "\r\n"))
	w.buf.Reset()
}
