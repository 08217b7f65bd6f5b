package notebook

import (
	"sync"

	"github.com/atotto/clipboard"

	"github.com/celldown/celldown/pkg/document"
)

// Clipboard holds at most one cut or copied cell snapshot. Each cut/copy
// overwrites the slot; paste reads it without consuming, so a snapshot can
// be pasted repeatedly. The snapshotted text is additionally mirrored to
// the system clipboard on a best-effort basis.
type Clipboard struct {
	mu     sync.Mutex
	snap   *document.Snapshot
	mirror func(text string) error
}

func NewClipboard() *Clipboard {
	return &Clipboard{mirror: clipboard.WriteAll}
}

// Put overwrites the slot with a deep copy of snap.
func (c *Clipboard) Put(snap document.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	clone := snap.Clone()
	c.snap = &clone

	if c.mirror != nil {
		// The system clipboard may be unavailable (headless hosts); the
		// cut/copy itself must still succeed.
		_ = c.mirror(snap.Text)
	}
}

// Snapshot returns a deep copy of the held snapshot without consuming it.
func (c *Clipboard) Snapshot() (document.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap == nil {
		return document.Snapshot{}, false
	}
	return c.snap.Clone(), true
}

func (c *Clipboard) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap == nil
}
