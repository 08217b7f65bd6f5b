package editor

import (
	"sync"
)

// Surface is the contract of the external code-editing widget, keyed by
// cell id. The engine only reads and seeds text and subscribes to change
// and focus notifications; character-level storage belongs to the widget.
type Surface interface {
	Text() string
	SetText(text string)
	OnContentChanged(fn func(text string))
	OnFocusGained(fn func())
	Dispose() error
}

// Factory creates a surface seeded with initial text. The view layer
// provides a real widget; tests and the CLI use NewBuffer.
type Factory func(initial string) Surface

// Buffer is an in-memory Surface. It mirrors the widget behavior the
// engine relies on: SetText fires content-changed, Focus fires
// focus-gained, Dispose drops all subscriptions.
type Buffer struct {
	mu      sync.Mutex
	text    string
	changed []func(string)
	focused []func()
}

var _ Surface = (*Buffer)(nil)

func NewBuffer(initial string) *Buffer {
	return &Buffer{text: initial}
}

func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *Buffer) SetText(text string) {
	b.mu.Lock()
	if b.text == text {
		b.mu.Unlock()
		return
	}
	b.text = text
	listeners := append([]func(string){}, b.changed...)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(text)
	}
}

func (b *Buffer) OnContentChanged(fn func(text string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changed = append(b.changed, fn)
}

func (b *Buffer) OnFocusGained(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focused = append(b.focused, fn)
}

// Focus simulates the widget gaining focus.
func (b *Buffer) Focus() {
	b.mu.Lock()
	listeners := append([]func(){}, b.focused...)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (b *Buffer) Dispose() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changed = nil
	b.focused = nil
	return nil
}
