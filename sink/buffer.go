// Package sink provides the destinations generators write formatted text into.
package sink

import (
	"bytes"
	"sync"
)

// SharedBuffer collects the output of asynchronous tests.
//
// Every asynchronous test renders into a private buffer and appends the
// complete text here once it finishes, so the lock is taken once per test
// rather than once per event.
type SharedBuffer struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	appends int
}

// NewSharedBuffer creates an empty shared buffer.
func NewSharedBuffer() *SharedBuffer {
	return &SharedBuffer{}
}

// Append writes the whole of p in one critical section.
func (b *SharedBuffer) Append(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf.Write(p)
	b.appends++
}

// Write implements io.Writer on top of Append.
func (b *SharedBuffer) Write(p []byte) (int, error) {
	b.Append(p)
	return len(p), nil
}

// String returns a copy of the collected text.
func (b *SharedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Appends returns how many blocks were appended since the last reset.
func (b *SharedBuffer) Appends() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.appends
}

// Reset drops everything collected so far.
func (b *SharedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
	b.appends = 0
}
