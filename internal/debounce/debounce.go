// Package debounce coalesces rapid per-note body updates so each editing
// burst costs a single disk write.
package debounce

import (
	"sync"
	"time"
)

// Sink receives the final body for a note once its quiet period elapses.
type Sink func(id, content string)

// Writer holds the latest pending body per note id and emits it to the sink
// after delay with no further updates. Later updates to the same id replace
// the pending body and restart its timer; updates to different ids are
// independent.
//
// Emissions for a single id never overlap: the timer fires with the entry
// already claimed, so a concurrent Update starts a fresh cycle instead of
// racing the in-flight emit.
type Writer struct {
	delay time.Duration
	sink  Sink

	mu      sync.Mutex
	pending map[string]*pendingWrite
	stopped bool
}

type pendingWrite struct {
	content string
	timer   *time.Timer
}

// NewWriter creates a Writer emitting to sink after delay of inactivity.
func NewWriter(delay time.Duration, sink Sink) *Writer {
	return &Writer{
		delay:   delay,
		sink:    sink,
		pending: make(map[string]*pendingWrite),
	}
}

// Update records content as the latest body for id and restarts its timer.
// After Stop, updates are dropped.
func (w *Writer) Update(id, content string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if p, ok := w.pending[id]; ok {
		p.content = content
		p.timer.Reset(w.delay)
		return
	}
	p := &pendingWrite{content: content}
	p.timer = time.AfterFunc(w.delay, func() { w.fire(id) })
	w.pending[id] = p
}

func (w *Writer) fire(id string) {
	w.mu.Lock()
	p, ok := w.pending[id]
	if ok {
		delete(w.pending, id)
		p.timer.Stop()
	}
	w.mu.Unlock()
	if ok {
		w.sink(id, p.content)
	}
}

// Flush synchronously emits every pending body. Callers must flush before
// operations that read note files, or they would observe stale content.
func (w *Writer) Flush() {
	w.mu.Lock()
	drained := w.pending
	w.pending = make(map[string]*pendingWrite)
	for _, p := range drained {
		p.timer.Stop()
	}
	w.mu.Unlock()

	for id, p := range drained {
		w.sink(id, p.content)
	}
}

// FlushNote synchronously emits the pending body for a single id, if any.
func (w *Writer) FlushNote(id string) {
	w.mu.Lock()
	p, ok := w.pending[id]
	if ok {
		delete(w.pending, id)
		p.timer.Stop()
	}
	w.mu.Unlock()
	if ok {
		w.sink(id, p.content)
	}
}

// Pending reports how many notes have an unemitted body.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Stop flushes everything still pending and rejects further updates.
func (w *Writer) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.Flush()
}
