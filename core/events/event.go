package events

import (
	"sync"

	"celebmint/core/types"
)

// Event represents a structured state change emitted by the ledger.
type Event interface {
	EventType() string
}

// Payload is implemented by events that can render a wire-friendly form.
type Payload interface {
	Event
	Event() *types.Event
}

// Emitter broadcasts events to downstream subscribers (e.g. the indexer, RPC).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Buffer holds events raised while an operation is in flight. The ledger
// flushes it after the operation commits and resets it otherwise, so
// subscribers never observe effects of a rejected call.
type Buffer struct {
	mu      sync.Mutex
	pending []Event
}

// Emit implements the Emitter interface.
func (b *Buffer) Emit(evt Event) {
	if b == nil || evt == nil {
		return
	}
	b.mu.Lock()
	b.pending = append(b.pending, evt)
	b.mu.Unlock()
}

// Flush forwards all buffered events to the target in emission order and
// clears the buffer.
func (b *Buffer) Flush(target Emitter) []Event {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	out := b.pending
	b.pending = nil
	b.mu.Unlock()
	if target != nil {
		for _, evt := range out {
			target.Emit(evt)
		}
	}
	return out
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Truncate drops events buffered after the first n.
func (b *Buffer) Truncate(n int) {
	if b == nil || n < 0 {
		return
	}
	b.mu.Lock()
	if n < len(b.pending) {
		b.pending = b.pending[:n]
	}
	b.mu.Unlock()
}

// Reset drops any buffered events.
func (b *Buffer) Reset() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.pending = nil
	b.mu.Unlock()
}

// Recorder keeps every emitted event. Tests use it to assert emission order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the event types in emission order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, evt := range r.events {
		out = append(out, evt.EventType())
	}
	return out
}

// Fanout delivers each event to every configured emitter.
type Fanout []Emitter

// Emit implements the Emitter interface.
func (f Fanout) Emit(evt Event) {
	for _, emitter := range f {
		if emitter != nil {
			emitter.Emit(evt)
		}
	}
}
