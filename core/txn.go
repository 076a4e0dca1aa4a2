package core

import (
	"celebmint/core/events"
	"celebmint/core/state"
)

type txnMark struct {
	state  int
	events int
}

// txn pairs the staged state overlay with the events raised by the same
// operation so both can be rolled back to a snapshot together.
type txn struct {
	*state.Manager
	buffer *events.Buffer
	marks  []txnMark
}

func newTxn(mgr *state.Manager, buffer *events.Buffer) *txn {
	return &txn{Manager: mgr, buffer: buffer}
}

// Snapshot marks the current staged writes and buffered events.
func (t *txn) Snapshot() int {
	t.marks = append(t.marks, txnMark{state: t.Manager.Snapshot(), events: t.buffer.Len()})
	return len(t.marks) - 1
}

// RevertToSnapshot drops writes and events made after the mark.
func (t *txn) RevertToSnapshot(id int) {
	if id < 0 || id >= len(t.marks) {
		return
	}
	mark := t.marks[id]
	t.Manager.RevertToSnapshot(mark.state)
	t.buffer.Truncate(mark.events)
	t.marks = t.marks[:id]
}

func (t *txn) commit(target events.Emitter) ([]events.Event, error) {
	t.marks = nil
	if err := t.Manager.Commit(); err != nil {
		t.rollback()
		return nil, err
	}
	return t.buffer.Flush(target), nil
}

func (t *txn) rollback() {
	t.marks = nil
	t.Manager.Discard()
	t.buffer.Reset()
}
