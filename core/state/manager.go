package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"celebmint/storage"
)

type journalEntry struct {
	key     string
	prev    []byte
	hadPrev bool
}

// Manager is a write overlay on top of the key-value store. Reads fall
// through to the store, writes are staged until Commit flushes them as one
// atomic batch. Snapshot and RevertToSnapshot undo staged writes back to a
// mark, which lets a single operation roll back a failed sub-step.
//
// Manager is not safe for concurrent use.
type Manager struct {
	db      storage.Database
	dirty   map[string][]byte
	journal []journalEntry
}

// NewManager creates a state manager operating on the provided store.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db, dirty: make(map[string][]byte)}
}

func (m *Manager) get(key []byte) ([]byte, bool, error) {
	if value, ok := m.dirty[string(key)]; ok {
		return value, value != nil, nil
	}
	value, err := m.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (m *Manager) set(key []byte, value []byte) {
	k := string(key)
	prev, had := m.dirty[k]
	m.journal = append(m.journal, journalEntry{key: k, prev: prev, hadPrev: had})
	m.dirty[k] = value
}

// KVPut stores the provided value under the supplied key using RLP encoding.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.set(key, encoded)
	return nil
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, ok, err := m.get(key)
	if err != nil || !ok {
		return false, err
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("kv: decode %q: %w", key, err)
	}
	return true, nil
}

// KVDelete stages the removal of key.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	m.set(key, nil)
	return nil
}

// Snapshot returns a mark for RevertToSnapshot.
func (m *Manager) Snapshot() int { return len(m.journal) }

// RevertToSnapshot undoes every staged write made after the mark.
func (m *Manager) RevertToSnapshot(id int) {
	if id < 0 || id > len(m.journal) {
		return
	}
	for i := len(m.journal) - 1; i >= id; i-- {
		entry := m.journal[i]
		if entry.hadPrev {
			m.dirty[entry.key] = entry.prev
		} else {
			delete(m.dirty, entry.key)
		}
	}
	m.journal = m.journal[:id]
}

// Dirty reports the number of staged keys.
func (m *Manager) Dirty() int { return len(m.dirty) }

// Commit writes all staged changes in one batch and clears the overlay.
func (m *Manager) Commit() error {
	batch := storage.NewBatch()
	for key, value := range m.dirty {
		if value == nil {
			batch.Delete([]byte(key))
			continue
		}
		batch.Put([]byte(key), value)
	}
	if err := m.db.Write(batch); err != nil {
		return fmt.Errorf("state: commit: %w", err)
	}
	m.Discard()
	return nil
}

// Discard drops all staged changes.
func (m *Manager) Discard() {
	m.dirty = make(map[string][]byte)
	m.journal = nil
}
