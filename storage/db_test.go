package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func exerciseDatabase(t *testing.T, db Database) {
	t.Helper()
	if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := db.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("put: %v", err)
	}

	batch := NewBatch()
	batch.Put([]byte("b"), []byte("2"))
	batch.Put([]byte("c"), []byte("3"))
	batch.Delete([]byte("a"))
	if batch.Len() != 3 {
		t.Fatalf("batch len = %d", batch.Len())
	}
	if err := db.Write(batch); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := db.Get([]byte("a")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted key, got %v", err)
	}
	for key, want := range map[string]string{"b": "2", "c": "3"} {
		got, err := db.Get([]byte(key))
		if err != nil || string(got) != want {
			t.Fatalf("get %s = %q, %v", key, got, err)
		}
	}
	if err := db.Write(NewBatch()); err != nil {
		t.Fatalf("empty write: %v", err)
	}
}

func TestMemDB(t *testing.T) {
	db := NewMemDB()
	exerciseDatabase(t, db)
	if keys := db.Keys(); len(keys) != 2 || keys[0] != "b" || keys[1] != "c" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestMemDBReturnsCopies(t *testing.T) {
	db := NewMemDB()
	value := []byte("abc")
	if err := db.Put([]byte("k"), value); err != nil {
		t.Fatalf("put: %v", err)
	}
	value[0] = 'z'
	got, _ := db.Get([]byte("k"))
	got[1] = 'z'
	again, _ := db.Get([]byte("k"))
	if string(again) != "abc" {
		t.Fatalf("stored value mutated: %q", again)
	}
}

func TestLevelDB(t *testing.T) {
	dir := t.TempDir()
	db, err := NewLevelDB(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	exerciseDatabase(t, db)
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewLevelDB(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get([]byte("c"))
	if err != nil || string(got) != "3" {
		t.Fatalf("persisted value = %q, %v", got, err)
	}
}

func TestBoltDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.bolt")
	db, err := NewBoltDB(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	exerciseDatabase(t, db)
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewBoltDB(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get([]byte("b"))
	if err != nil || string(got) != "2" {
		t.Fatalf("persisted value = %q, %v", got, err)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	for _, backend := range []string{"", BackendLevelDB, BackendBolt} {
		db, err := Open(backend, t.TempDir())
		if err != nil {
			t.Fatalf("open %q: %v", backend, err)
		}
		if err := db.Put([]byte("k"), []byte("v")); err != nil {
			t.Fatalf("put %q: %v", backend, err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("close %q: %v", backend, err)
		}
	}
	if _, err := Open("rocksdb", t.TempDir()); err == nil {
		t.Fatalf("expected unknown backend to be rejected")
	}
}
