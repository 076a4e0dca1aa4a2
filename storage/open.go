package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
)

// Open creates the persistent store selected by backend under dataDir.
func Open(backend, dataDir string) (Database, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendLevelDB:
		return NewLevelDB(filepath.Join(dataDir, "ledger"))
	case BackendBolt:
		return NewBoltDB(filepath.Join(dataDir, "ledger.bolt"), nil)
	default:
		return nil, fmt.Errorf("storage: unsupported backend %q", backend)
	}
}
