package storage

import (
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketLedger = []byte("ledger")

// BoltDB is a single-file key-value store backed by bbolt. Every Write runs in
// one bolt transaction.
type BoltDB struct {
	db *bolt.DB
}

// NewBoltDB opens (and migrates) the bolt file at path.
func NewBoltDB(path string, options *bolt.Options) (*BoltDB, error) {
	if options == nil {
		options = &bolt.Options{Timeout: time.Second}
	} else if options.Timeout == 0 {
		options.Timeout = time.Second
	}
	db, err := bolt.Open(path, 0o600, options)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketLedger)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltDB{db: db}, nil
}

// Get retrieves a value for a given key.
func (b *BoltDB) Get(key []byte) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketLedger).Get(key)
		if raw == nil {
			return ErrNotFound
		}
		// Values are only valid for the life of the transaction.
		out = append([]byte(nil), raw...)
		return nil
	})
	return out, err
}

// Put inserts or updates a key-value pair.
func (b *BoltDB) Put(key []byte, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLedger).Put(key, value)
	})
}

// Write applies the batch in a single transaction.
func (b *BoltDB) Write(batch *Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketLedger)
		for _, op := range batch.ops {
			if op.delete {
				if err := bucket.Delete(op.key); err != nil {
					return err
				}
				continue
			}
			if err := bucket.Put(op.key, op.value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the underlying bolt handle.
func (b *BoltDB) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
