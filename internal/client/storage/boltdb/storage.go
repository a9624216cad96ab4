package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"
)

var (
	// BoltDB bucket names
	bucketPending   = []byte("pending")
	bucketDiscarded = []byte("discarded")
)

// Storage represents BoltDB storage implementation for the client.
// Держит durable очередь мутаций и записи об отброшенных мутациях
// одного browsing context.
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketPending); err != nil {
			return fmt.Errorf("failed to create pending bucket: %w", err)
		}

		if _, err := tx.CreateBucketIfNotExists(bucketDiscarded); err != nil {
			return fmt.Errorf("failed to create discarded bucket: %w", err)
		}

		return nil
	})
}
