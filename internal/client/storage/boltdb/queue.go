package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/boardsync/internal/client/storage"
	"github.com/iudanet/boardsync/internal/models"
)

// seqKey кодирует Seq в big-endian: байтовый порядок ключей bbolt
// совпадает с порядком постановки в очередь
func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// Enqueue добавляет мутацию в хвост очереди, присваивая ей Seq
func (s *Storage) Enqueue(ctx context.Context, mutation *models.QueuedMutation) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPending)
		if bucket == nil {
			return fmt.Errorf("pending bucket not found")
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}
		mutation.Seq = seq

		data, err := json.Marshal(mutation)
		if err != nil {
			return fmt.Errorf("failed to marshal mutation: %w", err)
		}

		if err := bucket.Put(seqKey(seq), data); err != nil {
			return fmt.Errorf("failed to save mutation: %w", err)
		}

		return nil
	})
}

// Head возвращает головную мутацию очереди без удаления
func (s *Storage) Head(ctx context.Context) (*models.QueuedMutation, error) {
	var mutation *models.QueuedMutation

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPending)
		if bucket == nil {
			return fmt.Errorf("pending bucket not found")
		}

		_, data := bucket.Cursor().First()
		if data == nil {
			return storage.ErrQueueEmpty
		}

		mutation = &models.QueuedMutation{}
		if err := json.Unmarshal(data, mutation); err != nil {
			return fmt.Errorf("failed to unmarshal mutation: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return mutation, nil
}

// Update перезаписывает мутацию по ее Seq
func (s *Storage) Update(ctx context.Context, mutation *models.QueuedMutation) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPending)
		if bucket == nil {
			return fmt.Errorf("pending bucket not found")
		}

		key := seqKey(mutation.Seq)
		if bucket.Get(key) == nil {
			return storage.ErrMutationNotFound
		}

		data, err := json.Marshal(mutation)
		if err != nil {
			return fmt.Errorf("failed to marshal mutation: %w", err)
		}

		if err := bucket.Put(key, data); err != nil {
			return fmt.Errorf("failed to update mutation: %w", err)
		}

		return nil
	})
}

// Delete удаляет мутацию по Seq
func (s *Storage) Delete(ctx context.Context, seq uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPending)
		if bucket == nil {
			return fmt.Errorf("pending bucket not found")
		}

		key := seqKey(seq)
		if bucket.Get(key) == nil {
			return storage.ErrMutationNotFound
		}

		if err := bucket.Delete(key); err != nil {
			return fmt.Errorf("failed to delete mutation: %w", err)
		}

		return nil
	})
}

// Len возвращает количество мутаций в очереди
func (s *Storage) Len(ctx context.Context) (int, error) {
	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPending)
		if bucket == nil {
			return fmt.Errorf("pending bucket not found")
		}

		count = bucket.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}
