package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/boardsync/internal/models"
)

// SaveDiscarded сохраняет терминальную запись об отброшенной мутации.
// Записи никогда не удаляются автоматически: отброшенная мутация
// означает возможное расхождение оптимистичного состояния с сервером,
// и пользователь должен иметь durable способ это увидеть.
func (s *Storage) SaveDiscarded(ctx context.Context, discarded *models.DiscardedMutation) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDiscarded)
		if bucket == nil {
			return fmt.Errorf("discarded bucket not found")
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}

		data, err := json.Marshal(discarded)
		if err != nil {
			return fmt.Errorf("failed to marshal discarded mutation: %w", err)
		}

		if err := bucket.Put(seqKey(seq), data); err != nil {
			return fmt.Errorf("failed to save discarded mutation: %w", err)
		}

		return nil
	})
}

// ListDiscarded возвращает все записи в порядке отбрасывания
func (s *Storage) ListDiscarded(ctx context.Context) ([]*models.DiscardedMutation, error) {
	var result []*models.DiscardedMutation

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDiscarded)
		if bucket == nil {
			return fmt.Errorf("discarded bucket not found")
		}

		return bucket.ForEach(func(key, data []byte) error {
			discarded := &models.DiscardedMutation{}
			if err := json.Unmarshal(data, discarded); err != nil {
				return fmt.Errorf("failed to unmarshal discarded mutation: %w", err)
			}
			result = append(result, discarded)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
