package storage

import (
	"context"

	"github.com/iudanet/boardsync/internal/models"
)

// QueueStorage определяет интерфейс durable FIFO очереди мутаций.
// Очередью владеет ровно один browsing context; никакой другой
// компонент ее не читает и не пишет.
type QueueStorage interface {
	// Enqueue добавляет мутацию в хвост очереди и присваивает ей Seq
	Enqueue(ctx context.Context, mutation *models.QueuedMutation) error

	// Head возвращает головную мутацию без удаления.
	// Возвращает ErrQueueEmpty для пустой очереди.
	Head(ctx context.Context) (*models.QueuedMutation, error)

	// Update перезаписывает мутацию по ее Seq (attempts, last_error)
	Update(ctx context.Context, mutation *models.QueuedMutation) error

	// Delete удаляет мутацию по Seq
	Delete(ctx context.Context, seq uint64) error

	// Len возвращает количество мутаций в очереди
	Len(ctx context.Context) (int, error)
}

// DiscardedStorage определяет интерфейс терминальных записей об
// отброшенных мутациях. Записи не удаляются молча: пользователь должен
// иметь возможность увидеть каждую.
type DiscardedStorage interface {
	// SaveDiscarded сохраняет терминальную запись
	SaveDiscarded(ctx context.Context, discarded *models.DiscardedMutation) error

	// ListDiscarded возвращает все записи в порядке отбрасывания
	ListDiscarded(ctx context.Context) ([]*models.DiscardedMutation, error)
}
