package boltdb

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/boardsync/internal/client/storage"
	"github.com/iudanet/boardsync/internal/models"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(context.Background(), dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func testMutation(path string) *models.QueuedMutation {
	return &models.QueuedMutation{
		ID:         uuid.NewString(),
		Method:     http.MethodPost,
		Path:       path,
		Body:       []byte(`{"title":"x"}`),
		EnqueuedAt: time.Now(),
	}
}

func TestQueue_EnqueueAssignsSeq(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	first := testMutation("/a")
	second := testMutation("/b")

	require.NoError(t, s.Enqueue(ctx, first))
	require.NoError(t, s.Enqueue(ctx, second))

	assert.Greater(t, second.Seq, first.Seq)

	count, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestQueue_HeadIsFIFO(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	paths := []string{"/first", "/second", "/third"}
	for _, path := range paths {
		require.NoError(t, s.Enqueue(ctx, testMutation(path)))
	}

	// голова всегда самая старая запись; Delete продвигает очередь
	for _, want := range paths {
		head, err := s.Head(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, head.Path)
		require.NoError(t, s.Delete(ctx, head.Seq))
	}

	_, err := s.Head(ctx)
	assert.ErrorIs(t, err, storage.ErrQueueEmpty)
}

func TestQueue_HeadEmpty(t *testing.T) {
	s := setupTestStorage(t)

	_, err := s.Head(context.Background())
	assert.ErrorIs(t, err, storage.ErrQueueEmpty)
}

func TestQueue_Update(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	mutation := testMutation("/a")
	require.NoError(t, s.Enqueue(ctx, mutation))

	mutation.Attempts = 3
	mutation.LastError = "connection refused"
	require.NoError(t, s.Update(ctx, mutation))

	head, err := s.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, head.Attempts)
	assert.Equal(t, "connection refused", head.LastError)
	// позиция в очереди не меняется
	assert.Equal(t, mutation.Seq, head.Seq)
}

func TestQueue_UpdateMissing(t *testing.T) {
	s := setupTestStorage(t)

	mutation := testMutation("/a")
	mutation.Seq = 42

	err := s.Update(context.Background(), mutation)
	assert.ErrorIs(t, err, storage.ErrMutationNotFound)
}

func TestQueue_DeleteMissing(t *testing.T) {
	s := setupTestStorage(t)

	err := s.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, storage.ErrMutationNotFound)
}

func TestQueue_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Enqueue(ctx, testMutation("/persisted")))
	require.NoError(t, s.Close())

	// durable очередь переживает перезапуск процесса
	s, err = New(ctx, dbPath)
	require.NoError(t, err)
	defer func() {
		_ = s.Close()
	}()

	head, err := s.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/persisted", head.Path)
}
