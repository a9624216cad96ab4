package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/boardsync/internal/models"
)

func TestDiscarded_SaveAndList(t *testing.T) {
	ctx := context.Background()
	s := setupTestStorage(t)

	first := &models.DiscardedMutation{
		DiscardedAt: time.Now(),
		Mutation:    *testMutation("/rejected"),
		Reason:      "server rejected mutation: 409",
	}
	second := &models.DiscardedMutation{
		DiscardedAt: time.Now(),
		Mutation:    *testMutation("/exhausted"),
		Reason:      "attempts ceiling reached (10)",
	}

	require.NoError(t, s.SaveDiscarded(ctx, first))
	require.NoError(t, s.SaveDiscarded(ctx, second))

	listed, err := s.ListDiscarded(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// порядок сохранения
	assert.Equal(t, "/rejected", listed[0].Mutation.Path)
	assert.Equal(t, "/exhausted", listed[1].Mutation.Path)
	assert.Equal(t, first.Reason, listed[0].Reason)
}

func TestDiscarded_ListEmpty(t *testing.T) {
	s := setupTestStorage(t)

	listed, err := s.ListDiscarded(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}
