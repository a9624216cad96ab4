package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncEvent_Clone(t *testing.T) {
	original := &SyncEvent{
		TargetUserIDs:       []string{"alice", "bob"},
		Payload:             []byte(`{"id":"task-1"}`),
		EventID:             "01J0000000000000000000000",
		Entity:              EntityTask,
		Action:              ActionUpdated,
		EntityID:            "task-1",
		ProjectID:           "project-1",
		OriginatorUserID:    "alice",
		OriginatorSessionID: "s1",
		Timestamp:           1700000000000,
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	// мутация копии не должна трогать оригинал
	clone.TargetUserIDs[0] = "mallory"
	clone.Payload[0] = 'X'

	assert.Equal(t, "alice", original.TargetUserIDs[0])
	assert.Equal(t, byte('{'), original.Payload[0])
}

func TestSyncEvent_CloneNilPayload(t *testing.T) {
	original := &SyncEvent{
		Entity:              EntityTask,
		Action:              ActionReordered,
		ProjectID:           "project-1",
		OriginatorUserID:    "alice",
		OriginatorSessionID: "s1",
	}

	clone := original.Clone()
	assert.Nil(t, clone.Payload)
	assert.Empty(t, clone.TargetUserIDs)
}

func TestKnownEntityKinds(t *testing.T) {
	kinds := KnownEntityKinds()
	assert.Contains(t, kinds, EntityTask)
	assert.Contains(t, kinds, EntityProject)
	assert.Contains(t, kinds, EntityMember)
	assert.Len(t, kinds, 6)
}
