package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/boardsync/internal/models"
	"github.com/iudanet/boardsync/internal/server/storage"
	"github.com/iudanet/boardsync/pkg/api"
)

func TestProjectsHandler_CreateProject(t *testing.T) {
	var created *storage.Project
	st := &mockBoardStorage{
		createProjectFunc: func(ctx context.Context, project *storage.Project) error {
			created = project
			return nil
		},
	}
	emitter := &mockEmitter{}
	h := NewProjectsHandler(testLogger(), st, emitter)

	req := authRequest(t, http.MethodPost, "/api/v1/projects",
		api.CreateProjectRequest{Name: "Release board"},
		"alice", "s1")
	w := httptest.NewRecorder()

	h.HandleCreateProject(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, created)
	assert.Equal(t, "Release board", created.Name)
	assert.Equal(t, "alice", created.OwnerID)

	var resp storage.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.ID)

	require.Len(t, emitter.events, 1)
	event := emitter.events[0].event
	assert.Equal(t, models.EntityProject, event.Entity)
	assert.Equal(t, models.ActionCreated, event.Action)
	assert.Equal(t, created.ID, event.ProjectID)
	assert.Equal(t, []string{"alice"}, event.TargetUserIDs)
}

func TestProjectsHandler_CreateProject_EmptyName(t *testing.T) {
	h := NewProjectsHandler(testLogger(), &mockBoardStorage{}, &mockEmitter{})

	req := authRequest(t, http.MethodPost, "/api/v1/projects",
		api.CreateProjectRequest{}, "alice", "s1")
	w := httptest.NewRecorder()

	h.HandleCreateProject(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectsHandler_AddMember(t *testing.T) {
	st := &mockBoardStorage{
		getProjectFunc: func(ctx context.Context, id string) (*storage.Project, error) {
			return &storage.Project{ID: id, OwnerID: "alice"}, nil
		},
		addProjectMemberFunc: func(ctx context.Context, projectID, userID string) error {
			return nil
		},
		listProjectMemberIDsFunc: func(ctx context.Context, projectID string) ([]string, error) {
			return []string{"alice", "bob"}, nil
		},
	}
	emitter := &mockEmitter{}
	h := NewProjectsHandler(testLogger(), st, emitter)

	req := authRequest(t, http.MethodPost, "/api/v1/projects/project-1/members",
		api.AddMemberRequest{UserID: "bob"},
		"alice", "s1")
	req.SetPathValue("id", "project-1")
	w := httptest.NewRecorder()

	h.HandleAddMember(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)

	// новый участник в аудитории события
	require.Len(t, emitter.events, 1)
	event := emitter.events[0].event
	assert.Equal(t, models.EntityMember, event.Entity)
	assert.Equal(t, "bob", event.EntityID)
	assert.Contains(t, event.TargetUserIDs, "bob")
}

func TestProjectsHandler_AddMember_ProjectNotFound(t *testing.T) {
	st := &mockBoardStorage{
		getProjectFunc: func(ctx context.Context, id string) (*storage.Project, error) {
			return nil, storage.ErrProjectNotFound
		},
	}
	emitter := &mockEmitter{}
	h := NewProjectsHandler(testLogger(), st, emitter)

	req := authRequest(t, http.MethodPost, "/api/v1/projects/missing/members",
		api.AddMemberRequest{UserID: "bob"},
		"alice", "s1")
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	h.HandleAddMember(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, emitter.events)
}

func TestProjectsHandler_AddMember_AlreadyExists(t *testing.T) {
	st := &mockBoardStorage{
		getProjectFunc: func(ctx context.Context, id string) (*storage.Project, error) {
			return &storage.Project{ID: id}, nil
		},
		addProjectMemberFunc: func(ctx context.Context, projectID, userID string) error {
			return storage.ErrMemberAlreadyExists
		},
	}
	h := NewProjectsHandler(testLogger(), st, &mockEmitter{})

	req := authRequest(t, http.MethodPost, "/api/v1/projects/project-1/members",
		api.AddMemberRequest{UserID: "bob"},
		"alice", "s1")
	req.SetPathValue("id", "project-1")
	w := httptest.NewRecorder()

	h.HandleAddMember(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
