package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/boardsync/internal/models"
	"github.com/iudanet/boardsync/internal/server/bus"
	"github.com/iudanet/boardsync/internal/server/storage"
	"github.com/iudanet/boardsync/pkg/api"
)

// ProjectsHandler обрабатывает мутации проектов и участников
type ProjectsHandler struct {
	logger  *slog.Logger
	storage storage.BoardStorage
	emitter EventEmitter
}

// NewProjectsHandler creates a new projects handler
func NewProjectsHandler(logger *slog.Logger, boardStorage storage.BoardStorage, emitter EventEmitter) *ProjectsHandler {
	return &ProjectsHandler{
		logger:  logger,
		storage: boardStorage,
		emitter: emitter,
	}
}

// HandleCreateProject обрабатывает POST /api/v1/projects
func (h *ProjectsHandler) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	var req api.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	project := &storage.Project{
		ID:        uuid.NewString(),
		Name:      req.Name,
		OwnerID:   userID,
		CreatedAt: time.Now(),
	}

	if err := h.storage.CreateProject(r.Context(), project); err != nil {
		h.logger.Error("Failed to create project", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, project)

	event := &models.SyncEvent{
		Entity:              models.EntityProject,
		Action:              models.ActionCreated,
		EntityID:            project.ID,
		ProjectID:           project.ID,
		OriginatorUserID:    userID,
		OriginatorSessionID: sessionID,
		TargetUserIDs:       []string{userID},
	}
	h.emit(r, event)
}

// HandleAddMember обрабатывает POST /api/v1/projects/{id}/members.
// Новый участник попадает в аудиторию события: он узнает о проекте
// тем же каналом, что и остальные.
func (h *ProjectsHandler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	projectID := r.PathValue("id")

	var req api.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if _, err := h.storage.GetProject(r.Context(), projectID); err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			http.Error(w, "Project not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get project", "error", err, "project_id", projectID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	err := h.storage.AddProjectMember(r.Context(), projectID, req.UserID)
	if errors.Is(err, storage.ErrMemberAlreadyExists) {
		http.Error(w, "Member already exists", http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.Error("Failed to add member", "error", err, "project_id", projectID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	audience, err := h.storage.ListProjectMemberIDs(r.Context(), projectID)
	if err != nil {
		h.logger.Warn("Failed to resolve audience", "error", err, "project_id", projectID)
		audience = []string{userID, req.UserID}
	}

	w.WriteHeader(http.StatusNoContent)

	event := &models.SyncEvent{
		Entity:              models.EntityMember,
		Action:              models.ActionCreated,
		EntityID:            req.UserID,
		ProjectID:           projectID,
		OriginatorUserID:    userID,
		OriginatorSessionID: sessionID,
		TargetUserIDs:       audience,
	}
	h.emit(r, event)
}

// emit передает событие шине с учетом запрошенного self-echo suppression
func (h *ProjectsHandler) emit(r *http.Request, event *models.SyncEvent) {
	opts := bus.EmitOptions{
		SkipOrigin: r.Header.Get(SuppressEchoHeader) == "1",
	}
	if err := h.emitter.Emit(event, opts); err != nil {
		h.logger.Error("Failed to emit sync event",
			"error", err,
			"entity", event.Entity,
			"action", event.Action,
			"entity_id", event.EntityID)
	}
}
