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

// SuppressEchoHeader заголовок, которым мутирующий запрос просит
// не доставлять echo события в собственную сессию автора.
// Используется исключительно для suppression, не для authorization.
const SuppressEchoHeader = "X-Suppress-Echo"

// EventEmitter определяет интерфейс шины событий для handlers
type EventEmitter interface {
	Emit(event *models.SyncEvent, opts bus.EmitOptions) error
}

// TasksHandler обрабатывает мутации задач.
// Сами операции - простой validate-then-persist; интересная часть в том,
// что после коммита каждая мутация эмитит SyncEvent с аудиторией из
// участников затронутого проекта. Эмиссия происходит после записи
// ответа и не может ни заблокировать, ни сломать его.
type TasksHandler struct {
	logger  *slog.Logger
	storage storage.BoardStorage
	emitter EventEmitter
}

// NewTasksHandler creates a new tasks handler
func NewTasksHandler(logger *slog.Logger, boardStorage storage.BoardStorage, emitter EventEmitter) *TasksHandler {
	return &TasksHandler{
		logger:  logger,
		storage: boardStorage,
		emitter: emitter,
	}
}

// HandleCreateTask обрабатывает POST /api/v1/tasks
func (h *TasksHandler) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	var req api.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ProjectID == "" || req.Title == "" {
		http.Error(w, "project_id and title are required", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		req.Status = "open"
	}

	now := time.Now()
	task := &storage.Task{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Status:    req.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.storage.CreateTask(r.Context(), task); err != nil {
		h.logger.Error("Failed to create task", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Аудиторию резолвим до записи ответа: после нее контекст запроса
	// может быть отменен
	audience := h.resolveAudience(r, task.ProjectID, userID)

	writeJSON(w, h.logger, http.StatusCreated, taskToResponse(task))

	h.emitTaskEvent(r, models.ActionCreated, task, audience, userID, sessionID)
}

// HandleUpdateTask обрабатывает PATCH /api/v1/tasks/{id}
func (h *TasksHandler) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	taskID := r.PathValue("id")

	var req api.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.storage.GetTask(r.Context(), taskID)
	if errors.Is(err, storage.ErrTaskNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to get task", "error", err, "task_id", taskID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	task.UpdatedAt = time.Now()

	if err := h.storage.UpdateTask(r.Context(), task); err != nil {
		h.logger.Error("Failed to update task", "error", err, "task_id", taskID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	audience := h.resolveAudience(r, task.ProjectID, userID)

	writeJSON(w, h.logger, http.StatusOK, taskToResponse(task))

	h.emitTaskEvent(r, models.ActionUpdated, task, audience, userID, sessionID)
}

// HandleDeleteTask обрабатывает DELETE /api/v1/tasks/{id}
func (h *TasksHandler) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	taskID := r.PathValue("id")

	task, err := h.storage.GetTask(r.Context(), taskID)
	if errors.Is(err, storage.ErrTaskNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to get task", "error", err, "task_id", taskID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.storage.DeleteTask(r.Context(), taskID); err != nil {
		h.logger.Error("Failed to delete task", "error", err, "task_id", taskID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	audience := h.resolveAudience(r, task.ProjectID, userID)

	w.WriteHeader(http.StatusNoContent)

	h.emitTaskEvent(r, models.ActionDeleted, task, audience, userID, sessionID)
}

// HandleReorderTasks обрабатывает POST /api/v1/tasks/reorder.
// Bulk-операция: событие уходит с пустым entity_id, что означает
// "инвалидируй всю коллекцию задач проекта".
func (h *TasksHandler) HandleReorderTasks(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := identity(w, r, h.logger)
	if !ok {
		return
	}

	var req api.ReorderTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ProjectID == "" || len(req.OrderedIDs) == 0 {
		http.Error(w, "project_id and ordered_ids are required", http.StatusBadRequest)
		return
	}

	if err := h.storage.ReorderTasks(r.Context(), req.ProjectID, req.OrderedIDs); err != nil {
		h.logger.Error("Failed to reorder tasks", "error", err, "project_id", req.ProjectID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	audience := h.resolveAudience(r, req.ProjectID, userID)

	w.WriteHeader(http.StatusNoContent)

	event := &models.SyncEvent{
		Entity:              models.EntityTask,
		Action:              models.ActionReordered,
		ProjectID:           req.ProjectID,
		OriginatorUserID:    userID,
		OriginatorSessionID: sessionID,
		TargetUserIDs:       audience,
	}
	h.emit(r, event)
}

// HandleListTasks обрабатывает GET /api/v1/projects/{id}/tasks.
// Snapshot-эндпоинт для reconciliation: клиенты перечитывают
// авторитетное состояние вместо накопленных патчей.
func (h *TasksHandler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")

	tasks, err := h.storage.ListProjectTasks(r.Context(), projectID)
	if err != nil {
		h.logger.Error("Failed to list tasks", "error", err, "project_id", projectID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := make([]api.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, taskToResponse(task))
	}

	writeJSON(w, h.logger, http.StatusOK, response)
}

// emitTaskEvent эмитит событие по одной задаче со snapshot в payload
func (h *TasksHandler) emitTaskEvent(
	r *http.Request,
	action models.Action,
	task *storage.Task,
	audience []string,
	userID, sessionID string,
) {
	payload, err := json.Marshal(taskToResponse(task))
	if err != nil {
		h.logger.Error("Failed to marshal task payload", "error", err, "task_id", task.ID)
		payload = nil
	}

	event := &models.SyncEvent{
		Entity:              models.EntityTask,
		Action:              action,
		EntityID:            task.ID,
		ProjectID:           task.ProjectID,
		OriginatorUserID:    userID,
		OriginatorSessionID: sessionID,
		TargetUserIDs:       audience,
		Payload:             payload,
	}
	h.emit(r, event)
}

// emit передает событие шине; сбой эмиссии логируется и никогда
// не эскалируется к уже завершенному запросу
func (h *TasksHandler) emit(r *http.Request, event *models.SyncEvent) {
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

// resolveAudience возвращает участников проекта; при ошибке деградирует
// до [originator], чтобы автор все равно получил свое событие
func (h *TasksHandler) resolveAudience(r *http.Request, projectID, originatorID string) []string {
	members, err := h.storage.ListProjectMemberIDs(r.Context(), projectID)
	if err != nil || len(members) == 0 {
		if err != nil {
			h.logger.Warn("Failed to resolve audience", "error", err, "project_id", projectID)
		}
		return []string{originatorID}
	}
	return members
}

// identity достает пару (user, session) из контекста запроса
func identity(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (userID, sessionID string, ok bool) {
	userID, uok := GetUserID(r.Context())
	sessionID, sok := GetSessionID(r.Context())
	if !uok || !sok {
		logger.Error("Session identity not found in context")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", "", false
	}
	return userID, sessionID, true
}

// writeJSON пишет JSON-ответ с указанным статусом
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// taskToResponse конвертирует задачу в API формат
func taskToResponse(task *storage.Task) api.TaskResponse {
	return api.TaskResponse{
		ID:        task.ID,
		ProjectID: task.ProjectID,
		Title:     task.Title,
		Status:    task.Status,
		Position:  task.Position,
	}
}
