package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/iudanet/boardsync/pkg/api"
)

// SessionHandler выпускает сессионные токены.
// Идентификацию пользователя поставляет внешний auth-слой; здесь
// пользователю назначается свежий session_id для нового browsing context.
type SessionHandler struct {
	logger *slog.Logger
	cfg    JWTConfig
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(logger *slog.Logger, cfg JWTConfig) *SessionHandler {
	return &SessionHandler{
		logger: logger,
		cfg:    cfg,
	}
}

// HandleCreateSession обрабатывает POST /api/v1/session
func (h *SessionHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req api.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode session request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	sessionID := uuid.NewString()

	token, expiresIn, err := GenerateSessionToken(h.cfg, req.UserID, sessionID)
	if err != nil {
		h.logger.Error("Failed to generate session token", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Session issued", "user_id", req.UserID, "session_id", sessionID)

	response := api.SessionResponse{
		Token:     token,
		UserID:    req.UserID,
		SessionID: sessionID,
		ExpiresIn: expiresIn,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
