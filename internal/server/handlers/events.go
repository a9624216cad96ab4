package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/iudanet/boardsync/internal/server/bus"
)

// EventsHandler принимает live-подключения клиентов.
// Upgrade до websocket и регистрация канала доставки под идентичностью
// сессии из контекста (установлена SessionMiddleware).
type EventsHandler struct {
	logger   *slog.Logger
	bus      *bus.Bus
	upgrader websocket.Upgrader
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(logger *slog.Logger, eventBus *bus.Bus) *EventsHandler {
	return &EventsHandler{
		logger: logger,
		bus:    eventBus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// HandleEvents обрабатывает GET /api/v1/events
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.logger.Error("User ID not found in context")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID, ok := GetSessionID(r.Context())
	if !ok {
		h.logger.Error("Session ID not found in context")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам пишет HTTP-ошибку клиенту
		h.logger.Warn("Websocket upgrade failed", "error", err, "user_id", userID)
		return
	}

	h.bus.Attach(conn, userID, sessionID)
}
