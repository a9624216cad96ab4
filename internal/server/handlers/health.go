package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ChannelCounter отдает количество открытых каналов доставки
type ChannelCounter interface {
	OpenChannels() int
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger   *slog.Logger
	channels ChannelCounter
	version  string
}

// NewHealthHandler создает новый handler для health check.
// channels может быть nil, тогда open_channels не репортится.
func NewHealthHandler(logger *slog.Logger, channels ChannelCounter, version string) *HealthHandler {
	return &HealthHandler{
		logger:   logger,
		channels: channels,
		version:  version,
	}
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version,omitempty"`
	OpenChannels int    `json:"open_channels"`
}

// Health обрабатывает GET /api/v1/health
// Health check endpoint для мониторинга
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
	}
	if h.channels != nil {
		resp.OpenChannels = h.channels.OpenChannels()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
