package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/boardsync/internal/models"
	"github.com/iudanet/boardsync/pkg/api"
)

// Config содержит настройки диспетчера
type Config struct {
	// BackoffBase начальная задержка переподключения (default 1s)
	BackoffBase time.Duration

	// BackoffMax потолок задержки переподключения (default 30s)
	BackoffMax time.Duration
}

// DefaultConfig возвращает настройки диспетчера по умолчанию
func DefaultConfig() Config {
	return Config{
		BackoffBase: 1 * time.Second,
		BackoffMax:  30 * time.Second,
	}
}

// Dispatcher держит единственное live-соединение контекста и
// раздает входящие события подписчикам.
//
// Один websocket на процесс; все подписчики делят его через PubSub.
// Обрыв соединения переводит диспетчер в цикл переподключения с
// экспоненциальным backoff и полным джиттером. Каждое успешное
// подключение публикует сигнал Reconnected: в оффлайн-окне события
// потеряны, потребители должны перечитать состояние.
type Dispatcher struct {
	logger  *slog.Logger
	pubsub  *PubSub
	dialer  *websocket.Dialer
	baseURL string
	token   string
	cfg     Config
}

// New creates a new sync event dispatcher
func New(logger *slog.Logger, baseURL, token string, cfg Config) *Dispatcher {
	def := DefaultConfig()
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = def.BackoffBase
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = def.BackoffMax
	}

	return &Dispatcher{
		logger:  logger,
		pubsub:  NewPubSub(),
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		baseURL: baseURL,
		token:   token,
		cfg:     cfg,
	}
}

// Subscribe регистрирует хендлер на события вида сущности.
// Возвращает идемпотентную функцию отписки.
func (d *Dispatcher) Subscribe(entity models.EntityKind, handler Handler) func() {
	return d.pubsub.Subscribe(entity, handler)
}

// SubscribeReconnected регистрирует хендлер сигнала восстановления
// соединения. Возвращает идемпотентную функцию отписки.
func (d *Dispatcher) SubscribeReconnected(handler SignalHandler) func() {
	return d.pubsub.SubscribeReconnected(handler)
}

// Run держит соединение с сервером до отмены контекста
func (d *Dispatcher) Run(ctx context.Context) {
	attempt := 0

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := d.dial(ctx)
		if err != nil {
			delay := d.backoff(attempt)
			attempt++
			d.logger.Warn("Failed to connect event stream",
				"error", err,
				"retry_in", delay)

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}

		attempt = 0
		d.logger.Info("Event stream connected")
		d.pubsub.publishReconnected()

		d.readLoop(ctx, conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}
		d.logger.Warn("Event stream disconnected")
	}
}

// dial устанавливает websocket-соединение с событийным эндпоинтом
func (d *Dispatcher) dial(ctx context.Context) (*websocket.Conn, error) {
	wsURL, err := d.eventsURL()
	if err != nil {
		return nil, err
	}

	conn, resp, err := d.dialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial event stream: %w", err)
	}
	return conn, nil
}

// readLoop читает и раздает события до обрыва соединения или отмены контекста
func (d *Dispatcher) readLoop(ctx context.Context, conn *websocket.Conn) {
	// отмена контекста прерывает блокирующий ReadMessage
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame api.EventFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			d.logger.Warn("Failed to decode event frame", "error", err)
			continue
		}

		d.pubsub.publish(toEvent(&frame))
	}
}

// eventsURL строит websocket URL событийного эндпоинта из базового
// HTTP URL сервера. Токен передается query-параметром: браузерный
// websocket-handshake не несет заголовков.
func (d *Dispatcher) eventsURL() (string, error) {
	u, err := url.Parse(d.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse server url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	u.Path = "/api/v1/events"
	q := u.Query()
	q.Set("token", d.token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// backoff возвращает задержку переподключения: экспонента от базы
// с полным джиттером, чтобы клиенты не били в сервер синхронно
func (d *Dispatcher) backoff(attempt int) time.Duration {
	max := d.cfg.BackoffBase << uint(attempt)
	if max <= 0 || max > d.cfg.BackoffMax {
		max = d.cfg.BackoffMax
	}
	return time.Duration(rand.Int64N(int64(max)) + 1)
}

// toEvent преобразует wire-кадр во внутреннее событие
func toEvent(frame *api.EventFrame) *models.SyncEvent {
	return &models.SyncEvent{
		EventID:             frame.EventID,
		Entity:              models.EntityKind(frame.Entity),
		Action:              models.Action(frame.Action),
		EntityID:            frame.EntityID,
		ProjectID:           frame.ProjectID,
		OriginatorUserID:    frame.OriginatorUserID,
		OriginatorSessionID: frame.OriginatorSession,
		Payload:             frame.Payload,
		Timestamp:           frame.Timestamp,
	}
}
