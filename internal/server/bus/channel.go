package bus

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn минимальный интерфейс websocket-соединения.
// Реализуется *websocket.Conn; в тестах подменяется фейком.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Channel представляет один живой транспорт сервер->клиент,
// привязанный к паре (user, session). Эфемерный: создается при
// открытии соединения, уничтожается при разрыве или idle timeout.
// Не персистится - восстановление после разрыва делает клиент
// через reconnect.
type Channel struct {
	conn      wsConn
	logger    *slog.Logger
	send      chan []byte
	done      chan struct{}
	onClose   func(*Channel)
	UserID    string
	SessionID string
	cfg       Config
	closeOnce sync.Once
}

func newChannel(conn wsConn, userID, sessionID string, logger *slog.Logger, cfg Config, onClose func(*Channel)) *Channel {
	return &Channel{
		conn:      conn,
		logger:    logger,
		send:      make(chan []byte, cfg.SendBuffer),
		done:      make(chan struct{}),
		onClose:   onClose,
		UserID:    userID,
		SessionID: sessionID,
		cfg:       cfg,
	}
}

// Send ставит frame в очередь отправки канала.
// Не блокируется: переполненный буфер означает медленного потребителя
// и трактуется как ошибка доставки (канал будет снесен вызывающим).
func (c *Channel) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrChannelClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrChannelClosed
	default:
		return ErrChannelFull
	}
}

// Close разрывает соединение и снимает канал с регистрации.
// Идемпотентен: безопасен при гонке teardown из write/read pump.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.conn.Close(); err != nil {
			c.logger.Debug("channel conn close", "error", err)
		}
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}

// run запускает write и read pump канала
func (c *Channel) run() {
	go c.writePump()
	go c.readPump()
}

// writePump последовательно пишет frames из очереди отправки
// и шлет ping каждые PingInterval. Любая ошибка записи разрывает канал:
// на этом уровне доставка best-effort, at-most-once, без retry.
func (c *Channel) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				c.teardown("set write deadline", err)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.teardown("write frame", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				c.teardown("set write deadline", err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.teardown("write ping", err)
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump следит за живостью соединения.
// Read deadline обновляется на каждый pong; молчание дольше IdleTimeout
// или ошибка чтения разрывают канал. Входящие frames игнорируются:
// канал доставки строго односторонний.
func (c *Channel) readPump() {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.IdleTimeout)); err != nil {
		c.teardown("set read deadline", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.IdleTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.teardown("read", err)
			return
		}
	}
}

// teardown логирует причину разрыва и закрывает канал
func (c *Channel) teardown(op string, err error) {
	select {
	case <-c.done:
		// канал уже закрыт, не шумим в лог повторно
		return
	default:
	}

	c.logger.Debug("channel torn down",
		"op", op,
		"user_id", c.UserID,
		"session_id", c.SessionID,
		"error", err)
	c.Close()
}
