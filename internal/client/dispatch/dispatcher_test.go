package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/boardsync/internal/models"
	"github.com/iudanet/boardsync/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// eventServer тестовый websocket-сервер: отдает подготовленные кадры
// каждому подключившемуся клиенту
type eventServer struct {
	t      *testing.T
	server *httptest.Server
	frames []api.EventFrame
	tokens []string
	mu     sync.Mutex
}

func newEventServer(t *testing.T, frames []api.EventFrame) *eventServer {
	es := &eventServer{t: t, frames: frames}

	upgrader := websocket.Upgrader{}
	es.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/events", r.URL.Path)

		es.mu.Lock()
		es.tokens = append(es.tokens, r.URL.Query().Get("token"))
		es.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for _, frame := range frames {
			data, err := json.Marshal(frame)
			require.NoError(t, err)
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}

		// держим соединение, пока клиент не уйдет
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))

	t.Cleanup(es.server.Close)
	return es
}

func (es *eventServer) connectionTokens() []string {
	es.mu.Lock()
	defer es.mu.Unlock()
	return append([]string(nil), es.tokens...)
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	frames := []api.EventFrame{
		{
			EventID:           "01J00000000000000000000001",
			Entity:            "task",
			Action:            "created",
			EntityID:          "task-1",
			ProjectID:         "project-1",
			OriginatorUserID:  "alice",
			OriginatorSession: "s1",
			Timestamp:         100,
		},
		{
			EventID:           "01J00000000000000000000002",
			Entity:            "task",
			Action:            "deleted",
			EntityID:          "task-2",
			OriginatorUserID:  "bob",
			OriginatorSession: "s2",
			Timestamp:         101,
		},
	}
	es := newEventServer(t, frames)

	d := New(setupTestLogger(), es.server.URL, "test-token", Config{})

	var mu sync.Mutex
	var received []*models.SyncEvent
	d.Subscribe(models.EntityTask, func(event *models.SyncEvent) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, "task-1", received[0].EntityID)
	assert.Equal(t, models.ActionCreated, received[0].Action)
	assert.Equal(t, "alice", received[0].OriginatorUserID)
	assert.Equal(t, "s1", received[0].OriginatorSessionID)
	assert.Equal(t, int64(100), received[0].Timestamp)
	assert.Equal(t, "task-2", received[1].EntityID)

	// токен ушел query-параметром
	tokens := es.connectionTokens()
	require.NotEmpty(t, tokens)
	assert.Equal(t, "test-token", tokens[0])
}

func TestDispatcher_PublishesReconnectedOnEachConnect(t *testing.T) {
	es := newEventServer(t, nil)

	d := New(setupTestLogger(), es.server.URL, "test-token", Config{
		BackoffBase: 5 * time.Millisecond,
		BackoffMax:  20 * time.Millisecond,
	})

	var mu sync.Mutex
	signals := 0
	d.SubscribeReconnected(func() {
		mu.Lock()
		defer mu.Unlock()
		signals++
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return signals >= 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestDispatcher_ReconnectsAfterDrop(t *testing.T) {
	frames := []api.EventFrame{{
		EventID:           "01J00000000000000000000001",
		Entity:            "task",
		Action:            "created",
		EntityID:          "task-1",
		OriginatorUserID:  "alice",
		OriginatorSession: "s1",
	}}

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		// отдаем один кадр и рвем соединение
		data, err := json.Marshal(frames[0])
		require.NoError(t, err)
		_ = conn.WriteMessage(websocket.TextMessage, data)
		conn.Close()
	}))
	defer server.Close()

	d := New(setupTestLogger(), server.URL, "test-token", Config{
		BackoffBase: 5 * time.Millisecond,
		BackoffMax:  20 * time.Millisecond,
	})

	var mu sync.Mutex
	connects := 0
	d.SubscribeReconnected(func() {
		mu.Lock()
		defer mu.Unlock()
		connects++
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx)
	}()

	// после каждого обрыва клиент повторно подключается и публикует сигнал
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return connects >= 3
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestDispatcher_BackoffBounded(t *testing.T) {
	d := New(setupTestLogger(), "http://localhost:0", "token", Config{
		BackoffBase: time.Second,
		BackoffMax:  30 * time.Second,
	})

	for attempt := 0; attempt < 64; attempt++ {
		delay := d.backoff(attempt)
		assert.Positive(t, delay)
		assert.LessOrEqual(t, delay, 30*time.Second)
	}
}

func TestDispatcher_EventsURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{
			name:    "http to ws",
			baseURL: "http://example.com:8080",
			want:    "ws://example.com:8080/api/v1/events?token=tok",
		},
		{
			name:    "https to wss",
			baseURL: "https://example.com",
			want:    "wss://example.com/api/v1/events?token=tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(setupTestLogger(), tt.baseURL, "tok", Config{})
			got, err := d.eventsURL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
