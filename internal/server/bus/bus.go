package bus

import (
	"crypto/rand"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/iudanet/boardsync/internal/models"
	"github.com/iudanet/boardsync/internal/validation"
	"github.com/iudanet/boardsync/pkg/api"
)

// Config содержит настройки шины событий и каналов доставки.
// IdleTimeout согласован с reconnect-ритмом клиента: сервер не должен
// прибивать канал, который клиент еще считает живым.
type Config struct {
	IdleTimeout  time.Duration // IdleTimeout read deadline канала (default 55s)
	PingInterval time.Duration // PingInterval период ping (default 20s)
	WriteTimeout time.Duration // WriteTimeout deadline записи одного frame (default 10s)
	SendBuffer   int           // SendBuffer размер очереди отправки канала (default 32)
	EmitBuffer   int           // EmitBuffer размер очереди fan-out (default 256)
}

// DefaultConfig возвращает настройки по умолчанию
func DefaultConfig() Config {
	return Config{
		IdleTimeout:  55 * time.Second,
		PingInterval: 20 * time.Second,
		WriteTimeout: 10 * time.Second,
		SendBuffer:   32,
		EmitBuffer:   256,
	}
}

// EmitOptions опции одной эмиссии
type EmitOptions struct {
	// SkipOrigin подавляет доставку события в точную пару
	// (user, session), которая его породила (self-echo suppression).
	// По умолчанию false: echo доставляется и в сессию автора.
	SkipOrigin bool
}

// emitJob одно задание fan-out
type emitJob struct {
	event      *models.SyncEvent
	skipOrigin bool
}

// Bus принимает дескриптор изменения от любой мутирующей операции
// и рассылает его по всем открытым каналам аудитории события.
//
// Доставка best-effort, at-most-once на канал: слой ничего не персистит
// и не ретраит. Ошибка записи сносит только свой канал. События
// доставляются в канал в порядке вызова Emit (fan-out сериализован одной
// горутиной); межканального порядка нет.
//
// Bus монопольно владеет своим Registry.
type Bus struct {
	logger   *slog.Logger
	registry *Registry
	emitCh   chan emitJob
	done     chan struct{}
	entropy  *ulid.MonotonicEntropy
	cfg      Config
	wg       sync.WaitGroup
	tsMu     sync.Mutex
	idMu     sync.Mutex
	lastTS   int64
	closeOne sync.Once
}

// New создает шину событий и запускает ее fan-out горутину.
// Нулевые поля cfg заменяются значениями по умолчанию.
func New(logger *slog.Logger, cfg Config) *Bus {
	def := DefaultConfig()
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = def.SendBuffer
	}
	if cfg.EmitBuffer <= 0 {
		cfg.EmitBuffer = def.EmitBuffer
	}

	b := &Bus{
		logger:   logger,
		registry: NewRegistry(),
		emitCh:   make(chan emitJob, cfg.EmitBuffer),
		done:     make(chan struct{}),
		entropy:  ulid.Monotonic(rand.Reader, 0),
		cfg:      cfg,
	}

	b.wg.Add(1)
	go b.run()

	return b
}

// Attach регистрирует websocket-соединение как канал доставки
// для пары (user, session) и запускает его pumps.
// Повторная регистрация той же пары вытесняет старый канал.
func (b *Bus) Attach(conn wsConn, userID, sessionID string) *Channel {
	ch := newChannel(conn, userID, sessionID, b.logger, b.cfg, func(closed *Channel) {
		b.registry.Unregister(closed)
		b.logger.Info("channel unregistered",
			"user_id", closed.UserID,
			"session_id", closed.SessionID,
			"open_channels", b.registry.Len())
	})

	if prev := b.registry.Register(ch); prev != nil {
		b.logger.Info("channel replaced by reconnect",
			"user_id", prev.UserID,
			"session_id", prev.SessionID)
		prev.Close()
	}

	ch.run()

	b.logger.Info("channel registered",
		"user_id", userID,
		"session_id", sessionID,
		"open_channels", b.registry.Len())

	return ch
}

// Emit валидирует событие, резолвит аудиторию и ставит его в очередь
// fan-out. Возвращается сразу: сама доставка происходит на горутине шины
// с собственной границей ошибок, чтобы сбой доставки не влиял на уже
// отправленный HTTP-ответ мутирующего запроса.
//
// Пустая аудитория заменяется на [OriginatorUserID]. Timestamp и EventID
// присваиваются здесь: монотонные миллисекунды процесса и ULID.
func (b *Bus) Emit(event *models.SyncEvent, opts EmitOptions) error {
	if err := validation.ValidateEvent(event); err != nil {
		return err
	}

	ev := event.Clone()
	if len(ev.TargetUserIDs) == 0 {
		ev.TargetUserIDs = []string{ev.OriginatorUserID}
	}
	ev.Timestamp = b.nextTimestamp()
	ev.EventID = b.newEventID()

	select {
	case <-b.done:
		return ErrBusClosed
	default:
	}

	select {
	case b.emitCh <- emitJob{event: ev, skipOrigin: opts.SkipOrigin}:
		return nil
	default:
		// переполнение очереди наблюдаемо, а не молча проглочено
		b.logger.Error("emit queue overflow",
			"entity", ev.Entity,
			"entity_id", ev.EntityID)
		return ErrEmitOverflow
	}
}

// OpenChannels возвращает количество открытых каналов доставки
func (b *Bus) OpenChannels() int {
	return b.registry.Len()
}

// Close останавливает fan-out и сносит все открытые каналы
func (b *Bus) Close() {
	b.closeOne.Do(func() {
		close(b.done)
		b.wg.Wait()
		for _, ch := range b.registry.All() {
			ch.Close()
		}
	})
}

// run сериализует fan-out: одна горутина - источник всех записей
// в каналы, что дает порядок доставки в канал равный порядку Emit
func (b *Bus) run() {
	defer b.wg.Done()

	for {
		select {
		case job := <-b.emitCh:
			b.fanOut(job)
		case <-b.done:
			return
		}
	}
}

// fanOut доставляет одно событие всем каналам аудитории.
// Граница ошибок fan-out: panic в доставке логируется и не валит процесс.
func (b *Bus) fanOut(job emitJob) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic during event fan-out",
				"panic", r,
				"event_id", job.event.EventID)
		}
	}()

	frame, err := json.Marshal(toFrame(job.event))
	if err != nil {
		b.logger.Error("failed to marshal event frame",
			"error", err,
			"event_id", job.event.EventID)
		return
	}

	channels := b.registry.ChannelsForUsers(job.event.TargetUserIDs)
	delivered := 0

	for _, ch := range channels {
		if job.skipOrigin &&
			ch.UserID == job.event.OriginatorUserID &&
			ch.SessionID == job.event.OriginatorSessionID {
			continue
		}

		if err := ch.Send(frame); err != nil {
			// ошибка доставки локальна для канала: сносим его,
			// остальных каналов это не касается
			b.logger.Warn("event delivery failed, tearing down channel",
				"error", err,
				"event_id", job.event.EventID,
				"user_id", ch.UserID,
				"session_id", ch.SessionID)
			ch.Close()
			continue
		}
		delivered++
	}

	b.logger.Debug("event fanned out",
		"event_id", job.event.EventID,
		"entity", job.event.Entity,
		"action", job.event.Action,
		"audience", len(job.event.TargetUserIDs),
		"delivered", delivered)
}

// nextTimestamp возвращает монотонно растущие миллисекунды.
// Два события, эмитированные в одну миллисекунду, получают разные
// timestamps: порядок внутри потока одного канала авторитетен.
func (b *Bus) nextTimestamp() int64 {
	b.tsMu.Lock()
	defer b.tsMu.Unlock()

	now := time.Now().UnixMilli()
	if now <= b.lastTS {
		now = b.lastTS + 1
	}
	b.lastTS = now
	return now
}

// newEventID генерирует ULID события
func (b *Bus) newEventID() string {
	b.idMu.Lock()
	defer b.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), b.entropy).String()
}

// toFrame конвертирует событие в wire-формат
func toFrame(event *models.SyncEvent) api.EventFrame {
	return api.EventFrame{
		EventID:           event.EventID,
		Entity:            string(event.Entity),
		Action:            string(event.Action),
		EntityID:          event.EntityID,
		ProjectID:         event.ProjectID,
		OriginatorUserID:  event.OriginatorUserID,
		OriginatorSession: event.OriginatorSessionID,
		Payload:           event.Payload,
		Timestamp:         event.Timestamp,
	}
}
