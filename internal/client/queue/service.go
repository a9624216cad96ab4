package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	httpClient "github.com/iudanet/boardsync/internal/client/api"
	"github.com/iudanet/boardsync/internal/client/storage"
	"github.com/iudanet/boardsync/internal/models"
	"github.com/iudanet/boardsync/pkg/api"
)

//go:generate moq -out sender_mock.go . Sender

// Sender определяет интерфейс доставки одного мутационного запроса.
// Реализуется клиентским HTTP API; контракт: ошибки всегда
// классифицированы как *api.RequestError.
type Sender interface {
	Do(ctx context.Context, mutation api.MutationRequest) ([]byte, error)
}

// Config содержит настройки очереди.
// Значения - tunables, а не константы: лимит попыток и период
// страховочного replay подбираются под профиль связи клиента.
type Config struct {
	// MaxAttempts лимит replay-попыток одной мутации (default 10).
	// По достижении мутация отбрасывается и репортится - она никогда
	// не может заблокировать очередь навсегда.
	MaxAttempts int

	// ReplayInterval период страховочного replay при непустой очереди
	// (default 30s) - на случай пропуска самого события reconnect
	ReplayInterval time.Duration
}

// DefaultConfig возвращает настройки очереди по умолчанию
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    10,
		ReplayInterval: 30 * time.Second,
	}
}

// Result представляет результат мутационного вызова через очередь
type Result struct {
	Body       []byte // Body тело ответа сервера (немедленный успех)
	MutationID string // MutationID идентификатор поставленной в очередь мутации
	Queued     bool   // Queued true, если мутация принята в очередь
}

// Service оборачивает исходящие мутационные вызовы.
//
// Немедленный успех проходит насквозь. Transient-сбой durable-персистит
// мутацию и возвращает синтетический "accepted/queued" результат, чтобы
// оптимистичный UI не блокировался на связности. Application-отказ
// сервера никогда не ставится в очередь: его replay детерминированно
// воспроизвел бы тот же отказ.
//
// Replay строго сериализован, FIFO, по одной мутации. Очередью владеет
// один browsing context; независимые контексты не координируются.
type Service struct {
	sender    Sender
	queue     storage.QueueStorage
	discarded storage.DiscardedStorage
	logger    *slog.Logger
	onDiscard func(*models.DiscardedMutation)
	onDrain   func()
	trigger   chan struct{}
	cfg       Config
	replayMu  sync.Mutex
}

// NewService creates a new mutation queue service
func NewService(
	sender Sender,
	queueStorage storage.QueueStorage,
	discardedStorage storage.DiscardedStorage,
	logger *slog.Logger,
	cfg Config,
) *Service {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.ReplayInterval <= 0 {
		cfg.ReplayInterval = def.ReplayInterval
	}

	return &Service{
		sender:    sender,
		queue:     queueStorage,
		discarded: discardedStorage,
		logger:    logger,
		trigger:   make(chan struct{}, 1),
		cfg:       cfg,
	}
}

// OnDiscard устанавливает callback отчета об отброшенной мутации.
// Вызывается ровно один раз на каждую отброшенную мутацию.
// Должен быть установлен до Run.
func (s *Service) OnDiscard(fn func(*models.DiscardedMutation)) {
	s.onDiscard = fn
}

// OnDrain устанавливает callback сигнала реконсиляции: очередь
// опустела после хотя бы одного успешного replay. Должен быть
// установлен до Run.
func (s *Service) OnDrain(fn func()) {
	s.onDrain = fn
}

// Do выполняет мутацию через очередь.
// Вызывающий ждет только немедленную сетевую попытку, никогда -
// backlog впереди нее.
func (s *Service) Do(ctx context.Context, mutation api.MutationRequest) (*Result, error) {
	// Непустая очередь: новая мутация обязана встать за backlog,
	// иначе прямой вызов обгонит зависимые мутации впереди
	// (update не должен прийти на сервер раньше своего create)
	pending, err := s.queue.Len(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check queue length: %w", err)
	}
	if pending > 0 {
		return s.enqueue(ctx, mutation, "queued behind pending mutations")
	}

	body, err := s.sender.Do(ctx, mutation)
	if err == nil {
		return &Result{Body: body}, nil
	}

	if httpClient.IsTransient(err) {
		return s.enqueue(ctx, mutation, err.Error())
	}

	// Application-отказ (или программная ошибка): немедленно наверх
	return nil, err
}

// TriggerReplay запрашивает replay очереди.
// Не блокируется; повторные запросы во время работающего replay
// схлопываются в один.
func (s *Service) TriggerReplay() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run выполняет replay-цикл до отмены контекста.
// Replay запускается по TriggerReplay (переход offline->online)
// и по страховочному тикеру.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ReplayInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.trigger:
			s.replay(ctx)
		case <-ticker.C:
			s.replay(ctx)
		}
	}
}

// PendingCount возвращает количество мутаций, ожидающих replay
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	return s.queue.Len(ctx)
}

// Discarded возвращает durable записи об отброшенных мутациях
func (s *Service) Discarded(ctx context.Context) ([]*models.DiscardedMutation, error) {
	return s.discarded.ListDiscarded(ctx)
}

// enqueue персистит мутацию и возвращает синтетический accepted-результат
func (s *Service) enqueue(ctx context.Context, mutation api.MutationRequest, reason string) (*Result, error) {
	queued := &models.QueuedMutation{
		ID:         uuid.NewString(),
		Method:     mutation.Method,
		Path:       mutation.Path,
		Headers:    mutation.Headers,
		Body:       mutation.Body,
		EnqueuedAt: time.Now(),
		LastError:  reason,
	}

	if err := s.queue.Enqueue(ctx, queued); err != nil {
		return nil, fmt.Errorf("failed to persist mutation: %w", err)
	}

	s.logger.Info("Mutation queued",
		"mutation_id", queued.ID,
		"method", queued.Method,
		"path", queued.Path,
		"reason", reason)

	s.TriggerReplay()

	return &Result{Queued: true, MutationID: queued.ID}, nil
}

// replay последовательно доставляет мутации с головы очереди.
//
// Transient-сбой головы останавливает replay на этой позиции: пропуск
// нарушил бы порядок зависимых мутаций позади нее. Application-отказ
// дисквалифицирует только голову: она отбрасывается, репортится, и
// replay продолжается со следующей. Полный дрейн после >= 1 успешной
// доставки поднимает сигнал реконсиляции.
func (s *Service) replay(ctx context.Context) {
	s.replayMu.Lock()
	defer s.replayMu.Unlock()

	successes := 0

	for {
		if ctx.Err() != nil {
			return
		}

		head, err := s.queue.Head(ctx)
		if errors.Is(err, storage.ErrQueueEmpty) {
			if successes > 0 {
				s.logger.Info("Mutation queue drained", "delivered", successes)
				if s.onDrain != nil {
					s.onDrain()
				}
			}
			return
		}
		if err != nil {
			s.logger.Error("Failed to read queue head", "error", err)
			return
		}

		head.Attempts++

		// тело ответа при replay некому отдать: вызывающий давно ушел
		_, err = s.sender.Do(ctx, api.MutationRequest{
			Method:  head.Method,
			Path:    head.Path,
			Headers: head.Headers,
			Body:    head.Body,
		})
		if err == nil {
			if err := s.queue.Delete(ctx, head.Seq); err != nil {
				s.logger.Error("Failed to dequeue delivered mutation",
					"error", err,
					"mutation_id", head.ID)
				return
			}
			successes++
			s.logger.Info("Queued mutation delivered",
				"mutation_id", head.ID,
				"attempts", head.Attempts)
			continue
		}

		if httpClient.IsApplication(err) {
			s.discard(ctx, head, fmt.Sprintf("server rejected mutation: %v", err))
			continue
		}

		// Transient: мутация сохраняется, replay встает на паузу.
		// Неклассифицированная ошибка попадает сюда же - это
		// безопасная сторона, мутация не теряется.
		head.LastError = err.Error()

		if head.Attempts >= s.cfg.MaxAttempts {
			s.discard(ctx, head, fmt.Sprintf("attempts ceiling reached (%d): %v", s.cfg.MaxAttempts, err))
			continue
		}

		if updateErr := s.queue.Update(ctx, head); updateErr != nil {
			s.logger.Error("Failed to persist mutation attempts",
				"error", updateErr,
				"mutation_id", head.ID)
		}

		s.logger.Warn("Replay paused at queue head",
			"mutation_id", head.ID,
			"attempts", head.Attempts,
			"error", err)
		return
	}
}

// discard переводит мутацию в терминальное discarded-состояние.
// Никогда молча: durable запись плюс ровно один report наверх.
func (s *Service) discard(ctx context.Context, head *models.QueuedMutation, reason string) {
	if err := s.queue.Delete(ctx, head.Seq); err != nil {
		s.logger.Error("Failed to dequeue mutation for discard",
			"error", err,
			"mutation_id", head.ID)
		return
	}

	discarded := &models.DiscardedMutation{
		DiscardedAt: time.Now(),
		Mutation:    *head,
		Reason:      reason,
	}

	if err := s.discarded.SaveDiscarded(ctx, discarded); err != nil {
		s.logger.Error("Failed to save discarded mutation",
			"error", err,
			"mutation_id", head.ID)
	}

	s.logger.Warn("Mutation discarded",
		"mutation_id", head.ID,
		"attempts", head.Attempts,
		"reason", reason)

	if s.onDiscard != nil {
		s.onDiscard(discarded)
	}
}
