// Package refetch реализует consumer сигналов реконсиляции.
//
// Событие синхронизации несет факт изменения, но не гарантирует полноту
// картины: действительным источником истины остается сервер. Consumer
// схлопывает всплеск событий в один отложенный refetch, а грубые сигналы
// (reconnect, дрейн очереди) выполняет немедленно.
package refetch

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounce окно схлопывания всплеска событий
const DefaultDebounce = 2 * time.Second

// Refetcher откладывает и схлопывает вызовы перечитывания состояния
type Refetcher struct {
	logger   *slog.Logger
	fetch    func()
	timer    *time.Timer
	debounce time.Duration
	mu       sync.Mutex
	stopped  bool
}

// New creates a new debounced refetcher.
// fetch вызывается на фоновой горутине таймера либо синхронно из OnSignal.
func New(logger *slog.Logger, debounce time.Duration, fetch func()) *Refetcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Refetcher{
		logger:   logger,
		fetch:    fetch,
		debounce: debounce,
	}
}

// OnEvent планирует отложенный refetch.
// Каждое событие внутри окна сдвигает срабатывание: всплеск из N
// событий приводит к одному fetch после затишья.
func (r *Refetcher) OnEvent() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}

	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, func() {
		r.logger.Debug("Refetching after event burst")
		r.fetch()
	})
}

// OnSignal выполняет refetch немедленно.
// Грубый сигнал (reconnect, дрейн очереди) означает неизвестный объем
// пропущенных изменений: ждать затишья нечего. Отложенный refetch,
// если был запланирован, отменяется - немедленный его покрывает.
func (r *Refetcher) OnSignal() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.mu.Unlock()

	r.logger.Debug("Refetching on reconciliation signal")
	r.fetch()
}

// Stop отменяет запланированный refetch и блокирует дальнейшие
func (r *Refetcher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
