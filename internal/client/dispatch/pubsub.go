package dispatch

import (
	"sync"

	"github.com/iudanet/boardsync/internal/models"
)

// Handler обрабатывает одно событие синхронизации.
// Вызывается на горутине диспетчера: долгую работу хендлер
// переносит к себе, не блокируя доставку остальным.
type Handler func(event *models.SyncEvent)

// SignalHandler обрабатывает сигнал восстановления соединения
type SignalHandler func()

type subscription struct {
	handler Handler
	id      uint64
}

type signalSub struct {
	handler SignalHandler
	id      uint64
}

// PubSub маршрутизирует входящие события подписчикам по виду сущности.
//
// Подписчики одного вида вызываются последовательно, в порядке
// подписки, на каждое событие. Типизированный слой поверх сырого
// websocket-потока: потребители не знают про транспорт.
type PubSub struct {
	subs        map[models.EntityKind][]subscription
	reconnected []signalSub
	nextID      uint64
	mu          sync.Mutex
}

// NewPubSub creates a new subscription broker
func NewPubSub() *PubSub {
	return &PubSub{
		subs: make(map[models.EntityKind][]subscription),
	}
}

// Subscribe регистрирует хендлер на события вида сущности.
// Возвращает идемпотентную функцию отписки.
func (p *PubSub) Subscribe(entity models.EntityKind, handler Handler) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	id := p.nextID
	p.subs[entity] = append(p.subs[entity], subscription{id: id, handler: handler})

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		list := p.subs[entity]
		for i, sub := range list {
			if sub.id == id {
				p.subs[entity] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// SubscribeReconnected регистрирует хендлер сигнала восстановления
// соединения. Возвращает идемпотентную функцию отписки.
func (p *PubSub) SubscribeReconnected(handler SignalHandler) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	id := p.nextID
	p.reconnected = append(p.reconnected, signalSub{id: id, handler: handler})

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		for i, sub := range p.reconnected {
			if sub.id == id {
				p.reconnected = append(p.reconnected[:i], p.reconnected[i+1:]...)
				return
			}
		}
	}
}

// publish доставляет событие подписчикам его вида сущности.
// Хендлеры вызываются вне лока: подписка/отписка из хендлера не
// приводит к deadlock.
func (p *PubSub) publish(event *models.SyncEvent) {
	p.mu.Lock()
	list := p.subs[event.Entity]
	handlers := make([]Handler, 0, len(list))
	for _, sub := range list {
		handlers = append(handlers, sub.handler)
	}
	p.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// publishReconnected доставляет сигнал восстановления соединения
func (p *PubSub) publishReconnected() {
	p.mu.Lock()
	handlers := make([]SignalHandler, 0, len(p.reconnected))
	for _, sub := range p.reconnected {
		handlers = append(handlers, sub.handler)
	}
	p.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
}
