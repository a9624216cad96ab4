package models

import "time"

// QueuedMutation представляет мутацию, которую не удалось доставить
// немедленно из-за сетевой ошибки. Хранится в durable очереди клиента
// до успешного replay или до превышения лимита попыток.
//
// Жизненный цикл: pending -> in-flight -> {delivered | transient-failure ->
// pending | permanent-failure -> discarded}.
type QueuedMutation struct {
	EnqueuedAt time.Time         `json:"enqueued_at"`          // EnqueuedAt момент постановки в очередь
	Headers    map[string]string `json:"headers,omitempty"`    // Headers снимок заголовков запроса
	Body       []byte            `json:"body,omitempty"`       // Body снимок тела запроса
	ID         string            `json:"id"`                   // ID клиентский уникальный идентификатор (UUID)
	Method     string            `json:"method"`               // Method HTTP метод
	Path       string            `json:"path"`                 // Path путь запроса
	LastError  string            `json:"last_error,omitempty"` // LastError текст последней ошибки доставки
	Seq        uint64            `json:"seq"`                  // Seq позиция в FIFO очереди (ключ в storage)
	Attempts   int               `json:"attempts"`             // Attempts число выполненных replay-попыток
}

// DiscardedMutation представляет терминальную запись об отброшенной мутации.
// Отброшенные мутации никогда не удаляются молча: запись остается в storage
// и поднимается в пользовательский контекст ровно один раз.
type DiscardedMutation struct {
	DiscardedAt time.Time      `json:"discarded_at"` // DiscardedAt момент отбрасывания
	Mutation    QueuedMutation `json:"mutation"`     // Mutation исходная мутация
	Reason      string         `json:"reason"`       // Reason причина: ответ сервера или лимит попыток
}
