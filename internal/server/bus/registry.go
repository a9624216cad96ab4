package bus

import "sync"

// channelKey ключ канала: пара (user, session)
type channelKey struct {
	userID    string
	sessionID string
}

// Registry отслеживает один живой транспорт на пару (user, session).
// Чистый bookkeeping без бизнес-логики. Явный объект с собственным
// жизненным циклом, создается и принадлежит Bus: несколько изолированных
// инстансов (тесты, multi-tenant) сосуществуют без скрытого общего
// состояния. Единственная требуемая атомарность - insert/remove
// отдельных записей.
type Registry struct {
	channels map[channelKey]*Channel
	mu       sync.Mutex
}

// NewRegistry создает пустой registry каналов
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[channelKey]*Channel),
	}
}

// Register регистрирует канал, возвращая вытесненный предыдущий канал
// той же пары (user, session), если он был. Teardown вытесненного канала -
// обязанность вызывающего (вне нашего lock).
func (r *Registry) Register(ch *Channel) *Channel {
	key := channelKey{userID: ch.UserID, sessionID: ch.SessionID}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.channels[key]
	r.channels[key] = ch
	return prev
}

// Unregister снимает канал с регистрации.
// Удаляет запись только если она указывает на этот же канал:
// защита от гонки, когда пара (user, session) уже переподключилась.
func (r *Registry) Unregister(ch *Channel) {
	key := channelKey{userID: ch.UserID, sessionID: ch.SessionID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.channels[key]; ok && current == ch {
		delete(r.channels, key)
	}
}

// ChannelsForUsers возвращает все открытые каналы, принадлежащие
// пользователям из audience
func (r *Registry) ChannelsForUsers(userIDs []string) []*Channel {
	audience := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		audience[id] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*Channel
	for key, ch := range r.channels {
		if audience[key.userID] {
			result = append(result, ch)
		}
	}
	return result
}

// All возвращает все открытые каналы
func (r *Registry) All() []*Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		result = append(result, ch)
	}
	return result
}

// Len возвращает количество открытых каналов
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}
