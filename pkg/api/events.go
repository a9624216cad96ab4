package api

// EventFrame представляет один SyncEvent на проводе.
// Один event = один websocket frame. Все идентификаторы сериализуются
// строками, timestamp - целое число миллисекунд от epoch.
type EventFrame struct {
	EventID           string `json:"event_id"`              // EventID уникальный ULID события
	Entity            string `json:"entity"`                // Entity тип сущности: "task", "project", ...
	Action            string `json:"action"`                // Action: "created", "updated", "deleted", "reordered"
	EntityID          string `json:"entity_id,omitempty"`   // EntityID пустой только для bulk "reordered"
	ProjectID         string `json:"project_id,omitempty"`  // ProjectID затронутый проект (опционально)
	OriginatorUserID  string `json:"originator_user_id"`    // OriginatorUserID автор изменения
	OriginatorSession string `json:"originator_session_id"` // OriginatorSession сессия автора
	Payload           []byte `json:"payload,omitempty"`     // Payload сериализованный snapshot сущности
	Timestamp         int64  `json:"timestamp"`             // Timestamp монотонные миллисекунды процесса-эмиттера
}
