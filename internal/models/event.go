package models

// EntityKind тип синхронизируемой сущности.
// Закрытый набор: события с неизвестным kind отбрасываются на валидации.
type EntityKind string

// Известные типы сущностей
const (
	EntityTask     EntityKind = "task"
	EntityProject  EntityKind = "project"
	EntityCategory EntityKind = "category"
	EntityLabel    EntityKind = "label"
	EntityNote     EntityKind = "note"
	EntityMember   EntityKind = "member"
)

// KnownEntityKinds возвращает полный набор поддерживаемых типов сущностей
func KnownEntityKinds() []EntityKind {
	return []EntityKind{
		EntityTask,
		EntityProject,
		EntityCategory,
		EntityLabel,
		EntityNote,
		EntityMember,
	}
}

// Action тип изменения сущности
type Action string

// Известные действия
const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionDeleted   Action = "deleted"
	ActionReordered Action = "reordered"
)

// SyncEvent представляет один факт "сущность X изменилась действием Y",
// рассылаемый всем заинтересованным сессиям.
//
// EntityID может быть пустым только для bulk "reordered" - это означает
// "инвалидируй всю коллекцию". TargetUserIDs резолвится внешним
// authorization-слоем (обычно текущие участники проекта); при пустом
// списке Bus подставляет [OriginatorUserID].
//
// Timestamp - монотонно растущие миллисекунды процесса-эмиттера.
// Порядок по Timestamp авторитетен только внутри потока доставки одного
// канала, никогда между независимыми источниками.
type SyncEvent struct {
	TargetUserIDs       []string   `json:"target_user_ids"`
	Payload             []byte     `json:"payload,omitempty"`
	EventID             string     `json:"event_id"`
	Entity              EntityKind `json:"entity"`
	Action              Action     `json:"action"`
	EntityID            string     `json:"entity_id,omitempty"`
	ProjectID           string     `json:"project_id,omitempty"`
	OriginatorUserID    string     `json:"originator_user_id"`
	OriginatorSessionID string     `json:"originator_session_id"`
	Timestamp           int64      `json:"timestamp"`
}

// Clone создает глубокую копию события
func (e *SyncEvent) Clone() *SyncEvent {
	targets := make([]string, len(e.TargetUserIDs))
	copy(targets, e.TargetUserIDs)

	var payload []byte
	if e.Payload != nil {
		payload = make([]byte, len(e.Payload))
		copy(payload, e.Payload)
	}

	clone := *e
	clone.TargetUserIDs = targets
	clone.Payload = payload
	return &clone
}
