package validation

import (
	"fmt"

	"github.com/iudanet/boardsync/internal/models"
)

// knownEntities закрытый набор допустимых типов сущностей
var knownEntities = buildKindSet()

// knownActions допустимые действия над сущностями
var knownActions = map[models.Action]bool{
	models.ActionCreated:   true,
	models.ActionUpdated:   true,
	models.ActionDeleted:   true,
	models.ActionReordered: true,
}

func buildKindSet() map[models.EntityKind]bool {
	set := make(map[models.EntityKind]bool)
	for _, kind := range models.KnownEntityKinds() {
		set[kind] = true
	}
	return set
}

// ValidateEvent проверяет форму SyncEvent перед fan-out.
// Требования:
//   - Entity из закрытого набора, Action из известных
//   - OriginatorUserID и OriginatorSessionID обязательны
//   - EntityID может быть пустым только для action "reordered"
//     (bulk-инвалидация всей коллекции)
func ValidateEvent(event *models.SyncEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	if !knownEntities[event.Entity] {
		return fmt.Errorf("unknown entity kind: %q", event.Entity)
	}

	if !knownActions[event.Action] {
		return fmt.Errorf("unknown action: %q", event.Action)
	}

	if event.OriginatorUserID == "" {
		return fmt.Errorf("originator user id cannot be empty")
	}

	if event.OriginatorSessionID == "" {
		return fmt.Errorf("originator session id cannot be empty")
	}

	if event.EntityID == "" && event.Action != models.ActionReordered {
		return fmt.Errorf("entity id can be empty only for %q events", models.ActionReordered)
	}

	return nil
}
