package storage

import (
	"context"
	"time"
)

// Project представляет общий проект (доску)
type Project struct {
	CreatedAt time.Time `json:"created_at"` // CreatedAt время создания
	ID        string    `json:"id"`         // ID уникальный идентификатор (UUID)
	Name      string    `json:"name"`       // Name название проекта
	OwnerID   string    `json:"owner_id"`   // OwnerID пользователь-владелец
}

// Task представляет задачу на доске проекта
type Task struct {
	CreatedAt time.Time `json:"created_at"` // CreatedAt время создания
	UpdatedAt time.Time `json:"updated_at"` // UpdatedAt время последнего обновления
	ID        string    `json:"id"`         // ID уникальный идентификатор (UUID)
	ProjectID string    `json:"project_id"` // ProjectID проект задачи
	Title     string    `json:"title"`      // Title заголовок
	Status    string    `json:"status"`     // Status статус: "open", "done", ...
	Position  int64     `json:"position"`   // Position позиция в списке проекта
}

// BoardStorage определяет интерфейс хранилища доски.
// ListProjectMemberIDs - точка, где authorization-слой поставляет
// аудиторию события: "текущие участники затронутого проекта".
type BoardStorage interface {
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	AddProjectMember(ctx context.Context, projectID, userID string) error
	ListProjectMemberIDs(ctx context.Context, projectID string) ([]string, error)

	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, id string) error
	ReorderTasks(ctx context.Context, projectID string, orderedIDs []string) error
	ListProjectTasks(ctx context.Context, projectID string) ([]*Task, error)
}
