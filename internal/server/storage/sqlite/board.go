package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/boardsync/internal/server/storage"
)

// CreateProject создает новый проект
func (s *Storage) CreateProject(ctx context.Context, project *storage.Project) error {
	query := `INSERT INTO projects (id, name, owner_id, created_at) VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		project.ID,
		project.Name,
		project.OwnerID,
		project.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	// Владелец всегда участник своего проекта
	if err := s.AddProjectMember(ctx, project.ID, project.OwnerID); err != nil &&
		!errors.Is(err, storage.ErrMemberAlreadyExists) {
		return fmt.Errorf("failed to add owner as member: %w", err)
	}

	return nil
}

// GetProject возвращает проект по ID
func (s *Storage) GetProject(ctx context.Context, id string) (*storage.Project, error) {
	query := `SELECT id, name, owner_id, created_at FROM projects WHERE id = ?`

	var project storage.Project
	var createdAt int64

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.OwnerID,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	project.CreatedAt = time.Unix(createdAt, 0)
	return &project, nil
}

// AddProjectMember добавляет участника в проект
func (s *Storage) AddProjectMember(ctx context.Context, projectID, userID string) error {
	query := `INSERT INTO project_members (project_id, user_id) VALUES (?, ?)
		ON CONFLICT (project_id, user_id) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrMemberAlreadyExists
	}

	return nil
}

// ListProjectMemberIDs возвращает всех текущих участников проекта.
// Это резолвер аудитории для SyncEvent.
func (s *Storage) ListProjectMemberIDs(ctx context.Context, projectID string) ([]string, error) {
	query := `SELECT user_id FROM project_members WHERE project_id = ? ORDER BY user_id`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// CreateTask создает задачу, помещая ее в конец списка проекта
func (s *Storage) CreateTask(ctx context.Context, task *storage.Task) error {
	query := `
		INSERT INTO tasks (id, project_id, title, status, position, created_at, updated_at)
		VALUES (?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM tasks WHERE project_id = ?),
			?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.ProjectID,
		task.Title,
		task.Status,
		task.ProjectID,
		task.CreatedAt.Unix(),
		task.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	// Читаем присвоенную позицию обратно
	row := s.db.QueryRowContext(ctx, `SELECT position FROM tasks WHERE id = ?`, task.ID)
	if err := row.Scan(&task.Position); err != nil {
		return fmt.Errorf("failed to read task position: %w", err)
	}

	return nil
}

// GetTask возвращает задачу по ID
func (s *Storage) GetTask(ctx context.Context, id string) (*storage.Task, error) {
	query := `
		SELECT id, project_id, title, status, position, created_at, updated_at
		FROM tasks WHERE id = ?
	`

	var task storage.Task
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Status,
		&task.Position,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	task.CreatedAt = time.Unix(createdAt, 0)
	task.UpdatedAt = time.Unix(updatedAt, 0)
	return &task, nil
}

// UpdateTask обновляет заголовок и статус задачи
func (s *Storage) UpdateTask(ctx context.Context, task *storage.Task) error {
	query := `UPDATE tasks SET title = ?, status = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Status,
		task.UpdatedAt.Unix(),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrTaskNotFound
	}

	return nil
}

// DeleteTask удаляет задачу
func (s *Storage) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrTaskNotFound
	}

	return nil
}

// ReorderTasks атомарно переписывает позиции задач проекта
// в порядке orderedIDs
func (s *Storage) ReorderTasks(ctx context.Context, projectID string, orderedIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE tasks SET position = ?, updated_at = ? WHERE id = ? AND project_id = ?`
	now := time.Now().Unix()

	for i, id := range orderedIDs {
		if _, err := tx.ExecContext(ctx, query, int64(i+1), now, id, projectID); err != nil {
			return fmt.Errorf("failed to reposition task %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}

	return nil
}

// ListProjectTasks возвращает задачи проекта в порядке позиций
func (s *Storage) ListProjectTasks(ctx context.Context, projectID string) ([]*storage.Task, error) {
	query := `
		SELECT id, project_id, title, status, position, created_at, updated_at
		FROM tasks WHERE project_id = ? ORDER BY position
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*storage.Task
	for rows.Next() {
		var task storage.Task
		var createdAt, updatedAt int64

		if err := rows.Scan(
			&task.ID,
			&task.ProjectID,
			&task.Title,
			&task.Status,
			&task.Position,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		task.CreatedAt = time.Unix(createdAt, 0)
		task.UpdatedAt = time.Unix(updatedAt, 0)
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}
