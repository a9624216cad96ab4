package api

// CreateTaskRequest представляет запрос на создание задачи
type CreateTaskRequest struct {
	ProjectID string `json:"project_id"` // ProjectID проект, в котором создается задача
	Title     string `json:"title"`      // Title заголовок задачи
	Status    string `json:"status"`     // Status начальный статус (по умолчанию "open")
}

// UpdateTaskRequest представляет запрос на частичное обновление задачи
type UpdateTaskRequest struct {
	Title  *string `json:"title,omitempty"`  // Title новый заголовок (nil = не менять)
	Status *string `json:"status,omitempty"` // Status новый статус (nil = не менять)
}

// ReorderTasksRequest представляет запрос на переупорядочивание задач проекта
type ReorderTasksRequest struct {
	ProjectID  string   `json:"project_id"`  // ProjectID проект
	OrderedIDs []string `json:"ordered_ids"` // OrderedIDs полный новый порядок задач
}

// CreateProjectRequest представляет запрос на создание проекта
type CreateProjectRequest struct {
	Name string `json:"name"` // Name название проекта
}

// AddMemberRequest представляет запрос на добавление участника проекта
type AddMemberRequest struct {
	UserID string `json:"user_id"` // UserID добавляемый участник
}

// TaskResponse представляет задачу в ответе сервера
type TaskResponse struct {
	ID        string `json:"id"`         // ID задачи
	ProjectID string `json:"project_id"` // ProjectID проект задачи
	Title     string `json:"title"`      // Title заголовок
	Status    string `json:"status"`     // Status текущий статус
	Position  int64  `json:"position"`   // Position позиция в списке проекта
}
