package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/iudanet/boardsync/pkg/api"
)

func (c *Cli) runAddTask(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: boardsync add <project_id> <title>")
	}
	projectID, title := args[0], args[1]

	body, err := marshalBody(api.CreateTaskRequest{ProjectID: projectID, Title: title})
	if err != nil {
		return err
	}

	return c.mutate(ctx, api.MutationRequest{
		Method: http.MethodPost,
		Path:   "/api/v1/tasks",
		Body:   body,
	})
}

func (c *Cli) runUpdateTask(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: boardsync update <task_id> <field> <value>")
	}
	taskID, field, value := args[0], args[1], args[2]

	var req api.UpdateTaskRequest
	switch field {
	case "title":
		req.Title = &value
	case "status":
		req.Status = &value
	default:
		return fmt.Errorf("unknown field: %s (expected title or status)", field)
	}

	body, err := marshalBody(req)
	if err != nil {
		return err
	}

	return c.mutate(ctx, api.MutationRequest{
		Method: http.MethodPatch,
		Path:   fmt.Sprintf("/api/v1/tasks/%s", taskID),
		Body:   body,
	})
}

func (c *Cli) runDeleteTask(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: boardsync delete <task_id>")
	}
	taskID := args[0]

	return c.mutate(ctx, api.MutationRequest{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/api/v1/tasks/%s", taskID),
	})
}

func (c *Cli) runReorderTasks(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: boardsync reorder <project_id> <task_id>...")
	}
	projectID := args[0]

	body, err := marshalBody(api.ReorderTasksRequest{ProjectID: projectID, OrderedIDs: args[1:]})
	if err != nil {
		return err
	}

	return c.mutate(ctx, api.MutationRequest{
		Method: http.MethodPost,
		Path:   "/api/v1/tasks/reorder",
		Body:   body,
	})
}

// runListTasks читает snapshot задач напрямую с сервера.
// Чтение не мутация: в оффлайн-очередь не попадает.
func (c *Cli) runListTasks(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: boardsync tasks <project_id>")
	}
	projectID := args[0]

	body, err := c.apiClient.Do(ctx, api.MutationRequest{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/v1/projects/%s/tasks", projectID),
	})
	if err != nil {
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}

	var tasks []api.TaskResponse
	if err := json.Unmarshal(body, &tasks); err != nil {
		return fmt.Errorf("failed to decode tasks: %w", err)
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks")
		return nil
	}

	for _, task := range tasks {
		fmt.Printf("%3d  %-36s  %-12s  %s\n", task.Position, task.ID, task.Status, task.Title)
	}
	return nil
}
