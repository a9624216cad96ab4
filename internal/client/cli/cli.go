package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	httpClient "github.com/iudanet/boardsync/internal/client/api"
	"github.com/iudanet/boardsync/internal/client/dispatch"
	"github.com/iudanet/boardsync/internal/client/queue"
	"github.com/iudanet/boardsync/pkg/api"
)

type Cli struct {
	logger       *slog.Logger
	apiClient    *httpClient.Client
	queueService *queue.Service
	dispatcher   *dispatch.Dispatcher
}

func New(logger *slog.Logger, apiClient *httpClient.Client, queueService *queue.Service, dispatcher *dispatch.Dispatcher) *Cli {
	return &Cli{
		logger:       logger,
		apiClient:    apiClient,
		queueService: queueService,
		dispatcher:   dispatcher,
	}
}

func PrintUsage() {
	fmt.Println("BoardSync Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  boardsync [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version          Show version information")
	fmt.Println("  --server URL       Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH          Path to local database (default: boardsync-client.db)")
	fmt.Println("  --user ID          User identifier (or BOARDSYNC_USER env)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  watch <project_id>                    Stream live board events")
	fmt.Println("  create-project <name>                 Create a new project")
	fmt.Println("  add-member <project_id> <user_id>     Add a member to a project")
	fmt.Println("  add <project_id> <title>              Create a task")
	fmt.Println("  update <task_id> <field> <value>      Update a task field (title|status)")
	fmt.Println("  delete <task_id>                      Delete a task")
	fmt.Println("  reorder <project_id> <task_id>...     Reorder project tasks")
	fmt.Println("  tasks <project_id>                    List project tasks")
	fmt.Println("  queue                                 Show pending offline mutations")
	fmt.Println("  discarded                             Show discarded mutations")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  boardsync --user alice create-project 'Release board'")
	fmt.Println("  boardsync --user alice add b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5 'Write docs'")
	fmt.Println("  boardsync --user alice watch b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5")
}

// mutate выполняет мутацию через оффлайн-очередь и печатает результат.
// Немедленный успех печатает ответ сервера; transient-сбой - факт
// постановки в очередь.
func (c *Cli) mutate(ctx context.Context, mutation api.MutationRequest) error {
	result, err := c.queueService.Do(ctx, mutation)
	if err != nil {
		return err
	}

	if result.Queued {
		fmt.Printf("Accepted: mutation %s queued for replay\n", result.MutationID)
		return nil
	}

	if len(result.Body) > 0 {
		fmt.Println(string(result.Body))
	} else {
		fmt.Println("OK")
	}
	return nil
}

// marshalBody кодирует тело запроса
func marshalBody(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return body, nil
}
