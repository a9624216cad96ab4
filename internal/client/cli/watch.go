package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/iudanet/boardsync/internal/client/refetch"
	"github.com/iudanet/boardsync/internal/models"
	"github.com/iudanet/boardsync/pkg/api"
)

// runWatch держит live-подключение к серверу и печатает события доски.
//
// Полный конвейер синхронизации: диспетчер раздает входящие события,
// сигнал reconnect запускает replay оффлайн-очереди, а reconciliation
// consumer перечитывает snapshot задач после всплеска событий или
// грубого сигнала (reconnect, дрейн очереди).
func (c *Cli) runWatch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: boardsync watch <project_id>")
	}
	projectID := args[0]

	refetcher := refetch.New(c.logger, refetch.DefaultDebounce, func() {
		if err := c.printSnapshot(ctx, projectID); err != nil {
			c.logger.Warn("Failed to refetch tasks", "error", err)
		}
	})
	defer refetcher.Stop()

	for _, entity := range models.KnownEntityKinds() {
		unsubscribe := c.dispatcher.Subscribe(entity, func(event *models.SyncEvent) {
			printEvent(event)
			if event.ProjectID == projectID {
				refetcher.OnEvent()
			}
		})
		defer unsubscribe()
	}

	// Reconnect: в оффлайн-окне события потеряны - реплеим очередь
	// и немедленно перечитываем состояние
	unsubscribeReconnect := c.dispatcher.SubscribeReconnected(func() {
		c.queueService.TriggerReplay()
		refetcher.OnSignal()
	})
	defer unsubscribeReconnect()

	// Дрейн очереди: сервер только что принял наши отложенные мутации
	c.queueService.OnDrain(func() {
		refetcher.OnSignal()
	})

	go c.queueService.Run(ctx)

	fmt.Printf("Watching project %s (Ctrl+C to stop)\n", projectID)
	c.dispatcher.Run(ctx)
	return nil
}

// printSnapshot печатает актуальный список задач проекта
func (c *Cli) printSnapshot(ctx context.Context, projectID string) error {
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	body, err := c.apiClient.Do(fetchCtx, api.MutationRequest{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/v1/projects/%s/tasks", projectID),
	})
	if err != nil {
		return err
	}

	fmt.Printf("--- snapshot %s ---\n", time.Now().Format("15:04:05"))
	fmt.Println(string(body))
	return nil
}

// printEvent печатает одно событие синхронизации
func printEvent(event *models.SyncEvent) {
	fmt.Printf("[%s] %s %s entity=%s project=%s by %s\n",
		time.UnixMilli(event.Timestamp).Format("15:04:05"),
		event.Entity,
		event.Action,
		event.EntityID,
		event.ProjectID,
		event.OriginatorUserID)
}
