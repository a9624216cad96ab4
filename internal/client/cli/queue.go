package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runQueueStatus(ctx context.Context) error {
	pending, err := c.queueService.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to read queue: %w", err)
	}

	if pending == 0 {
		fmt.Println("Queue is empty")
		return nil
	}
	fmt.Printf("Pending mutations: %d\n", pending)
	return nil
}

func (c *Cli) runDiscarded(ctx context.Context) error {
	discarded, err := c.queueService.Discarded(ctx)
	if err != nil {
		return fmt.Errorf("failed to read discarded mutations: %w", err)
	}

	if len(discarded) == 0 {
		fmt.Println("No discarded mutations")
		return nil
	}

	for _, d := range discarded {
		fmt.Printf("%s  %s %s\n", d.DiscardedAt.Format("2006-01-02 15:04:05"), d.Mutation.Method, d.Mutation.Path)
		fmt.Printf("     id: %s, attempts: %d\n", d.Mutation.ID, d.Mutation.Attempts)
		fmt.Printf("     reason: %s\n", d.Reason)
	}
	return nil
}
