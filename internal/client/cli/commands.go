package cli

import (
	"context"
	"fmt"
	"os"
)

func (c *Cli) Run(ctx context.Context, command string, args []string) {
	var err error

	switch command {
	case "watch":
		err = c.runWatch(ctx, args)
	case "create-project":
		err = c.runCreateProject(ctx, args)
	case "add-member":
		err = c.runAddMember(ctx, args)
	case "add":
		err = c.runAddTask(ctx, args)
	case "update":
		err = c.runUpdateTask(ctx, args)
	case "delete":
		err = c.runDeleteTask(ctx, args)
	case "reorder":
		err = c.runReorderTasks(ctx, args)
	case "tasks":
		err = c.runListTasks(ctx, args)
	case "queue":
		err = c.runQueueStatus(ctx)
	case "discarded":
		err = c.runDiscarded(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
