package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/boardsync/internal/client/api"
	"github.com/iudanet/boardsync/internal/client/cli"
	"github.com/iudanet/boardsync/internal/client/dispatch"
	"github.com/iudanet/boardsync/internal/client/queue"
	"github.com/iudanet/boardsync/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "boardsync-client.db", "Path to local database")
	userID := flag.String("user", os.Getenv("BOARDSYNC_USER"), "User identifier")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}
	command := args[0]

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "Error: user is required (--user or BOARDSYNC_USER)")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	// Получаем сессионный токен
	session, err := api.NewSession(ctx, *serverURL, *userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}

	apiClient := api.NewClient(*serverURL, session.Token)
	queueService := queue.NewService(apiClient, boltStorage, boltStorage, logger, queue.DefaultConfig())
	dispatcher := dispatch.New(logger, *serverURL, session.Token, dispatch.DefaultConfig())

	c := cli.New(logger, apiClient, queueService, dispatcher)
	c.Run(ctx, command, args[1:])
}

func printVersion() {
	fmt.Printf("BoardSync Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
