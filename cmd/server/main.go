package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/boardsync/internal/server/bus"
	"github.com/iudanet/boardsync/internal/server/handlers"
	"github.com/iudanet/boardsync/internal/server/middleware"
	"github.com/iudanet/boardsync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "boardsync-server.db", "Path to SQLite database")
	jwtSecret := flag.String("jwt-secret", os.Getenv("BOARDSYNC_JWT_SECRET"), "JWT signing secret")
	sessionTTL := flag.Duration("session-ttl", 24*time.Hour, "Session token lifetime")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *jwtSecret == "" {
		logger.Error("JWT secret is required (--jwt-secret or BOARDSYNC_JWT_SECRET)")
		os.Exit(1)
	}

	if err := run(logger, *addr, *dbPath, *jwtSecret, *sessionTTL); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, dbPath, jwtSecret string, sessionTTL time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	boardStorage, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := boardStorage.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	// Шина событий синхронизации
	eventBus := bus.New(logger, bus.DefaultConfig())
	defer eventBus.Close()

	jwtConfig := handlers.JWTConfig{
		Secret:     []byte(jwtSecret),
		SessionTTL: sessionTTL,
	}

	sessionHandler := handlers.NewSessionHandler(logger, jwtConfig)
	tasksHandler := handlers.NewTasksHandler(logger, boardStorage, eventBus)
	projectsHandler := handlers.NewProjectsHandler(logger, boardStorage, eventBus)
	eventsHandler := handlers.NewEventsHandler(logger, eventBus)
	healthHandler := handlers.NewHealthHandler(logger, eventBus, Version)

	requireSession := middleware.SessionMiddleware(logger, jwtConfig)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)
	mux.HandleFunc("POST /api/v1/session", sessionHandler.HandleCreateSession)
	mux.Handle("GET /api/v1/events", requireSession(http.HandlerFunc(eventsHandler.HandleEvents)))
	mux.Handle("POST /api/v1/projects", requireSession(http.HandlerFunc(projectsHandler.HandleCreateProject)))
	mux.Handle("POST /api/v1/projects/{id}/members", requireSession(http.HandlerFunc(projectsHandler.HandleAddMember)))
	mux.Handle("GET /api/v1/projects/{id}/tasks", requireSession(http.HandlerFunc(tasksHandler.HandleListTasks)))
	mux.Handle("POST /api/v1/tasks", requireSession(http.HandlerFunc(tasksHandler.HandleCreateTask)))
	mux.Handle("POST /api/v1/tasks/reorder", requireSession(http.HandlerFunc(tasksHandler.HandleReorderTasks)))
	mux.Handle("PATCH /api/v1/tasks/{id}", requireSession(http.HandlerFunc(tasksHandler.HandleUpdateTask)))
	mux.Handle("DELETE /api/v1/tasks/{id}", requireSession(http.HandlerFunc(tasksHandler.HandleDeleteTask)))

	rateLimit := middleware.RateLimitMiddleware(100, time.Minute, logger)
	handler := middleware.RecoveryMiddleware(logger)(
		middleware.LoggingMiddleware(logger, "/api/v1/health")(
			rateLimit(mux)))

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", addr, "version", Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

func printVersion() {
	fmt.Printf("BoardSync Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
