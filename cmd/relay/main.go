package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"mentorchat/auth"
	"mentorchat/domain/event"
	"mentorchat/infrastructure/httpapi"
	"mentorchat/infrastructure/ws"
	"mentorchat/internal"
	"mentorchat/moderation"
	"mentorchat/observability"
	"mentorchat/repositories"
	"mentorchat/runtime"
	"mentorchat/runtime/workers"
	"mentorchat/search"
	"mentorchat/services"
	"mentorchat/sink"
	"mentorchat/storage"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Deferred cleanup (database close, index flush) always executes before the process exits,
// and keeping the logic out of main makes the startup path testable.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	maskRune, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Search index (Bluge)
	index, err := search.Open(config.BlugeFilepath, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open search index: %w", err)
	}
	defer func() {
		logger.Info("Closing search index...")
		_ = index.Close()
	}()

	// 4. Moderation dictionaries
	censored, err := runtime.LoadCensoredWords()
	if err != nil {
		return exitRuntime, fmt.Errorf("censored words loading failed: %w", err)
	}
	moderator, err := moderation.NewModerator(censored.Words, maskRune)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderator build failed: %w", err)
	}
	logger.Info("Moderation ready", "words", len(censored.Words), "languages", censored.Languages)

	// 5. Core wiring
	registry := runtime.NewRegistry()
	stats := observability.NewRelayStats(registry.Online)
	events := make(chan event.DomainEvent, config.BufferSize)

	messageRepository := repositories.NewMessageRepository(db, logger)
	userRepository := repositories.NewUserRepository(db)
	blobs, err := storage.NewDiskBlobStore(config.UploadDir)
	if err != nil {
		return exitRuntime, fmt.Errorf("upload dir setup failed: %w", err)
	}

	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	router := services.NewRouterService(logger, messageRepository, registry,
		moderator, stats, events, config.DeliveryTimeout)
	notifications := services.NewNotificationService(logger, messageRepository)
	accounts := services.NewAuthService(logger, userRepository, tokens)

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		logger.Info("Debug store inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		internal.StartDebugServer(db, config.DebugPort, endpoint, internal.MessageMapper, stats.Snapshot)
	}

	// 6. Supervision: side pipeline (search indexing) and telemetry
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewFanoutWorker(logger, events, config.SinkTimeout,
			sink.NewSearchSink(index, logger)),
		workers.NewTelemetryWorker(logger, stats, config.MetricInterval),
	)

	// 7. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)

	go func() {
		logger.Info("Starting workers...")
		sup.Run(ctx)
	}()

	// 8. HTTP & websocket server
	relay := ws.NewHandler(logger, registry, router, tokens, config.ConnectionBufferSize)
	server := httpapi.NewServer(logger, accounts, router, notifications,
		index, blobs, tokens, relay)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: server.Engine()}

	go func() {
		logger.Info("Starting relay server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	// The execution blocks here until either a signal is received or the server crashes.
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 10. Final Cleanup (Graceful Shutdown)
	// Active connections get a grace period to finish before the workers are drained.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
