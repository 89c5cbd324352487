// Package cli consolidates the initialization shared by the web app and the
// worker binaries: env loading, logging, config, registry and shutdown.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/frankmaximo93/shared-financial-journey/internal/config"
	"github.com/frankmaximo93/shared-financial-journey/internal/log"
	"github.com/frankmaximo93/shared-financial-journey/internal/participants"
	"github.com/frankmaximo93/shared-financial-journey/internal/storage"
)

// SetupLogger initializes structured logging for the given component and sets
// it as the process default.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.LevelFromEnv(),
		Component: component,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// BuildRegistry creates the participant registry from configuration.
// Returns the registry or exits the process on failure.
func BuildRegistry(logger *log.Logger, cfg *config.Config) *participants.Registry {
	registry, err := participants.New(
		participants.Participant{Key: cfg.ParticipantAKey, Name: cfg.ParticipantAName},
		participants.Participant{Key: cfg.ParticipantBKey, Name: cfg.ParticipantBName},
		participants.Participant{Key: cfg.JointKey, Name: cfg.JointName},
	)
	if err != nil {
		logger.Error("Invalid participant configuration", "error", err)
		os.Exit(1)
	}
	return registry
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup()
		}

		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-time.After(2 * time.Second):
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
