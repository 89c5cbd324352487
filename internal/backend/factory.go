package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frankmaximo93/shared-financial-journey/internal/adapters"
	"github.com/frankmaximo93/shared-financial-journey/internal/amqp"
	"github.com/frankmaximo93/shared-financial-journey/internal/auth"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource/memory"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource/postgrest"
	"github.com/frankmaximo93/shared-financial-journey/internal/participants"
	"github.com/frankmaximo93/shared-financial-journey/internal/services"
	"github.com/frankmaximo93/shared-financial-journey/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config, registry *participants.Registry) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case RemoteBackend:
		return f.createRemoteBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config, registry)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createRemoteBackend(config Config) (*Result, error) {
	client := postgrest.New(config.RemoteURL, config.RemoteAPIKey, config.RemoteAccessToken)

	// The user id scopes relationship lookups. An unreadable token is not
	// fatal: the store falls back to unscoped queries.
	userID := ""
	if config.RemoteAccessToken != "" {
		id, err := auth.UserID(config.RemoteAccessToken)
		if err != nil {
			f.logger.Warn("Could not read user id from access token", "error", err)
		} else {
			userID = id
		}
	}

	f.logger.Info("Initialized remote backend", "url", config.RemoteURL, "user_scoped", userID != "")

	return &Result{
		Source:  postgrest.NewStore(client, userID),
		Cleanup: func() error { return nil },
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config, registry *participants.Registry) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	var queue services.SyncPublisher
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without live sync", "error", err)
		} else {
			queue = amqpClient
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	service := services.NewTransactionService(repo, queue, registry)
	adapter := adapters.NewSQLiteAdapter(repo, service)

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", queue != nil)

	cleanup := func() error {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				f.logger.Warn("AMQP close failed", "error", err)
			}
		}
		return repo.Close()
	}

	return &Result{Source: adapter, Cleanup: cleanup}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	f.logger.Info("Initialized in-memory backend with demonstration data")
	return &Result{
		Source:  memory.NewSeeded(),
		Cleanup: func() error { return nil },
	}, nil
}
