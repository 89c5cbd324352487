// The financas-worker binary pushes locally written transactions to the
// hosted backend. It consumes queue messages and polls the local pending
// queue as a backup for lost deliveries.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/frankmaximo93/shared-financial-journey/internal/amqp"
	"github.com/frankmaximo93/shared-financial-journey/internal/auth"
	"github.com/frankmaximo93/shared-financial-journey/internal/cli"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource/postgrest"
	"github.com/frankmaximo93/shared-financial-journey/internal/log"
	"github.com/frankmaximo93/shared-financial-journey/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting sync worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.RemoteURL == "" || cfg.RemoteAPIKey == "" {
		logger.Error("Sync worker needs REMOTE_URL and REMOTE_API_KEY")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	userID := ""
	if cfg.RemoteAccessToken != "" {
		if id, err := auth.UserID(cfg.RemoteAccessToken); err == nil {
			userID = id
		} else {
			logger.Warn("Could not read user id from access token", "error", err)
		}
	}
	client := postgrest.New(cfg.RemoteURL, cfg.RemoteAPIKey, cfg.RemoteAccessToken)
	remote := postgrest.NewStore(client, userID)

	syncWorker := worker.NewSyncWorker(repo, remote, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The queue is optional: without it the poller alone drains the local
	// pending rows.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			if err := amqpClient.ConsumeSync(ctx, func(msg *amqp.SyncMessage) error {
				return syncWorker.HandleMessage(ctx, msg)
			}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
				cancel()
			}
		}()
		logger.Info("Consuming sync messages",
			"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, relying on the pending-queue poller only")
	}

	go func() {
		if err := syncWorker.RunPoller(ctx, cfg.SyncInterval); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Pending-queue poller stopped", "error", err)
			cancel()
		}
	}()

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, cancel)
	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Sync worker stopped")
}
