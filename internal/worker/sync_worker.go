// Package worker pushes locally written transactions to the hosted backend.
// It consumes queue messages and also polls the local pending queue as a
// backup for lost deliveries.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frankmaximo93/shared-financial-journey/internal/amqp"
	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"
	"github.com/frankmaximo93/shared-financial-journey/internal/metrics"
	"github.com/frankmaximo93/shared-financial-journey/internal/storage"
)

// RemoteStore is the hosted-backend side the worker writes to.
type RemoteStore interface {
	UpsertTransaction(ctx context.Context, t core.Transaction, debts []core.Debt) error
	DeleteTransaction(ctx context.Context, id string) error
	DeleteDebtsByTransaction(ctx context.Context, id string) error
}

type SyncWorker struct {
	storage   *storage.SQLiteRepository
	remote    RemoteStore
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, remote RemoteStore, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{storage: storage, remote: remote, batchSize: batchSize}
}

// HandleMessage processes one queue message. An error requeues the delivery.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"transaction_id", msg.TransactionID,
		"op", msg.Op)

	switch msg.Op {
	case amqp.OpUpsert:
		return w.pushTransaction(ctx, msg.TransactionID)
	case amqp.OpDelete:
		return w.deleteRemote(ctx, msg.TransactionID)
	default:
		return fmt.Errorf("unknown op: %s", msg.Op)
	}
}

// ProcessPending pushes any rows still waiting in the local queue. Backup for
// lost queue messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending sync: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending sync rows", "count", len(pending))

	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.pushTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to push pending transaction",
				"id", p.ID, "error", err)
		}
	}
	return nil
}

// RunPoller processes the pending queue on the given interval until the
// context ends. An immediate pass runs at startup to recover from downtime.
func (w *SyncWorker) RunPoller(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	if err := w.ProcessPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "Startup sync pass failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.ErrorContext(ctx, "Sync pass failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) pushTransaction(ctx context.Context, id string) error {
	t, err := w.storage.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, datasource.ErrNotFound) {
			// Deleted locally before the push happened; nothing to sync.
			slog.WarnContext(ctx, "Transaction vanished before sync", "id", id)
			return nil
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	debts, err := w.storage.ListDebtsByTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("list debts: %w", err)
	}

	if err := w.remote.UpsertTransaction(ctx, t, debts); err != nil {
		metrics.SyncPushes.WithLabelValues("error").Inc()
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("push transaction: %w", err)
	}
	metrics.SyncPushes.WithLabelValues("success").Inc()

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The push itself worked; only the bookkeeping failed.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Transaction pushed to remote backend",
		"id", id,
		"description", t.Description,
		"amount_cents", t.Amount.Cents,
		"debts", len(debts))

	return nil
}

func (w *SyncWorker) deleteRemote(ctx context.Context, id string) error {
	if err := w.remote.DeleteDebtsByTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete remote debts: %w", err)
	}
	if err := w.remote.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete remote transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted on remote backend", "id", id)
	return nil
}
