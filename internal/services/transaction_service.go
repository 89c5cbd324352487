// Package services holds the business orchestration between the local store,
// the sync queue and the notification channel.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/frankmaximo93/shared-financial-journey/internal/amqp"
	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/participants"
	"github.com/frankmaximo93/shared-financial-journey/internal/storage"
)

// SyncPublisher is the queue side the service publishes to. Nil-able: when no
// broker is configured writes stay local and the poller picks them up later.
type SyncPublisher interface {
	PublishSync(ctx context.Context, transactionID, op string) error
}

// TransactionService implements local-first transaction writes: every change
// lands in SQLite first and a sync message is published best-effort.
type TransactionService struct {
	repo     *storage.SQLiteRepository
	queue    SyncPublisher
	registry *participants.Registry
}

func NewTransactionService(repo *storage.SQLiteRepository, queue SyncPublisher, registry *participants.Registry) *TransactionService {
	return &TransactionService{repo: repo, queue: queue, registry: registry}
}

// Create validates and stores a transaction. Split expenses get a debt row
// for the other participant holding half the amount, rounded half up.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t = t.Normalized()
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	var debts []core.Debt
	if t.SplitExpense && t.PaidBy != "" {
		other, err := s.registry.Other(t.PaidBy)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("resolve debtor: %w", err)
		}
		debts = append(debts, core.Debt{
			ID:            uuid.New().String(),
			TransactionID: t.ID,
			Debtor:        other.Key,
			Amount:        t.Amount.Half(),
		})
	}

	if err := s.repo.CreateTransaction(ctx, t, debts); err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction saved locally",
		"id", t.ID,
		"description", t.Description,
		"amount_cents", t.Amount.Cents,
		"split", t.SplitExpense)

	s.publish(ctx, t.ID, amqp.OpUpsert)
	return t, nil
}

// Update replaces a transaction's fields and re-queues it for sync.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) error {
	t = t.Normalized()
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.repo.UpdateTransaction(ctx, t); err != nil {
		return err
	}
	s.publish(ctx, t.ID, amqp.OpUpsert)
	return nil
}

// Delete removes a transaction and its dependent debts, debts first so a
// failure cannot orphan them.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteDebtsByTransaction(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted locally", "id", id)
	s.publish(ctx, id, amqp.OpDelete)
	return nil
}

// publish is best-effort: a broker outage must not fail the local write.
func (s *TransactionService) publish(ctx context.Context, id, op string) {
	if s.queue == nil {
		return
	}
	if err := s.queue.PublishSync(ctx, id, op); err != nil {
		slog.WarnContext(ctx, "Sync publish failed, row stays queued locally",
			"id", id, "op", op, "error", err)
	}
}
