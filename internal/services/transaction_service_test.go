package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/frankmaximo93/shared-financial-journey/internal/amqp"
	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/participants"
	"github.com/frankmaximo93/shared-financial-journey/internal/storage"
)

type fakeQueue struct {
	published []string // "op:id"
	err       error
}

func (q *fakeQueue) PublishSync(_ context.Context, id, op string) error {
	if q.err != nil {
		return q.err
	}
	q.published = append(q.published, op+":"+id)
	return nil
}

func newService(t *testing.T, queue SyncPublisher) (*TransactionService, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewTransactionService(repo, queue, participants.Default()), repo
}

func validTransaction() core.Transaction {
	return core.Transaction{
		Description:    "Mercado",
		Amount:         core.Money{Cents: 15050},
		CategoryID:     "cat-mercado",
		Date:           time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Type:           core.Expense,
		Responsibility: "franklin",
	}
}

func TestCreateAssignsIDAndPublishes(t *testing.T) {
	queue := &fakeQueue{}
	svc, repo := newService(t, queue)

	created, err := svc.Create(context.Background(), validTransaction())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create() must assign an id")
	}
	if created.Status != core.TransactionPending {
		t.Errorf("status = %q, want defaulted pending", created.Status)
	}
	if created.Installments != 1 {
		t.Errorf("installments = %d, want defaulted 1", created.Installments)
	}

	if len(queue.published) != 1 || queue.published[0] != amqp.OpUpsert+":"+created.ID {
		t.Errorf("published = %v, want one upsert", queue.published)
	}

	txs, err := repo.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("stored %d transactions, want 1", len(txs))
	}
}

func TestCreateSplitBuildsDebtForOther(t *testing.T) {
	svc, repo := newService(t, &fakeQueue{})

	tx := validTransaction()
	tx.Amount = core.Money{Cents: 10001}
	tx.SplitExpense = true
	tx.PaidBy = "franklin"

	created, err := svc.Create(context.Background(), tx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	debts, err := repo.ListDebtsByTransaction(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("ListDebtsByTransaction() error = %v", err)
	}
	if len(debts) != 1 {
		t.Fatalf("got %d debts, want 1", len(debts))
	}
	if debts[0].Debtor != "michele" {
		t.Errorf("debtor = %q, want the other participant", debts[0].Debtor)
	}
	if debts[0].Amount.Cents != 5001 {
		t.Errorf("debt = %d cents, want half rounded up 5001", debts[0].Amount.Cents)
	}
}

func TestCreateSplitRejectsJointPayer(t *testing.T) {
	svc, _ := newService(t, &fakeQueue{})

	tx := validTransaction()
	tx.SplitExpense = true
	tx.PaidBy = "casal"

	if _, err := svc.Create(context.Background(), tx); err == nil {
		t.Fatal("Create() must reject a split paid by the joint identity")
	}
}

func TestCreateInvalidTransaction(t *testing.T) {
	queue := &fakeQueue{}
	svc, _ := newService(t, queue)

	tests := []struct {
		name   string
		mutate func(*core.Transaction)
	}{
		{"zero amount", func(tx *core.Transaction) { tx.Amount.Cents = 0 }},
		{"empty description", func(tx *core.Transaction) { tx.Description = "" }},
		{"bad type", func(tx *core.Transaction) { tx.Type = "transfer" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			if _, err := svc.Create(context.Background(), tx); err == nil {
				t.Error("Create() expected validation error")
			}
		})
	}
	if len(queue.published) != 0 {
		t.Errorf("invalid writes must not publish, got %v", queue.published)
	}
}

func TestCreateSurvivesQueueFailure(t *testing.T) {
	svc, repo := newService(t, &fakeQueue{err: errors.New("broker down")})

	created, err := svc.Create(context.Background(), validTransaction())
	if err != nil {
		t.Fatalf("Create() must succeed when the queue is down, got %v", err)
	}

	// The row stays in the local pending queue for the poller.
	pending, err := repo.ListPendingSync(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPendingSync() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != created.ID {
		t.Errorf("pending = %+v, want the unsynced row", pending)
	}
}

func TestDeleteCascadesDebtsAndPublishes(t *testing.T) {
	queue := &fakeQueue{}
	svc, repo := newService(t, queue)

	tx := validTransaction()
	tx.SplitExpense = true
	tx.PaidBy = "michele"
	created, err := svc.Create(context.Background(), tx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if debts, _ := repo.ListDebtsByTransaction(context.Background(), created.ID); len(debts) != 0 {
		t.Errorf("debts remain after delete: %+v", debts)
	}
	if txs, _ := repo.ListTransactions(context.Background()); len(txs) != 0 {
		t.Errorf("transactions remain after delete: %+v", txs)
	}

	want := amqp.OpDelete + ":" + created.ID
	if queue.published[len(queue.published)-1] != want {
		t.Errorf("last published = %q, want %q", queue.published[len(queue.published)-1], want)
	}
}

func TestUpdateUnknownTransaction(t *testing.T) {
	svc, _ := newService(t, &fakeQueue{})

	tx := validTransaction()
	tx.ID = "missing"
	if err := svc.Update(context.Background(), tx); err == nil {
		t.Fatal("Update() of unknown id expected error")
	}
}
