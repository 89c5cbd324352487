package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTransaction(date time.Time) core.Transaction {
	return core.Transaction{
		ID:             uuid.New().String(),
		Description:    "Mercado",
		Amount:         core.Money{Cents: 15050},
		CategoryID:     "cat-mercado",
		Date:           date,
		Type:           core.Expense,
		Responsibility: "franklin",
		PaymentMethod:  core.PaymentCash,
		Installments:   1,
		Status:         core.TransactionPaid,
	}
}

func TestBillRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	b := core.Bill{
		Name:           "Aluguel",
		Amount:         core.Money{Cents: 120000},
		DueDate:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:         core.BillPending,
		Responsibility: "casal",
		Category:       "Despesas Casa",
	}
	if err := repo.CreateBill(ctx, &b); err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}
	if b.ID == "" {
		t.Fatal("CreateBill() must assign an id")
	}

	bills, err := repo.ListBills(ctx, 2025, 3)
	if err != nil {
		t.Fatalf("ListBills() error = %v", err)
	}
	if len(bills) != 1 {
		t.Fatalf("got %d bills, want 1", len(bills))
	}
	if bills[0].Amount.Cents != 120000 || bills[0].Status != core.BillPending {
		t.Errorf("round trip mismatch: %+v", bills[0])
	}

	// Outside the month window.
	if bills, _ := repo.ListBills(ctx, 2025, 4); len(bills) != 0 {
		t.Errorf("april must be empty, got %d", len(bills))
	}

	if err := repo.UpdateBillStatus(ctx, b.ID, core.BillPaid); err != nil {
		t.Fatalf("UpdateBillStatus() error = %v", err)
	}
	bills, _ = repo.ListBills(ctx, 2025, 3)
	if bills[0].Status != core.BillPaid {
		t.Errorf("status = %q, want paid", bills[0].Status)
	}
}

func TestBillsOrderedByDueDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, day := range []int{20, 5, 12} {
		b := core.Bill{
			Name:           "Conta",
			Amount:         core.Money{Cents: 1000},
			DueDate:        time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
			Status:         core.BillPending,
			Responsibility: "casal",
		}
		if err := repo.CreateBill(ctx, &b); err != nil {
			t.Fatalf("CreateBill() error = %v", err)
		}
	}

	bills, err := repo.ListBills(ctx, 2025, 3)
	if err != nil {
		t.Fatalf("ListBills() error = %v", err)
	}
	days := []int{bills[0].DueDate.Day(), bills[1].DueDate.Day(), bills[2].DueDate.Day()}
	if days[0] != 5 || days[1] != 12 || days[2] != 20 {
		t.Errorf("order = %v, want [5 12 20]", days)
	}
}

func TestTransactionWithDebtsCascade(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := sampleTransaction(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC))
	tx.SplitExpense = true
	tx.PaidBy = "franklin"
	debt := core.Debt{
		ID:            uuid.New().String(),
		TransactionID: tx.ID,
		Debtor:        "michele",
		Amount:        tx.Amount.Half(),
	}
	if err := repo.CreateTransaction(ctx, tx, []core.Debt{debt}); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	debts, err := repo.ListDebtsByTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("ListDebtsByTransaction() error = %v", err)
	}
	if len(debts) != 1 || debts[0].Amount.Cents != 7525 {
		t.Fatalf("debts = %+v, want one half-share of 7525", debts)
	}

	if err := repo.DeleteDebtsByTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("DeleteDebtsByTransaction() error = %v", err)
	}
	if err := repo.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	if txs, _ := repo.ListTransactions(ctx); len(txs) != 0 {
		t.Errorf("transactions remain after delete: %d", len(txs))
	}
	if debts, _ := repo.ListDebtsByTransaction(ctx, tx.ID); len(debts) != 0 {
		t.Errorf("debts remain after delete: %d", len(debts))
	}
}

func TestUpdateTransactionUnknownID(t *testing.T) {
	repo := newTestRepo(t)
	tx := sampleTransaction(time.Now())
	err := repo.UpdateTransaction(context.Background(), tx)
	if !errors.Is(err, datasource.ErrNotFound) {
		t.Fatalf("UpdateTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestReadWalletAggregatesMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	income := sampleTransaction(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	income.Type = core.Income
	income.Amount = core.Money{Cents: 520000}
	expense := sampleTransaction(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC))
	outside := sampleTransaction(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	for _, tx := range []core.Transaction{income, expense, outside} {
		if err := repo.CreateTransaction(ctx, tx, nil); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	w, err := repo.ReadWallet(ctx, 2025, 3)
	if err != nil {
		t.Fatalf("ReadWallet() error = %v", err)
	}
	if w.Income.Cents != 520000 {
		t.Errorf("income = %d, want 520000", w.Income.Cents)
	}
	if w.Expenses.Cents != 15050 {
		t.Errorf("expenses = %d, want only march's 15050", w.Expenses.Cents)
	}
}

func TestPendingSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := sampleTransaction(time.Now().UTC())
	if err := repo.CreateTransaction(ctx, tx, nil); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	pending, err := repo.ListPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingSync() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != tx.ID {
		t.Fatalf("pending = %+v, want the new transaction", pending)
	}

	if err := repo.MarkSynced(ctx, tx.ID); err != nil {
		t.Fatalf("MarkSynced() error = %v", err)
	}
	if pending, _ := repo.ListPendingSync(ctx, 10); len(pending) != 0 {
		t.Errorf("synced row still pending: %+v", pending)
	}

	if err := repo.MarkSyncError(ctx, tx.ID); err != nil {
		t.Fatalf("MarkSyncError() error = %v", err)
	}
	if pending, _ := repo.ListPendingSync(ctx, 10); len(pending) != 0 {
		t.Errorf("errored row must not re-enter the pending queue: %+v", pending)
	}
}

func TestListOverdueTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	due := sampleTransaction(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	due.Status = core.TransactionPending
	due.DueDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	future := sampleTransaction(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	future.Status = core.TransactionPending
	future.DueDate = time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)

	paid := sampleTransaction(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	paid.DueDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	for _, tx := range []core.Transaction{due, future, paid} {
		if err := repo.CreateTransaction(ctx, tx, nil); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	overdue, err := repo.ListOverdueTransactions(ctx, now)
	if err != nil {
		t.Fatalf("ListOverdueTransactions() error = %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != due.ID {
		t.Fatalf("overdue = %+v, want only the past-due pending row", overdue)
	}
}
