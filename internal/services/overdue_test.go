package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/storage"
)

type fakeMailer struct {
	sent []string // recipient addresses
}

func (m *fakeMailer) SendDebtReminder(to string, _ core.Transaction, _ core.Debt) error {
	m.sent = append(m.sent, to)
	return nil
}

func seedOverdueSplit(t *testing.T, repo *storage.SQLiteRepository, dueDate time.Time) core.Transaction {
	t.Helper()
	tx := core.Transaction{
		ID:             uuid.New().String(),
		Description:    "Compras do mês",
		Amount:         core.Money{Cents: 20000},
		CategoryID:     "cat-mercado",
		Date:           dueDate.AddDate(0, 0, -10),
		Type:           core.Expense,
		Responsibility: "casal",
		Installments:   1,
		SplitExpense:   true,
		PaidBy:         "franklin",
		Status:         core.TransactionPending,
		DueDate:        dueDate,
	}
	debt := core.Debt{
		ID:            uuid.New().String(),
		TransactionID: tx.ID,
		Debtor:        "michele",
		Amount:        tx.Amount.Half(),
	}
	if err := repo.CreateTransaction(context.Background(), tx, []core.Debt{debt}); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return tx
}

func TestOverdueRunMarksAndReminds(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	defer repo.Close()

	now := time.Date(2025, 3, 15, 6, 0, 0, 0, time.UTC)
	tx := seedOverdueSplit(t, repo, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	mailer := &fakeMailer{}
	svc := NewOverdueService(repo, mailer, map[string]string{"michele": "michele@example.com"})

	marked, err := svc.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if marked != 1 {
		t.Fatalf("marked = %d, want 1", marked)
	}

	got, err := repo.GetTransaction(context.Background(), tx.ID)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.Status != core.TransactionOverdue {
		t.Errorf("status = %q, want overdue", got.Status)
	}

	if len(mailer.sent) != 1 || mailer.sent[0] != "michele@example.com" {
		t.Errorf("reminders sent to %v, want the debtor", mailer.sent)
	}

	// Second sweep finds nothing: the row is no longer pending.
	marked, err = svc.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run() second sweep error = %v", err)
	}
	if marked != 0 {
		t.Errorf("second sweep marked = %d, want 0", marked)
	}
}

func TestOverdueRunMarksLateBills(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	past := core.Bill{
		Name:           "Plano de Saúde",
		Amount:         core.Money{Cents: 35000},
		DueDate:        time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:         core.BillPending,
		Responsibility: "casal",
	}
	future := core.Bill{
		Name:           "Internet",
		Amount:         core.Money{Cents: 12000},
		DueDate:        time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Status:         core.BillPending,
		Responsibility: "michele",
	}
	for _, b := range []*core.Bill{&past, &future} {
		if err := repo.CreateBill(ctx, b); err != nil {
			t.Fatalf("CreateBill() error = %v", err)
		}
	}

	svc := NewOverdueService(repo, nil, nil)
	if _, err := svc.Run(ctx, time.Date(2025, 3, 15, 6, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	bills, err := repo.ListBills(ctx, 2025, 3)
	if err != nil {
		t.Fatalf("ListBills() error = %v", err)
	}
	for _, b := range bills {
		switch b.ID {
		case past.ID:
			if b.Status != core.BillLate {
				t.Errorf("past-due bill status = %q, want late", b.Status)
			}
		case future.ID:
			if b.Status != core.BillPending {
				t.Errorf("future bill status = %q, want pending", b.Status)
			}
		}
	}
}

func TestOverdueRunSkipsUnknownDebtorEmail(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	defer repo.Close()

	now := time.Date(2025, 3, 15, 6, 0, 0, 0, time.UTC)
	seedOverdueSplit(t, repo, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	mailer := &fakeMailer{}
	svc := NewOverdueService(repo, mailer, nil)

	marked, err := svc.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if marked != 1 {
		t.Errorf("marked = %d, want 1 even without reminder addresses", marked)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("no reminders expected, got %v", mailer.sent)
	}
}
