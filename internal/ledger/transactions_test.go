package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/participants"
)

type fakeTransactionSource struct {
	mu           sync.Mutex
	categories   []core.Category
	transactions []core.Transaction
	debts        []core.Debt
	catErr       error
	txErr        error
	deleted      []string // "debt:<txid>" / "tx:<id>" in call order
}

func (f *fakeTransactionSource) ListCategories(context.Context) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.catErr != nil {
		return nil, f.catErr
	}
	return append([]core.Category(nil), f.categories...), nil
}

func (f *fakeTransactionSource) ListTransactions(context.Context) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.txErr != nil {
		return nil, f.txErr
	}
	return append([]core.Transaction(nil), f.transactions...), nil
}

func (f *fakeTransactionSource) UpdateTransaction(_ context.Context, t core.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.transactions {
		if f.transactions[i].ID == t.ID {
			f.transactions[i] = t
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeTransactionSource) DeleteTransaction(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, "tx:"+id)
	kept := f.transactions[:0]
	for _, t := range f.transactions {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.transactions = kept
	return nil
}

func (f *fakeTransactionSource) ListDebtsByTransaction(_ context.Context, id string) ([]core.Debt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Debt
	for _, d := range f.debts {
		if d.TransactionID == id {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeTransactionSource) DeleteDebtsByTransaction(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, "debt:"+id)
	kept := f.debts[:0]
	for _, d := range f.debts {
		if d.TransactionID != id {
			kept = append(kept, d)
		}
	}
	f.debts = kept
	return nil
}

func tx(id, desc, categoryID string) core.Transaction {
	return core.Transaction{
		ID:             id,
		Description:    desc,
		Amount:         core.Money{Cents: 10000},
		CategoryID:     categoryID,
		Date:           time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Type:           core.Expense,
		Responsibility: "franklin",
	}
}

func TestLoadDataJoinsCategories(t *testing.T) {
	src := &fakeTransactionSource{
		categories: []core.Category{{ID: "c1", Name: "Mercado"}},
		transactions: []core.Transaction{
			tx("t1", "Compras", "c1"),
			tx("t2", "Estranho", "c-missing"),
		},
	}
	l := NewTransactionsLedger(src, participants.Default())

	if err := l.LoadData(context.Background()); err != nil {
		t.Fatalf("LoadData() error = %v", err)
	}

	rows := l.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].CategoryName != "Mercado" {
		t.Errorf("known category = %q, want Mercado", rows[0].CategoryName)
	}
	if rows[1].CategoryName != UnknownCategory {
		t.Errorf("unknown category = %q, want %q", rows[1].CategoryName, UnknownCategory)
	}
	if rows[0].Status != core.TransactionPending {
		t.Errorf("empty status must default to pending, got %q", rows[0].Status)
	}
}

func TestLoadDataEitherFailureAbortsBoth(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeTransactionSource)
	}{
		{"categories fail", func(f *fakeTransactionSource) { f.catErr = errors.New("boom") }},
		{"transactions fail", func(f *fakeTransactionSource) { f.txErr = errors.New("boom") }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeTransactionSource{
				categories:   []core.Category{{ID: "c1", Name: "Mercado"}},
				transactions: []core.Transaction{tx("t1", "Compras", "c1")},
			}
			l := NewTransactionsLedger(src, participants.Default())
			if err := l.LoadData(context.Background()); err != nil {
				t.Fatalf("LoadData() error = %v", err)
			}
			before := l.Rows()

			tc.mutate(src)
			src.mu.Lock()
			src.transactions = append(src.transactions, tx("t2", "Novo", "c1"))
			src.mu.Unlock()

			if err := l.LoadData(context.Background()); err == nil {
				t.Fatal("LoadData() expected error")
			}
			if got := l.Rows(); len(got) != len(before) {
				t.Errorf("failed load mutated state: %d rows, want %d", len(got), len(before))
			}
		})
	}
}

func TestDeleteCascadesDebtsFirst(t *testing.T) {
	src := &fakeTransactionSource{
		categories:   []core.Category{{ID: "c1", Name: "Mercado"}},
		transactions: []core.Transaction{tx("t1", "Compras", "c1")},
		debts: []core.Debt{
			{ID: "d1", TransactionID: "t1", Debtor: "michele", Amount: core.Money{Cents: 5000}},
		},
	}
	l := NewTransactionsLedger(src, participants.Default())
	if err := l.LoadData(context.Background()); err != nil {
		t.Fatalf("LoadData() error = %v", err)
	}

	if err := l.Delete(context.Background(), "t1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if len(src.deleted) != 2 || src.deleted[0] != "debt:t1" || src.deleted[1] != "tx:t1" {
		t.Errorf("delete order = %v, want debts before transaction", src.deleted)
	}
	if got := l.Rows(); len(got) != 0 {
		t.Errorf("rows after delete = %d, want reloaded empty list", len(got))
	}
}

func TestDeleteWithoutDebts(t *testing.T) {
	src := &fakeTransactionSource{
		transactions: []core.Transaction{tx("t1", "Compras", "c1")},
	}
	l := NewTransactionsLedger(src, participants.Default())

	if err := l.Delete(context.Background(), "t1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(src.transactions) != 0 {
		t.Error("transaction not removed")
	}
}

func TestLabelHelpers(t *testing.T) {
	t.Run("date", func(t *testing.T) {
		d := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
		if got := FormatDate(d); got != "08/03/2025" {
			t.Errorf("FormatDate() = %q, want 08/03/2025", got)
		}
		if got := FormatDate(time.Time{}); got != "" {
			t.Errorf("FormatDate(zero) = %q, want empty", got)
		}
	})

	t.Run("type", func(t *testing.T) {
		if got := TypeLabel(core.Income); got != "Receita" {
			t.Errorf("TypeLabel(income) = %q", got)
		}
		if got := TypeLabel(core.Expense); got != "Despesa" {
			t.Errorf("TypeLabel(expense) = %q", got)
		}
	})

	t.Run("payment method", func(t *testing.T) {
		if got := PaymentMethodLabel(""); got != "À Vista" {
			t.Errorf("PaymentMethodLabel(empty) = %q, want À Vista", got)
		}
		if got := PaymentMethodLabel(core.PaymentCash); got != "À Vista" {
			t.Errorf("PaymentMethodLabel(cash) = %q", got)
		}
		if got := PaymentMethodLabel(core.PaymentCredit); got != "Crédito" {
			t.Errorf("PaymentMethodLabel(credit) = %q", got)
		}
	})

	t.Run("installments", func(t *testing.T) {
		cash := tx("t1", "x", "c1")
		if got := InstallmentsLabel(cash); got != "" {
			t.Errorf("InstallmentsLabel(cash) = %q, want empty", got)
		}
		credit := tx("t2", "x", "c1")
		credit.PaymentMethod = core.PaymentCredit
		credit.Installments = 3
		if got := InstallmentsLabel(credit); got != "3x" {
			t.Errorf("InstallmentsLabel(credit 3) = %q, want 3x", got)
		}
	})

	t.Run("status", func(t *testing.T) {
		cases := map[core.TransactionStatus]string{
			core.TransactionPaid:    "Pago",
			core.TransactionPending: "Pendente",
			core.TransactionOverdue: "Atrasado",
			"weird":                 "weird",
		}
		for in, want := range cases {
			if got := StatusLabel(in); got != want {
				t.Errorf("StatusLabel(%q) = %q, want %q", in, got, want)
			}
		}
	})
}

func TestSplitInfo(t *testing.T) {
	registry := participants.Default()

	split := tx("t1", "Compras", "c1")
	split.Amount = core.Money{Cents: 10000}
	split.SplitExpense = true
	split.PaidBy = "franklin"

	if got := SplitInfo(split, registry); got != "Franklim pagou (Michele deve R$ 50.00)" {
		t.Errorf("SplitInfo() = %q", got)
	}

	split.PaidBy = "michele"
	if got := SplitInfo(split, registry); got != "Michele pagou (Franklim deve R$ 50.00)" {
		t.Errorf("SplitInfo() = %q", got)
	}

	plain := tx("t2", "Compras", "c1")
	if got := SplitInfo(plain, registry); got != "" {
		t.Errorf("SplitInfo(non-split) = %q, want empty", got)
	}
}
