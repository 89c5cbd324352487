package core

import (
	"errors"
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestBillValidate(t *testing.T) {
	valid := Bill{
		ID:             "b1",
		Name:           "Aluguel",
		Amount:         Money{Cents: 120000},
		DueDate:        date(2025, 3, 10),
		Status:         BillPending,
		Responsibility: "casal",
		Category:       "Despesas Casa",
	}

	tests := []struct {
		name    string
		mutate  func(*Bill)
		wantErr error
	}{
		{"valid", func(b *Bill) {}, nil},
		{"empty name", func(b *Bill) { b.Name = "   " }, ErrEmptyName},
		{"zero amount", func(b *Bill) { b.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(b *Bill) { b.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"bad status", func(b *Bill) { b.Status = "settled" }, ErrInvalidStatus},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := valid
			tc.mutate(&b)
			err := b.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		ID:          "t1",
		Description: "Mercado",
		Amount:      Money{Cents: 10000},
		CategoryID:  "c1",
		Date:        date(2025, 3, 1),
		Type:        Expense,
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(tr *Transaction) {}, nil},
		{"empty description", func(tr *Transaction) { tr.Description = "" }, ErrEmptyDescription},
		{"bad type", func(tr *Transaction) { tr.Type = "transfer" }, ErrInvalidType},
		{"split without payer", func(tr *Transaction) { tr.SplitExpense = true }, ErrSplitWithoutPayer},
		{"bad status", func(tr *Transaction) { tr.Status = "cancelled" }, ErrInvalidStatus},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := valid
			tc.mutate(&tr)
			err := tr.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}

	t.Run("credit needs installments", func(t *testing.T) {
		tr := valid
		tr.PaymentMethod = PaymentCredit
		tr.Installments = 0
		if err := tr.Validate(); err == nil {
			t.Error("Validate() = nil, want error for credit without installments")
		}
	})
}

func TestTransactionNormalized(t *testing.T) {
	tr := Transaction{Description: "Luz", Amount: Money{Cents: 18000}, Type: Expense}
	got := tr.Normalized()
	if got.Status != TransactionPending {
		t.Errorf("Normalized() status = %q, want %q", got.Status, TransactionPending)
	}
	if got.Installments != 1 {
		t.Errorf("Normalized() installments = %d, want 1", got.Installments)
	}

	paid := Transaction{Status: TransactionPaid, Installments: 3}.Normalized()
	if paid.Status != TransactionPaid || paid.Installments != 3 {
		t.Errorf("Normalized() must not override set fields, got %+v", paid)
	}
}
