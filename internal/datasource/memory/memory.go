// Package memory is the demonstration backend: a mutex-guarded in-process
// store seeded with sample data so the app runs without any external service.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"
)

type Store struct {
	mu           sync.Mutex
	bills        []core.Bill
	categories   []core.Category
	transactions []core.Transaction
	debts        []core.Debt
	linked       []core.LinkedAccount
}

var _ datasource.Backend = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// NewSeeded returns a store pre-filled with a sample month of household data.
func NewSeeded() *Store {
	s := New()
	s.bills = []core.Bill{
		{ID: uuid.New().String(), Name: "Aluguel", Amount: core.Money{Cents: 120000}, DueDate: monthDay(10), Status: core.BillPending, Responsibility: "casal", Category: "Despesas Casa"},
		{ID: uuid.New().String(), Name: "Energia Elétrica", Amount: core.Money{Cents: 18000}, DueDate: monthDay(15), Status: core.BillPaid, Responsibility: "franklin", Category: "Despesas Casa"},
		{ID: uuid.New().String(), Name: "Internet", Amount: core.Money{Cents: 12000}, DueDate: monthDay(20), Status: core.BillUpcoming, Responsibility: "michele", Category: "Despesas Casa"},
		{ID: uuid.New().String(), Name: "Plano de Saúde", Amount: core.Money{Cents: 35000}, DueDate: monthDay(5), Status: core.BillLate, Responsibility: "casal", Category: "Saúde"},
		{ID: uuid.New().String(), Name: "Academia", Amount: core.Money{Cents: 9000}, DueDate: monthDay(10), Status: core.BillPaid, Responsibility: "franklin", Category: "Lazer"},
	}
	s.categories = []core.Category{
		{ID: "cat-casa", Name: "Despesas Casa"},
		{ID: "cat-lazer", Name: "Lazer"},
		{ID: "cat-mercado", Name: "Mercado"},
		{ID: "cat-salario", Name: "Salário"},
		{ID: "cat-saude", Name: "Saúde"},
	}
	s.transactions = []core.Transaction{
		{
			ID: uuid.New().String(), Description: "Salário", Amount: core.Money{Cents: 520000},
			CategoryID: "cat-salario", Date: monthDay(1), Type: core.Income,
			Responsibility: "franklin", Status: core.TransactionPaid, Installments: 1,
		},
		{
			ID: uuid.New().String(), Description: "Compras do mês", Amount: core.Money{Cents: 65000},
			CategoryID: "cat-mercado", Date: monthDay(8), Type: core.Expense,
			Responsibility: "casal", PaymentMethod: core.PaymentCredit, Installments: 1,
			SplitExpense: true, PaidBy: "franklin", Status: core.TransactionPaid,
		},
	}
	for _, t := range s.transactions {
		if t.SplitExpense && t.PaidBy != "" {
			s.debts = append(s.debts, core.Debt{
				ID:            uuid.New().String(),
				TransactionID: t.ID,
				Debtor:        otherOf(t.PaidBy),
				Amount:        t.Amount.Half(),
			})
		}
	}
	return s
}

func monthDay(day int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, time.UTC)
}

func otherOf(key string) string {
	if key == "franklin" {
		return "michele"
	}
	return "franklin"
}

func (s *Store) ListBills(_ context.Context, year, month int) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Bill
	for _, b := range s.bills {
		if b.DueDate.Year() == year && int(b.DueDate.Month()) == month {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (s *Store) CreateBill(_ context.Context, b *core.Bill) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	s.bills = append(s.bills, *b)
	return nil
}

func (s *Store) UpdateBillStatus(_ context.Context, id string, status core.BillStatus) error {
	if !status.IsValid() {
		return core.ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bills {
		if s.bills[i].ID == id {
			s.bills[i].Status = status
			return nil
		}
	}
	// Unknown ids are tolerated, matching the remote backend's PATCH semantics.
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Category(nil), s.categories...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	for i, t := range s.transactions {
		out[i] = t.Normalized()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// AddTransaction seeds or syncs a transaction into the store. It is not part
// of the read ports but the sync worker and tests need a write path.
func (s *Store) AddTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	s.transactions = append(s.transactions, t)
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == t.ID {
			s.transactions[i] = t
			return nil
		}
	}
	return datasource.ErrNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.transactions[:0]
	for _, t := range s.transactions {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.transactions = kept
	return nil
}

func (s *Store) ListDebtsByTransaction(_ context.Context, transactionID string) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Debt
	for _, d := range s.debts {
		if d.TransactionID == transactionID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) DeleteDebtsByTransaction(_ context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.debts[:0]
	for _, d := range s.debts {
		if d.TransactionID != transactionID {
			kept = append(kept, d)
		}
	}
	s.debts = kept
	return nil
}

// GetLinkedUsers always reports the missing procedure so callers exercise the
// same fallback chain the hosted backend triggers.
func (s *Store) GetLinkedUsers(_ context.Context) ([]core.LinkedAccount, error) {
	return nil, datasource.ErrFunctionNotFound
}

func (s *Store) CountRelationships(_ context.Context, _ string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.linked), nil
}

// LinkAccount registers a linked account for the relationship count.
func (s *Store) LinkAccount(a core.LinkedAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linked = append(s.linked, a)
}

func (s *Store) ReadWallet(_ context.Context, year, month int) (core.WalletData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var w core.WalletData
	for _, t := range s.transactions {
		if t.Date.Year() != year || int(t.Date.Month()) != month {
			continue
		}
		switch t.Type {
		case core.Income:
			w.Income.Cents += t.Amount.Cents
		case core.Expense:
			w.Expenses.Cents += t.Amount.Cents
		}
	}
	return w, nil
}
