package ledger

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"
	"github.com/frankmaximo93/shared-financial-journey/internal/participants"
)

// UnknownCategory is shown when a transaction references a category id the
// lookup map does not contain.
const UnknownCategory = "Categoria desconhecida"

// TransactionSource is what the transactions ledger needs from a backend.
type TransactionSource interface {
	datasource.CategorySource
	datasource.TransactionSource
	datasource.DebtStore
}

// Row is one rendered transaction: the raw record plus its joined category
// name.
type Row struct {
	core.Transaction
	CategoryName string
}

// TransactionsLedger is the mutable transactions view: category join, display
// rows and the debt cascade on delete.
type TransactionsLedger struct {
	source   TransactionSource
	registry *participants.Registry

	mu         sync.Mutex
	gen        uint64
	loading    bool
	rows       []Row
	categories map[string]string
}

func NewTransactionsLedger(source TransactionSource, registry *participants.Registry) *TransactionsLedger {
	return &TransactionsLedger{source: source, registry: registry}
}

// LoadData fetches categories and transactions concurrently and commits both
// or neither. Either failure aborts the whole operation; a superseded load is
// dropped.
func (l *TransactionsLedger) LoadData(ctx context.Context) error {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.loading = true
	l.mu.Unlock()

	var (
		cats []core.Category
		txs  []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = l.source.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = l.source.ListTransactions(gctx)
		return err
	})
	err := g.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return nil
	}
	l.loading = false
	if err != nil {
		return err
	}

	byID := make(map[string]string, len(cats))
	for _, c := range cats {
		byID[c.ID] = c.Name
	}

	rows := make([]Row, len(txs))
	for i, t := range txs {
		t = t.Normalized()
		name, ok := byID[t.CategoryID]
		if !ok {
			name = UnknownCategory
		}
		rows[i] = Row{Transaction: t, CategoryName: name}
	}

	l.categories = byID
	l.rows = rows
	return nil
}

// Delete removes the transaction's dependent debts first, then the
// transaction itself, and reloads the view. Confirmation is the HTTP
// boundary's job.
func (l *TransactionsLedger) Delete(ctx context.Context, id string) error {
	if err := l.source.DeleteDebtsByTransaction(ctx, id); err != nil {
		return err
	}
	if err := l.source.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	return l.LoadData(ctx)
}

// Update persists the edited transaction and reloads the view.
func (l *TransactionsLedger) Update(ctx context.Context, t core.Transaction) error {
	t = t.Normalized()
	if err := t.Validate(); err != nil {
		return err
	}
	if err := l.source.UpdateTransaction(ctx, t); err != nil {
		return err
	}
	return l.LoadData(ctx)
}

// Rows returns a copy of the current display rows.
func (l *TransactionsLedger) Rows() []Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Row(nil), l.rows...)
}

// Find returns the row with the given id for the edit form.
func (l *TransactionsLedger) Find(id string) (Row, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.rows {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

// CategoryName resolves a category id against the last loaded lookup map.
func (l *TransactionsLedger) CategoryName(id string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if name, ok := l.categories[id]; ok {
		return name
	}
	return UnknownCategory
}

// Loading reports whether a load is in flight.
func (l *TransactionsLedger) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// SplitInfo renders the split summary line for a transaction, empty when the
// expense is not split.
func (l *TransactionsLedger) SplitInfo(t core.Transaction) string {
	return SplitInfo(t, l.registry)
}

// FormatDate renders a date the pt-BR way, dd/mm/yyyy. Zero dates render
// empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// TypeLabel renders the transaction type.
func TypeLabel(t core.TransactionType) string {
	if t == core.Income {
		return "Receita"
	}
	return "Despesa"
}

// PaymentMethodLabel renders the payment method; an unset method displays as
// cash.
func PaymentMethodLabel(m core.PaymentMethod) string {
	if m == core.PaymentCredit {
		return "Crédito"
	}
	return "À Vista"
}

// InstallmentsLabel renders "Nx" for credit purchases and nothing otherwise.
func InstallmentsLabel(t core.Transaction) string {
	if t.PaymentMethod != core.PaymentCredit {
		return ""
	}
	n := t.Installments
	if n < 1 {
		n = 1
	}
	return strconv.Itoa(n) + "x"
}

// StatusLabel renders the transaction status; unknown values pass through.
func StatusLabel(s core.TransactionStatus) string {
	switch s {
	case core.TransactionPaid:
		return "Pago"
	case core.TransactionPending:
		return "Pendente"
	case core.TransactionOverdue:
		return "Atrasado"
	default:
		return string(s)
	}
}

// SplitInfo renders "<payer> pagou (<ower> deve R$ <half>)" for a split
// expense.
func SplitInfo(t core.Transaction, registry *participants.Registry) string {
	if !t.SplitExpense || t.PaidBy == "" {
		return ""
	}
	other, err := registry.Other(t.PaidBy)
	if err != nil {
		return ""
	}
	payer := registry.DisplayName(t.PaidBy)
	return payer + " pagou (" + other.Name + " deve R$ " + t.Amount.Half().Decimal() + ")"
}
