// Package ledger holds the mutable month views the UI renders: the bills list
// with its aggregate totals and the transactions list with its category join
// and split bookkeeping.
package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"
)

var (
	// ErrMissingFields rejects a bill draft with required fields left blank.
	ErrMissingFields = errors.New("missing required fields")
	// ErrAmountNotPositive rejects a draft amount that is not a positive number.
	ErrAmountNotPositive = errors.New("amount must be a positive number")
)

// BillDraft is the raw form input for a new bill.
type BillDraft struct {
	Name           string
	Amount         string // decimal, e.g. "150.50"
	DueDate        string // 2006-01-02
	Responsibility string
	Category       string
}

// BillsLedger is the mutable bill list for one selected month. All state is
// mutex-guarded; loads carry a generation counter so a slow stale response
// never overwrites a newer one.
type BillsLedger struct {
	source datasource.BillSource

	mu      sync.Mutex
	gen     uint64
	loading bool
	year    int
	month   int
	bills   []core.Bill
}

func NewBillsLedger(source datasource.BillSource) *BillsLedger {
	now := time.Now()
	return &BillsLedger{source: source, year: now.Year(), month: int(now.Month())}
}

// Load fetches the given month's bills and returns them. The ledger state is
// replaced only when no newer load started in the meantime, so a slow stale
// response never overwrites fresher state — but the caller always receives
// what this load fetched for the month it asked for.
func (l *BillsLedger) Load(ctx context.Context, year, month int) ([]core.Bill, error) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.loading = true
	l.mu.Unlock()

	bills, err := l.source.ListBills(ctx, year, month)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		if gen == l.gen {
			l.loading = false
		}
		return nil, err
	}
	if gen == l.gen {
		l.loading = false
		l.year, l.month = year, month
		l.bills = bills
	}
	// Copy so later in-place status updates never reach the caller's slice.
	return append([]core.Bill(nil), bills...), nil
}

// Add validates the draft, persists the bill and appends it to the current
// list. Validation failures mutate nothing.
func (l *BillsLedger) Add(ctx context.Context, draft BillDraft) (core.Bill, error) {
	if strings.TrimSpace(draft.Name) == "" ||
		strings.TrimSpace(draft.Amount) == "" ||
		strings.TrimSpace(draft.DueDate) == "" {
		return core.Bill{}, ErrMissingFields
	}

	cents, err := core.ParseDecimalToCents(draft.Amount)
	if err != nil || cents <= 0 {
		return core.Bill{}, ErrAmountNotPositive
	}

	dueDate, err := time.Parse("2006-01-02", draft.DueDate)
	if err != nil {
		return core.Bill{}, ErrMissingFields
	}

	bill := core.Bill{
		Name:           strings.TrimSpace(draft.Name),
		Amount:         core.Money{Cents: cents},
		DueDate:        dueDate,
		Status:         core.BillPending,
		Responsibility: draft.Responsibility,
		Category:       draft.Category,
	}
	if err := bill.Validate(); err != nil {
		return core.Bill{}, err
	}

	if err := l.source.CreateBill(ctx, &bill); err != nil {
		return core.Bill{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if bill.DueDate.Year() == l.year && int(bill.DueDate.Month()) == l.month {
		l.bills = append(l.bills, bill)
	}
	return bill, nil
}

// SetStatus replaces the status of the matching bill. An unknown id changes
// nothing but is still not an error; the caller's confirmation message does
// not depend on a match.
func (l *BillsLedger) SetStatus(ctx context.Context, id string, status core.BillStatus) error {
	if !status.IsValid() {
		return core.ErrInvalidStatus
	}
	if err := l.source.UpdateBillStatus(ctx, id, status); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.bills {
		if l.bills[i].ID == id {
			l.bills[i].Status = status
			break
		}
	}
	return nil
}

// Bills returns a copy of the current list.
func (l *BillsLedger) Bills() []core.Bill {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Bill(nil), l.bills...)
}

// Loading reports whether a load is in flight.
func (l *BillsLedger) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Month returns the currently loaded period.
func (l *BillsLedger) Month() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.year, l.month
}

// TotalAmount sums every bill in the list.
func (l *BillsLedger) TotalAmount() core.Money {
	return l.sum(func(core.BillStatus) bool { return true })
}

// PaidAmount sums the paid bills.
func (l *BillsLedger) PaidAmount() core.Money {
	return l.sum(func(s core.BillStatus) bool { return s == core.BillPaid })
}

// PendingAmount sums the pending and late bills. Upcoming bills count toward
// the total only.
func (l *BillsLedger) PendingAmount() core.Money {
	return l.sum(func(s core.BillStatus) bool {
		return s == core.BillPending || s == core.BillLate
	})
}

func (l *BillsLedger) sum(include func(core.BillStatus) bool) core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	var total core.Money
	for _, b := range l.bills {
		if include(b.Status) {
			total.Cents += b.Amount.Cents
		}
	}
	return total
}
