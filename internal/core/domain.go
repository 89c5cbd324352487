package core

import (
	"errors"
	"strings"
	"time"
)

const (
	BillPending  BillStatus = "pending"
	BillPaid     BillStatus = "paid"
	BillLate     BillStatus = "late"
	BillUpcoming BillStatus = "upcoming"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"
)

const (
	TransactionPending TransactionStatus = "pending"
	TransactionPaid    TransactionStatus = "paid"
	TransactionOverdue TransactionStatus = "overdue"
)

type (
	BillStatus        string
	TransactionType   string
	PaymentMethod     string
	TransactionStatus string

	Money struct {
		Cents int64
	}

	// Bill is a household obligation tracked for a specific month.
	Bill struct {
		ID             string
		Name           string
		Amount         Money
		DueDate        time.Time
		Status         BillStatus
		Responsibility string // participant key or the joint key
		Category       string
	}

	// Transaction is a ledger entry, optionally bought on credit and
	// optionally split 50/50 between the two household members.
	Transaction struct {
		ID             string
		Description    string
		Amount         Money
		CategoryID     string
		Date           time.Time
		Type           TransactionType
		Responsibility string
		PaymentMethod  PaymentMethod // empty means unspecified, displayed as cash
		Installments   int           // meaningful only for credit purchases
		DueDate        time.Time     // first installment due date, credit only
		SplitExpense   bool
		PaidBy         string // participant key, set when SplitExpense is true
		Status         TransactionStatus
		IsRecurring    bool
	}

	Category struct {
		ID   string
		Name string
	}

	// Debt is the owed half of a split expense, dependent on its transaction.
	Debt struct {
		ID            string
		TransactionID string
		Debtor        string
		Amount        Money
	}

	// WalletData is a precomputed monthly snapshot consumed read-only.
	WalletData struct {
		Income   Money
		Expenses Money
	}

	// LinkedAccount is another profile sharing the same financial data.
	LinkedAccount struct {
		Email        string
		Relationship string
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyDescription  = errors.New("empty description")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrSplitWithoutPayer = errors.New("split expense without payer")
)

func (s BillStatus) IsValid() bool {
	switch s {
	case BillPending, BillPaid, BillLate, BillUpcoming:
		return true
	default:
		return false
	}
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (m PaymentMethod) IsValid() bool {
	// Empty is allowed: the remote store keeps NULL for plain cash purchases.
	return m == "" || m == PaymentCash || m == PaymentCredit
}

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionPending, TransactionPaid, TransactionOverdue:
		return true
	default:
		return false
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b Bill) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if len(b.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.DueDate.IsZero() {
		return errors.New("due date cannot be zero")
	}
	if !b.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if !t.PaymentMethod.IsValid() {
		return errors.New("invalid payment method")
	}
	if t.PaymentMethod == PaymentCredit && t.Installments < 1 {
		return errors.New("credit purchase needs at least one installment")
	}
	if t.SplitExpense && strings.TrimSpace(t.PaidBy) == "" {
		return ErrSplitWithoutPayer
	}
	if t.Status != "" && !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Normalized returns a copy with optional fields defaulted: a missing status
// becomes pending and non-credit purchases carry a single installment.
func (t Transaction) Normalized() Transaction {
	if t.Status == "" {
		t.Status = TransactionPending
	}
	if t.Installments < 1 {
		t.Installments = 1
	}
	return t
}
