package postgrest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"
)

// Store implements datasource.Backend on top of the generic client.
type Store struct {
	c      *Client
	userID string // scopes relationship lookups; empty means unscoped
}

// Ensure interface conformance
var _ datasource.Backend = (*Store)(nil)

// NewStore wraps a client as a full data backend. userID may be empty when no
// user token is configured.
func NewStore(c *Client, userID string) *Store {
	return &Store{c: c, userID: userID}
}

const dateLayout = "2006-01-02"

// Wire rows: numeric columns arrive as JSON numbers with arbitrary precision,
// decoded via shopspring/decimal and converted to cents once at the edge.
type (
	billRow struct {
		ID             string          `json:"id"`
		Name           string          `json:"name"`
		Amount         decimal.Decimal `json:"amount"`
		DueDate        string          `json:"due_date"`
		Status         string          `json:"status"`
		Responsibility string          `json:"responsibility"`
		Category       string          `json:"category"`
	}

	categoryRow struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	transactionRow struct {
		ID             string          `json:"id"`
		Description    string          `json:"description"`
		Amount         decimal.Decimal `json:"amount"`
		CategoryID     string          `json:"category_id"`
		Date           string          `json:"date"`
		Type           string          `json:"type"`
		Responsibility string          `json:"responsibility"`
		PaymentMethod  *string         `json:"payment_method"`
		Installments   *int            `json:"installments"`
		DueDate        *string         `json:"due_date"`
		SplitExpense   bool            `json:"split_expense"`
		PaidBy         *string         `json:"paid_by"`
		Status         *string         `json:"status"`
		IsRecurring    bool            `json:"is_recurring"`
	}

	debtRow struct {
		ID            string          `json:"id"`
		TransactionID string          `json:"transaction_id"`
		Debtor        string          `json:"debtor"`
		Amount        decimal.Decimal `json:"amount"`
	}

	walletRow struct {
		Income   decimal.Decimal `json:"income"`
		Expenses decimal.Decimal `json:"expenses"`
	}

	linkedUserRow struct {
		Email        string `json:"email"`
		Relationship string `json:"relationship"`
	}
)

func toCents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

// ListBills implements datasource.BillSource.
func (s *Store) ListBills(ctx context.Context, year, month int) ([]core.Bill, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var rows []billRow
	err := s.c.From("monthly_bills").
		Gte("due_date", from.Format(dateLayout)).
		Lt("due_date", to.Format(dateLayout)).
		Order("due_date", true).
		Get(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}

	bills := make([]core.Bill, len(rows))
	for i, r := range rows {
		bills[i] = core.Bill{
			ID:             r.ID,
			Name:           r.Name,
			Amount:         core.Money{Cents: toCents(r.Amount)},
			DueDate:        parseDate(r.DueDate),
			Status:         core.BillStatus(r.Status),
			Responsibility: r.Responsibility,
			Category:       r.Category,
		}
	}
	return bills, nil
}

// CreateBill implements datasource.BillSource.
func (s *Store) CreateBill(ctx context.Context, b *core.Bill) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	row := billRow{
		ID:             b.ID,
		Name:           b.Name,
		Amount:         fromCents(b.Amount.Cents),
		DueDate:        b.DueDate.Format(dateLayout),
		Status:         string(b.Status),
		Responsibility: b.Responsibility,
		Category:       b.Category,
	}
	if err := s.c.From("monthly_bills").Insert(ctx, []billRow{row}); err != nil {
		return fmt.Errorf("create bill: %w", err)
	}
	return nil
}

// UpdateBillStatus implements datasource.BillSource.
func (s *Store) UpdateBillStatus(ctx context.Context, id string, status core.BillStatus) error {
	payload := map[string]string{"status": string(status)}
	if err := s.c.From("monthly_bills").Eq("id", id).Update(ctx, payload); err != nil {
		return fmt.Errorf("update bill status: %w", err)
	}
	return nil
}

// ListCategories implements datasource.CategorySource.
func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	var rows []categoryRow
	err := s.c.From("categories").Select("id,name").Order("name", true).Get(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	cats := make([]core.Category, len(rows))
	for i, r := range rows {
		cats[i] = core.Category{ID: r.ID, Name: r.Name}
	}
	return cats, nil
}

// ListTransactions implements datasource.TransactionSource.
func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var rows []transactionRow
	err := s.c.From("transactions").Order("date", false).Get(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]core.Transaction, len(rows))
	for i, r := range rows {
		t := core.Transaction{
			ID:             r.ID,
			Description:    r.Description,
			Amount:         core.Money{Cents: toCents(r.Amount)},
			CategoryID:     r.CategoryID,
			Date:           parseDate(r.Date),
			Type:           core.TransactionType(r.Type),
			Responsibility: r.Responsibility,
			SplitExpense:   r.SplitExpense,
			IsRecurring:    r.IsRecurring,
		}
		if r.PaymentMethod != nil {
			t.PaymentMethod = core.PaymentMethod(*r.PaymentMethod)
		}
		if r.Installments != nil {
			t.Installments = *r.Installments
		}
		if r.DueDate != nil {
			t.DueDate = parseDate(*r.DueDate)
		}
		if r.PaidBy != nil {
			t.PaidBy = *r.PaidBy
		}
		if r.Status != nil {
			t.Status = core.TransactionStatus(*r.Status)
		}
		txs[i] = t.Normalized()
	}
	return txs, nil
}

// UpdateTransaction implements datasource.TransactionSource.
func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	payload := map[string]any{
		"description":    t.Description,
		"amount":         fromCents(t.Amount.Cents),
		"category_id":    t.CategoryID,
		"date":           t.Date.Format(dateLayout),
		"type":           string(t.Type),
		"responsibility": t.Responsibility,
		"split_expense":  t.SplitExpense,
		"status":         string(t.Status),
		"is_recurring":   t.IsRecurring,
	}
	if t.PaymentMethod != "" {
		payload["payment_method"] = string(t.PaymentMethod)
		payload["installments"] = t.Installments
	}
	if !t.DueDate.IsZero() {
		payload["due_date"] = t.DueDate.Format(dateLayout)
	}
	if t.PaidBy != "" {
		payload["paid_by"] = t.PaidBy
	}
	if err := s.c.From("transactions").Eq("id", t.ID).Update(ctx, payload); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// DeleteTransaction implements datasource.TransactionSource.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.c.From("transactions").Eq("id", id).Delete(ctx); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// ListDebtsByTransaction implements datasource.DebtStore.
func (s *Store) ListDebtsByTransaction(ctx context.Context, transactionID string) ([]core.Debt, error) {
	var rows []debtRow
	err := s.c.From("debts").Eq("transaction_id", transactionID).Get(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	debts := make([]core.Debt, len(rows))
	for i, r := range rows {
		debts[i] = core.Debt{
			ID:            r.ID,
			TransactionID: r.TransactionID,
			Debtor:        r.Debtor,
			Amount:        core.Money{Cents: toCents(r.Amount)},
		}
	}
	return debts, nil
}

// DeleteDebtsByTransaction implements datasource.DebtStore.
func (s *Store) DeleteDebtsByTransaction(ctx context.Context, transactionID string) error {
	if err := s.c.From("debts").Eq("transaction_id", transactionID).Delete(ctx); err != nil {
		return fmt.Errorf("delete debts: %w", err)
	}
	return nil
}

// GetLinkedUsers implements datasource.LinkedAccountSource via the
// get_linked_users procedure.
func (s *Store) GetLinkedUsers(ctx context.Context) ([]core.LinkedAccount, error) {
	var rows []linkedUserRow
	if err := s.c.RPC(ctx, "get_linked_users", nil, &rows); err != nil {
		return nil, err
	}
	accounts := make([]core.LinkedAccount, len(rows))
	for i, r := range rows {
		accounts[i] = core.LinkedAccount{Email: r.Email, Relationship: r.Relationship}
	}
	return accounts, nil
}

// CountRelationships implements datasource.LinkedAccountSource.
func (s *Store) CountRelationships(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		userID = s.userID
	}
	q := s.c.From("user_relationships").Select("id")
	if userID != "" {
		q = q.Eq("user_id", userID)
	}
	var rows []struct {
		ID string `json:"id"`
	}
	if err := q.Get(ctx, &rows); err != nil {
		return 0, fmt.Errorf("count relationships: %w", err)
	}
	return len(rows), nil
}

// UpsertTransaction pushes a locally written transaction and its debts to
// the hosted backend, merging on id so retries are idempotent.
func (s *Store) UpsertTransaction(ctx context.Context, t core.Transaction, debts []core.Debt) error {
	row := transactionRow{
		ID:             t.ID,
		Description:    t.Description,
		Amount:         fromCents(t.Amount.Cents),
		CategoryID:     t.CategoryID,
		Date:           t.Date.Format(dateLayout),
		Type:           string(t.Type),
		Responsibility: t.Responsibility,
		SplitExpense:   t.SplitExpense,
		IsRecurring:    t.IsRecurring,
	}
	if t.PaymentMethod != "" {
		pm := string(t.PaymentMethod)
		row.PaymentMethod = &pm
		n := t.Installments
		row.Installments = &n
	}
	if !t.DueDate.IsZero() {
		d := t.DueDate.Format(dateLayout)
		row.DueDate = &d
	}
	if t.PaidBy != "" {
		row.PaidBy = &t.PaidBy
	}
	if t.Status != "" {
		st := string(t.Status)
		row.Status = &st
	}
	if err := s.c.From("transactions").Upsert(ctx, []transactionRow{row}); err != nil {
		return fmt.Errorf("upsert transaction: %w", err)
	}

	if len(debts) == 0 {
		return nil
	}
	rows := make([]debtRow, len(debts))
	for i, d := range debts {
		rows[i] = debtRow{
			ID:            d.ID,
			TransactionID: d.TransactionID,
			Debtor:        d.Debtor,
			Amount:        fromCents(d.Amount.Cents),
		}
	}
	if err := s.c.From("debts").Upsert(ctx, rows); err != nil {
		return fmt.Errorf("upsert debts: %w", err)
	}
	return nil
}

// ReadWallet implements datasource.WalletReader from the wallet_summary view.
func (s *Store) ReadWallet(ctx context.Context, year, month int) (core.WalletData, error) {
	var rows []walletRow
	err := s.c.From("wallet_summary").
		Eq("year", fmt.Sprintf("%d", year)).
		Eq("month", fmt.Sprintf("%d", month)).
		Get(ctx, &rows)
	if err != nil {
		return core.WalletData{}, fmt.Errorf("read wallet: %w", err)
	}
	if len(rows) == 0 {
		return core.WalletData{}, nil
	}
	return core.WalletData{
		Income:   core.Money{Cents: toCents(rows[0].Income)},
		Expenses: core.Money{Cents: toCents(rows[0].Expenses)},
	}, nil
}
