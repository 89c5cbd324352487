// Package storage is the local SQLite persistence layer. It backs the
// local-first mode: writes land here immediately and a background worker
// pushes them to the hosted service later.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"

	_ "modernc.org/sqlite"
)

// Sync states for locally written transactions.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListBills returns the bills whose due date falls inside the given month,
// ordered by due date.
func (r *SQLiteRepository) ListBills(ctx context.Context, year, month int) ([]core.Bill, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, amount_cents, due_date, status, responsibility, category
		FROM monthly_bills
		WHERE due_date >= ? AND due_date < ?
		ORDER BY due_date ASC`,
		from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		var b core.Bill
		var dueDate string
		if err := rows.Scan(&b.ID, &b.Name, &b.Amount.Cents, &dueDate, &b.Status, &b.Responsibility, &b.Category); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		b.DueDate, _ = time.Parse(dateLayout, dueDate)
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func (r *SQLiteRepository) CreateBill(ctx context.Context, b *core.Bill) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO monthly_bills (id, name, amount_cents, due_date, status, responsibility, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Amount.Cents, b.DueDate.Format(dateLayout), string(b.Status), b.Responsibility, b.Category)
	if err != nil {
		return fmt.Errorf("create bill: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateBillStatus(ctx context.Context, id string, status core.BillStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE monthly_bills SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update bill status: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

const transactionColumns = `id, description, amount_cents, category_id, date, type,
	responsibility, payment_method, installments, due_date, split_expense,
	paid_by, status, is_recurring`

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var t core.Transaction
	var date, dueDate string
	var split, recurring int
	err := rows.Scan(&t.ID, &t.Description, &t.Amount.Cents, &t.CategoryID, &date,
		&t.Type, &t.Responsibility, &t.PaymentMethod, &t.Installments, &dueDate,
		&split, &t.PaidBy, &t.Status, &recurring)
	if err != nil {
		return t, err
	}
	t.Date, _ = time.Parse(dateLayout, date)
	if dueDate != "" {
		t.DueDate, _ = time.Parse(dateLayout, dueDate)
	}
	t.SplitExpense = split != 0
	t.IsRecurring = recurring != 0
	return t.Normalized(), nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// CreateTransaction stores a transaction and, for split expenses, its debt
// rows in one database transaction. The row starts in sync state pending.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction, debts []core.Debt) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	dueDate := ""
	if !t.DueDate.IsZero() {
		dueDate = t.DueDate.Format(dateLayout)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, description, amount_cents, category_id, date, type,
			responsibility, payment_method, installments, due_date, split_expense,
			paid_by, status, is_recurring, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Description, t.Amount.Cents, t.CategoryID, t.Date.Format(dateLayout),
		string(t.Type), t.Responsibility, string(t.PaymentMethod), t.Installments,
		dueDate, boolToInt(t.SplitExpense), t.PaidBy, string(t.Status),
		boolToInt(t.IsRecurring), SyncPending)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	for _, d := range debts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO debts (id, transaction_id, debtor, amount_cents)
			VALUES (?, ?, ?, ?)`,
			d.ID, d.TransactionID, d.Debtor, d.Amount.Cents)
		if err != nil {
			return fmt.Errorf("insert debt: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	dueDate := ""
	if !t.DueDate.IsZero() {
		dueDate = t.DueDate.Format(dateLayout)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET description = ?, amount_cents = ?, category_id = ?,
			date = ?, type = ?, responsibility = ?, payment_method = ?,
			installments = ?, due_date = ?, split_expense = ?, paid_by = ?,
			status = ?, is_recurring = ?, sync_status = ?
		WHERE id = ?`,
		t.Description, t.Amount.Cents, t.CategoryID, t.Date.Format(dateLayout),
		string(t.Type), t.Responsibility, string(t.PaymentMethod), t.Installments,
		dueDate, boolToInt(t.SplitExpense), t.PaidBy, string(t.Status),
		boolToInt(t.IsRecurring), SyncPending, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return datasource.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return core.Transaction{}, err
		}
		return core.Transaction{}, datasource.ErrNotFound
	}
	t, err := scanTransaction(rows)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListDebtsByTransaction(ctx context.Context, transactionID string) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, transaction_id, debtor, amount_cents
		FROM debts WHERE transaction_id = ?`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var debts []core.Debt
	for rows.Next() {
		var d core.Debt
		if err := rows.Scan(&d.ID, &d.TransactionID, &d.Debtor, &d.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

func (r *SQLiteRepository) DeleteDebtsByTransaction(ctx context.Context, transactionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM debts WHERE transaction_id = ?`, transactionID)
	if err != nil {
		return fmt.Errorf("delete debts: %w", err)
	}
	return nil
}

// ReadWallet aggregates the month's income and expenses from the local rows.
func (r *SQLiteRepository) ReadWallet(ctx context.Context, year, month int) (core.WalletData, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var w core.WalletData
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE date >= ? AND date < ?`,
		from.Format(dateLayout), to.Format(dateLayout)).
		Scan(&w.Income.Cents, &w.Expenses.Cents)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.WalletData{}, fmt.Errorf("read wallet: %w", err)
	}
	return w, nil
}

// MarkLateBills flips pending bills whose due date has passed to late and
// returns how many rows changed.
func (r *SQLiteRepository) MarkLateBills(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE monthly_bills SET status = ?
		WHERE status = ? AND due_date < ?`,
		string(core.BillLate), string(core.BillPending), now.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("mark late bills: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ListOverdueTransactions returns pending expense transactions whose due date
// has passed.
func (r *SQLiteRepository) ListOverdueTransactions(ctx context.Context, now time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE status = ? AND due_date != '' AND due_date < ?`,
		string(core.TransactionPending), now.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list overdue: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// PendingSync holds the queue metadata for a locally written transaction.
type PendingSync struct {
	ID        string
	CreatedAt time.Time
}

// ListPendingSync returns transactions waiting to be pushed to the remote
// backend, oldest first.
func (r *SQLiteRepository) ListPendingSync(ctx context.Context, limit int) ([]PendingSync, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at FROM transactions
		WHERE sync_status = ? ORDER BY created_at ASC LIMIT ?`,
		SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	defer rows.Close()

	var out []PendingSync
	for rows.Next() {
		var p PendingSync
		var created string
		if err := rows.Scan(&p.ID, &created); err != nil {
			return nil, fmt.Errorf("scan pending sync: %w", err)
		}
		p.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", created)
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced records a successful push to the remote backend.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	return r.setSyncStatus(ctx, id, SyncDone)
}

// MarkSyncError records a failed push so the row can be retried or inspected.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	return r.setSyncStatus(ctx, id, SyncError)
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set sync status: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
