// Package adapters bridges concrete backends to the datasource ports so the
// ledgers and HTTP handlers stay backend-agnostic.
package adapters

import (
	"context"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"
	"github.com/frankmaximo93/shared-financial-journey/internal/services"
	"github.com/frankmaximo93/shared-financial-journey/internal/storage"
)

// SQLiteAdapter exposes the local repository as a datasource.Backend. Writes
// go through the transaction service so they are queued for sync; reads hit
// the repository directly.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.TransactionService
}

var _ datasource.Backend = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.TransactionService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

func (a *SQLiteAdapter) ListBills(ctx context.Context, year, month int) ([]core.Bill, error) {
	return a.storage.ListBills(ctx, year, month)
}

func (a *SQLiteAdapter) CreateBill(ctx context.Context, b *core.Bill) error {
	return a.storage.CreateBill(ctx, b)
}

func (a *SQLiteAdapter) UpdateBillStatus(ctx context.Context, id string, status core.BillStatus) error {
	return a.storage.UpdateBillStatus(ctx, id, status)
}

func (a *SQLiteAdapter) ListCategories(ctx context.Context) ([]core.Category, error) {
	return a.storage.ListCategories(ctx)
}

func (a *SQLiteAdapter) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return a.storage.ListTransactions(ctx)
}

func (a *SQLiteAdapter) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	return a.service.Update(ctx, t)
}

func (a *SQLiteAdapter) DeleteTransaction(ctx context.Context, id string) error {
	return a.service.Delete(ctx, id)
}

func (a *SQLiteAdapter) ListDebtsByTransaction(ctx context.Context, transactionID string) ([]core.Debt, error) {
	return a.storage.ListDebtsByTransaction(ctx, transactionID)
}

func (a *SQLiteAdapter) DeleteDebtsByTransaction(ctx context.Context, transactionID string) error {
	return a.storage.DeleteDebtsByTransaction(ctx, transactionID)
}

// GetLinkedUsers reports the missing procedure; the local database has no
// account linkage, so callers fall back to the relationship count.
func (a *SQLiteAdapter) GetLinkedUsers(ctx context.Context) ([]core.LinkedAccount, error) {
	return nil, datasource.ErrFunctionNotFound
}

func (a *SQLiteAdapter) CountRelationships(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (a *SQLiteAdapter) ReadWallet(ctx context.Context, year, month int) (core.WalletData, error) {
	return a.storage.ReadWallet(ctx, year, month)
}
