// Package datasource declares the outbound ports every data backend
// implements: the hosted PostgREST service, the local SQLite store and the
// in-memory demonstration store.
package datasource

import (
	"context"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
)

// Ports for outbound adapters.
type (
	BillSource interface {
		// ListBills returns the bills for the given month, ordered by due date.
		ListBills(ctx context.Context, year, month int) ([]core.Bill, error)
		// CreateBill persists a new bill; the adapter fills Bill.ID.
		CreateBill(ctx context.Context, b *core.Bill) error
		// UpdateBillStatus replaces the status of the matching bill.
		// Unknown ids are not an error.
		UpdateBillStatus(ctx context.Context, id string, status core.BillStatus) error
	}

	CategorySource interface {
		// ListCategories returns all categories ordered by name.
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	TransactionSource interface {
		// ListTransactions returns all transactions ordered by date descending.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		// UpdateTransaction replaces an existing transaction's fields.
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		// DeleteTransaction removes the transaction row.
		DeleteTransaction(ctx context.Context, id string) error
	}

	DebtStore interface {
		// ListDebtsByTransaction returns dependent debts for a transaction.
		ListDebtsByTransaction(ctx context.Context, transactionID string) ([]core.Debt, error)
		// DeleteDebtsByTransaction removes all debts referencing a transaction.
		DeleteDebtsByTransaction(ctx context.Context, transactionID string) error
	}

	LinkedAccountSource interface {
		// GetLinkedUsers calls the backend RPC that lists accounts sharing
		// data with the current user. Backends without the procedure return
		// ErrFunctionNotFound so callers can fall back.
		GetLinkedUsers(ctx context.Context) ([]core.LinkedAccount, error)
		// CountRelationships counts rows in the relationship table for the
		// given user, the fallback when the RPC is missing.
		CountRelationships(ctx context.Context, userID string) (int, error)
	}

	// WalletReader provides the precomputed monthly snapshot for the budget card.
	WalletReader interface {
		ReadWallet(ctx context.Context, year, month int) (core.WalletData, error)
	}
)

// Backend bundles every port a full data backend provides.
type Backend interface {
	BillSource
	CategorySource
	TransactionSource
	DebtStore
	LinkedAccountSource
	WalletReader
}
