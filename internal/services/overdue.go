package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/notify"
	"github.com/frankmaximo93/shared-financial-journey/internal/storage"
)

// OverdueService promotes past-due pending transactions to overdue and mails
// the debtor of each overdue split expense.
type OverdueService struct {
	repo   *storage.SQLiteRepository
	mailer notify.Mailer     // nil disables reminders
	emails map[string]string // participant key -> email address
}

func NewOverdueService(repo *storage.SQLiteRepository, mailer notify.Mailer, emails map[string]string) *OverdueService {
	return &OverdueService{repo: repo, mailer: mailer, emails: emails}
}

// Run performs one sweep: past-due pending bills become late, past-due
// pending transactions become overdue. It returns how many transactions were
// marked overdue; reminder failures are logged, not fatal.
func (s *OverdueService) Run(ctx context.Context, now time.Time) (int, error) {
	lateBills, err := s.repo.MarkLateBills(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("mark late bills: %w", err)
	}
	if lateBills > 0 {
		slog.InfoContext(ctx, "Bills marked late", "count", lateBills)
	}

	overdue, err := s.repo.ListOverdueTransactions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list overdue transactions: %w", err)
	}

	marked := 0
	for _, t := range overdue {
		t.Status = core.TransactionOverdue
		if err := s.repo.UpdateTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to mark transaction overdue",
				"id", t.ID, "error", err)
			continue
		}
		marked++
		slog.InfoContext(ctx, "Transaction marked overdue",
			"id", t.ID,
			"description", t.Description,
			"due_date", t.DueDate.Format("2006-01-02"))

		s.remind(ctx, t)
	}
	return marked, nil
}

func (s *OverdueService) remind(ctx context.Context, t core.Transaction) {
	if s.mailer == nil || !t.SplitExpense {
		return
	}
	debts, err := s.repo.ListDebtsByTransaction(ctx, t.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load debts for reminder",
			"id", t.ID, "error", err)
		return
	}
	for _, d := range debts {
		to, ok := s.emails[d.Debtor]
		if !ok || to == "" {
			slog.WarnContext(ctx, "No email configured for debtor, skipping reminder",
				"debtor", d.Debtor, "transaction_id", t.ID)
			continue
		}
		if err := s.mailer.SendDebtReminder(to, t, d); err != nil {
			slog.ErrorContext(ctx, "Failed to send debt reminder",
				"to", to, "transaction_id", t.ID, "error", err)
			continue
		}
		slog.InfoContext(ctx, "Debt reminder sent",
			"to", to, "transaction_id", t.ID, "amount_cents", d.Amount.Cents)
	}
}
