// Package budget derives the "orçamento utilizado" card values from a wallet
// snapshot. Everything here is a pure function of WalletData.
package budget

import "github.com/frankmaximo93/shared-financial-journey/internal/core"

// Summary holds the derived values the budget card renders.
type Summary struct {
	Utilization int     // rounded percent of income consumed by expenses
	Progress    float64 // raw ratio clamped to [0,100] for the progress bar
	Expenses    core.Money
	Income      core.Money
}

// Utilization returns expenses/income as a rounded percentage. Zero income
// yields 0 rather than a division by zero.
func Utilization(w core.WalletData) int {
	if w.Income.Cents <= 0 {
		return 0
	}
	// round half-up on the percent
	return int((w.Expenses.Cents*100 + w.Income.Cents/2) / w.Income.Cents)
}

// Progress returns the utilization as a float clamped to the progress-bar
// range [0,100].
func Progress(w core.WalletData) float64 {
	if w.Income.Cents <= 0 {
		return 0
	}
	v := float64(w.Expenses.Cents) / float64(w.Income.Cents) * 100
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Summarize computes the full card model from a snapshot.
func Summarize(w core.WalletData) Summary {
	return Summary{
		Utilization: Utilization(w),
		Progress:    Progress(w),
		Expenses:    w.Expenses,
		Income:      w.Income,
	}
}
