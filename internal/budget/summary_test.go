package budget

import (
	"testing"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
)

func wallet(incomeCents, expenseCents int64) core.WalletData {
	return core.WalletData{
		Income:   core.Money{Cents: incomeCents},
		Expenses: core.Money{Cents: expenseCents},
	}
}

func TestUtilization(t *testing.T) {
	tests := []struct {
		name     string
		wallet   core.WalletData
		want     int
	}{
		{"quarter used", wallet(20000, 5000), 25},
		{"zero income", wallet(0, 5000), 0},
		{"zero expenses", wallet(20000, 0), 0},
		{"over budget", wallet(10000, 15000), 150},
		{"rounds half up", wallet(30000, 10000), 33},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Utilization(tc.wallet); got != tc.want {
				t.Errorf("Utilization() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestProgressClamped(t *testing.T) {
	if got := Progress(wallet(10000, 15000)); got != 100 {
		t.Errorf("Progress() = %v, want clamped 100", got)
	}
	if got := Progress(wallet(0, 5000)); got != 0 {
		t.Errorf("Progress() with zero income = %v, want 0", got)
	}
	if got := Progress(wallet(20000, 5000)); got != 25 {
		t.Errorf("Progress() = %v, want 25", got)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(wallet(20000, 5000))
	if s.Utilization != 25 || s.Progress != 25 {
		t.Errorf("Summarize() = %+v, want 25%%", s)
	}
	if s.Expenses.Cents != 5000 || s.Income.Cents != 20000 {
		t.Errorf("Summarize() must carry the snapshot through, got %+v", s)
	}
}
