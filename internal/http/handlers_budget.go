package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frankmaximo93/shared-financial-journey/internal/budget"
)

// handleBudgetPartial renders the "orçamento utilizado" card for the month.
func (s *Server) handleBudgetPartial(w http.ResponseWriter, r *http.Request) {
	params := ParseMonthParams(r.URL.Query())

	wallet, err := s.source.ReadWallet(r.Context(), params.Year, params.Month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Wallet read failed",
			"error", err, "year", params.Year, "month", params.Month)
		NewHTMXResponse().
			BodyHTML(`<section id="budget" class="budget"><div class="placeholder">Erro ao carregar orçamento</div></section>`).
			Write(w)
		return
	}

	summary := budget.Summarize(wallet)
	data := struct {
		Year        int
		Month       int
		Income      string
		Expenses    string
		Utilization int
		Progress    string
	}{
		Year:        params.Year,
		Month:       params.Month,
		Income:      summary.Income.Format(),
		Expenses:    summary.Expenses.Format(),
		Utilization: summary.Utilization,
		Progress:    fmt.Sprintf("%.1f", summary.Progress),
	}

	s.renderPartial(w, r, "budget.html", data)
}
