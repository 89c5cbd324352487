package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
)

// renderPartial executes one template as an HTML fragment response.
func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
	}
}

// billStatusLabel maps a bill status to its display label. Unknown statuses
// pass through unchanged.
func billStatusLabel(s core.BillStatus) string {
	switch s {
	case core.BillPaid:
		return "Pago"
	case core.BillPending:
		return "Pendente"
	case core.BillLate:
		return "Atrasado"
	case core.BillUpcoming:
		return "Próxima"
	default:
		return string(s)
	}
}

// statusMessage is the confirmation toast shown after a bill status change.
func statusMessage(s core.BillStatus) string {
	switch s {
	case core.BillPaid:
		return "Conta marcada como paga!"
	case core.BillPending:
		return "Conta marcada como pendente"
	case core.BillLate:
		return "Conta marcada como atrasada"
	case core.BillUpcoming:
		return "Conta marcada como próxima"
	default:
		return "Status atualizado"
	}
}

// monthKey builds the cache key for one month of bills.
func monthKey(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
