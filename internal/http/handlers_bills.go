package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/ledger"
	"github.com/frankmaximo93/shared-financial-journey/internal/metrics"
)

// billRow is one rendered bill.
type billRow struct {
	ID             string
	Name           string
	Amount         string
	DueDate        string
	Status         string
	StatusLabel    string
	Responsibility string
	Category       string
}

// billsView is the model behind the bills partial.
type billsView struct {
	Year    int
	Month   int
	Total   string
	Paid    string
	Pending string
	Rows    []billRow
}

// loadBills returns the month's bills, serving from the cache when possible.
func (s *Server) loadBills(r *http.Request, params MonthParams) ([]core.Bill, error) {
	key := monthKey(params.Year, params.Month)
	if bills, ok := s.billsCache.Get(key); ok {
		metrics.CacheHits.WithLabelValues("hit").Inc()
		return bills, nil
	}
	metrics.CacheHits.WithLabelValues("miss").Inc()

	// Cache exactly what this load fetched. A concurrent load for another
	// month may own the ledger state by now; reading Bills() here could
	// serve and cache that other month under this key.
	bills, err := s.bills.Load(r.Context(), params.Year, params.Month)
	if err != nil {
		return nil, err
	}
	s.billsCache.Set(key, bills)
	return bills, nil
}

func (s *Server) buildBillsView(params MonthParams, bills []core.Bill) billsView {
	view := billsView{Year: params.Year, Month: params.Month}

	var total, paid, pending int64
	for _, b := range bills {
		total += b.Amount.Cents
		switch b.Status {
		case core.BillPaid:
			paid += b.Amount.Cents
		case core.BillPending, core.BillLate:
			pending += b.Amount.Cents
		}

		view.Rows = append(view.Rows, billRow{
			ID:             b.ID,
			Name:           b.Name,
			Amount:         b.Amount.Format(),
			DueDate:        ledger.FormatDate(b.DueDate),
			Status:         string(b.Status),
			StatusLabel:    billStatusLabel(b.Status),
			Responsibility: s.registry.DisplayName(b.Responsibility),
			Category:       b.Category,
		})
	}
	view.Total = core.Money{Cents: total}.Format()
	view.Paid = core.Money{Cents: paid}.Format()
	view.Pending = core.Money{Cents: pending}.Format()
	return view
}

// handleBillsPartial renders the bills list for the requested month.
func (s *Server) handleBillsPartial(w http.ResponseWriter, r *http.Request) {
	params := ParseMonthParams(r.URL.Query())

	bills, err := s.loadBills(r, params)
	if err != nil {
		slog.ErrorContext(r.Context(), "Bills load failed",
			"error", err, "year", params.Year, "month", params.Month)
		NewHTMXResponse().
			TriggerErrorNotification("Erro ao carregar contas do mês").
			BodyHTML(`<section id="bills" class="bills"><div class="placeholder">Erro ao carregar contas do mês</div></section>`).
			Write(w)
		return
	}

	s.renderPartial(w, r, "bills.html", s.buildBillsView(params, bills))
}

// handleBillCreate adds a bill from the form and refreshes the month.
func (s *Server) handleBillCreate(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	draft := ledger.BillDraft{
		Name:           FormValue(r, "name"),
		Amount:         FormValue(r, "amount"),
		DueDate:        FormValue(r, "due_date"),
		Responsibility: FormValue(r, "responsibility"),
		Category:       FormValue(r, "category"),
	}

	bill, err := s.bills.Add(r.Context(), draft)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrMissingFields):
			NewHTMXResponse().
				Status(http.StatusUnprocessableEntity).
				TriggerErrorNotification("Preencha todos os campos obrigatórios").
				Write(w)
		case errors.Is(err, ledger.ErrAmountNotPositive):
			NewHTMXResponse().
				Status(http.StatusUnprocessableEntity).
				TriggerErrorNotification("Valor precisa ser um número positivo").
				Write(w)
		default:
			slog.ErrorContext(r.Context(), "Bill create failed", "error", err, "name", draft.Name)
			NewHTMXResponse().
				Status(http.StatusInternalServerError).
				TriggerErrorNotification("Erro ao adicionar conta").
				Write(w)
		}
		return
	}

	metrics.BillsCreated.Inc()
	year, month := bill.DueDate.Year(), int(bill.DueDate.Month())
	s.billsCache.Delete(monthKey(year, month))

	slog.InfoContext(r.Context(), "Bill created",
		"id", bill.ID, "name", bill.Name, "amount_cents", bill.Amount.Cents)

	NewHTMXResponse().
		TriggerSuccessNotification("Conta adicionada com sucesso!").
		TriggerBillsRefresh(year, month).
		TriggerFormReset().
		Write(w)
}

// handleBillStatus changes a bill's status. The confirmation message never
// depends on whether the id matched a row.
func (s *Server) handleBillStatus(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id := FormValue(r, "id")
	status := core.BillStatus(FormValue(r, "status"))
	params := ParseMonthParams(r.Form)

	if err := s.bills.SetStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, core.ErrInvalidStatus) {
			BadRequestError("Status inválido").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Bill status change failed",
			"error", err, "id", id, "status", status)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			TriggerErrorNotification("Erro ao atualizar conta").
			Write(w)
		return
	}

	metrics.BillStatusChanges.WithLabelValues(string(status)).Inc()
	s.billsCache.Delete(monthKey(params.Year, params.Month))

	NewHTMXResponse().
		TriggerSuccessNotification(statusMessage(status)).
		TriggerBillsRefresh(params.Year, params.Month).
		Write(w)
}

// handleExport appends the month's bills to the configured spreadsheet.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.exporter == nil {
		NewHTMXResponse().
			Status(http.StatusConflict).
			TriggerNotification(NotificationWarning, "Exportação não configurada", 5000).
			Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	params := ParseMonthParams(r.Form)
	bills, err := s.loadBills(r, params)
	if err != nil {
		slog.ErrorContext(r.Context(), "Export load failed",
			"error", err, "year", params.Year, "month", params.Month)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			TriggerErrorNotification("Erro ao carregar contas do mês").
			Write(w)
		return
	}

	ref, err := s.exporter.ExportMonth(r.Context(), params.Year, time.Month(params.Month), bills)
	if err != nil {
		slog.ErrorContext(r.Context(), "Spreadsheet export failed",
			"error", err, "year", params.Year, "month", params.Month)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			TriggerErrorNotification("Erro ao exportar contas").
			Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Month exported", "range", ref, "bills", len(bills))
	NewHTMXResponse().
		TriggerSuccessNotification("Contas exportadas para a planilha!").
		Write(w)
}
