package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"
	"github.com/frankmaximo93/shared-financial-journey/internal/ledger"
	"github.com/frankmaximo93/shared-financial-journey/internal/metrics"
)

// transactionRow is one rendered transaction.
type transactionRow struct {
	ID           string
	Date         string
	Description  string
	Category     string
	TypeLabel    string
	IsIncome     bool
	Amount       string
	Payment      string
	Installments string
	StatusLabel  string
	Status       string
	SplitInfo    string
}

// handleTransactionsPartial renders the full transactions list.
func (s *Server) handleTransactionsPartial(w http.ResponseWriter, r *http.Request) {
	if err := s.txs.LoadData(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Transactions load failed", "error", err)
		NewHTMXResponse().
			TriggerErrorNotification("Erro ao carregar transações").
			BodyHTML(`<section id="transactions" class="transactions"><div class="placeholder">Erro ao carregar transações</div></section>`).
			Write(w)
		return
	}

	rows := s.txs.Rows()
	view := struct {
		Rows []transactionRow
	}{}
	for _, row := range rows {
		view.Rows = append(view.Rows, transactionRow{
			ID:           row.ID,
			Date:         ledger.FormatDate(row.Date),
			Description:  row.Description,
			Category:     row.CategoryName,
			TypeLabel:    ledger.TypeLabel(row.Type),
			IsIncome:     row.Type == core.Income,
			Amount:       row.Amount.Format(),
			Payment:      ledger.PaymentMethodLabel(row.PaymentMethod),
			Installments: ledger.InstallmentsLabel(row.Transaction),
			StatusLabel:  ledger.StatusLabel(row.Status),
			Status:       string(row.Status),
			SplitInfo:    s.txs.SplitInfo(row.Transaction),
		})
	}

	s.renderPartial(w, r, "transactions.html", view)
}

// handleTransactionDelete removes one transaction and its debts. The client
// must send confirm=true; the template pairs it with an hx-confirm prompt.
func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id := FormValue(r, "id")
	if id == "" {
		BadRequestError("Transação não informada").Write(w)
		return
	}
	if FormValue(r, "confirm") != "true" {
		NewHTMXResponse().
			Status(http.StatusBadRequest).
			TriggerErrorNotification("Erro ao excluir transação").
			Write(w)
		return
	}

	if err := s.txs.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Transaction delete failed", "error", err, "id", id)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			TriggerErrorNotification("Erro ao excluir transação").
			Write(w)
		return
	}

	metrics.TransactionsDeleted.Inc()
	now := time.Now()

	slog.InfoContext(r.Context(), "Transaction deleted", "id", id)
	NewHTMXResponse().
		TriggerSuccessNotification("Transação excluída com sucesso").
		TriggerTransactionsRefresh().
		TriggerBudgetRefresh(now.Year(), int(now.Month())).
		Write(w)
}

// handleTransactionEditForm renders the edit form for one transaction.
func (s *Server) handleTransactionEditForm(w http.ResponseWriter, r *http.Request) {
	id := sanitizeInput(r.URL.Query().Get("id"))

	row, ok := s.txs.Find(id)
	if !ok {
		// The list may not be loaded yet on a direct request.
		if err := s.txs.LoadData(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "Transactions load failed", "error", err)
			NewHTMXResponse().
				TriggerErrorNotification("Erro ao carregar transações").
				Write(w)
			return
		}
		if row, ok = s.txs.Find(id); !ok {
			NotFoundError("Transação não encontrada").Write(w)
			return
		}
	}

	categories, err := s.source.ListCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Categories load failed", "error", err)
		NewHTMXResponse().
			TriggerErrorNotification("Erro ao carregar categorias").
			Write(w)
		return
	}

	a, b := s.registry.Members()
	data := struct {
		ID             string
		Description    string
		Amount         string
		Date           string
		CategoryID     string
		Categories     []core.Category
		Type           string
		PaymentMethod  string
		Installments   int
		Status         string
		Responsibility string
		SplitExpense   bool
		PaidBy         string
		ParticipantA   string
		ParticipantB   string
		JointKey       string
	}{
		ID:             row.ID,
		Description:    row.Description,
		Amount:         row.Amount.Decimal(),
		Date:           row.Date.Format("2006-01-02"),
		CategoryID:     row.CategoryID,
		Categories:     categories,
		Type:           string(row.Type),
		PaymentMethod:  string(row.PaymentMethod),
		Installments:   row.Installments,
		Status:         string(row.Status),
		Responsibility: row.Responsibility,
		SplitExpense:   row.SplitExpense,
		PaidBy:         row.PaidBy,
		ParticipantA:   a.Key,
		ParticipantB:   b.Key,
		JointKey:       s.registry.Joint().Key,
	}

	s.renderPartial(w, r, "transaction_edit.html", data)
}

// handleTransactionUpdate persists the edit form.
func (s *Server) handleTransactionUpdate(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id := FormValue(r, "id")
	existing, ok := s.txs.Find(id)
	if !ok {
		NotFoundError("Transação não encontrada").Write(w)
		return
	}

	cents, err := core.ParseDecimalToCents(FormValue(r, "amount"))
	if err != nil || cents <= 0 {
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerErrorNotification("Valor precisa ser um número positivo").
			Write(w)
		return
	}

	date, err := time.Parse("2006-01-02", FormValue(r, "date"))
	if err != nil {
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerErrorNotification("Preencha todos os campos obrigatórios").
			Write(w)
		return
	}

	installments := existing.Installments
	if v := FormValue(r, "installments"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			installments = n
		}
	}

	updated := core.Transaction{
		ID:             id,
		Description:    FormValue(r, "description"),
		Amount:         core.Money{Cents: cents},
		CategoryID:     FormValue(r, "category_id"),
		Date:           date,
		Type:           core.TransactionType(FormValue(r, "type")),
		Responsibility: FormValue(r, "responsibility"),
		PaymentMethod:  core.PaymentMethod(FormValue(r, "payment_method")),
		Installments:   installments,
		DueDate:        existing.DueDate,
		SplitExpense:   FormValue(r, "split_expense") == "on" || FormValue(r, "split_expense") == "true",
		PaidBy:         FormValue(r, "paid_by"),
		Status:         core.TransactionStatus(FormValue(r, "status")),
		IsRecurring:    existing.IsRecurring,
	}
	if !updated.SplitExpense {
		updated.PaidBy = ""
	}

	if err := s.txs.Update(r.Context(), updated); err != nil {
		if errors.Is(err, datasource.ErrNotFound) {
			NotFoundError("Transação não encontrada").Write(w)
			return
		}
		if errors.Is(err, core.ErrInvalidAmount) ||
			errors.Is(err, core.ErrEmptyDescription) ||
			errors.Is(err, core.ErrInvalidType) ||
			errors.Is(err, core.ErrInvalidStatus) ||
			errors.Is(err, core.ErrSplitWithoutPayer) {
			NewHTMXResponse().
				Status(http.StatusUnprocessableEntity).
				TriggerErrorNotification("Preencha todos os campos obrigatórios").
				Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Transaction update failed", "error", err, "id", id)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			TriggerErrorNotification("Erro ao atualizar transação").
			Write(w)
		return
	}

	metrics.TransactionsUpdated.Inc()
	now := time.Now()

	slog.InfoContext(r.Context(), "Transaction updated", "id", id)
	NewHTMXResponse().
		TriggerSuccessNotification("Transação atualizada com sucesso!").
		TriggerTransactionsRefresh().
		TriggerBudgetRefresh(now.Year(), int(now.Month())).
		Write(w)
}
