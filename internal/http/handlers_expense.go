package http

import (
	"net/http"

	"github.com/amanmodak98/hisaab/internal/core"
	"github.com/amanmodak98/hisaab/internal/query"
)

type expenseRequest struct {
	Date    string `json:"date"`
	Purpose string `json:"purpose"`
	Amount  string `json:"amount"`
}

func (req expenseRequest) toRecord() (core.Expense, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := parseAmountField(req.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Date:    date,
		Purpose: req.Purpose,
		Amount:  amount,
	}, nil
}

func (h *Handlers) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, query.Expenses(h.service.Store().Expenses(), f))
}

func (h *Handlers) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	expense, err := req.toRecord()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	id, err := h.service.CreateExpense(r.Context(), expense)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handlers) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	expense, err := req.toRecord()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.service.UpdateExpense(r.Context(), r.PathValue("id"), expense); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
