package http

import (
	"net/http"

	"github.com/amanmodak98/hisaab/internal/core"
	"github.com/amanmodak98/hisaab/internal/query"
)

type loanRequest struct {
	Date    string `json:"date"`
	Type    string `json:"type"`
	Person  string `json:"person"`
	Amount  string `json:"amount"`
	Purpose string `json:"purpose"`
}

func (req loanRequest) toRecord() (core.LoanTransaction, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.LoanTransaction{}, err
	}
	amount, err := parseAmountField(req.Amount)
	if err != nil {
		return core.LoanTransaction{}, err
	}
	return core.LoanTransaction{
		Date:          date,
		Type:          core.LoanType(req.Type),
		PersonDisplay: req.Person,
		Amount:        amount,
		Purpose:       req.Purpose,
	}, nil
}

func (h *Handlers) handleListUdhaar(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, query.Udhaar(h.service.Store().Udhaar(), f))
}

func (h *Handlers) handlePersons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, query.Persons(h.service.Store().Udhaar()))
}

func (h *Handlers) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tx, err := req.toRecord()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	id, err := h.service.CreateLoan(r.Context(), tx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handlers) handleUpdateLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tx, err := req.toRecord()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.service.UpdateLoan(r.Context(), r.PathValue("id"), tx); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleDeleteLoan(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLoan(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
