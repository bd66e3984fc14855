package http

import (
	"net/http"

	"github.com/amanmodak98/hisaab/internal/core"
	"github.com/amanmodak98/hisaab/internal/query"
)

type creditRequest struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
	From   string `json:"from"`
}

func (req creditRequest) toRecord() (core.Credit, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Credit{}, err
	}
	amount, err := parseAmountField(req.Amount)
	if err != nil {
		return core.Credit{}, err
	}
	return core.Credit{
		Date:   date,
		Amount: amount,
		From:   req.From,
	}, nil
}

func (h *Handlers) handleListCredits(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, query.Credits(h.service.Store().Credits(), f))
}

func (h *Handlers) handleCreateCredit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	credit, err := req.toRecord()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	id, err := h.service.CreateCredit(r.Context(), credit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handlers) handleUpdateCredit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	credit, err := req.toRecord()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.service.UpdateCredit(r.Context(), r.PathValue("id"), credit); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleDeleteCredit(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCredit(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
