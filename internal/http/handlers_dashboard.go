package http

import (
	"net/http"

	"github.com/amanmodak98/hisaab/internal/balance"
	"github.com/amanmodak98/hisaab/internal/query"
)

func (h *Handlers) handleSummary(w http.ResponseWriter, r *http.Request) {
	store := h.service.Store()
	writeJSON(w, http.StatusOK,
		balance.ComputeSummary(store.Credits(), store.Expenses(), store.Udhaar()))
}

// handleBalances returns one entry per person, in first-appearance order.
func (h *Handlers) handleBalances(w http.ResponseWriter, r *http.Request) {
	udhaar := h.service.Store().Udhaar()
	byPerson := balance.Compute(udhaar)

	out := make([]balance.PersonBalance, 0, len(byPerson))
	for _, p := range query.Persons(udhaar) {
		out = append(out, byPerson[p.Key])
	}
	writeJSON(w, http.StatusOK, out)
}
