package http

import (
	"net/http"

	"github.com/amanmodak98/hisaab/internal/core"
)

type contactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (h *Handlers) handleListContacts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Store().Contacts())
}

func (h *Handlers) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	id, err := h.service.CreateContact(r.Context(), core.Contact{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handlers) handleGetContact(w http.ResponseWriter, r *http.Request) {
	contact, ok := h.resolver.FindByID(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	// Clients use this to decide whether to offer a cascade delete.
	hasTxs, err := h.resolver.HasTransactions(contact.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		core.Contact
		HasTransactions bool `json:"hasTransactions"`
	}{contact, hasTxs})
}

// handleRenameContact renames a contact and rewrites its loan history so
// balances follow the contact to the new name.
func (h *Handlers) handleRenameContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rewritten, err := h.service.RenameContact(r.Context(), r.PathValue("id"), req.Name, req.Phone)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"rewrittenTransactions": rewritten})
}

// handleDeleteContact deletes a contact. With ?cascade=true its loan
// transactions go too; without it they stay and keep counting in balances.
func (h *Handlers) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if r.URL.Query().Get("cascade") == "true" {
		removed, err := h.service.DeleteContactCascade(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"removedTransactions": removed})
		return
	}

	if err := h.service.DeleteContact(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleContactBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.resolver.BalanceFor(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]core.Money{"netBalance": balance})
}

func (h *Handlers) handleContactTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.resolver.Transactions(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}
