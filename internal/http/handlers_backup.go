package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// handleExport streams the whole ledger as a downloadable JSON document.
func (h *Handlers) handleExport(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("hisaab-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	if err := h.service.Export(w); err != nil {
		// Headers are already out, the best we can do is log.
		slog.ErrorContext(r.Context(), "Failed to export backup", "error", err)
	}
}

// handleImport replaces the whole ledger with an uploaded backup document.
// The document is validated in full before anything is replaced.
func (h *Handlers) handleImport(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Import(r.Context(), r.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"credits":  len(doc.Credits),
		"expenses": len(doc.Expenses),
		"udhaar":   len(doc.Udhaar),
		"contacts": len(doc.Contacts),
	})
}
