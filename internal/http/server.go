package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amanmodak98/hisaab/internal/contacts"
	"github.com/amanmodak98/hisaab/internal/services"
)

// Handlers serves the JSON API over the ledger service.
type Handlers struct {
	service  *services.LedgerService
	resolver *contacts.Resolver
}

func NewHandlers(service *services.LedgerService) *Handlers {
	return &Handlers{
		service:  service,
		resolver: contacts.NewResolver(service.Store()),
	}
}

// NewServer builds an http.Server with all routes registered.
func NewServer(addr string, service *services.LedgerService) *http.Server {
	h := NewHandlers(service)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.handleHealth)

	mux.HandleFunc("GET /api/summary", h.handleSummary)
	mux.HandleFunc("GET /api/balances", h.handleBalances)
	mux.HandleFunc("GET /api/persons", h.handlePersons)

	mux.HandleFunc("GET /api/credits", h.handleListCredits)
	mux.HandleFunc("POST /api/credits", h.handleCreateCredit)
	mux.HandleFunc("PUT /api/credits/{id}", h.handleUpdateCredit)
	mux.HandleFunc("DELETE /api/credits/{id}", h.handleDeleteCredit)

	mux.HandleFunc("GET /api/expenses", h.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", h.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", h.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", h.handleDeleteExpense)

	mux.HandleFunc("GET /api/udhaar", h.handleListUdhaar)
	mux.HandleFunc("POST /api/udhaar", h.handleCreateLoan)
	mux.HandleFunc("PUT /api/udhaar/{id}", h.handleUpdateLoan)
	mux.HandleFunc("DELETE /api/udhaar/{id}", h.handleDeleteLoan)

	mux.HandleFunc("GET /api/contacts", h.handleListContacts)
	mux.HandleFunc("POST /api/contacts", h.handleCreateContact)
	mux.HandleFunc("GET /api/contacts/{id}", h.handleGetContact)
	mux.HandleFunc("PUT /api/contacts/{id}", h.handleRenameContact)
	mux.HandleFunc("DELETE /api/contacts/{id}", h.handleDeleteContact)
	mux.HandleFunc("GET /api/contacts/{id}/balance", h.handleContactBalance)
	mux.HandleFunc("GET /api/contacts/{id}/transactions", h.handleContactTransactions)

	mux.HandleFunc("GET /api/export", h.handleExport)
	mux.HandleFunc("POST /api/import", h.handleImport)

	return &http.Server{
		Addr:    addr,
		Handler: withRequestLogging(mux),
	}
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withRequestLogging assigns a request ID and logs each request on completion.
func withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		slog.InfoContext(r.Context(), "Request handled",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
