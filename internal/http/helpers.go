package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amanmodak98/hisaab/internal/backup"
	"github.com/amanmodak98/hisaab/internal/core"
	"github.com/amanmodak98/hisaab/internal/ledger"
	"github.com/amanmodak98/hisaab/internal/query"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrDuplicateName):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, backup.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrInvalidLoanType,
		core.ErrEmptyFrom,
		core.ErrEmptyPurpose,
		core.ErrEmptyPerson,
		core.ErrEmptyName,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// filterFromQuery builds a record filter from query parameters. dateEnd is
// inclusive of the whole named day.
func filterFromQuery(r *http.Request) (query.Filter, error) {
	q := r.URL.Query()
	var f query.Filter

	if v := strings.TrimSpace(q.Get("dateStart")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, err
		}
		f.From = d
	}
	if v := strings.TrimSpace(q.Get("dateEnd")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, err
		}
		f.To = d
	}
	if v := strings.TrimSpace(q.Get("person")); v != "" && v != query.All {
		f.PersonKey = core.PersonKey(v)
	}
	if v := strings.TrimSpace(q.Get("type")); v != "" && v != query.All {
		f.Type = core.LoanType(v)
	}

	return f, nil
}

func parseAmountField(s string) (core.Money, error) {
	return core.ParseAmount(strings.TrimSpace(s))
}
