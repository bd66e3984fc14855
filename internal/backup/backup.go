// Package backup reads and writes the single-document backup format. A
// document is decoded and checked in full before any collection is touched;
// a rejected import leaves the ledger exactly as it was.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/amanmodak98/hisaab/internal/core"
	"github.com/amanmodak98/hisaab/internal/ledger"
)

// Version is the current backup document version.
const Version = "2.0"

// ErrInvalidFormat means the document is malformed or missing a required
// collection. Nothing was imported.
var ErrInvalidFormat = errors.New("invalid backup format")

// Document is the export file layout. Contacts were added in version 2.0;
// version 1 files without them still import.
type Document struct {
	Credits    []core.Credit          `json:"credits"`
	Expenses   []core.Expense         `json:"expenses"`
	Udhaar     []core.LoanTransaction `json:"udhaar"`
	Contacts   []core.Contact         `json:"contacts"`
	ExportDate time.Time              `json:"exportDate"`
	Version    string                 `json:"version"`
}

// Export writes the ledger's full contents to w as an indented JSON document.
func Export(w io.Writer, store *ledger.Store) error {
	doc := Document{
		Credits:    store.Credits(),
		Expenses:   store.Expenses(),
		Udhaar:     store.Udhaar(),
		Contacts:   store.Contacts(),
		ExportDate: time.Now().UTC(),
		Version:    Version,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// Import replaces the ledger's collections with the document read from r.
// The credits, expenses and udhaar arrays are required; contacts default to
// empty for pre-2.0 files.
func Import(r io.Reader, store *ledger.Store) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read backup: %w", err)
	}

	// Presence check first: a field that is absent and a field that failed to
	// decode are both format errors, but "null" for a required array is too.
	var probe struct {
		Credits  json.RawMessage `json:"credits"`
		Expenses json.RawMessage `json:"expenses"`
		Udhaar   json.RawMessage `json:"udhaar"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	for _, required := range []json.RawMessage{probe.Credits, probe.Expenses, probe.Udhaar} {
		if len(required) == 0 || string(required) == "null" {
			return Document{}, ErrInvalidFormat
		}
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	store.ReplaceAll(doc.Credits, doc.Expenses, doc.Udhaar, doc.Contacts)
	return doc, nil
}
