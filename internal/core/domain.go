package core

import (
	"errors"
	"strings"
	"time"
)

const (
	LoanGiven        LoanType = "given"
	LoanTaken        LoanType = "taken"
	LoanReceivedBack LoanType = "received_back"
	LoanPaidBack     LoanType = "paid_back"
)

type (
	// LoanType classifies a peer-to-peer loan transaction relative to the
	// ledger owner.
	LoanType string

	// Credit is money received by the ledger owner.
	Credit struct {
		ID        string    `json:"id"`
		Date      Date      `json:"date"`
		Amount    Money     `json:"amount"`
		From      string    `json:"from"`
		Timestamp time.Time `json:"timestamp"`
	}

	// Expense is money spent by the ledger owner.
	Expense struct {
		ID        string    `json:"id"`
		Date      Date      `json:"date"`
		Purpose   string    `json:"purpose"`
		Amount    Money     `json:"amount"`
		Timestamp time.Time `json:"timestamp"`
	}

	// LoanTransaction is a single udhaar entry. PersonKey is the case-folded
	// person name and is the only join key between transactions and contacts;
	// PersonDisplay keeps the casing the user typed.
	LoanTransaction struct {
		ID            string    `json:"id"`
		Date          Date      `json:"date"`
		Type          LoanType  `json:"type"`
		PersonKey     string    `json:"person"`
		PersonDisplay string    `json:"personDisplay"`
		Amount        Money     `json:"amount"`
		Purpose       string    `json:"purpose"`
		Timestamp     time.Time `json:"timestamp"`
	}

	// Contact is a known person. Identity is the ID; the name may change.
	Contact struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Phone     string    `json:"phone,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidLoanType = errors.New("invalid loan type")
	ErrEmptyFrom       = errors.New("empty credit source")
	ErrEmptyPurpose    = errors.New("empty purpose")
	ErrEmptyPerson     = errors.New("empty person name")
	ErrEmptyName       = errors.New("empty contact name")
)

// PersonKey folds a free-text person name into the canonical join key.
func PersonKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (t LoanType) Validate() error {
	switch t {
	case LoanGiven, LoanTaken, LoanReceivedBack, LoanPaidBack:
		return nil
	default:
		return ErrInvalidLoanType
	}
}

func (c Credit) Validate() error {
	if err := c.Date.Validate(); err != nil {
		return err
	}
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.From) == "" {
		return ErrEmptyFrom
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Purpose) == "" {
		return ErrEmptyPurpose
	}
	return nil
}

func (t LoanTransaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.PersonDisplay) == "" || t.PersonKey == "" {
		return ErrEmptyPerson
	}
	if strings.TrimSpace(t.Purpose) == "" {
		return ErrEmptyPurpose
	}
	return nil
}

func (c Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
