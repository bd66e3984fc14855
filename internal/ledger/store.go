// Package ledger owns the four record collections and every mutation applied
// to them. All state lives on a Store handle; there are no package-level
// collections. Mutations are serialized by a mutex so embedders that add
// concurrency never observe a partially applied write.
package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amanmodak98/hisaab/internal/core"
)

var (
	// ErrNotFound means the id references a record that does not exist
	// (or was already deleted). The mutation is a no-op.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateName means a contact create or rename collides with an
	// existing contact name, compared case-insensitively.
	ErrDuplicateName = errors.New("contact name already exists")
)

// Store holds the in-memory collections and the injected persistence slots.
type Store struct {
	mu       sync.Mutex
	credits  []core.Credit
	expenses []core.Expense
	udhaar   []core.LoanTransaction
	contacts []core.Contact

	slots     SlotStore
	persistMu sync.Mutex
	listeners []Listener
	newID     func() string
	now       func() time.Time
}

// New creates an empty Store. slots may be nil for a purely in-memory ledger.
func New(slots SlotStore) *Store {
	return &Store{
		slots: slots,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Subscribe registers fn to be called after every successful mutation.
// Listeners run synchronously, outside the store lock, in subscription order.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify(ch Change) {
	s.mu.Lock()
	fns := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ch)
	}
}

// Credits returns a copy of the credit collection, never nil, so it always
// serializes as a JSON array.
func (s *Store) Credits() []core.Credit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]core.Credit, 0, len(s.credits)), s.credits...)
}

// Expenses returns a copy of the expense collection, never nil.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]core.Expense, 0, len(s.expenses)), s.expenses...)
}

// Udhaar returns a copy of the loan-transaction collection, never nil.
func (s *Store) Udhaar() []core.LoanTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]core.LoanTransaction, 0, len(s.udhaar)), s.udhaar...)
}

// Contacts returns a copy of the contact collection, never nil.
func (s *Store) Contacts() []core.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]core.Contact, 0, len(s.contacts)), s.contacts...)
}

// AddCredit validates and appends a credit, returning its assigned id.
func (s *Store) AddCredit(c core.Credit) (string, error) {
	c.ID = s.newID()
	if c.Timestamp.IsZero() {
		c.Timestamp = s.now()
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.credits = append(s.credits, c)
	s.mu.Unlock()
	s.notify(Change{Collection: ColCredits, Op: OpCreate, ID: c.ID})
	return c.ID, nil
}

// UpdateCredit replaces the mutable fields of the credit with the given id.
// Id and original timestamp are preserved.
func (s *Store) UpdateCredit(id string, c core.Credit) error {
	s.mu.Lock()
	i := indexByID(s.credits, id, func(c core.Credit) string { return c.ID })
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	next := s.credits[i]
	next.Date, next.Amount, next.From = c.Date, c.Amount, c.From
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.credits[i] = next
	s.mu.Unlock()
	s.notify(Change{Collection: ColCredits, Op: OpUpdate, ID: id})
	return nil
}

// DeleteCredit removes the credit with the given id. Deletion is permanent.
func (s *Store) DeleteCredit(id string) error {
	s.mu.Lock()
	i := indexByID(s.credits, id, func(c core.Credit) string { return c.ID })
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.credits = append(s.credits[:i], s.credits[i+1:]...)
	s.mu.Unlock()
	s.notify(Change{Collection: ColCredits, Op: OpDelete, ID: id})
	return nil
}

// AddExpense validates and appends an expense, returning its assigned id.
func (s *Store) AddExpense(e core.Expense) (string, error) {
	e.ID = s.newID()
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.expenses = append(s.expenses, e)
	s.mu.Unlock()
	s.notify(Change{Collection: ColExpenses, Op: OpCreate, ID: e.ID})
	return e.ID, nil
}

// UpdateExpense replaces the mutable fields of the expense with the given id.
func (s *Store) UpdateExpense(id string, e core.Expense) error {
	s.mu.Lock()
	i := indexByID(s.expenses, id, func(e core.Expense) string { return e.ID })
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	next := s.expenses[i]
	next.Date, next.Amount, next.Purpose = e.Date, e.Amount, e.Purpose
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.expenses[i] = next
	s.mu.Unlock()
	s.notify(Change{Collection: ColExpenses, Op: OpUpdate, ID: id})
	return nil
}

// DeleteExpense removes the expense with the given id.
func (s *Store) DeleteExpense(id string) error {
	s.mu.Lock()
	i := indexByID(s.expenses, id, func(e core.Expense) string { return e.ID })
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
	s.mu.Unlock()
	s.notify(Change{Collection: ColExpenses, Op: OpDelete, ID: id})
	return nil
}

// AddLoan validates and appends a loan transaction. The person key is always
// derived here from the display name; callers never supply it.
func (s *Store) AddLoan(tx core.LoanTransaction) (string, error) {
	tx.ID = s.newID()
	tx.PersonKey = core.PersonKey(tx.PersonDisplay)
	if tx.Timestamp.IsZero() {
		tx.Timestamp = s.now()
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.udhaar = append(s.udhaar, tx)
	s.mu.Unlock()
	s.notify(Change{Collection: ColUdhaar, Op: OpCreate, ID: tx.ID})
	return tx.ID, nil
}

// UpdateLoan replaces the mutable fields of the loan transaction with the
// given id, re-deriving the person key from the new display name.
func (s *Store) UpdateLoan(id string, tx core.LoanTransaction) error {
	s.mu.Lock()
	i := indexByID(s.udhaar, id, func(t core.LoanTransaction) string { return t.ID })
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	next := s.udhaar[i]
	next.Date = tx.Date
	next.Type = tx.Type
	next.PersonDisplay = tx.PersonDisplay
	next.PersonKey = core.PersonKey(tx.PersonDisplay)
	next.Amount = tx.Amount
	next.Purpose = tx.Purpose
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.udhaar[i] = next
	s.mu.Unlock()
	s.notify(Change{Collection: ColUdhaar, Op: OpUpdate, ID: id})
	return nil
}

// DeleteLoan removes the loan transaction with the given id.
func (s *Store) DeleteLoan(id string) error {
	s.mu.Lock()
	i := indexByID(s.udhaar, id, func(t core.LoanTransaction) string { return t.ID })
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.udhaar = append(s.udhaar[:i], s.udhaar[i+1:]...)
	s.mu.Unlock()
	s.notify(Change{Collection: ColUdhaar, Op: OpDelete, ID: id})
	return nil
}

// AddContact validates and appends a contact. Names must be unique
// case-insensitively across the collection.
func (s *Store) AddContact(c core.Contact) (string, error) {
	c.ID = s.newID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	key := core.PersonKey(c.Name)
	s.mu.Lock()
	for _, existing := range s.contacts {
		if core.PersonKey(existing.Name) == key {
			s.mu.Unlock()
			return "", ErrDuplicateName
		}
	}
	s.contacts = append(s.contacts, c)
	s.mu.Unlock()
	s.notify(Change{Collection: ColContacts, Op: OpCreate, ID: c.ID})
	return c.ID, nil
}

// RenameContact replaces a contact's name and phone, and rewrites the person
// key and display name on every loan transaction recorded under the old name.
// The contact update and the transaction rewrite are one atomic mutation.
// It returns the number of transactions rewritten.
func (s *Store) RenameContact(id, newName, phone string) (int, error) {
	if err := (core.Contact{Name: newName}).Validate(); err != nil {
		return 0, err
	}
	newKey := core.PersonKey(newName)

	s.mu.Lock()
	i := indexByID(s.contacts, id, func(c core.Contact) string { return c.ID })
	if i < 0 {
		s.mu.Unlock()
		return 0, ErrNotFound
	}
	for _, existing := range s.contacts {
		if existing.ID != id && core.PersonKey(existing.Name) == newKey {
			s.mu.Unlock()
			return 0, ErrDuplicateName
		}
	}

	oldKey := core.PersonKey(s.contacts[i].Name)
	s.contacts[i].Name = newName
	s.contacts[i].Phone = phone

	rewritten := 0
	for j := range s.udhaar {
		if s.udhaar[j].PersonKey == oldKey {
			s.udhaar[j].PersonKey = newKey
			s.udhaar[j].PersonDisplay = newName
			rewritten++
		}
	}
	s.mu.Unlock()
	s.notify(Change{Collection: ColContacts, Op: OpUpdate, ID: id})
	return rewritten, nil
}

// DeleteContact removes only the contact record. Transactions recorded under
// its name remain; the derived join simply stops resolving to a contact.
func (s *Store) DeleteContact(id string) error {
	s.mu.Lock()
	i := indexByID(s.contacts, id, func(c core.Contact) string { return c.ID })
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
	s.mu.Unlock()
	s.notify(Change{Collection: ColContacts, Op: OpDelete, ID: id})
	return nil
}

// DeleteContactCascade removes the contact and every loan transaction keyed
// under its name, returning the number of transactions removed.
func (s *Store) DeleteContactCascade(id string) (int, error) {
	s.mu.Lock()
	i := indexByID(s.contacts, id, func(c core.Contact) string { return c.ID })
	if i < 0 {
		s.mu.Unlock()
		return 0, ErrNotFound
	}
	key := core.PersonKey(s.contacts[i].Name)
	s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)

	kept := s.udhaar[:0]
	removed := 0
	for _, tx := range s.udhaar {
		if tx.PersonKey == key {
			removed++
			continue
		}
		kept = append(kept, tx)
	}
	s.udhaar = kept
	s.mu.Unlock()
	s.notify(Change{Collection: ColContacts, Op: OpDelete, ID: id})
	return removed, nil
}

// ReplaceAll swaps every collection wholesale. Used by import; the caller has
// already validated the incoming document.
func (s *Store) ReplaceAll(credits []core.Credit, expenses []core.Expense, udhaar []core.LoanTransaction, contacts []core.Contact) {
	s.mu.Lock()
	s.credits = append([]core.Credit(nil), credits...)
	s.expenses = append([]core.Expense(nil), expenses...)
	s.udhaar = append([]core.LoanTransaction(nil), udhaar...)
	s.contacts = append([]core.Contact(nil), contacts...)
	s.mu.Unlock()
	s.notify(Change{Collection: ColAll, Op: OpReplace})
}

// Clear drops every record from every collection.
func (s *Store) Clear() {
	s.ReplaceAll(nil, nil, nil, nil)
}

func indexByID[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}
