// Package contacts binds free-text person names to stable contact records.
// The person-to-transaction link is a derived join on the case-folded name,
// not a stored foreign key; all of that join logic lives here so a future
// id-based design stays a local change.
package contacts

import (
	"github.com/amanmodak98/hisaab/internal/balance"
	"github.com/amanmodak98/hisaab/internal/core"
	"github.com/amanmodak98/hisaab/internal/ledger"
)

// Resolver answers name and balance questions about contacts on top of the
// ledger store.
type Resolver struct {
	store *ledger.Store
}

// NewResolver returns a resolver bound to the given store.
func NewResolver(store *ledger.Store) *Resolver {
	return &Resolver{store: store}
}

// Create adds a contact, rejecting names that collide case-insensitively
// with an existing contact.
func (r *Resolver) Create(name, phone string) (core.Contact, error) {
	id, err := r.store.AddContact(core.Contact{Name: name, Phone: phone})
	if err != nil {
		return core.Contact{}, err
	}
	c, _ := r.FindByID(id)
	return c, nil
}

// FindByID returns the contact with the given id.
func (r *Resolver) FindByID(id string) (core.Contact, bool) {
	for _, c := range r.store.Contacts() {
		if c.ID == id {
			return c, true
		}
	}
	return core.Contact{}, false
}

// FindByName returns the contact whose name matches case-insensitively.
func (r *Resolver) FindByName(name string) (core.Contact, bool) {
	key := core.PersonKey(name)
	for _, c := range r.store.Contacts() {
		if core.PersonKey(c.Name) == key {
			return c, true
		}
	}
	return core.Contact{}, false
}

// Rename changes a contact's name and phone and retroactively rewrites every
// transaction recorded under the old name. Returns the rewrite count.
func (r *Resolver) Rename(id, newName, phone string) (int, error) {
	return r.store.RenameContact(id, newName, phone)
}

// BalanceFor returns the contact's net balance: positive means the contact
// owes the ledger owner. A contact with no transactions is settled at zero.
func (r *Resolver) BalanceFor(id string) (core.Money, error) {
	c, ok := r.FindByID(id)
	if !ok {
		return core.Money{}, ledger.ErrNotFound
	}
	return balance.NetFor(r.store.Udhaar(), core.PersonKey(c.Name)), nil
}

// Transactions returns the contact's loan history, unfiltered and unsorted.
func (r *Resolver) Transactions(id string) ([]core.LoanTransaction, error) {
	c, ok := r.FindByID(id)
	if !ok {
		return nil, ledger.ErrNotFound
	}
	key := core.PersonKey(c.Name)
	var out []core.LoanTransaction
	for _, tx := range r.store.Udhaar() {
		if tx.PersonKey == key {
			out = append(out, tx)
		}
	}
	return out, nil
}

// HasTransactions reports whether any transaction is keyed under the
// contact's name. Callers use it to decide whether to offer a cascade.
func (r *Resolver) HasTransactions(id string) (bool, error) {
	txs, err := r.Transactions(id)
	if err != nil {
		return false, err
	}
	return len(txs) > 0, nil
}

// Delete removes only the contact record.
func (r *Resolver) Delete(id string) error {
	return r.store.DeleteContact(id)
}

// DeleteCascade removes the contact and all transactions under its name,
// returning the removed-transaction count.
func (r *Resolver) DeleteCascade(id string) (int, error) {
	return r.store.DeleteContactCascade(id)
}
