// Package query provides stateless, read-only filtering over collection
// snapshots for display purposes.
package query

import (
	"sort"

	"github.com/amanmodak98/hisaab/internal/core"
)

// All is the wildcard value for the categorical filter fields.
const All = "all"

// Filter narrows a collection. Zero-value dates and empty or "all" strings
// mean "no constraint". To is inclusive of the whole calendar day.
type Filter struct {
	From      core.Date
	To        core.Date
	PersonKey string
	Type      core.LoanType
}

func (f Filter) matchDate(d core.Date) bool {
	if !f.From.IsZero() && d.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && d.After(f.To) {
		return false
	}
	return true
}

func (f Filter) wantsPerson() bool {
	return f.PersonKey != "" && f.PersonKey != All
}

func (f Filter) wantsType() bool {
	return f.Type != "" && f.Type != core.LoanType(All)
}

// Credits returns the credits matching f, newest date first. Records sharing
// a date keep their input order.
func Credits(credits []core.Credit, f Filter) []core.Credit {
	out := make([]core.Credit, 0, len(credits))
	for _, c := range credits {
		if f.matchDate(c.Date) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// Expenses returns the expenses matching f, newest date first.
func Expenses(expenses []core.Expense, f Filter) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.matchDate(e.Date) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// Udhaar returns the loan transactions matching f, newest date first.
func Udhaar(txs []core.LoanTransaction, f Filter) []core.LoanTransaction {
	out := make([]core.LoanTransaction, 0, len(txs))
	for _, tx := range txs {
		if !f.matchDate(tx.Date) {
			continue
		}
		if f.wantsPerson() && tx.PersonKey != f.PersonKey {
			continue
		}
		if f.wantsType() && tx.Type != f.Type {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// Persons returns the distinct person keys present in txs with their current
// display names, for populating a person filter. Keys appear in first-seen
// order; the display name follows the same most-recent rule the balance
// engine uses, so both surfaces agree.
func Persons(txs []core.LoanTransaction) []Person {
	type seen struct {
		idx int
		tx  core.LoanTransaction
	}
	index := make(map[string]seen, len(txs))
	var keys []string
	for _, tx := range txs {
		cur, ok := index[tx.PersonKey]
		if !ok {
			index[tx.PersonKey] = seen{idx: len(keys), tx: tx}
			keys = append(keys, tx.PersonKey)
			continue
		}
		if moreRecent(tx, cur.tx) {
			cur.tx = tx
			index[tx.PersonKey] = cur
		}
	}
	out := make([]Person, 0, len(keys))
	for _, k := range keys {
		out = append(out, Person{Key: k, Display: index[k].tx.PersonDisplay})
	}
	return out
}

// Person pairs a person key with its display name.
type Person struct {
	Key     string `json:"key"`
	Display string `json:"display"`
}

func moreRecent(a, b core.LoanTransaction) bool {
	if a.Date != b.Date {
		return a.Date.After(b.Date)
	}
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.ID > b.ID
}
