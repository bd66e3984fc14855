// Package balance derives per-person and aggregate balances from the
// transaction log. Everything here is a pure function over snapshots; the
// package holds no state and performs no I/O.
package balance

import (
	"github.com/amanmodak98/hisaab/internal/core"
)

// PersonBalance aggregates all loan transactions for one person key.
//
// Net is (Given − ReceivedBack) − (Taken − PaidBack), in paise. Positive
// means the person owes the ledger owner, negative means the owner owes
// the person, zero means settled.
type PersonBalance struct {
	PersonKey    string     `json:"person"`
	DisplayName  string     `json:"displayName"`
	Given        core.Money `json:"totalGiven"`
	Taken        core.Money `json:"totalTaken"`
	ReceivedBack core.Money `json:"totalReceivedBack"`
	PaidBack     core.Money `json:"totalPaidBack"`
	Net          core.Money `json:"netBalance"`
	Transactions int        `json:"transactionCount"`
}

// Summary is the dashboard aggregate over all three collections.
type Summary struct {
	TotalCredits  core.Money `json:"totalCredits"`
	TotalExpenses core.Money `json:"totalExpenses"`
	Balance       core.Money `json:"balance"`

	UdhaarGiven        core.Money `json:"totalUdhaarGiven"`
	UdhaarTaken        core.Money `json:"totalUdhaarTaken"`
	UdhaarReceivedBack core.Money `json:"totalReceivedBack"`
	UdhaarPaidBack     core.Money `json:"totalPaidBack"`
	UdhaarNet          core.Money `json:"netUdhaar"`
}

// Compute folds the transaction log into one PersonBalance per person key.
//
// The fold is a single unordered pass: the four buckets are pure sums, so the
// result is independent of slice order and of transaction dates. The display
// name for a group is taken from the person's most recent transaction (by
// date, then recorded timestamp, then id), which makes recomputation
// deterministic even when display casing varies across entries.
func Compute(txs []core.LoanTransaction) map[string]PersonBalance {
	perPerson := make(map[string]PersonBalance, len(txs))
	latest := make(map[string]core.LoanTransaction, len(txs))

	for _, tx := range txs {
		pb := perPerson[tx.PersonKey]
		pb.PersonKey = tx.PersonKey
		switch tx.Type {
		case core.LoanGiven:
			pb.Given.Paise += tx.Amount.Paise
		case core.LoanTaken:
			pb.Taken.Paise += tx.Amount.Paise
		case core.LoanReceivedBack:
			pb.ReceivedBack.Paise += tx.Amount.Paise
		case core.LoanPaidBack:
			pb.PaidBack.Paise += tx.Amount.Paise
		}
		pb.Transactions++
		perPerson[tx.PersonKey] = pb

		if cur, ok := latest[tx.PersonKey]; !ok || moreRecent(tx, cur) {
			latest[tx.PersonKey] = tx
		}
	}

	for key, pb := range perPerson {
		pb.DisplayName = latest[key].PersonDisplay
		pb.Net.Paise = (pb.Given.Paise - pb.ReceivedBack.Paise) - (pb.Taken.Paise - pb.PaidBack.Paise)
		perPerson[key] = pb
	}
	return perPerson
}

// Net returns the aggregate udhaar net across every person combined.
func Net(txs []core.LoanTransaction) core.Money {
	var given, taken, recvd, paid int64
	for _, tx := range txs {
		switch tx.Type {
		case core.LoanGiven:
			given += tx.Amount.Paise
		case core.LoanTaken:
			taken += tx.Amount.Paise
		case core.LoanReceivedBack:
			recvd += tx.Amount.Paise
		case core.LoanPaidBack:
			paid += tx.Amount.Paise
		}
	}
	return core.Money{Paise: (given - recvd) - (taken - paid)}
}

// NetFor returns the net balance for a single person key.
func NetFor(txs []core.LoanTransaction, personKey string) core.Money {
	var net int64
	for _, tx := range txs {
		if tx.PersonKey != personKey {
			continue
		}
		switch tx.Type {
		case core.LoanGiven:
			net += tx.Amount.Paise
		case core.LoanTaken:
			net -= tx.Amount.Paise
		case core.LoanReceivedBack:
			net -= tx.Amount.Paise
		case core.LoanPaidBack:
			net += tx.Amount.Paise
		}
	}
	return core.Money{Paise: net}
}

// ComputeSummary derives the dashboard totals. Empty inputs yield zero values.
func ComputeSummary(credits []core.Credit, expenses []core.Expense, txs []core.LoanTransaction) Summary {
	var s Summary
	for _, c := range credits {
		s.TotalCredits.Paise += c.Amount.Paise
	}
	for _, e := range expenses {
		s.TotalExpenses.Paise += e.Amount.Paise
	}
	s.Balance.Paise = s.TotalCredits.Paise - s.TotalExpenses.Paise

	for _, tx := range txs {
		switch tx.Type {
		case core.LoanGiven:
			s.UdhaarGiven.Paise += tx.Amount.Paise
		case core.LoanTaken:
			s.UdhaarTaken.Paise += tx.Amount.Paise
		case core.LoanReceivedBack:
			s.UdhaarReceivedBack.Paise += tx.Amount.Paise
		case core.LoanPaidBack:
			s.UdhaarPaidBack.Paise += tx.Amount.Paise
		}
	}
	s.UdhaarNet.Paise = (s.UdhaarGiven.Paise - s.UdhaarReceivedBack.Paise) -
		(s.UdhaarTaken.Paise - s.UdhaarPaidBack.Paise)
	return s
}

// moreRecent reports whether a should replace b as the display-name source.
func moreRecent(a, b core.LoanTransaction) bool {
	if a.Date != b.Date {
		return a.Date.After(b.Date)
	}
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.ID > b.ID
}
