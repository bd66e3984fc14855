package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amanmodak98/hisaab/internal/core"
)

// Slot keys carried over from the original storage layout, one serialized
// array per collection.
const (
	SlotCredits  = "hisaab_credits"
	SlotExpenses = "hisaab_expenses"
	SlotUdhaar   = "hisaab_udhaar"
	SlotContacts = "hisaab_contacts"
)

// SlotStore is the injected persistence boundary: named slots holding opaque
// payloads. Load returns (nil, nil) for an absent slot.
type SlotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

// Persist writes all four collections to their slots as JSON arrays. Writers
// are serialized by their own mutex so concurrent persists cannot interleave
// and leave a stale snapshot on top of a newer one.
func (s *Store) Persist(ctx context.Context) error {
	if s.slots == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	snapshots := []struct {
		key  string
		data any
	}{
		{SlotCredits, append(make([]core.Credit, 0, len(s.credits)), s.credits...)},
		{SlotExpenses, append(make([]core.Expense, 0, len(s.expenses)), s.expenses...)},
		{SlotUdhaar, append(make([]core.LoanTransaction, 0, len(s.udhaar)), s.udhaar...)},
		{SlotContacts, append(make([]core.Contact, 0, len(s.contacts)), s.contacts...)},
	}
	s.mu.Unlock()

	for _, snap := range snapshots {
		payload, err := json.Marshal(snap.data)
		if err != nil {
			return fmt.Errorf("marshal slot %s: %w", snap.key, err)
		}
		if err := s.slots.Save(ctx, snap.key, payload); err != nil {
			return fmt.Errorf("save slot %s: %w", snap.key, err)
		}
	}
	return nil
}

// Restore loads all four collections from their slots. A missing or corrupt
// slot reads as an empty collection; Restore only fails when the slot store
// itself cannot be reached.
func (s *Store) Restore(ctx context.Context) error {
	if s.slots == nil {
		return nil
	}
	credits, err := loadSlot[core.Credit](ctx, s.slots, SlotCredits)
	if err != nil {
		return err
	}
	expenses, err := loadSlot[core.Expense](ctx, s.slots, SlotExpenses)
	if err != nil {
		return err
	}
	udhaar, err := loadSlot[core.LoanTransaction](ctx, s.slots, SlotUdhaar)
	if err != nil {
		return err
	}
	contacts, err := loadSlot[core.Contact](ctx, s.slots, SlotContacts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.credits = credits
	s.expenses = expenses
	s.udhaar = udhaar
	s.contacts = contacts
	s.mu.Unlock()
	return nil
}

func loadSlot[T any](ctx context.Context, slots SlotStore, key string) ([]T, error) {
	payload, err := slots.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", key, err)
	}
	if len(payload) == 0 {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(payload, &out); err != nil {
		// Corrupt payloads read as empty rather than poisoning startup.
		return nil, nil
	}
	return out, nil
}
