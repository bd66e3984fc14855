package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanmodak98/hisaab/internal/core"
)

func testCredit() core.Credit {
	return core.Credit{
		Date:   core.MustParseDate("2024-01-15"),
		Amount: core.Money{Paise: 50000},
		From:   "Salary",
	}
}

func testLoan(person string, typ core.LoanType) core.LoanTransaction {
	return core.LoanTransaction{
		Date:          core.MustParseDate("2024-02-01"),
		Type:          typ,
		PersonDisplay: person,
		Amount:        core.Money{Paise: 100000},
		Purpose:       "cash",
	}
}

func TestStoreCreditCRUD(t *testing.T) {
	s := New(nil)

	id, err := s.AddCredit(testCredit())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got := s.Credits()
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.False(t, got[0].Timestamp.IsZero())

	updated := testCredit()
	updated.Amount = core.Money{Paise: 75000}
	require.NoError(t, s.UpdateCredit(id, updated))
	assert.Equal(t, int64(75000), s.Credits()[0].Amount.Paise)
	assert.Equal(t, got[0].Timestamp, s.Credits()[0].Timestamp, "update keeps original timestamp")

	assert.ErrorIs(t, s.UpdateCredit("missing", updated), ErrNotFound)
	assert.ErrorIs(t, s.DeleteCredit("missing"), ErrNotFound)

	require.NoError(t, s.DeleteCredit(id))
	assert.Empty(t, s.Credits())
}

func TestStoreValidationAbortsMutation(t *testing.T) {
	s := New(nil)

	bad := testCredit()
	bad.Amount = core.Money{}
	_, err := s.AddCredit(bad)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Empty(t, s.Credits())

	id, err := s.AddCredit(testCredit())
	require.NoError(t, err)
	err = s.UpdateCredit(id, bad)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Equal(t, int64(50000), s.Credits()[0].Amount.Paise, "failed update must not mutate")
}

func TestStoreRejectsUnknownLoanType(t *testing.T) {
	s := New(nil)
	_, err := s.AddLoan(testLoan("Sam", "borrowed"))
	assert.ErrorIs(t, err, core.ErrInvalidLoanType)
	assert.Empty(t, s.Udhaar())
}

func TestStoreDerivesPersonKey(t *testing.T) {
	s := New(nil)
	tx := testLoan("  Sam Kumar ", core.LoanGiven)
	tx.PersonKey = "bogus" // caller-supplied keys are ignored
	id, err := s.AddLoan(tx)
	require.NoError(t, err)

	got := s.Udhaar()[0]
	assert.Equal(t, "sam kumar", got.PersonKey)

	renamed := testLoan("RAVI", core.LoanTaken)
	require.NoError(t, s.UpdateLoan(id, renamed))
	assert.Equal(t, "ravi", s.Udhaar()[0].PersonKey)
	assert.Equal(t, "RAVI", s.Udhaar()[0].PersonDisplay)
}

func TestStoreSnapshotsAreCopies(t *testing.T) {
	s := New(nil)
	_, err := s.AddCredit(testCredit())
	require.NoError(t, err)

	snap := s.Credits()
	snap[0].From = "tampered"
	assert.Equal(t, "Salary", s.Credits()[0].From)
}

func TestStoreNotifications(t *testing.T) {
	s := New(nil)
	var changes []Change
	s.Subscribe(func(ch Change) { changes = append(changes, ch) })

	id, err := s.AddCredit(testCredit())
	require.NoError(t, err)
	require.NoError(t, s.DeleteCredit(id))

	_, err = s.AddCredit(core.Credit{}) // invalid, must not notify
	require.Error(t, err)

	require.Len(t, changes, 2)
	assert.Equal(t, Change{Collection: ColCredits, Op: OpCreate, ID: id}, changes[0])
	assert.Equal(t, Change{Collection: ColCredits, Op: OpDelete, ID: id}, changes[1])
}

func TestStoreContactDuplicateName(t *testing.T) {
	s := New(nil)
	_, err := s.AddContact(core.Contact{Name: "Alice"})
	require.NoError(t, err)

	_, err = s.AddContact(core.Contact{Name: "alice"})
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Len(t, s.Contacts(), 1)
}

func TestStoreRenameContactRewritesHistory(t *testing.T) {
	s := New(nil)
	cid, err := s.AddContact(core.Contact{Name: "Bob"})
	require.NoError(t, err)
	_, err = s.AddLoan(testLoan("bob", core.LoanGiven))
	require.NoError(t, err)
	_, err = s.AddLoan(testLoan("Bob", core.LoanReceivedBack))
	require.NoError(t, err)
	_, err = s.AddLoan(testLoan("Carol", core.LoanGiven))
	require.NoError(t, err)

	rewritten, err := s.RenameContact(cid, "Robert", "555-0101")
	require.NoError(t, err)
	assert.Equal(t, 2, rewritten)

	for _, tx := range s.Udhaar() {
		if tx.PersonKey == "carol" {
			continue
		}
		assert.Equal(t, "robert", tx.PersonKey)
		assert.Equal(t, "Robert", tx.PersonDisplay)
	}
	assert.Equal(t, "Robert", s.Contacts()[0].Name)
	assert.Equal(t, "555-0101", s.Contacts()[0].Phone)
}

func TestStoreRenameContactDuplicate(t *testing.T) {
	s := New(nil)
	cid, err := s.AddContact(core.Contact{Name: "Bob"})
	require.NoError(t, err)
	_, err = s.AddContact(core.Contact{Name: "Carol"})
	require.NoError(t, err)

	_, err = s.RenameContact(cid, "CAROL", "")
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, "Bob", s.Contacts()[0].Name, "failed rename must not mutate")

	_, err = s.RenameContact("missing", "Dave", "")
	assert.ErrorIs(t, err, ErrNotFound)

	// Renaming to a different casing of its own name is allowed.
	_, err = s.RenameContact(cid, "BOB", "")
	assert.NoError(t, err)
}

func TestStoreDeleteContactCascade(t *testing.T) {
	s := New(nil)
	cid, err := s.AddContact(core.Contact{Name: "Bob"})
	require.NoError(t, err)
	_, err = s.AddLoan(testLoan("Bob", core.LoanGiven))
	require.NoError(t, err)
	_, err = s.AddLoan(testLoan("Carol", core.LoanGiven))
	require.NoError(t, err)

	removed, err := s.DeleteContactCascade(cid)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Empty(t, s.Contacts())
	require.Len(t, s.Udhaar(), 1)
	assert.Equal(t, "carol", s.Udhaar()[0].PersonKey)
}

func TestStoreDeleteContactKeepsTransactions(t *testing.T) {
	s := New(nil)
	cid, err := s.AddContact(core.Contact{Name: "Bob"})
	require.NoError(t, err)
	_, err = s.AddLoan(testLoan("Bob", core.LoanGiven))
	require.NoError(t, err)

	require.NoError(t, s.DeleteContact(cid))
	assert.Empty(t, s.Contacts())
	assert.Len(t, s.Udhaar(), 1, "plain delete must not touch transactions")
}

// fakeSlots is an in-memory SlotStore for round-trip tests.
type fakeSlots struct {
	data map[string][]byte
}

func newFakeSlots() *fakeSlots { return &fakeSlots{data: map[string][]byte{}} }

func (f *fakeSlots) Load(_ context.Context, key string) ([]byte, error) {
	return f.data[key], nil
}

func (f *fakeSlots) Save(_ context.Context, key string, payload []byte) error {
	f.data[key] = append([]byte(nil), payload...)
	return nil
}

func TestStorePersistRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	slots := newFakeSlots()

	s := New(slots)
	_, err := s.AddCredit(testCredit())
	require.NoError(t, err)
	_, err = s.AddLoan(testLoan("Sam", core.LoanGiven))
	require.NoError(t, err)
	_, err = s.AddContact(core.Contact{Name: "Sam", Phone: "555-0102"})
	require.NoError(t, err)
	require.NoError(t, s.Persist(ctx))

	restored := New(slots)
	require.NoError(t, restored.Restore(ctx))

	require.Len(t, restored.Credits(), 1)
	require.Len(t, restored.Udhaar(), 1)
	require.Len(t, restored.Contacts(), 1)
	assert.Equal(t, s.Credits()[0].ID, restored.Credits()[0].ID)
	assert.Equal(t, s.Credits()[0].Amount, restored.Credits()[0].Amount)
	assert.Equal(t, s.Credits()[0].Date, restored.Credits()[0].Date)
	assert.Equal(t, "sam", restored.Udhaar()[0].PersonKey)
	// Timestamps survive the JSON boundary to the second.
	assert.WithinDuration(t, s.Contacts()[0].CreatedAt, restored.Contacts()[0].CreatedAt, time.Second)
}

func TestStoreRestoreToleratesMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	slots := newFakeSlots()
	slots.data[SlotUdhaar] = []byte(`{not json`)

	s := New(slots)
	require.NoError(t, s.Restore(ctx))
	assert.Empty(t, s.Credits())
	assert.Empty(t, s.Udhaar())
	assert.Empty(t, s.Contacts())
}

func TestStoreClear(t *testing.T) {
	s := New(newFakeSlots())
	_, err := s.AddCredit(testCredit())
	require.NoError(t, err)
	_, err = s.AddLoan(testLoan("Sam", core.LoanGiven))
	require.NoError(t, err)

	var changes []Change
	s.Subscribe(func(ch Change) { changes = append(changes, ch) })

	s.Clear()

	assert.Empty(t, s.Credits())
	assert.Empty(t, s.Expenses())
	assert.Empty(t, s.Udhaar())
	assert.Empty(t, s.Contacts())
	require.Len(t, changes, 1)
	assert.Equal(t, ColAll, changes[0].Collection)
	assert.Equal(t, OpReplace, changes[0].Op)
}

func TestStoreConcurrentPersist(t *testing.T) {
	ctx := context.Background()
	slots := newFakeSlots()
	s := New(slots)

	// Mutate-and-persist from several goroutines; Persist serializes the
	// slot writes so snapshots never interleave.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddCredit(testCredit())
			assert.NoError(t, err)
			assert.NoError(t, s.Persist(ctx))
		}()
	}
	wg.Wait()
	require.NoError(t, s.Persist(ctx))

	restored := New(slots)
	require.NoError(t, restored.Restore(ctx))
	assert.Len(t, restored.Credits(), 8)
}
