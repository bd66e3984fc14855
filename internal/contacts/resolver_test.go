package contacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanmodak98/hisaab/internal/core"
	"github.com/amanmodak98/hisaab/internal/ledger"
)

func addLoan(t *testing.T, s *ledger.Store, person string, typ core.LoanType, paise int64) {
	t.Helper()
	_, err := s.AddLoan(core.LoanTransaction{
		Date:          core.MustParseDate("2024-02-01"),
		Type:          typ,
		PersonDisplay: person,
		Amount:        core.Money{Paise: paise},
		Purpose:       "cash",
	})
	require.NoError(t, err)
}

func TestCreateAndFindByName(t *testing.T) {
	r := NewResolver(ledger.New(nil))

	c, err := r.Create("Alice", "555-0100")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	got, ok := r.FindByName("ALICE")
	require.True(t, ok)
	assert.Equal(t, c.ID, got.ID)

	_, ok = r.FindByName("nobody")
	assert.False(t, ok)

	_, err = r.Create("alice", "")
	assert.ErrorIs(t, err, ledger.ErrDuplicateName)
	_, err = r.Create("   ", "")
	assert.ErrorIs(t, err, core.ErrEmptyName)
}

func TestRenameMovesBalance(t *testing.T) {
	s := ledger.New(nil)
	r := NewResolver(s)

	c, err := r.Create("Bob", "")
	require.NoError(t, err)
	addLoan(t, s, "Bob", core.LoanGiven, 100000)
	addLoan(t, s, "bob", core.LoanReceivedBack, 40000)

	before, err := r.BalanceFor(c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), before.Paise)

	rewritten, err := r.Rename(c.ID, "Robert", "")
	require.NoError(t, err)
	assert.Equal(t, 2, rewritten)

	after, err := r.BalanceFor(c.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after, "rename must not change the numeric balance")

	for _, tx := range s.Udhaar() {
		assert.Equal(t, "robert", tx.PersonKey)
	}
	_, ok := r.FindByName("bob")
	assert.False(t, ok)
}

func TestBalanceForSignAndMissing(t *testing.T) {
	s := ledger.New(nil)
	r := NewResolver(s)

	c, err := r.Create("Sam", "")
	require.NoError(t, err)
	addLoan(t, s, "Sam", core.LoanTaken, 25000)

	got, err := r.BalanceFor(c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-25000), got.Paise, "taken means the owner owes")

	_, err = r.BalanceFor("missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestTransactionsBeforeContactExists(t *testing.T) {
	// Transactions may predate the contact record; the derived join still finds them.
	s := ledger.New(nil)
	r := NewResolver(s)
	addLoan(t, s, "Meera", core.LoanGiven, 5000)

	c, err := r.Create("MEERA", "")
	require.NoError(t, err)

	txs, err := r.Transactions(c.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	has, err := r.HasTransactions(c.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestDeleteCascade(t *testing.T) {
	s := ledger.New(nil)
	r := NewResolver(s)

	c, err := r.Create("Bob", "")
	require.NoError(t, err)
	addLoan(t, s, "Bob", core.LoanGiven, 1000)
	addLoan(t, s, "Bob", core.LoanTaken, 2000)
	addLoan(t, s, "Carol", core.LoanGiven, 3000)

	removed, err := r.DeleteCascade(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Len(t, s.Udhaar(), 1)

	_, err = r.DeleteCascade("missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
