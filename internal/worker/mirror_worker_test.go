package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanmodak98/hisaab/internal/amqp"
	"github.com/amanmodak98/hisaab/internal/core"
	"github.com/amanmodak98/hisaab/internal/ledger"
	"github.com/amanmodak98/hisaab/internal/sheets"
	"github.com/amanmodak98/hisaab/internal/storage"
)

type captureWriter struct {
	mu    sync.Mutex
	snaps []sheets.Snapshot
	err   error
}

func (w *captureWriter) WriteSnapshot(_ context.Context, snap sheets.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.snaps = append(w.snaps, snap)
	return nil
}

func (w *captureWriter) last(t *testing.T) sheets.Snapshot {
	t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()
	require.NotEmpty(t, w.snaps)
	return w.snaps[len(w.snaps)-1]
}

func seedLedger(t *testing.T, slots ledger.SlotStore) {
	t.Helper()
	ctx := context.Background()
	store := ledger.New(slots)

	_, err := store.AddCredit(core.Credit{
		Date:   core.MustParseDate("2024-04-01"),
		Amount: core.Money{Paise: 100000},
		From:   "salary",
	})
	require.NoError(t, err)

	_, err = store.AddLoan(core.LoanTransaction{
		Date:          core.MustParseDate("2024-04-02"),
		Type:          core.LoanGiven,
		PersonDisplay: "Asha",
		Amount:        core.Money{Paise: 25000},
		Purpose:       "cash",
	})
	require.NoError(t, err)

	require.NoError(t, store.Persist(ctx))
}

func TestHandleChangeWritesSnapshot(t *testing.T) {
	slots := storage.NewMemorySlotStore()
	seedLedger(t, slots)

	writer := &captureWriter{}
	w := NewMirrorWorker(slots, writer, time.Minute)

	msg := amqp.NewChangeMessage("udhaar", "create", "abc")
	require.NoError(t, w.HandleChange(msg))

	snap := writer.last(t)
	assert.Equal(t, int64(100000), snap.Summary.TotalCredits.Paise)
	require.Len(t, snap.Balances, 1)
	assert.Equal(t, "Asha", snap.Balances[0].DisplayName)
	assert.Equal(t, int64(25000), snap.Balances[0].Net.Paise)
	assert.False(t, snap.GeneratedAt.IsZero())
}

func TestRefreshEmptyLedger(t *testing.T) {
	writer := &captureWriter{}
	w := NewMirrorWorker(storage.NewMemorySlotStore(), writer, time.Minute)

	require.NoError(t, w.Refresh(context.Background()))

	snap := writer.last(t)
	assert.Empty(t, snap.Balances)
	assert.Equal(t, int64(0), snap.Summary.Balance.Paise)
}

func TestHandleChangePropagatesWriteError(t *testing.T) {
	slots := storage.NewMemorySlotStore()
	seedLedger(t, slots)

	writer := &captureWriter{err: errors.New("quota exceeded")}
	w := NewMirrorWorker(slots, writer, time.Minute)

	err := w.HandleChange(amqp.NewChangeMessage("credits", "update", "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestStartStop(t *testing.T) {
	w := NewMirrorWorker(storage.NewMemorySlotStore(), &captureWriter{}, time.Hour)
	ctx := context.Background()

	require.NoError(t, w.Start(ctx))
	require.Error(t, w.Start(ctx), "second start should fail")

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, w.Stop(stopCtx))

	// Stopping again is a no-op.
	require.NoError(t, w.Stop(stopCtx))
}
