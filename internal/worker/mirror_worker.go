package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amanmodak98/hisaab/internal/amqp"
	"github.com/amanmodak98/hisaab/internal/balance"
	"github.com/amanmodak98/hisaab/internal/ledger"
	"github.com/amanmodak98/hisaab/internal/query"
	"github.com/amanmodak98/hisaab/internal/sheets"
)

// MirrorWorker keeps a spreadsheet in sync with the ledger. It reloads the
// ledger from the slot store on every change message and rewrites the sheet,
// with a periodic refresh as a catch-up for lost notifications.
type MirrorWorker struct {
	slots    ledger.SlotStore
	writer   sheets.SnapshotWriter
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMirrorWorker(slots ledger.SlotStore, writer sheets.SnapshotWriter, interval time.Duration) *MirrorWorker {
	return &MirrorWorker{
		slots:    slots,
		writer:   writer,
		interval: interval,
	}
}

// HandleChange is the AMQP consume handler. Every change triggers a full
// refresh; the snapshot is cheap to recompute and idempotent to write.
func (w *MirrorWorker) HandleChange(msg *amqp.ChangeMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.InfoContext(ctx, "Refreshing balance mirror",
		"collection", msg.Collection,
		"op", msg.Op,
		"id", msg.ID)

	return w.Refresh(ctx)
}

// Refresh reloads the ledger and rewrites the mirrored sheet.
func (w *MirrorWorker) Refresh(ctx context.Context) error {
	store := ledger.New(w.slots)
	if err := store.Restore(ctx); err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}

	udhaar := store.Udhaar()
	byPerson := balance.Compute(udhaar)

	snap := sheets.Snapshot{
		Summary:     balance.ComputeSummary(store.Credits(), store.Expenses(), udhaar),
		Balances:    make([]balance.PersonBalance, 0, len(byPerson)),
		GeneratedAt: time.Now().UTC(),
	}
	for _, p := range query.Persons(udhaar) {
		snap.Balances = append(snap.Balances, byPerson[p.Key])
	}

	if err := w.writer.WriteSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Balance mirror refreshed",
		"persons", len(snap.Balances),
		"udhaar_transactions", len(udhaar))

	return nil
}

// Start begins the periodic refresh loop. Returns an error if already running.
func (w *MirrorWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("mirror worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Mirror worker started", "interval", w.interval)
	return nil
}

// Stop gracefully stops the periodic loop and waits for completion.
func (w *MirrorWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		slog.InfoContext(ctx, "Mirror worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Mirror worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

func (w *MirrorWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic mirror refresh failed", "error", err)
			}
		}
	}
}
