package sheets

import (
	"context"
	"time"

	"github.com/amanmodak98/hisaab/internal/balance"
)

// Snapshot is one full picture of the ledger, ready to mirror.
type Snapshot struct {
	Summary     balance.Summary
	Balances    []balance.PersonBalance
	GeneratedAt time.Time
}

// Ports for outbound adapters.
type (
	// SnapshotWriter replaces the mirrored sheet contents with a snapshot.
	SnapshotWriter interface {
		WriteSnapshot(ctx context.Context, snap Snapshot) error
	}
)
