package ports

import (
	"context"

	"github.com/mvelasco/mueslibot/internal/domain"
)

// TrackingStore persists per-token order-tracking state. Saves are atomic
// (write-then-replace) so a crash can never leave a half-written file.
type TrackingStore interface {
	// Load reads the tracking state for a token. A missing or corrupt file
	// yields an empty, well-shaped state, never an error.
	Load(tokenKey string) (domain.TrackingState, error)

	// Save overwrites the tracking state for a token.
	Save(tokenKey string, state domain.TrackingState) error
}

// InventoryStore persists per-token inventory snapshots, newest first.
type InventoryStore interface {
	// Last returns the most recent snapshot, if any.
	Last(tokenKey string) (domain.InventorySnapshot, bool, error)

	// Append prepends a snapshot to the token's history.
	Append(tokenKey string, snap domain.InventorySnapshot) error
}

// HistoryStore records per-cycle summaries for offline analysis.
type HistoryStore interface {
	RecordCycle(ctx context.Context, rec domain.CycleRecord) error
	Close() error
}

// Notifier presents cycle results to the operator.
type Notifier interface {
	Notify(ctx context.Context, records []domain.CycleRecord) error
}
