package storage

// history.go: sqlite cycle log for offline analysis.
//
// The JSON tracking and inventory files are the authoritative state; this
// table is an append-only record of what each cycle decided, cheap enough to
// write every pass.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mvelasco/mueslibot/internal/domain"
	_ "modernc.org/sqlite"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS cycles (
    id              TEXT PRIMARY KEY,
    token           TEXT     NOT NULL,
    ran_at          DATETIME NOT NULL,
    mid_price       INTEGER  NOT NULL DEFAULT 0,
    spread          INTEGER  NOT NULL DEFAULT 0,
    orders_placed   INTEGER  NOT NULL DEFAULT 0,
    orders_canceled INTEGER  NOT NULL DEFAULT 0,
    open_buys       INTEGER  NOT NULL DEFAULT 0,
    open_sells      INTEGER  NOT NULL DEFAULT 0,
    lovelace        INTEGER  NOT NULL DEFAULT 0,
    tokens          INTEGER  NOT NULL DEFAULT 0,
    valuation       INTEGER  NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_cycles_token_at ON cycles(token, ran_at DESC);
`

// History implements ports.HistoryStore on SQLite (pure Go, no CGo).
type History struct {
	db *sql.DB
}

// NewHistory opens (or creates) the database at the given DSN.
func NewHistory(dsn string) (*History, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.NewHistory: open %q: %w", dsn, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewHistory: apply schema: %w", err)
	}
	return &History{db: db}, nil
}

// RecordCycle implements ports.HistoryStore.
func (h *History) RecordCycle(ctx context.Context, rec domain.CycleRecord) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO cycles
			(id, token, ran_at, mid_price, spread, orders_placed, orders_canceled,
			 open_buys, open_sells, lovelace, tokens, valuation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.TokenKey,
		rec.RanAt.UTC(),
		rec.MidPrice,
		rec.Spread,
		rec.OrdersPlaced,
		rec.OrdersCanceled,
		rec.OpenBuys,
		rec.OpenSells,
		rec.Inventory.Lovelace,
		rec.Inventory.Tokens,
		rec.Inventory.Valuation,
	)
	if err != nil {
		return fmt.Errorf("storage.RecordCycle: %w", err)
	}
	return nil
}

// GetRecent returns the latest cycles for a token, newest first.
func (h *History) GetRecent(ctx context.Context, tokenKey string, limit int) ([]domain.CycleRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, token, ran_at, mid_price, spread, orders_placed, orders_canceled,
		       open_buys, open_sells, lovelace, tokens, valuation
		FROM cycles
		WHERE token = ?
		ORDER BY ran_at DESC
		LIMIT ?
	`, tokenKey, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRecent: query: %w", err)
	}
	defer rows.Close()

	var records []domain.CycleRecord
	for rows.Next() {
		var rec domain.CycleRecord
		var ranAt time.Time
		if err := rows.Scan(
			&rec.ID,
			&rec.TokenKey,
			&ranAt,
			&rec.MidPrice,
			&rec.Spread,
			&rec.OrdersPlaced,
			&rec.OrdersCanceled,
			&rec.OpenBuys,
			&rec.OpenSells,
			&rec.Inventory.Lovelace,
			&rec.Inventory.Tokens,
			&rec.Inventory.Valuation,
		); err != nil {
			return nil, fmt.Errorf("storage.GetRecent: scan: %w", err)
		}
		rec.RanAt = ranAt
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close shuts the database down cleanly.
func (h *History) Close() error {
	return h.db.Close()
}
