package domain

import "time"

// Inventory is the bot's holdings for one tracked pair: wallet UTXOs plus
// the exposure locked in open orders, valued in base units.
type Inventory struct {
	Lovelace  int64 `json:"lovelace"`
	Tokens    int64 `json:"tokens"`
	Valuation int64 `json:"valuation"`
}

// Equal reports whether two inventories are identical. Snapshots are only
// persisted when the inventory actually changed.
func (i Inventory) Equal(o Inventory) bool {
	return i == o
}

// InventorySnapshot is one timestamped entry in the per-token inventory
// history file (stored newest first).
type InventorySnapshot struct {
	Timestamp string    `json:"timestamp"`
	Address   string    `json:"address"`
	Inventory Inventory `json:"inventory"`
}

// CycleRecord summarises one trading cycle for one token.
type CycleRecord struct {
	ID             string
	TokenKey       string
	RanAt          time.Time
	MidPrice       int64
	Spread         int64
	OrdersPlaced   int
	OrdersCanceled int
	OpenBuys       int
	OpenSells      int
	Inventory      Inventory
}
