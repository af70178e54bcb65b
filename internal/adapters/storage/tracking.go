package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mvelasco/mueslibot/internal/domain"
)

// TrackingFiles implements ports.TrackingStore with one JSON file per token.
// Files are written with a write-then-replace discipline: a crash mid-write
// leaves the previous state intact, never a truncated file.
type TrackingFiles struct {
	dir string
}

// NewTrackingFiles creates the store, making the directory if needed.
func NewTrackingFiles(dir string) (*TrackingFiles, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage.NewTrackingFiles: %w", err)
	}
	return &TrackingFiles{dir: dir}, nil
}

// trackingFile is the on-disk shape: three maps from txHash to order record.
type trackingFile struct {
	BuyOrders      map[string]domain.Order `json:"buy_orders"`
	SellOrders     map[string]domain.Order `json:"sell_orders"`
	CanceledOrders map[string]domain.Order `json:"canceled_orders"`
}

// Load implements ports.TrackingStore. A missing or unreadable file yields
// an empty well-shaped state; the next Save recreates the store.
func (s *TrackingFiles) Load(tokenKey string) (domain.TrackingState, error) {
	data, err := os.ReadFile(s.path(tokenKey))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("storage: unreadable tracking file, starting fresh", "token", tokenKey, "err", err)
		} else {
			slog.Info("storage: no tracking file, starting fresh", "token", tokenKey)
		}
		return domain.NewTrackingState(), nil
	}

	var file trackingFile
	if err := json.Unmarshal(data, &file); err != nil {
		slog.Warn("storage: corrupt tracking file, starting fresh", "token", tokenKey, "err", err)
		return domain.NewTrackingState(), nil
	}

	state := domain.TrackingState{
		BuyOrders:      file.BuyOrders,
		SellOrders:     file.SellOrders,
		CanceledOrders: file.CanceledOrders,
	}
	state.Heal()

	// TxHash lives in the map key on disk; restore it on the records.
	for _, m := range []map[string]domain.Order{state.BuyOrders, state.SellOrders, state.CanceledOrders} {
		for txHash, order := range m {
			order.TxHash = txHash
			m[txHash] = order
		}
	}
	return state, nil
}

// Save implements ports.TrackingStore.
func (s *TrackingFiles) Save(tokenKey string, state domain.TrackingState) error {
	state.Heal()
	file := trackingFile{
		BuyOrders:      state.BuyOrders,
		SellOrders:     state.SellOrders,
		CanceledOrders: state.CanceledOrders,
	}
	if err := writeAtomic(s.path(tokenKey), file); err != nil {
		return fmt.Errorf("storage.Save(%s): %w", tokenKey, err)
	}
	slog.Debug("storage: saved order tracking", "token", tokenKey,
		"buys", len(state.BuyOrders), "sells", len(state.SellOrders), "canceled", len(state.CanceledOrders))
	return nil
}

func (s *TrackingFiles) path(tokenKey string) string {
	return filepath.Join(s.dir, tokenKey+"_order_tracking.json")
}

// writeAtomic marshals v and replaces path in one rename.
func writeAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
