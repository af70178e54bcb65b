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

// InventoryFiles implements ports.InventoryStore: one JSON array per token,
// newest snapshot first.
type InventoryFiles struct {
	dir string
}

// NewInventoryFiles creates the store, making the directory if needed.
func NewInventoryFiles(dir string) (*InventoryFiles, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage.NewInventoryFiles: %w", err)
	}
	return &InventoryFiles{dir: dir}, nil
}

// Last implements ports.InventoryStore.
func (s *InventoryFiles) Last(tokenKey string) (domain.InventorySnapshot, bool, error) {
	history, err := s.read(tokenKey)
	if err != nil {
		return domain.InventorySnapshot{}, false, err
	}
	if len(history) == 0 {
		return domain.InventorySnapshot{}, false, nil
	}
	return history[0], true, nil
}

// Append implements ports.InventoryStore, prepending the snapshot.
func (s *InventoryFiles) Append(tokenKey string, snap domain.InventorySnapshot) error {
	history, err := s.read(tokenKey)
	if err != nil {
		return err
	}
	history = append([]domain.InventorySnapshot{snap}, history...)
	if err := writeAtomic(s.path(tokenKey), history); err != nil {
		return fmt.Errorf("storage.Append(%s): %w", tokenKey, err)
	}
	slog.Debug("storage: saved inventory snapshot", "token", tokenKey, "entries", len(history))
	return nil
}

func (s *InventoryFiles) read(tokenKey string) ([]domain.InventorySnapshot, error) {
	data, err := os.ReadFile(s.path(tokenKey))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: read inventory %s: %w", tokenKey, err)
	}

	var history []domain.InventorySnapshot
	if err := json.Unmarshal(data, &history); err != nil {
		slog.Warn("storage: corrupt inventory file, starting fresh", "token", tokenKey, "err", err)
		return nil, nil
	}
	return history, nil
}

func (s *InventoryFiles) path(tokenKey string) string {
	return filepath.Join(s.dir, tokenKey+"_inventory.json")
}
