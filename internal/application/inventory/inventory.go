// Package inventory values the bot's holdings for a token pair: wallet
// UTXOs plus the exposure locked in open orders, expressed in base units.
package inventory

import (
	"log/slog"
	"time"

	"github.com/mvelasco/mueslibot/internal/domain"
	"github.com/mvelasco/mueslibot/internal/ports"
)

// Compute sums wallet UTXOs and open-order exposure into an Inventory.
// An open order contributes its offered amount to whichever side its
// from-token identifies, and its attached lovelace always counts toward
// lovelace: both come back to the wallet on cancel or match. The valuation
// marks token holdings at the quote mid.
func Compute(utxos []domain.UTxO, open []domain.Order, quote domain.PriceQuote, token domain.AssetID, decimals int) domain.Inventory {
	var inv domain.Inventory
	for _, u := range utxos {
		inv.Lovelace += u.Value.Coin
		inv.Tokens += u.Value.AssetAmount(token)
	}
	for _, o := range open {
		if o.FromAsset().IsBase() {
			inv.Lovelace += o.FromAmount
		} else if o.FromAsset() == token {
			inv.Tokens += o.FromAmount
		}
		inv.Lovelace += o.AttachedLvl
	}
	inv.Valuation = inv.Lovelace + inv.Tokens*quote.Price/domain.Pow10(decimals)
	return inv
}

// Valuator persists inventory snapshots, skipping writes when nothing
// changed since the last one.
type Valuator struct {
	store ports.InventoryStore
}

func NewValuator(store ports.InventoryStore) *Valuator {
	return &Valuator{store: store}
}

// Update computes the inventory and appends a snapshot when it differs from
// the stored one. Returns the inventory either way.
func (v *Valuator) Update(tokenKey, address string, utxos []domain.UTxO, open []domain.Order, quote domain.PriceQuote, token domain.AssetID, decimals int) (domain.Inventory, error) {
	inv := Compute(utxos, open, quote, token, decimals)

	last, ok, err := v.store.Last(tokenKey)
	if err != nil {
		return inv, err
	}
	if ok && last.Inventory.Equal(inv) {
		slog.Debug("inventory: unchanged, skipping snapshot", "token", tokenKey)
		return inv, nil
	}

	snap := domain.InventorySnapshot{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Address:   address,
		Inventory: inv,
	}
	if err := v.store.Append(tokenKey, snap); err != nil {
		return inv, err
	}
	return inv, nil
}
