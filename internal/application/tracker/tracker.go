// Package tracker reconciles the locally persisted order-tracking state with
// the orders the exchange reports on chain.
package tracker

import (
	"context"
	"log/slog"

	"github.com/mvelasco/mueslibot/internal/domain"
	"github.com/mvelasco/mueslibot/internal/ports"
)

// Tracker owns the order-tracking lifecycle for all tokens: load at startup,
// sync every cycle, save after every mutation.
type Tracker struct {
	chain        ports.ChainContext
	store        ports.TrackingStore
	expiryBlocks int64
}

// New creates a Tracker. expiryBlocks is how many blocks an order may stay
// unseen on chain before it counts as expired or never confirmed.
func New(chain ports.ChainContext, store ports.TrackingStore, expiryBlocks int64) *Tracker {
	return &Tracker{chain: chain, store: store, expiryBlocks: expiryBlocks}
}

// Load reads the persisted state for a token. Missing or corrupt files come
// back as an empty state; the store handles the self-healing.
func (t *Tracker) Load(tokenKey string) (domain.TrackingState, error) {
	return t.store.Load(tokenKey)
}

// Save persists the state. Called after every mutation so a restart can
// never lose a decision already submitted to the ledger.
func (t *Tracker) Save(tokenKey string, state domain.TrackingState) error {
	return t.store.Save(tokenKey, state)
}

// Sync merges local tracking with the on-chain open orders, per side:
//
//  1. Local orders missing on chain are dropped once older than
//     expiryBlocks; height-lookup failures keep the order (conservative
//     retention, transient RPC errors must not lose state).
//  2. Local orders present on chain stay, with their cached height
//     refreshed.
//  3. On-chain orders unknown locally are adopted unless they were canceled
//     at some point.
//
// A malformed on-chain order is logged and excluded, never an error for the
// whole sync. The canceled set is carried over untouched.
func (t *Tracker) Sync(ctx context.Context, state domain.TrackingState, onchain []domain.Order, currentHeight int64) domain.TrackingState {
	state.Heal()

	onchainHashes := make(map[string]struct{}, len(onchain))
	bySide := make(map[domain.OrderSide][]domain.Order, 2)
	for _, order := range onchain {
		onchainHashes[order.TxHash] = struct{}{}
		side, err := order.Side()
		if err != nil {
			slog.Warn("tracker: skipping unclassifiable on-chain order", "txHash", order.TxHash, "err", err)
			continue
		}
		bySide[side] = append(bySide[side], order)
	}

	synced := domain.TrackingState{CanceledOrders: state.CanceledOrders}
	synced.BuyOrders = t.syncSide(ctx, domain.SideBuy, state, bySide[domain.SideBuy], onchainHashes, currentHeight)
	synced.SellOrders = t.syncSide(ctx, domain.SideSell, state, bySide[domain.SideSell], onchainHashes, currentHeight)
	return synced
}

func (t *Tracker) syncSide(
	ctx context.Context,
	side domain.OrderSide,
	state domain.TrackingState,
	onchain []domain.Order,
	onchainHashes map[string]struct{},
	currentHeight int64,
) map[string]domain.Order {
	local := state.SideOrders(side)
	result := make(map[string]domain.Order, len(local))

	for txHash, order := range local {
		if order.TxHeight == 0 {
			height, err := t.chain.TxBlockHeight(ctx, txHash)
			if err != nil {
				slog.Debug("tracker: tx height lookup failed, keeping order", "txHash", txHash, "err", err)
			} else {
				order.TxHeight = height
			}
		}

		if _, onChain := onchainHashes[txHash]; onChain {
			result[txHash] = order
			continue
		}

		if order.TxHeight > 0 && currentHeight > 0 && currentHeight-order.TxHeight > t.expiryBlocks {
			slog.Info("tracker: removing expired order", "side", side, "txHash", txHash,
				"txHeight", order.TxHeight, "currentHeight", currentHeight)
			continue
		}
		// Not expired, or height unknown: keep it rather than lose state.
		result[txHash] = order
	}

	for _, order := range onchain {
		if _, known := result[order.TxHash]; known {
			continue
		}
		if state.IsCanceled(order.TxHash) {
			continue
		}
		slog.Info("tracker: adopting on-chain order", "side", side, "txHash", order.TxHash)
		result[order.TxHash] = order
	}
	return result
}
