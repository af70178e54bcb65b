// Package engine orchestrates the trading loop: one pass per token per
// cycle, each pass flowing market data through the tracker, the inventory
// valuator and the strategy.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mvelasco/mueslibot/config"
	"github.com/mvelasco/mueslibot/internal/application/inventory"
	"github.com/mvelasco/mueslibot/internal/application/strategy"
	"github.com/mvelasco/mueslibot/internal/application/tracker"
	"github.com/mvelasco/mueslibot/internal/domain"
	"github.com/mvelasco/mueslibot/internal/ports"
)

// Exchange is the slice of the exchange API the engine needs.
type Exchange interface {
	ports.PriceProvider
	ports.OrderBookProvider
	ports.OrderProvider
	ports.HealthChecker
}

// Deps are the wired collaborators. Placers is one transaction builder per
// token key.
type Deps struct {
	Chain    ports.ChainContext
	Exchange Exchange
	Tracker  *tracker.Tracker
	Valuator *inventory.Valuator
	History  ports.HistoryStore
	Notifier ports.Notifier
	Placers  map[string]strategy.OrderPlacer
}

// Engine runs the market-making loop over all configured tokens.
type Engine struct {
	cfg        *config.Config
	deps       Deps
	strategies map[string]strategy.Strategy
	tokenKeys  []string
}

// New builds the engine, one strategy instance per token so history buffers
// stay independent.
func New(cfg *config.Config, deps Deps) (*Engine, error) {
	strategies := make(map[string]strategy.Strategy, len(cfg.Tokens))
	keys := make([]string, 0, len(cfg.Tokens))
	for key := range cfg.Tokens {
		s, err := strategy.New(cfg.Strategy)
		if err != nil {
			return nil, fmt.Errorf("engine.New: %w", err)
		}
		strategies[key] = s
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &Engine{cfg: cfg, deps: deps, strategies: strategies, tokenKeys: keys}, nil
}

// Run executes cycles until the context is canceled. The first cycle runs
// immediately, later ones on the configured interval.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting",
		"strategy", e.cfg.Strategy.Name,
		"tokens", len(e.tokenKeys),
		"interval", e.cfg.LoopInterval(),
	)

	if err := e.RunOnce(ctx); err != nil {
		slog.Error("trading cycle failed", "err", err)
	}

	ticker := time.NewTicker(e.cfg.LoopInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped")
			return nil
		case <-ticker.C:
			if err := e.RunOnce(ctx); err != nil {
				slog.Error("trading cycle failed", "err", err)
			}
		}
	}
}

// RunOnce runs one pass over all tokens, strictly in order. A failing token
// is logged and the pass moves on; only an unhealthy exchange or a canceled
// context aborts the whole pass.
func (e *Engine) RunOnce(ctx context.Context) error {
	if err := e.deps.Exchange.WaitHealthy(ctx); err != nil {
		return fmt.Errorf("engine.RunOnce: %w", err)
	}

	records := make([]domain.CycleRecord, 0, len(e.tokenKeys))
	for _, key := range e.tokenKeys {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rec, err := e.runToken(ctx, key, e.cfg.Tokens[key])
		if err != nil {
			slog.Error("token cycle failed", "token", key, "err", err)
			continue
		}
		records = append(records, rec)

		if err := e.deps.History.RecordCycle(ctx, rec); err != nil {
			slog.Warn("recording cycle failed", "token", key, "err", err)
		}
	}

	if err := e.deps.Notifier.Notify(ctx, records); err != nil {
		slog.Warn("notify failed", "err", err)
	}
	return nil
}

func (e *Engine) runToken(ctx context.Context, key string, token config.TokenInfo) (domain.CycleRecord, error) {
	start := time.Now()
	asset := domain.AssetID{PolicyID: token.PolicyID, Name: token.Hexname}

	quote, err := e.deps.Exchange.FetchPrice(ctx, asset)
	if err != nil {
		return domain.CycleRecord{}, fmt.Errorf("fetch price: %w", err)
	}

	book, err := e.fetchBook(ctx, asset)
	if err != nil {
		slog.Warn("order book unavailable, continuing without volume signal", "token", key, "err", err)
	}

	open, err := e.deps.Exchange.FetchOrders(ctx, token.StakingKeyHash, ports.OrdersOpen)
	if err != nil {
		return domain.CycleRecord{}, fmt.Errorf("fetch open orders: %w", err)
	}
	matched, err := e.deps.Exchange.FetchOrders(ctx, token.StakingKeyHash, ports.OrdersMatched)
	if err != nil {
		return domain.CycleRecord{}, fmt.Errorf("fetch matched orders: %w", err)
	}
	canceled, err := e.deps.Exchange.FetchOrders(ctx, token.StakingKeyHash, ports.OrdersCanceled)
	if err != nil {
		return domain.CycleRecord{}, fmt.Errorf("fetch canceled orders: %w", err)
	}

	height, err := e.deps.Chain.CurrentBlockHeight(ctx)
	if err != nil {
		return domain.CycleRecord{}, fmt.Errorf("current block height: %w", err)
	}

	state, err := e.deps.Tracker.Load(key)
	if err != nil {
		return domain.CycleRecord{}, fmt.Errorf("load tracking: %w", err)
	}
	state = e.deps.Tracker.Sync(ctx, state, open, height)
	applyExchangeStatuses(&state, matched, canceled)
	if err := e.deps.Tracker.Save(key, state); err != nil {
		return domain.CycleRecord{}, fmt.Errorf("save tracking: %w", err)
	}

	utxos, err := e.deps.Chain.Utxos(ctx, token.Address)
	if err != nil {
		return domain.CycleRecord{}, fmt.Errorf("query utxos: %w", err)
	}

	inv, err := e.deps.Valuator.Update(key, token.Address, utxos, openOrders(state), quote, asset, token.Decimals)
	if err != nil {
		slog.Warn("inventory snapshot failed", "token", key, "err", err)
	}

	cycle := &strategy.Cycle{
		TokenKey:     key,
		Amount:       token.Amount,
		BaseDecimals: e.cfg.Exchange.BaseDecimals,
		Quote:        quote,
		Book:         book,
		UTxOs:        utxos,
		State:        state,
		Placer:       e.deps.Placers[key],
		Persist: func(st domain.TrackingState) error {
			return e.deps.Tracker.Save(key, st)
		},
	}
	res, err := e.strategies[key].Execute(ctx, cycle)
	if err != nil {
		return domain.CycleRecord{}, fmt.Errorf("strategy: %w", err)
	}

	slog.Info("token cycle done", "token", key,
		"placed", res.Placed, "canceled", res.Canceled,
		"took", time.Since(start).Round(time.Millisecond))

	return domain.CycleRecord{
		ID:             uuid.NewString(),
		TokenKey:       key,
		RanAt:          start,
		MidPrice:       quote.Price,
		Spread:         quote.Spread,
		OrdersPlaced:   res.Placed,
		OrdersCanceled: res.Canceled,
		OpenBuys:       cycle.State.OpenCount(domain.SideBuy),
		OpenSells:      cycle.State.OpenCount(domain.SideSell),
		Inventory:      inv,
	}, nil
}

// fetchBook pulls both directions of the public book for the pair.
func (e *Engine) fetchBook(ctx context.Context, asset domain.AssetID) ([]domain.Order, error) {
	bids, err := e.deps.Exchange.FetchOrderBook(ctx, domain.BaseAsset, asset)
	if err != nil {
		return nil, err
	}
	asks, err := e.deps.Exchange.FetchOrderBook(ctx, asset, domain.BaseAsset)
	if err != nil {
		return nil, err
	}
	return append(bids, asks...), nil
}

// applyExchangeStatuses folds the exchange's matched and canceled views into
// the tracking state: matched orders leave the open maps, externally
// canceled ones join the canceled set so they are never adopted back.
func applyExchangeStatuses(state *domain.TrackingState, matched, canceled []domain.Order) {
	for _, o := range matched {
		for _, side := range []domain.OrderSide{domain.SideBuy, domain.SideSell} {
			if _, ok := state.SideOrders(side)[o.TxHash]; ok {
				slog.Info("order matched", "side", side, "txHash", o.TxHash)
				delete(state.SideOrders(side), o.TxHash)
			}
		}
	}
	for _, o := range canceled {
		for _, side := range []domain.OrderSide{domain.SideBuy, domain.SideSell} {
			delete(state.SideOrders(side), o.TxHash)
		}
		if !state.IsCanceled(o.TxHash) {
			state.CanceledOrders[o.TxHash] = o
		}
	}
}

// openOrders flattens both open sides into one slice.
func openOrders(state domain.TrackingState) []domain.Order {
	out := make([]domain.Order, 0, len(state.BuyOrders)+len(state.SellOrders))
	for _, o := range state.BuyOrders {
		out = append(out, o)
	}
	for _, o := range state.SellOrders {
		out = append(out, o)
	}
	return out
}
