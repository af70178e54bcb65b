// Package strategy decides which orders to hold, cancel and place around the
// reference mid-price. Variants differ only in how they derive their price
// ladder; the execution pass is shared.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mvelasco/mueslibot/config"
	"github.com/mvelasco/mueslibot/internal/domain"
)

// OrderPlacer submits order transactions. Each call consumes from the
// passed-in UTXO set and returns the unused remainder.
type OrderPlacer interface {
	PlaceBuyOrder(ctx context.Context, utxos []domain.UTxO, amount, price int64) (domain.Order, []domain.UTxO, error)
	PlaceSellOrder(ctx context.Context, utxos []domain.UTxO, amount, price int64) (domain.Order, []domain.UTxO, error)
	CancelOrder(ctx context.Context, utxos []domain.UTxO, order domain.Order) (domain.CancelRecord, []domain.UTxO, error)
}

// Cycle is one strategy pass over a token: market inputs, wallet funds and
// the tracking state the pass mutates. Persist is called after every
// successful action so a crash never loses a submitted decision.
type Cycle struct {
	TokenKey     string
	Amount       int64 // order size in token units
	BaseDecimals int
	Quote        domain.PriceQuote
	Book         []domain.Order
	UTxOs        []domain.UTxO
	State        domain.TrackingState
	Placer       OrderPlacer
	Persist      func(domain.TrackingState) error
}

// Result counts the actions one pass took.
type Result struct {
	Placed   int
	Canceled int
}

// Prices is a ladder of target order prices, innermost level first.
type Prices struct {
	Buys  []int64
	Sells []int64
}

// Strategy is one market-making variant.
type Strategy interface {
	Name() string

	// CalculateOrderPrices derives the ladder for the given mid-price
	// from the variant's parameters and observed history.
	CalculateOrderPrices(mid int64) Prices

	// Execute runs one full pass: observe, cancel stale orders, place
	// missing ones.
	Execute(ctx context.Context, c *Cycle) (Result, error)
}

// New builds the configured strategy variant. Callers create one instance
// per token so history buffers are never shared across pairs.
func New(cfg config.StrategyConfig) (Strategy, error) {
	switch cfg.Name {
	case "standard":
		return newStandard(cfg), nil
	case "aggressive":
		return newAggressive(cfg), nil
	case "volume_adaptive":
		return newVolumeAdaptive(cfg), nil
	case "trend_following":
		return newTrendFollowing(cfg), nil
	default:
		return nil, fmt.Errorf("strategy.New: unknown strategy %q", cfg.Name)
	}
}

// overRefreshThreshold reports whether a price deviates from mid by more
// than the configured relative threshold.
func overRefreshThreshold(mid, price int64, threshold float64) bool {
	if mid == 0 {
		return false
	}
	diff := mid - price
	if diff < 0 {
		diff = -diff
	}
	return float64(diff)/float64(mid) > threshold
}

// execute is the pass shared by every variant: refresh the market view,
// cancel open orders drifted past the refresh threshold, then fill both
// sides of the ladder up to the order budget. Buys and sells interleave so
// one side running out of funds never starves the other.
func execute(ctx context.Context, s Strategy, m *marketState, cfg config.StrategyConfig, c *Cycle) (Result, error) {
	m.observe(c.Quote, bookVolume(c.Book))
	if m.mid <= 0 {
		return Result{}, fmt.Errorf("strategy.execute: no usable mid-price for %s", c.TokenKey)
	}
	prices := s.CalculateOrderPrices(m.mid)

	var res Result
	if err := cancelPass(ctx, m, cfg, c, &res); err != nil {
		return res, err
	}
	if err := placePass(ctx, m, cfg, c, prices, &res); err != nil {
		return res, err
	}
	return res, nil
}

func cancelPass(ctx context.Context, m *marketState, cfg config.StrategyConfig, c *Cycle, res *Result) error {
	for _, side := range []domain.OrderSide{domain.SideBuy, domain.SideSell} {
		for txHash, order := range c.State.SideOrders(side) {
			price, err := order.Price(c.BaseDecimals)
			if err != nil {
				slog.Warn("strategy: unpriceable tracked order", "token", c.TokenKey, "txHash", txHash, "err", err)
				continue
			}
			if !overRefreshThreshold(m.mid, price, cfg.OrderRefreshThreshold) {
				continue
			}

			rec, remaining, err := c.Placer.CancelOrder(ctx, c.UTxOs, order)
			if errors.Is(err, domain.ErrInsufficientFunds) {
				slog.Info("strategy: not enough funds to cancel", "token", c.TokenKey, "txHash", txHash)
				continue
			}
			if err != nil {
				slog.Warn("strategy: cancel failed", "token", c.TokenKey, "txHash", txHash, "err", err)
				continue
			}

			c.UTxOs = remaining
			delete(c.State.SideOrders(side), txHash)
			c.State.CanceledOrders[txHash] = rec.Order
			if err := c.Persist(c.State); err != nil {
				return fmt.Errorf("strategy.execute: persist after cancel: %w", err)
			}
			res.Canceled++
			slog.Info("strategy: canceled order", "token", c.TokenKey, "side", side,
				"txHash", txHash, "price", price, "mid", m.mid)
		}
	}
	return nil
}

func placePass(ctx context.Context, m *marketState, cfg config.StrategyConfig, c *Cycle, prices Prices, res *Result) error {
	levels := len(prices.Buys)
	if len(prices.Sells) > levels {
		levels = len(prices.Sells)
	}
	for i := 0; i < levels; i++ {
		if i < len(prices.Buys) {
			if err := placeOne(ctx, m, cfg, c, domain.SideBuy, prices.Buys[i], res); err != nil {
				return err
			}
		}
		if i < len(prices.Sells) {
			if err := placeOne(ctx, m, cfg, c, domain.SideSell, prices.Sells[i], res); err != nil {
				return err
			}
		}
	}
	return nil
}

func placeOne(ctx context.Context, m *marketState, cfg config.StrategyConfig, c *Cycle, side domain.OrderSide, price int64, res *Result) error {
	if price <= 0 {
		return nil
	}
	if c.State.OpenCount(side) >= cfg.NOrders {
		return nil
	}
	// A ladder level past the refresh threshold would be canceled on the
	// next pass anyway.
	if overRefreshThreshold(m.mid, price, cfg.OrderRefreshThreshold) {
		return nil
	}

	var (
		order     domain.Order
		remaining []domain.UTxO
		err       error
	)
	if side == domain.SideBuy {
		order, remaining, err = c.Placer.PlaceBuyOrder(ctx, c.UTxOs, c.Amount, price)
	} else {
		order, remaining, err = c.Placer.PlaceSellOrder(ctx, c.UTxOs, c.Amount, price)
	}
	if errors.Is(err, domain.ErrInsufficientFunds) {
		slog.Info("strategy: not enough funds to place", "token", c.TokenKey, "side", side, "price", price)
		return nil
	}
	if err != nil {
		slog.Warn("strategy: place failed", "token", c.TokenKey, "side", side, "price", price, "err", err)
		return nil
	}

	c.UTxOs = remaining
	c.State.SideOrders(side)[order.TxHash] = order
	if err := c.Persist(c.State); err != nil {
		return fmt.Errorf("strategy.execute: persist after place: %w", err)
	}
	res.Placed++
	slog.Info("strategy: placed order", "token", c.TokenKey, "side", side,
		"txHash", order.TxHash, "price", price, "amount", c.Amount)
	return nil
}

// bookVolume sums the base-unit turnover visible in the public order book,
// the activity signal the volume-adaptive variant keys on.
func bookVolume(book []domain.Order) int64 {
	var total int64
	for _, o := range book {
		switch {
		case o.FromAsset().IsBase():
			total += o.FromAmount
		case o.ToAsset().IsBase():
			total += o.ToAmount
		}
	}
	return total
}
