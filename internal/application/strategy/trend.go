package strategy

import (
	"context"

	"github.com/mvelasco/mueslibot/config"
)

// trendFollowing skews the ladder along the prevailing trend. The mid is
// compared to its moving average with a dead band around it: in an uptrend
// the buy side quotes tight and the sell side wide (accumulate, sell
// reluctantly), in a downtrend the reverse. Sideways quotes symmetric.
type trendFollowing struct {
	marketState
	cfg config.StrategyConfig
}

func newTrendFollowing(cfg config.StrategyConfig) *trendFollowing {
	return &trendFollowing{marketState: newMarketState(cfg.HistorySize), cfg: cfg}
}

func (s *trendFollowing) Name() string { return "trend_following" }

func (s *trendFollowing) CalculateOrderPrices(mid int64) Prices {
	buyDelta, sellDelta := s.cfg.Delta, s.cfg.Delta
	if sma := s.sma(s.cfg.TrendWindow); sma > 0 {
		switch {
		case float64(mid) > sma*(1+s.cfg.TrendBand):
			buyDelta = s.cfg.Delta / s.cfg.TrendMultiplier
			sellDelta = s.cfg.Delta * s.cfg.TrendMultiplier
		case float64(mid) < sma*(1-s.cfg.TrendBand):
			buyDelta = s.cfg.Delta * s.cfg.TrendMultiplier
			sellDelta = s.cfg.Delta / s.cfg.TrendMultiplier
		}
	}
	return ladder(mid, buyDelta, sellDelta, s.cfg.NOrders)
}

func (s *trendFollowing) Execute(ctx context.Context, c *Cycle) (Result, error) {
	return execute(ctx, s, &s.marketState, s.cfg, c)
}
