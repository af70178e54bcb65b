package strategy

import (
	"context"

	"github.com/mvelasco/mueslibot/config"
)

// aggressive widens the ladder with realized volatility: the base delta is
// scaled by the stddev of recent returns and clamped to [min_delta,
// max_delta]. Calm markets quote tight, choppy markets back off.
type aggressive struct {
	marketState
	cfg config.StrategyConfig
}

func newAggressive(cfg config.StrategyConfig) *aggressive {
	return &aggressive{marketState: newMarketState(cfg.HistorySize), cfg: cfg}
}

func (s *aggressive) Name() string { return "aggressive" }

func (s *aggressive) CalculateOrderPrices(mid int64) Prices {
	delta := s.cfg.Delta * (1 + s.cfg.VolScale*s.returnStddev())
	if delta < s.cfg.MinDelta {
		delta = s.cfg.MinDelta
	}
	if delta > s.cfg.MaxDelta {
		delta = s.cfg.MaxDelta
	}
	return ladder(mid, delta, delta, s.cfg.NOrders)
}

func (s *aggressive) Execute(ctx context.Context, c *Cycle) (Result, error) {
	return execute(ctx, s, &s.marketState, s.cfg, c)
}
