package strategy

import (
	"context"
	"math"

	"github.com/mvelasco/mueslibot/config"
)

// ladder spreads levels symmetrically around mid: level i sits at
// mid·(1 − buyDelta·i) on the buy side and mid·(1 + sellDelta·i) on the
// sell side. Buys round down and sells round up, so rounding never tightens
// the spread.
func ladder(mid int64, buyDelta, sellDelta float64, n int) Prices {
	p := Prices{
		Buys:  make([]int64, 0, n),
		Sells: make([]int64, 0, n),
	}
	for i := 1; i <= n; i++ {
		p.Buys = append(p.Buys, int64(math.Floor(float64(mid)*(1-buyDelta*float64(i)))))
		p.Sells = append(p.Sells, int64(math.Ceil(float64(mid)*(1+sellDelta*float64(i)))))
	}
	return p
}

// standard places a fixed symmetric ladder around mid.
type standard struct {
	marketState
	cfg config.StrategyConfig
}

func newStandard(cfg config.StrategyConfig) *standard {
	return &standard{marketState: newMarketState(cfg.HistorySize), cfg: cfg}
}

func (s *standard) Name() string { return "standard" }

func (s *standard) CalculateOrderPrices(mid int64) Prices {
	return ladder(mid, s.cfg.Delta, s.cfg.Delta, s.cfg.NOrders)
}

func (s *standard) Execute(ctx context.Context, c *Cycle) (Result, error) {
	return execute(ctx, s, &s.marketState, s.cfg, c)
}
