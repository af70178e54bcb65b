package strategy

import (
	"context"

	"github.com/mvelasco/mueslibot/config"
)

// volumeAdaptive keys the ladder width on order book activity. Volume well
// above the trailing average widens the spread (more flow, more adverse
// selection), volume well below it tightens to stay competitive for the
// little flow there is.
type volumeAdaptive struct {
	marketState
	cfg config.StrategyConfig
}

func newVolumeAdaptive(cfg config.StrategyConfig) *volumeAdaptive {
	return &volumeAdaptive{marketState: newMarketState(cfg.HistorySize), cfg: cfg}
}

func (s *volumeAdaptive) Name() string { return "volume_adaptive" }

func (s *volumeAdaptive) CalculateOrderPrices(mid int64) Prices {
	delta := s.cfg.Delta
	if avg := s.trailingAvgVolume(); avg > 0 {
		cur := float64(s.lastVolume())
		switch {
		case cur > avg*s.cfg.VolumeHighMult:
			delta *= s.cfg.VolumeHighFactor
		case cur < avg*s.cfg.VolumeLowMult:
			delta *= s.cfg.VolumeLowFactor
		}
	}
	return ladder(mid, delta, delta, s.cfg.NOrders)
}

func (s *volumeAdaptive) Execute(ctx context.Context, c *Cycle) (Result, error) {
	return execute(ctx, s, &s.marketState, s.cfg, c)
}
