package strategy

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvelasco/mueslibot/config"
	"github.com/mvelasco/mueslibot/internal/domain"
)

const testPolicy = "8a1cfae21368b8bebbbed9800fec304e95cce39a2a57dc35e2e3ebaa"

func testCfg() config.StrategyConfig {
	return config.StrategyConfig{
		Name:                  "standard",
		NOrders:               3,
		Delta:                 0.01,
		OrderRefreshThreshold: 0.05,
		HistorySize:           16,
		MinDelta:              0.005,
		MaxDelta:              0.04,
		VolScale:              10,
		VolumeHighMult:        2,
		VolumeLowMult:         0.5,
		VolumeHighFactor:      1.5,
		VolumeLowFactor:       0.75,
		TrendWindow:           4,
		TrendBand:             0.002,
		TrendMultiplier:       2,
	}
}

type fakePlacer struct {
	seq      int
	placeErr error
	placed   []int64
	canceled []string
}

func (f *fakePlacer) order(side domain.OrderSide, amount, price int64) domain.Order {
	f.seq++
	o := domain.Order{TxHash: fmt.Sprintf("tx-%d", f.seq), AttachedLvl: 2_650_000}
	pay := amount * price / 1_000_000
	if side == domain.SideBuy {
		o.FromAmount = pay
		o.ToTokenPolicy, o.ToTokenName = testPolicy, "4d494c4b"
		o.ToAmount = amount
	} else {
		o.FromTokenPolicy, o.FromTokenName = testPolicy, "4d494c4b"
		o.FromAmount = amount
		o.ToAmount = pay
	}
	return o
}

func (f *fakePlacer) PlaceBuyOrder(_ context.Context, utxos []domain.UTxO, amount, price int64) (domain.Order, []domain.UTxO, error) {
	if f.placeErr != nil {
		return domain.Order{}, utxos, f.placeErr
	}
	f.placed = append(f.placed, price)
	return f.order(domain.SideBuy, amount, price), utxos, nil
}

func (f *fakePlacer) PlaceSellOrder(_ context.Context, utxos []domain.UTxO, amount, price int64) (domain.Order, []domain.UTxO, error) {
	if f.placeErr != nil {
		return domain.Order{}, utxos, f.placeErr
	}
	f.placed = append(f.placed, price)
	return f.order(domain.SideSell, amount, price), utxos, nil
}

func (f *fakePlacer) CancelOrder(_ context.Context, utxos []domain.UTxO, order domain.Order) (domain.CancelRecord, []domain.UTxO, error) {
	f.seq++
	f.canceled = append(f.canceled, order.TxHash)
	return domain.CancelRecord{CancelTxHash: fmt.Sprintf("cancel-%d", f.seq), Order: order}, utxos, nil
}

func testCycle(placer *fakePlacer, mid int64) *Cycle {
	return &Cycle{
		TokenKey:     "MILK",
		Amount:       1_000_000,
		BaseDecimals: 6,
		Quote:        domain.PriceQuote{Price: mid},
		State:        domain.NewTrackingState(),
		Placer:       placer,
		Persist:      func(domain.TrackingState) error { return nil },
	}
}

func TestNew_AllVariants(t *testing.T) {
	for _, name := range []string{"standard", "aggressive", "volume_adaptive", "trend_following"} {
		cfg := testCfg()
		cfg.Name = name
		s, err := New(cfg)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
	}

	cfg := testCfg()
	cfg.Name = "martingale"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestStandard_Ladder(t *testing.T) {
	s := newStandard(testCfg())

	p := s.CalculateOrderPrices(1_000_000)

	assert.Equal(t, []int64{990_000, 980_000, 970_000}, p.Buys)
	assert.Equal(t, []int64{1_010_000, 1_020_000, 1_030_000}, p.Sells)
}

func TestOverRefreshThreshold(t *testing.T) {
	assert.True(t, overRefreshThreshold(1_000_000, 970_000, 0.02))
	assert.False(t, overRefreshThreshold(1_000_000, 990_000, 0.02))
	assert.False(t, overRefreshThreshold(1_000_000, 980_000, 0.02)) // exactly at threshold
	assert.False(t, overRefreshThreshold(0, 990_000, 0.02))
}

func TestExecute_PlacesFullLadder(t *testing.T) {
	placer := &fakePlacer{}
	s := newStandard(testCfg())
	c := testCycle(placer, 1_000_000)

	res, err := s.Execute(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Placed)
	assert.Equal(t, 0, res.Canceled)
	assert.Len(t, c.State.BuyOrders, 3)
	assert.Len(t, c.State.SellOrders, 3)
	// Interleaved: innermost buy first, then innermost sell.
	assert.Equal(t, []int64{990_000, 1_010_000, 980_000, 1_020_000, 970_000, 1_030_000}, placer.placed)
}

func TestExecute_RespectsOrderBudget(t *testing.T) {
	placer := &fakePlacer{}
	s := newStandard(testCfg())
	c := testCycle(placer, 1_000_000)
	for i := 0; i < 3; i++ {
		o := placer.order(domain.SideBuy, 1_000_000, 990_000)
		c.State.BuyOrders[o.TxHash] = o
	}

	res, err := s.Execute(context.Background(), c)
	require.NoError(t, err)

	// Buy side already full, only sells go out.
	assert.Equal(t, 3, res.Placed)
	assert.Len(t, c.State.BuyOrders, 3)
	assert.Len(t, c.State.SellOrders, 3)
}

func TestExecute_SkipsLevelsPastThreshold(t *testing.T) {
	cfg := testCfg()
	cfg.OrderRefreshThreshold = 0.02
	placer := &fakePlacer{}
	s := newStandard(cfg)
	c := testCycle(placer, 1_000_000)

	res, err := s.Execute(context.Background(), c)
	require.NoError(t, err)

	// The third level sits 3% out, past the 2% threshold on both sides.
	assert.Equal(t, 4, res.Placed)
	assert.NotContains(t, placer.placed, int64(970_000))
	assert.NotContains(t, placer.placed, int64(1_030_000))
}

func TestExecute_CancelsDriftedOrders(t *testing.T) {
	placer := &fakePlacer{}
	s := newStandard(testCfg())
	c := testCycle(placer, 1_000_000)

	drifted := placer.order(domain.SideBuy, 1_000_000, 900_000) // 10% off mid
	fresh := placer.order(domain.SideBuy, 1_000_000, 990_000)
	c.State.BuyOrders[drifted.TxHash] = drifted
	c.State.BuyOrders[fresh.TxHash] = fresh

	res, err := s.Execute(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Canceled)
	assert.Equal(t, []string{drifted.TxHash}, placer.canceled)
	assert.NotContains(t, c.State.BuyOrders, drifted.TxHash)
	assert.Contains(t, c.State.CanceledOrders, drifted.TxHash)
	assert.Contains(t, c.State.BuyOrders, fresh.TxHash)
}

func TestExecute_InsufficientFundsIsNotFatal(t *testing.T) {
	placer := &fakePlacer{placeErr: domain.ErrInsufficientFunds}
	s := newStandard(testCfg())
	c := testCycle(placer, 1_000_000)

	res, err := s.Execute(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Placed)
}

func TestExecute_NoMidFails(t *testing.T) {
	s := newStandard(testCfg())
	_, err := s.Execute(context.Background(), testCycle(&fakePlacer{}, 0))
	assert.Error(t, err)
}

func TestAggressive_WidensWithVolatility(t *testing.T) {
	s := newAggressive(testCfg())
	quiet := s.CalculateOrderPrices(1_000_000)

	// Feed a choppy price series.
	for _, p := range []int64{1_000_000, 1_050_000, 960_000, 1_040_000, 950_000} {
		s.observe(domain.PriceQuote{Price: p}, 0)
	}
	choppy := s.CalculateOrderPrices(1_000_000)

	assert.Less(t, choppy.Buys[0], quiet.Buys[0])
	assert.Greater(t, choppy.Sells[0], quiet.Sells[0])
}

func TestAggressive_ClampsDelta(t *testing.T) {
	cfg := testCfg()
	cfg.MaxDelta = 0.012
	s := newAggressive(cfg)
	for _, p := range []int64{1_000_000, 1_500_000, 700_000, 1_400_000} {
		s.observe(domain.PriceQuote{Price: p}, 0)
	}

	p := s.CalculateOrderPrices(1_000_000)

	// Even with wild volatility the first level stays at max_delta.
	assert.Equal(t, int64(988_000), p.Buys[0])
	assert.Equal(t, int64(1_012_000), p.Sells[0])
}

func TestVolumeAdaptive_Factors(t *testing.T) {
	s := newVolumeAdaptive(testCfg())
	for i := 0; i < 4; i++ {
		s.observe(domain.PriceQuote{Price: 1_000_000}, 100)
	}

	// Spike to 3x the trailing average widens the ladder.
	s.observe(domain.PriceQuote{Price: 1_000_000}, 300)
	wide := s.CalculateOrderPrices(1_000_000)
	assert.Equal(t, int64(985_000), wide.Buys[0]) // 0.01 * 1.5

	// Collapse below half tightens it.
	s2 := newVolumeAdaptive(testCfg())
	for i := 0; i < 4; i++ {
		s2.observe(domain.PriceQuote{Price: 1_000_000}, 100)
	}
	s2.observe(domain.PriceQuote{Price: 1_000_000}, 10)
	tight := s2.CalculateOrderPrices(1_000_000)
	assert.Equal(t, int64(992_500), tight.Buys[0]) // 0.01 * 0.75
}

func TestTrendFollowing_SkewsLadder(t *testing.T) {
	s := newTrendFollowing(testCfg())
	for _, p := range []int64{1_000_000, 1_000_000, 1_000_000, 1_000_000} {
		s.observe(domain.PriceQuote{Price: p}, 0)
	}

	// Mid well above the moving average: tight buys, wide sells.
	up := s.CalculateOrderPrices(1_050_000)
	assert.Equal(t, int64(1_044_750), up.Buys[0])  // delta/2
	assert.Equal(t, int64(1_071_000), up.Sells[0]) // delta*2

	// Mid well below: the skew flips.
	down := s.CalculateOrderPrices(950_000)
	assert.Equal(t, int64(931_000), down.Buys[0])
	assert.Equal(t, int64(954_750), down.Sells[0])
}

func TestBookVolume(t *testing.T) {
	book := []domain.Order{
		{FromAmount: 5_000_000, ToTokenPolicy: testPolicy, ToTokenName: "aa", ToAmount: 1},
		{FromTokenPolicy: testPolicy, FromTokenName: "aa", FromAmount: 1, ToAmount: 3_000_000},
	}
	assert.Equal(t, int64(8_000_000), bookVolume(book))
}
