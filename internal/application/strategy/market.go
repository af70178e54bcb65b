package strategy

import (
	"math"

	"github.com/mvelasco/mueslibot/internal/domain"
)

// marketState is the bounded market view the adaptive variants feed on: the
// latest mid plus rolling price and volume histories. One instance per
// token, embedded by each variant.
type marketState struct {
	mid        int64
	maxHistory int
	prices     []int64
	volumes    []int64
}

func newMarketState(historySize int) marketState {
	return marketState{maxHistory: historySize}
}

func (m *marketState) observe(quote domain.PriceQuote, volume int64) {
	m.mid = quote.Price
	m.prices = appendBounded(m.prices, quote.Price, m.maxHistory)
	m.volumes = appendBounded(m.volumes, volume, m.maxHistory)
}

func appendBounded(buf []int64, v int64, max int) []int64 {
	buf = append(buf, v)
	if len(buf) > max {
		buf = buf[len(buf)-max:]
	}
	return buf
}

// returnStddev is the standard deviation of consecutive relative price
// changes, the volatility input of the aggressive variant. Zero until two
// observations exist.
func (m *marketState) returnStddev() float64 {
	if len(m.prices) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(m.prices)-1)
	for i := 1; i < len(m.prices); i++ {
		prev := float64(m.prices[i-1])
		if prev == 0 {
			continue
		}
		returns = append(returns, (float64(m.prices[i])-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance)
}

// sma averages the most recent window prices, or everything observed when
// fewer exist. Zero with no history.
func (m *marketState) sma(window int) float64 {
	n := len(m.prices)
	if n == 0 {
		return 0
	}
	if window > n {
		window = n
	}
	var sum int64
	for _, p := range m.prices[n-window:] {
		sum += p
	}
	return float64(sum) / float64(window)
}

func (m *marketState) lastVolume() int64 {
	if len(m.volumes) == 0 {
		return 0
	}
	return m.volumes[len(m.volumes)-1]
}

// trailingAvgVolume averages the volume history excluding the latest
// observation, so a spike compares against the level before it.
func (m *marketState) trailingAvgVolume() float64 {
	n := len(m.volumes)
	if n < 2 {
		return 0
	}
	var sum int64
	for _, v := range m.volumes[:n-1] {
		sum += v
	}
	return float64(sum) / float64(n-1)
}
