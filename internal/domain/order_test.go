package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buyOrder(txHash string) Order {
	return Order{
		TxHash:        txHash,
		FromAmount:    5_000_000,
		ToTokenPolicy: "policy1",
		ToTokenName:   "4d494c4b",
		ToAmount:      10_000_000,
		AttachedLvl:   2_650_000,
	}
}

func sellOrder(txHash string) Order {
	return Order{
		TxHash:          txHash,
		FromTokenPolicy: "policy1",
		FromTokenName:   "4d494c4b",
		FromAmount:      10_000_000,
		ToAmount:        5_000_000,
		AttachedLvl:     2_650_000,
	}
}

func TestOrderSide_Buy(t *testing.T) {
	side, err := buyOrder("tx1").Side()
	require.NoError(t, err)
	assert.Equal(t, SideBuy, side)
}

func TestOrderSide_Sell(t *testing.T) {
	side, err := sellOrder("tx1").Side()
	require.NoError(t, err)
	assert.Equal(t, SideSell, side)
}

func TestOrderSide_UnknownPair(t *testing.T) {
	o := Order{
		TxHash:          "tx1",
		FromTokenPolicy: "policyA",
		FromTokenName:   "aa",
		ToTokenPolicy:   "policyB",
		ToTokenName:     "bb",
	}
	_, err := o.Side()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownOrderType)
}

func TestOrderPrice_BuyAndSell(t *testing.T) {
	// buy: 5 ADA for 10 tokens => 0.5 ADA each => 500000 at 6 decimals
	price, err := buyOrder("tx1").Price(6)
	require.NoError(t, err)
	assert.Equal(t, int64(500_000), price)

	// sell: 10 tokens for 5 ADA => same implied price
	price, err = sellOrder("tx2").Price(6)
	require.NoError(t, err)
	assert.Equal(t, int64(500_000), price)
}

func TestOrderPrice_ZeroAmount(t *testing.T) {
	o := buyOrder("tx1")
	o.ToAmount = 0
	_, err := o.Price(6)
	assert.Error(t, err)
}

func TestParseScaled_RoundTrip(t *testing.T) {
	v, err := ParseScaled("1.234567", 6)
	require.NoError(t, err)
	assert.Equal(t, int64(1_234_567), v)
	assert.Equal(t, "1.234567", FormatScaled(v, 6))
}

func TestParseScaled_Table(t *testing.T) {
	cases := []struct {
		in       string
		decimals int
		want     int64
	}{
		{"0", 6, 0},
		{"1", 6, 1_000_000},
		{"0.5", 6, 500_000},
		{".5", 6, 500_000},
		{"1.2345678", 6, 1_234_568}, // excess digit rounds to nearest
		{"1.2345674", 6, 1_234_567},
		{"-0.25", 6, -250_000},
		{"42", 0, 42},
	}
	for _, tc := range cases {
		got, err := ParseScaled(tc.in, tc.decimals)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseScaled_Invalid(t *testing.T) {
	for _, in := range []string{"", "1.2.3", "abc"} {
		_, err := ParseScaled(in, 6)
		assert.Error(t, err, "input %q", in)
	}
}

func TestTrackingState_Heal(t *testing.T) {
	var st TrackingState
	st.Heal()
	require.NotNil(t, st.BuyOrders)
	require.NotNil(t, st.SellOrders)
	require.NotNil(t, st.CanceledOrders)
	assert.Equal(t, 0, st.OpenCount(SideBuy))
	assert.Equal(t, 0, st.OpenCount(SideSell))
}

func TestValue_AssetAmount(t *testing.T) {
	asset := AssetID{PolicyID: "p", Name: "n"}
	v := AssetValue(1_000_000, asset, 250)
	assert.Equal(t, int64(1_000_000), v.AssetAmount(BaseAsset))
	assert.Equal(t, int64(250), v.AssetAmount(asset))
	assert.Equal(t, int64(0), v.AssetAmount(AssetID{PolicyID: "x", Name: "y"}))
}
