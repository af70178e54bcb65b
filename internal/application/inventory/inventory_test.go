package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvelasco/mueslibot/internal/domain"
)

var milk = domain.AssetID{
	PolicyID: "8a1cfae21368b8bebbbed9800fec304e95cce39a2a57dc35e2e3ebaa",
	Name:     "4d494c4b",
}

func TestCompute_WalletOnly(t *testing.T) {
	utxos := []domain.UTxO{
		{Value: domain.NewValue(10_000_000)},
		{Value: domain.AssetValue(2_000_000, milk, 5_000_000)},
	}
	quote := domain.PriceQuote{Price: 2_000_000} // 2 ADA per token

	inv := Compute(utxos, nil, quote, milk, 6)

	assert.Equal(t, int64(12_000_000), inv.Lovelace)
	assert.Equal(t, int64(5_000_000), inv.Tokens)
	// 12 ADA + 5 tokens at 2 ADA.
	assert.Equal(t, int64(22_000_000), inv.Valuation)
}

func TestCompute_OpenOrderExposure(t *testing.T) {
	open := []domain.Order{
		{ // buy: lovelace locked, plus attached
			FromAmount:    4_000_000,
			ToTokenPolicy: milk.PolicyID,
			ToTokenName:   milk.Name,
			ToAmount:      2_000_000,
			AttachedLvl:   2_650_000,
		},
		{ // sell: tokens locked, plus attached
			FromTokenPolicy: milk.PolicyID,
			FromTokenName:   milk.Name,
			FromAmount:      3_000_000,
			ToAmount:        6_000_000,
			AttachedLvl:     2_650_000,
		},
	}

	inv := Compute(nil, open, domain.PriceQuote{Price: 1_000_000}, milk, 6)

	assert.Equal(t, int64(4_000_000+2*2_650_000), inv.Lovelace)
	assert.Equal(t, int64(3_000_000), inv.Tokens)
}

type memStore struct {
	snaps map[string][]domain.InventorySnapshot
}

func newMemStore() *memStore {
	return &memStore{snaps: make(map[string][]domain.InventorySnapshot)}
}

func (m *memStore) Last(tokenKey string) (domain.InventorySnapshot, bool, error) {
	s := m.snaps[tokenKey]
	if len(s) == 0 {
		return domain.InventorySnapshot{}, false, nil
	}
	return s[0], true, nil
}

func (m *memStore) Append(tokenKey string, snap domain.InventorySnapshot) error {
	m.snaps[tokenKey] = append([]domain.InventorySnapshot{snap}, m.snaps[tokenKey]...)
	return nil
}

func TestValuator_SkipsUnchanged(t *testing.T) {
	store := newMemStore()
	v := NewValuator(store)
	utxos := []domain.UTxO{{Value: domain.NewValue(10_000_000)}}
	quote := domain.PriceQuote{Price: 1_000_000}

	_, err := v.Update("MILK", "addr1", utxos, nil, quote, milk, 6)
	require.NoError(t, err)
	_, err = v.Update("MILK", "addr1", utxos, nil, quote, milk, 6)
	require.NoError(t, err)

	assert.Len(t, store.snaps["MILK"], 1)

	// A balance change appends a second snapshot, newest first.
	utxos = append(utxos, domain.UTxO{Value: domain.NewValue(5_000_000)})
	inv, err := v.Update("MILK", "addr1", utxos, nil, quote, milk, 6)
	require.NoError(t, err)
	require.Len(t, store.snaps["MILK"], 2)
	assert.Equal(t, inv, store.snaps["MILK"][0].Inventory)
}
