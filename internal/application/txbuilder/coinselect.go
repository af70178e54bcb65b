package txbuilder

import (
	"fmt"
	"sort"

	"github.com/mvelasco/mueslibot/internal/domain"
)

// selectLovelace picks inputs covering coin, largest first so the input
// count stays small. Returns the chosen inputs and the unused remainder.
func selectLovelace(utxos []domain.UTxO, coin int64) ([]domain.UTxO, []domain.UTxO, error) {
	sorted := make([]domain.UTxO, len(utxos))
	copy(sorted, utxos)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Value.Coin > sorted[j].Value.Coin
	})

	var selected []domain.UTxO
	var total int64
	for _, u := range sorted {
		if total >= coin {
			break
		}
		selected = append(selected, u)
		total += u.Value.Coin
	}
	if total < coin {
		return nil, nil, fmt.Errorf("txbuilder.selectLovelace: need %d, have %d: %w",
			coin, total, domain.ErrInsufficientFunds)
	}
	return selected, remove(utxos, selected), nil
}

// selectMultiAsset picks inputs covering both a coin amount and an asset
// amount. Asset-bearing outputs go first so token-only needs never drain
// pure-lovelace outputs; lovelace is topped up afterwards if the asset
// inputs did not carry enough.
func selectMultiAsset(utxos []domain.UTxO, coin int64, asset domain.AssetID, amount int64) ([]domain.UTxO, []domain.UTxO, error) {
	withAsset := make([]domain.UTxO, 0, len(utxos))
	for _, u := range utxos {
		if u.Value.AssetAmount(asset) > 0 {
			withAsset = append(withAsset, u)
		}
	}
	sort.Slice(withAsset, func(i, j int) bool {
		return withAsset[i].Value.AssetAmount(asset) > withAsset[j].Value.AssetAmount(asset)
	})

	var selected []domain.UTxO
	var haveCoin, haveAsset int64
	for _, u := range withAsset {
		if haveAsset >= amount {
			break
		}
		selected = append(selected, u)
		haveCoin += u.Value.Coin
		haveAsset += u.Value.AssetAmount(asset)
	}
	if haveAsset < amount {
		return nil, nil, fmt.Errorf("txbuilder.selectMultiAsset: need %d of %s, have %d: %w",
			amount, asset, haveAsset, domain.ErrInsufficientFunds)
	}

	if haveCoin < coin {
		topUp, _, err := selectLovelace(remove(utxos, selected), coin-haveCoin)
		if err != nil {
			return nil, nil, err
		}
		selected = append(selected, topUp...)
	}
	return selected, remove(utxos, selected), nil
}

// remove returns utxos minus the used set, matched by output reference.
func remove(utxos, used []domain.UTxO) []domain.UTxO {
	spent := make(map[domain.OutputRef]struct{}, len(used))
	for _, u := range used {
		spent[u.Ref] = struct{}{}
	}
	remaining := make([]domain.UTxO, 0, len(utxos))
	for _, u := range utxos {
		if _, ok := spent[u.Ref]; !ok {
			remaining = append(remaining, u)
		}
	}
	return remaining
}
