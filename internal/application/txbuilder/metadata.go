package txbuilder

// Transaction metadata labels read by the exchange aggregator. The numeric
// labels mirror the order book's indexing scheme; 674 is the standard
// message label.
const (
	labelMessage      = 674
	labelCreator      = 1000
	labelBuyCurrency  = 1002
	labelBuyToken     = 1003
	labelBuyAmount    = 1004
	labelAttached     = 1005
	labelAllowPartial = 1007
	labelSellCurrency = 1008
	labelSellToken    = 1009
)

// placeOrderMetadata mirrors the datum so off-chain indexers can follow the
// order without decoding Plutus data.
func placeOrderMetadata(pkh string, buy, sell assetPair, buyAmount, attached int64, allowPartial bool) map[uint64]any {
	partial := "0"
	if allowPartial {
		partial = "1"
	}
	return map[uint64]any{
		labelMessage:      map[string]any{"msg": []string{"MuesliSwap Place Order"}},
		labelCreator:      "0x" + pkh,
		labelBuyCurrency:  buy.Policy,
		labelBuyToken:     buy.Name,
		labelBuyAmount:    buyAmount,
		labelAttached:     attached,
		labelAllowPartial: partial,
		labelSellCurrency: sell.Policy,
		labelSellToken:    sell.Name,
	}
}

func cancelOrderMetadata() map[uint64]any {
	return map[uint64]any{
		labelMessage: map[string]any{"msg": []string{"MuesliSwap Cancel Order"}},
	}
}
