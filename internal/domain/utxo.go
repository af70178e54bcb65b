package domain

import "errors"

// ErrInsufficientFunds is returned when the available UTXO set cannot cover
// a requested amount. It is an expected condition: callers skip the decision
// and retry on a later cycle, they never treat it as fatal.
var ErrInsufficientFunds = errors.New("insufficient funds in utxo set")

// OutputRef points at one transaction output on the ledger.
type OutputRef struct {
	TxHash string `json:"txHash"`
	Index  int64  `json:"index"`
}

// Value is an amount of the base unit plus any native assets.
type Value struct {
	Coin   int64             `json:"coin"`
	Assets map[AssetID]int64 `json:"assets,omitempty"`
}

// NewValue returns a base-unit-only value.
func NewValue(coin int64) Value {
	return Value{Coin: coin}
}

// AssetValue returns a value carrying coin plus one native asset.
func AssetValue(coin int64, asset AssetID, amount int64) Value {
	return Value{Coin: coin, Assets: map[AssetID]int64{asset: amount}}
}

// AssetAmount returns the held amount of one asset (the coin for the base
// unit).
func (v Value) AssetAmount(a AssetID) int64 {
	if a.IsBase() {
		return v.Coin
	}
	return v.Assets[a]
}

// UTxO is an unspent transaction output: the atomic unit of spendable value.
type UTxO struct {
	Ref   OutputRef `json:"ref"`
	Value Value     `json:"value"`
}

// TxOut is a planned transaction output.
type TxOut struct {
	Address   string `json:"address"`
	Value     Value  `json:"value"`
	DatumHash string `json:"datumHash,omitempty"`
}

// ScriptInput spends a script-locked output, supplying the witness data the
// validator needs. Datum must hash to the datum hash of the locked output or
// the ledger rejects the spend.
type ScriptInput struct {
	Ref      OutputRef `json:"ref"`
	Value    Value     `json:"value"`
	Datum    []byte    `json:"datum"`
	Redeemer []byte    `json:"redeemer"`
	Script   []byte    `json:"script"`
}

// TxPlan is everything the external ledger client needs to build, sign and
// submit one exchange transaction.
type TxPlan struct {
	Inputs         []UTxO         `json:"inputs"`
	ScriptInput    *ScriptInput   `json:"scriptInput,omitempty"`
	Outputs        []TxOut        `json:"outputs"`
	Datums         [][]byte       `json:"datums,omitempty"`
	Metadata       map[uint64]any `json:"metadata,omitempty"`
	RequiredSigner string         `json:"requiredSigner,omitempty"`
	ChangeAddress  string         `json:"changeAddress"`
}
