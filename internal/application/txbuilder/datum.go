package txbuilder

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// constr encodes a Plutus Data constructor: alternatives 0-6 map to CBOR
// tags 121-127, alternative 7 and up to the 1280 range. Fields become a
// definite-length array, matching what the ledger expects as witness data.
func constr(id uint64, fields ...any) cbor.Tag {
	tag := 121 + id
	if id >= 7 {
		tag = 1280 + id - 7
	}
	if fields == nil {
		fields = []any{}
	}
	return cbor.Tag{Number: tag, Content: fields}
}

// orderDatum builds the order book v2 datum. The creator is an address with
// a payment key hash and a staking key hash, both hex-encoded; buy is the
// side the order asks for, sell the side it offers. attached is the lovelace
// riding on the order on top of the traded value (matchmaking fee plus
// deposit).
func orderDatum(pkh, skh string, buy, sell assetPair, buyAmount int64, allowPartial bool, attached int64) ([]byte, error) {
	pkhBytes, err := hex.DecodeString(pkh)
	if err != nil {
		return nil, fmt.Errorf("txbuilder.orderDatum: payment key hash: %w", err)
	}
	skhBytes, err := hex.DecodeString(skh)
	if err != nil {
		return nil, fmt.Errorf("txbuilder.orderDatum: staking key hash: %w", err)
	}
	buyPolicy, buyName, err := buy.bytes()
	if err != nil {
		return nil, fmt.Errorf("txbuilder.orderDatum: buy side: %w", err)
	}
	sellPolicy, sellName, err := sell.bytes()
	if err != nil {
		return nil, fmt.Errorf("txbuilder.orderDatum: sell side: %w", err)
	}

	creator := constr(0,
		constr(0, pkhBytes),
		constr(0, constr(0, constr(0, skhBytes))),
	)

	partialID := uint64(0)
	if allowPartial {
		partialID = 1
	}

	datum := constr(0,
		creator,
		buyPolicy, buyName,
		sellPolicy, sellName,
		buyAmount,
		constr(partialID),
		attached,
	)

	data, err := cbor.Marshal(datum)
	if err != nil {
		return nil, fmt.Errorf("txbuilder.orderDatum: encode: %w", err)
	}
	return data, nil
}

// cancelRedeemer is the witness for spending an order back to its creator.
func cancelRedeemer() ([]byte, error) {
	data, err := cbor.Marshal(constr(0))
	if err != nil {
		return nil, fmt.Errorf("txbuilder.cancelRedeemer: encode: %w", err)
	}
	return data, nil
}

// datumHash returns the hex blake2b-256 hash the contract output commits to.
func datumHash(datum []byte) string {
	sum := blake2b.Sum256(datum)
	return hex.EncodeToString(sum[:])
}

// assetPair is one side of an order as raw hex policy and name. The base
// unit is the empty pair.
type assetPair struct {
	Policy string
	Name   string
}

func (p assetPair) bytes() ([]byte, []byte, error) {
	policy, err := hex.DecodeString(p.Policy)
	if err != nil {
		return nil, nil, fmt.Errorf("policy %q: %w", p.Policy, err)
	}
	name, err := hex.DecodeString(p.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("name %q: %w", p.Name, err)
	}
	return policy, name, nil
}
