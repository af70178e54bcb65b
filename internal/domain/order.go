package domain

import (
	"errors"
	"fmt"
)

// OrderSide is the side of an order relative to the base unit.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// ErrUnknownOrderType is returned when an order matches neither side of the
// base pair so the bot cannot classify it as a buy or a sell.
var ErrUnknownOrderType = errors.New("order matches neither side of the base pair")

// Order is one limit order on the exchange, identified by the hash of the
// transaction that placed it. Orders are immutable once placed except for
// TxHeight, which is resolved lazily from the chain (0 = unknown).
//
// JSON tags match the on-disk order-tracking format, where orders are stored
// as a mapping from txHash to this record.
type Order struct {
	TxHash          string `json:"-"`
	OutputIdx       int64  `json:"outputIdx"`
	FromTokenPolicy string `json:"fromTokenPolicy"`
	FromTokenName   string `json:"fromTokenHexname"`
	FromAmount      int64  `json:"fromAmount"`
	ToTokenPolicy   string `json:"toTokenPolicy"`
	ToTokenName     string `json:"toTokenHexname"`
	ToAmount        int64  `json:"toAmount"`
	AttachedLvl     int64  `json:"attachedLvl"`
	PlacedAt        int64  `json:"placedAt,omitempty"`
	FinalizedAt     int64  `json:"finalizedAt,omitempty"`
	TxHeight        int64  `json:"tx_height,omitempty"`
}

// FromAsset is the asset the order offers.
func (o Order) FromAsset() AssetID {
	return AssetID{PolicyID: o.FromTokenPolicy, Name: o.FromTokenName}
}

// ToAsset is the asset the order asks for.
func (o Order) ToAsset() AssetID {
	return AssetID{PolicyID: o.ToTokenPolicy, Name: o.ToTokenName}
}

// Side classifies the order: a buy offers the base unit, a sell asks for it.
func (o Order) Side() (OrderSide, error) {
	switch {
	case o.FromAsset().IsBase():
		return SideBuy, nil
	case o.ToAsset().IsBase():
		return SideSell, nil
	default:
		return "", fmt.Errorf("domain.Order %s: %w (%s -> %s)",
			o.TxHash, ErrUnknownOrderType, o.FromAsset(), o.ToAsset())
	}
}

// Price returns the implied price of the order in base units scaled by
// 10^baseDecimals, truncated toward zero.
func (o Order) Price(baseDecimals int) (int64, error) {
	side, err := o.Side()
	if err != nil {
		return 0, err
	}
	scale := Pow10(baseDecimals)
	switch side {
	case SideBuy:
		if o.ToAmount == 0 {
			return 0, fmt.Errorf("domain.Order %s: zero toAmount", o.TxHash)
		}
		return o.FromAmount * scale / o.ToAmount, nil
	default:
		if o.FromAmount == 0 {
			return 0, fmt.Errorf("domain.Order %s: zero fromAmount", o.TxHash)
		}
		return o.ToAmount * scale / o.FromAmount, nil
	}
}

// CancelRecord is the result of a successful cancellation: the spent order
// plus the hash of the transaction that canceled it.
type CancelRecord struct {
	CancelTxHash string `json:"cancel_txHash"`
	Order        Order  `json:"order"`
}
