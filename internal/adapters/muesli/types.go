package muesli

import (
	"encoding/json"
	"fmt"

	"github.com/mvelasco/mueslibot/internal/domain"
)

// wireToken mirrors the API's nested token identity shape.
type wireToken struct {
	Address struct {
		PolicyID string `json:"policyId"`
		Name     string `json:"name"`
	} `json:"address"`
}

// wireOrder is the order object returned by the orders, order-book and
// open-positions endpoints. Amounts arrive as either numbers or decimal
// strings depending on the endpoint, so everything is a json.Number.
type wireOrder struct {
	TxHash      string      `json:"txHash"`
	OutputIdx   json.Number `json:"outputIdx"`
	FromToken   wireToken   `json:"fromToken"`
	ToToken     wireToken   `json:"toToken"`
	FromAmount  json.Number `json:"fromAmount"`
	ToAmount    json.Number `json:"toAmount"`
	AttachedLvl json.Number `json:"attachedLvl"`
	PlacedAt    json.Number `json:"placedAt"`
	FinalizedAt json.Number `json:"finalizedAt"`
}

// toDomain maps a wire order into the domain record. Malformed numeric
// fields make the whole order invalid; the caller logs and skips it.
func (w wireOrder) toDomain() (domain.Order, error) {
	if w.TxHash == "" {
		return domain.Order{}, fmt.Errorf("muesli: order without txHash")
	}

	order := domain.Order{
		TxHash:          w.TxHash,
		FromTokenPolicy: w.FromToken.Address.PolicyID,
		FromTokenName:   w.FromToken.Address.Name,
		ToTokenPolicy:   w.ToToken.Address.PolicyID,
		ToTokenName:     w.ToToken.Address.Name,
	}

	var err error
	if order.OutputIdx, err = numToInt(w.OutputIdx, false); err != nil {
		return domain.Order{}, fmt.Errorf("muesli: order %s: outputIdx: %w", w.TxHash, err)
	}
	if order.FromAmount, err = numToInt(w.FromAmount, false); err != nil {
		return domain.Order{}, fmt.Errorf("muesli: order %s: fromAmount: %w", w.TxHash, err)
	}
	if order.ToAmount, err = numToInt(w.ToAmount, false); err != nil {
		return domain.Order{}, fmt.Errorf("muesli: order %s: toAmount: %w", w.TxHash, err)
	}
	if order.AttachedLvl, err = numToInt(w.AttachedLvl, false); err != nil {
		return domain.Order{}, fmt.Errorf("muesli: order %s: attachedLvl: %w", w.TxHash, err)
	}
	// Timestamps are optional.
	if order.PlacedAt, err = numToInt(w.PlacedAt, true); err != nil {
		return domain.Order{}, fmt.Errorf("muesli: order %s: placedAt: %w", w.TxHash, err)
	}
	if order.FinalizedAt, err = numToInt(w.FinalizedAt, true); err != nil {
		return domain.Order{}, fmt.Errorf("muesli: order %s: finalizedAt: %w", w.TxHash, err)
	}
	return order, nil
}

func numToInt(n json.Number, optional bool) (int64, error) {
	if n == "" || n == "null" {
		if optional {
			return 0, nil
		}
		return 0, fmt.Errorf("missing value")
	}
	v, err := n.Int64()
	if err != nil {
		return 0, err
	}
	return v, nil
}

// mapOrders converts wire orders, skipping (and logging) malformed entries.
func mapOrders(wires []wireOrder, logSkip func(txHash string, err error)) []domain.Order {
	orders := make([]domain.Order, 0, len(wires))
	for _, w := range wires {
		order, err := w.toDomain()
		if err != nil {
			logSkip(w.TxHash, err)
			continue
		}
		orders = append(orders, order)
	}
	return orders
}
