// Package txbuilder turns trading decisions into transaction plans for the
// order book contract: placing buys and sells and cancelling open orders.
// Fee balancing and signing happen behind the chain boundary; this package
// owns value arithmetic, coin selection, datums and metadata.
package txbuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/mvelasco/mueslibot/config"
	"github.com/mvelasco/mueslibot/internal/domain"
	"github.com/mvelasco/mueslibot/internal/ports"
)

// Builder plans order transactions for one token pair.
type Builder struct {
	chain        ports.ChainContext
	token        config.TokenInfo
	contract     string
	script       []byte
	fee          int64
	deposit      int64
	allowPartial bool
}

// New creates a Builder for one token. script is the raw validator bytes the
// cancel path needs as witness.
func New(chain ports.ChainContext, token config.TokenInfo, ex config.ExchangeConfig, script []byte) *Builder {
	return &Builder{
		chain:        chain,
		token:        token,
		contract:     ex.ContractAddress,
		script:       script,
		fee:          ex.MatchmakingFee,
		deposit:      ex.Deposit,
		allowPartial: ex.AllowPartial,
	}
}

func (b *Builder) tokenAsset() domain.AssetID {
	return domain.AssetID{PolicyID: b.token.PolicyID, Name: b.token.Hexname}
}

func (b *Builder) tokenPair() assetPair {
	return assetPair{Policy: b.token.PolicyID, Name: b.token.Hexname}
}

// PlaceBuyOrder locks lovelace asking for amount token units at the given
// scaled price. It returns the tracked order and the UTXOs left unspent.
func (b *Builder) PlaceBuyOrder(ctx context.Context, utxos []domain.UTxO, amount, price int64) (domain.Order, []domain.UTxO, error) {
	pay := amount / domain.Pow10(b.token.Decimals) * price
	if pay <= 0 {
		return domain.Order{}, utxos, fmt.Errorf("txbuilder.PlaceBuyOrder: non-positive payment for amount %d at price %d", amount, price)
	}
	attached := b.fee + b.deposit
	lock := pay + attached

	inputs, remaining, err := selectLovelace(utxos, lock)
	if err != nil {
		return domain.Order{}, utxos, fmt.Errorf("txbuilder.PlaceBuyOrder: %w", err)
	}

	buy, sell := b.tokenPair(), assetPair{}
	datum, err := orderDatum(b.token.PaymentKeyHash, b.token.StakingKeyHash, buy, sell, amount, b.allowPartial, attached)
	if err != nil {
		return domain.Order{}, utxos, fmt.Errorf("txbuilder.PlaceBuyOrder: %w", err)
	}

	plan := domain.TxPlan{
		Inputs: inputs,
		Outputs: []domain.TxOut{{
			Address:   b.contract,
			Value:     domain.NewValue(lock),
			DatumHash: datumHash(datum),
		}},
		Datums:        [][]byte{datum},
		Metadata:      placeOrderMetadata(b.token.PaymentKeyHash, buy, sell, amount, attached, b.allowPartial),
		ChangeAddress: b.token.Address,
	}

	txHash, err := b.chain.Submit(ctx, plan)
	if err != nil {
		return domain.Order{}, utxos, fmt.Errorf("txbuilder.PlaceBuyOrder: submit: %w", err)
	}

	order := domain.Order{
		TxHash:        txHash,
		OutputIdx:     0,
		FromAmount:    pay,
		ToTokenPolicy: b.token.PolicyID,
		ToTokenName:   b.token.Hexname,
		ToAmount:      amount,
		AttachedLvl:   attached,
		PlacedAt:      time.Now().Unix(),
	}
	return order, remaining, nil
}

// PlaceSellOrder locks amount token units asking for lovelace at the given
// scaled price. The matchmaker keeps its fee out of the proceeds, so the
// datum asks for the net amount while the tracked order records the gross.
func (b *Builder) PlaceSellOrder(ctx context.Context, utxos []domain.UTxO, amount, price int64) (domain.Order, []domain.UTxO, error) {
	ask := amount/domain.Pow10(b.token.Decimals)*price - b.fee
	if ask <= 0 {
		return domain.Order{}, utxos, fmt.Errorf("txbuilder.PlaceSellOrder: proceeds below matchmaking fee for amount %d at price %d", amount, price)
	}
	attached := b.fee + b.deposit

	inputs, remaining, err := selectMultiAsset(utxos, attached, b.tokenAsset(), amount)
	if err != nil {
		return domain.Order{}, utxos, fmt.Errorf("txbuilder.PlaceSellOrder: %w", err)
	}

	buy, sell := assetPair{}, b.tokenPair()
	datum, err := orderDatum(b.token.PaymentKeyHash, b.token.StakingKeyHash, buy, sell, ask, b.allowPartial, attached)
	if err != nil {
		return domain.Order{}, utxos, fmt.Errorf("txbuilder.PlaceSellOrder: %w", err)
	}

	plan := domain.TxPlan{
		Inputs: inputs,
		Outputs: []domain.TxOut{{
			Address:   b.contract,
			Value:     domain.AssetValue(attached, b.tokenAsset(), amount),
			DatumHash: datumHash(datum),
		}},
		Datums:        [][]byte{datum},
		Metadata:      placeOrderMetadata(b.token.PaymentKeyHash, buy, sell, ask, attached, b.allowPartial),
		ChangeAddress: b.token.Address,
	}

	txHash, err := b.chain.Submit(ctx, plan)
	if err != nil {
		return domain.Order{}, utxos, fmt.Errorf("txbuilder.PlaceSellOrder: submit: %w", err)
	}

	order := domain.Order{
		TxHash:          txHash,
		OutputIdx:       0,
		FromTokenPolicy: b.token.PolicyID,
		FromTokenName:   b.token.Hexname,
		FromAmount:      amount,
		ToAmount:        ask + b.fee,
		AttachedLvl:     attached,
		PlacedAt:        time.Now().Unix(),
	}
	return order, remaining, nil
}

// CancelOrder spends an open order back to its creator. The datum must be
// rebuilt byte for byte or the script input hash will not match the locked
// output.
func (b *Builder) CancelOrder(ctx context.Context, utxos []domain.UTxO, order domain.Order) (domain.CancelRecord, []domain.UTxO, error) {
	side, err := order.Side()
	if err != nil {
		return domain.CancelRecord{}, utxos, fmt.Errorf("txbuilder.CancelOrder: %w", err)
	}

	var locked domain.Value
	buyAmount := order.ToAmount
	if side == domain.SideBuy {
		locked = domain.NewValue(order.FromAmount + order.AttachedLvl)
	} else {
		locked = domain.AssetValue(order.AttachedLvl, order.FromAsset(), order.FromAmount)
		// A sell datum asks for the proceeds net of the matchmaking fee.
		buyAmount = order.ToAmount - b.fee
	}

	buy := assetPair{Policy: order.ToTokenPolicy, Name: order.ToTokenName}
	sell := assetPair{Policy: order.FromTokenPolicy, Name: order.FromTokenName}
	datum, err := orderDatum(b.token.PaymentKeyHash, b.token.StakingKeyHash, buy, sell, buyAmount, b.allowPartial, order.AttachedLvl)
	if err != nil {
		return domain.CancelRecord{}, utxos, fmt.Errorf("txbuilder.CancelOrder: %w", err)
	}
	redeemer, err := cancelRedeemer()
	if err != nil {
		return domain.CancelRecord{}, utxos, fmt.Errorf("txbuilder.CancelOrder: %w", err)
	}

	inputs, remaining, err := selectLovelace(utxos, b.deposit)
	if err != nil {
		return domain.CancelRecord{}, utxos, fmt.Errorf("txbuilder.CancelOrder: %w", err)
	}

	plan := domain.TxPlan{
		Inputs: inputs,
		ScriptInput: &domain.ScriptInput{
			Ref:      domain.OutputRef{TxHash: order.TxHash, Index: order.OutputIdx},
			Value:    locked,
			Datum:    datum,
			Redeemer: redeemer,
			Script:   b.script,
		},
		Outputs: []domain.TxOut{{
			Address: b.token.Address,
			Value:   locked,
		}},
		Metadata:       cancelOrderMetadata(),
		RequiredSigner: b.token.PaymentKeyHash,
		ChangeAddress:  b.token.Address,
	}

	txHash, err := b.chain.Submit(ctx, plan)
	if err != nil {
		return domain.CancelRecord{}, utxos, fmt.Errorf("txbuilder.CancelOrder: submit: %w", err)
	}

	order.FinalizedAt = time.Now().Unix()
	return domain.CancelRecord{CancelTxHash: txHash, Order: order}, remaining, nil
}
