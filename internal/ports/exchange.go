package ports

import (
	"context"

	"github.com/mvelasco/mueslibot/internal/domain"
)

// OrderStatus selects which orders the exchange API returns.
type OrderStatus string

const (
	OrdersOpen     OrderStatus = "open"
	OrdersMatched  OrderStatus = "matched"
	OrdersCanceled OrderStatus = "canceled"
)

// PriceProvider fetches the reference mid-price for a pair.
type PriceProvider interface {
	// FetchPrice returns the current quote for base/token, scaled to
	// integers by the quote's decimal places.
	FetchPrice(ctx context.Context, token domain.AssetID) (domain.PriceQuote, error)
}

// OrderBookProvider fetches the public order book for a pair.
type OrderBookProvider interface {
	// FetchOrderBook returns the open book orders going from -> to.
	FetchOrderBook(ctx context.Context, from, to domain.AssetID) ([]domain.Order, error)
}

// OrderProvider fetches the bot's own orders from the exchange API.
type OrderProvider interface {
	// FetchOrders returns the wallet's orders with the given status.
	FetchOrders(ctx context.Context, stakeKeyHash string, status OrderStatus) ([]domain.Order, error)

	// FetchOpenPositions returns the wallet's open positions.
	FetchOpenPositions(ctx context.Context, stakeKeyHash, walletHex string) ([]domain.Order, error)
}

// HealthChecker gates a trading cycle on the exchange being reachable.
type HealthChecker interface {
	// WaitHealthy blocks, retrying with a fixed backoff, until every
	// required endpoint answers 200 or the context is done.
	WaitHealthy(ctx context.Context) error
}
