package muesli

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/mvelasco/mueslibot/internal/domain"
)

// FetchOrderBook implements ports.OrderBookProvider. Queries the book for
// orders offering `from` and asking `to`. An absent orders key is an empty
// book, not an error.
func (c *Client) FetchOrderBook(ctx context.Context, from, to domain.AssetID) ([]domain.Order, error) {
	q := url.Values{}
	q.Set("from-policy-id", from.PolicyID)
	q.Set("from-tokenname", from.Name)
	q.Set("to-policy-id", to.PolicyID)
	q.Set("to-tokenname", to.Name)

	var resp struct {
		Orders []wireOrder `json:"orders"`
	}
	if err := c.get(ctx, c.limiter, c.apiBase+orderBookPath+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("muesli.FetchOrderBook: %w", err)
	}

	return mapOrders(resp.Orders, func(txHash string, err error) {
		slog.Warn("muesli: skipping malformed book order", "txHash", txHash, "err", err)
	}), nil
}
