package muesli

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/mvelasco/mueslibot/internal/domain"
	"github.com/mvelasco/mueslibot/internal/ports"
)

// FetchOrders implements ports.OrderProvider. The orders endpoint takes the
// stake key hash plus y/n flags for each status; exactly one is enabled per
// call.
func (c *Client) FetchOrders(ctx context.Context, stakeKeyHash string, status ports.OrderStatus) ([]domain.Order, error) {
	q := url.Values{}
	q.Set("stake-key-hash", stakeKeyHash)
	q.Set("open", yn(status == ports.OrdersOpen))
	q.Set("matched", yn(status == ports.OrdersMatched))
	q.Set("canceled", yn(status == ports.OrdersCanceled))
	q.Set("v2_only", "n")

	var wires []wireOrder
	if err := c.get(ctx, c.limiter, c.apiBase+ordersPath+"?"+q.Encode(), &wires); err != nil {
		return nil, fmt.Errorf("muesli.FetchOrders(%s): %w", status, err)
	}

	orders := mapOrders(wires, func(txHash string, err error) {
		slog.Warn("muesli: skipping malformed order", "txHash", txHash, "status", status, "err", err)
	})
	slog.Debug("muesli: fetched orders", "status", status, "count", len(orders))
	return orders, nil
}

// FetchOpenPositions implements ports.OrderProvider.
func (c *Client) FetchOpenPositions(ctx context.Context, stakeKeyHash, walletHex string) ([]domain.Order, error) {
	q := url.Values{}
	q.Set("skh", stakeKeyHash)
	q.Set("wallet", walletHex)

	var resp struct {
		Orders []wireOrder `json:"orders"`
	}
	if err := c.get(ctx, c.limiter, c.apiBase+openPositionsPath+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("muesli.FetchOpenPositions: %w", err)
	}

	return mapOrders(resp.Orders, func(txHash string, err error) {
		slog.Warn("muesli: skipping malformed position", "txHash", txHash, "err", err)
	}), nil
}

func yn(b bool) string {
	if b {
		return "y"
	}
	return "n"
}
