package muesli

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/mvelasco/mueslibot/internal/domain"
)

// priceResponse is the raw quote: decimal strings plus the quote's scale.
type priceResponse struct {
	QuoteDecimalPlaces *int    `json:"quoteDecimalPlaces"`
	AskPrice           *string `json:"askPrice"`
	BidPrice           *string `json:"bidPrice"`
	Price              *string `json:"price"`
}

// FetchPrice implements ports.PriceProvider. All prices are scaled by
// 10^quoteDecimalPlaces and rounded to the nearest integer; a missing
// required field is a hard error for this fetch.
func (c *Client) FetchPrice(ctx context.Context, token domain.AssetID) (domain.PriceQuote, error) {
	q := url.Values{}
	q.Set("base-policy-id", domain.BaseAsset.PolicyID)
	q.Set("base-tokenname", domain.BaseAsset.Name)
	q.Set("quote-policy-id", token.PolicyID)
	q.Set("quote-tokenname", token.Name)

	var resp priceResponse
	if err := c.get(ctx, c.priceLimiter, c.apiBase+pricePath+"?"+q.Encode(), &resp); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("muesli.FetchPrice: %w", err)
	}

	quote, err := processPrice(resp)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("muesli.FetchPrice: %w", err)
	}
	slog.Debug("muesli: fetched price", "token", token.String(), "mid", quote.Price, "spread", quote.Spread)
	return quote, nil
}

func processPrice(resp priceResponse) (domain.PriceQuote, error) {
	if resp.QuoteDecimalPlaces == nil {
		return domain.PriceQuote{}, fmt.Errorf("missing key in response: quoteDecimalPlaces")
	}
	if resp.AskPrice == nil {
		return domain.PriceQuote{}, fmt.Errorf("missing key in response: askPrice")
	}
	if resp.BidPrice == nil {
		return domain.PriceQuote{}, fmt.Errorf("missing key in response: bidPrice")
	}
	if resp.Price == nil {
		return domain.PriceQuote{}, fmt.Errorf("missing key in response: price")
	}

	decimals := *resp.QuoteDecimalPlaces
	ask, err := domain.ParseScaled(*resp.AskPrice, decimals)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("askPrice: %w", err)
	}
	bid, err := domain.ParseScaled(*resp.BidPrice, decimals)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("bidPrice: %w", err)
	}
	mid, err := domain.ParseScaled(*resp.Price, decimals)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("price: %w", err)
	}

	return domain.PriceQuote{
		AskPrice: ask,
		BidPrice: bid,
		Price:    mid,
		Spread:   ask - bid,
	}, nil
}
