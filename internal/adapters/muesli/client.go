package muesli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultAPIBase     = "https://api.muesliswap.com"
	defaultOnchainBase = "https://onchain.muesliswap.com"

	pricePath         = "/price"
	orderBookPath     = "/orderbook"
	ordersPath        = "/orders/v2"
	openPositionsPath = "/open-positions"
	healthPath        = "/health"

	// Conservative limits: the API is shared infrastructure and one bot
	// iteration touches several endpoints per token.
	generalRatePerSec = 10
	priceRatePerSec   = 5

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client is the MuesliSwap API HTTP client with rate limiting and retries.
type Client struct {
	http         *http.Client
	apiBase      string
	onchainBase  string
	limiter      *rate.Limiter
	priceLimiter *rate.Limiter
}

// NewClient creates a Client for the given base URLs. Empty URLs fall back
// to the production endpoints.
func NewClient(apiBase, onchainBase string) *Client {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	if onchainBase == "" {
		onchainBase = defaultOnchainBase
	}
	return &Client{
		http:         &http.Client{Timeout: 10 * time.Second},
		apiBase:      apiBase,
		onchainBase:  onchainBase,
		limiter:      rate.NewLimiter(generalRatePerSec, 10),
		priceLimiter: rate.NewLimiter(priceRatePerSec, 5),
	}
}

// get performs a GET with rate limiting and retries, decoding JSON into out.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			slog.Warn("muesli: retrying request", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep waits with exponential backoff, respecting the context.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
