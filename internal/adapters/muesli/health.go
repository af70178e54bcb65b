package muesli

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const healthRetryWait = 30 * time.Second

// WaitHealthy implements ports.HealthChecker. Both the API host and the
// onchain host must answer 200 before a trading cycle proceeds; failures are
// retried with a fixed backoff until the context is done.
func (c *Client) WaitHealthy(ctx context.Context) error {
	checks := map[string]string{
		"api":     c.apiBase + healthPath,
		"onchain": c.onchainBase + healthPath,
	}

	for service, url := range checks {
		for {
			ok := c.checkOnce(ctx, service, url)
			if ok {
				break
			}
			select {
			case <-time.After(healthRetryWait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

func (c *Client) checkOnce(ctx context.Context, service, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Warn("muesli: health request build failed", "service", service, "err", err)
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("muesli: health check connection error, retrying", "service", service, "err", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("muesli: health check failed, retrying", "service", service, "status", resp.StatusCode)
		return false
	}
	slog.Debug("muesli: health check ok", "service", service)
	return true
}
