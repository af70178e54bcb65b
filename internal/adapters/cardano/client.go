// Package cardano adapts the external ledger client: Blockfrost for chain
// queries and a build/sign/submit sidecar for transactions. Key material
// never enters this process.
package cardano

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mvelasco/mueslibot/internal/domain"
)

// Blockfrost free tier allows 10 req/s with small bursts.
const blockfrostRatePerSec = 8

// Client implements ports.ChainContext.
type Client struct {
	http      *http.Client
	base      string
	projectID string
	signerURL string
	dryRun    bool
	limiter   *rate.Limiter
}

// NewClient creates a chain client. With dryRun set, Submit never touches
// the network and returns a synthetic transaction hash.
func NewClient(base, projectID, signerURL string, dryRun bool) *Client {
	return &Client{
		http:      &http.Client{Timeout: 15 * time.Second},
		base:      strings.TrimRight(base, "/"),
		projectID: projectID,
		signerURL: strings.TrimRight(signerURL, "/"),
		dryRun:    dryRun,
		limiter:   rate.NewLimiter(blockfrostRatePerSec, 5),
	}
}

// utxoResponse is Blockfrost's address UTXO shape. The unit is "lovelace"
// or the 56-char policy id concatenated with the hex token name.
type utxoResponse struct {
	TxHash      string `json:"tx_hash"`
	OutputIndex int64  `json:"output_index"`
	Amount      []struct {
		Unit     string `json:"unit"`
		Quantity string `json:"quantity"`
	} `json:"amount"`
}

// Utxos implements ports.ChainContext, following pagination to exhaustion.
func (c *Client) Utxos(ctx context.Context, address string) ([]domain.UTxO, error) {
	const pageSize = 100
	var utxos []domain.UTxO

	for page := 1; ; page++ {
		var batch []utxoResponse
		url := fmt.Sprintf("%s/addresses/%s/utxos?count=%d&page=%d", c.base, address, pageSize, page)
		if err := c.get(ctx, url, &batch); err != nil {
			return nil, fmt.Errorf("cardano.Utxos: %w", err)
		}
		for _, raw := range batch {
			utxo, err := raw.toDomain()
			if err != nil {
				slog.Warn("cardano: skipping malformed utxo", "txHash", raw.TxHash, "err", err)
				continue
			}
			utxos = append(utxos, utxo)
		}
		if len(batch) < pageSize {
			return utxos, nil
		}
	}
}

func (r utxoResponse) toDomain() (domain.UTxO, error) {
	value := domain.Value{}
	for _, amt := range r.Amount {
		qty, err := domain.ParseScaled(amt.Quantity, 0)
		if err != nil {
			return domain.UTxO{}, fmt.Errorf("quantity %q: %w", amt.Quantity, err)
		}
		if amt.Unit == "lovelace" {
			value.Coin += qty
			continue
		}
		if len(amt.Unit) < 56 {
			return domain.UTxO{}, fmt.Errorf("invalid asset unit %q", amt.Unit)
		}
		asset := domain.AssetID{PolicyID: amt.Unit[:56], Name: amt.Unit[56:]}
		if value.Assets == nil {
			value.Assets = make(map[domain.AssetID]int64)
		}
		value.Assets[asset] += qty
	}
	return domain.UTxO{
		Ref:   domain.OutputRef{TxHash: r.TxHash, Index: r.OutputIndex},
		Value: value,
	}, nil
}

// CurrentBlockHeight implements ports.ChainContext.
func (c *Client) CurrentBlockHeight(ctx context.Context) (int64, error) {
	var resp struct {
		Height int64 `json:"height"`
	}
	if err := c.get(ctx, c.base+"/blocks/latest", &resp); err != nil {
		return 0, fmt.Errorf("cardano.CurrentBlockHeight: %w", err)
	}
	return resp.Height, nil
}

// TxBlockHeight implements ports.ChainContext.
func (c *Client) TxBlockHeight(ctx context.Context, txHash string) (int64, error) {
	var resp struct {
		BlockHeight int64 `json:"block_height"`
	}
	if err := c.get(ctx, c.base+"/txs/"+txHash, &resp); err != nil {
		return 0, fmt.Errorf("cardano.TxBlockHeight(%s): %w", txHash, err)
	}
	return resp.BlockHeight, nil
}

// Submit implements ports.ChainContext. The sidecar owns the signing keys
// and the fee balancing; it answers with the submitted transaction hash.
func (c *Client) Submit(ctx context.Context, plan domain.TxPlan) (string, error) {
	if c.dryRun {
		hash := "dryrun-" + uuid.New().String()
		slog.Info("cardano: dry run, tx not submitted", "txHash", hash, "outputs", len(plan.Outputs))
		return hash, nil
	}

	body, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("cardano.Submit: marshal plan: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.signerURL+"/tx", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("cardano.Submit: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("cardano.Submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("cardano.Submit: signer error %d: %s", resp.StatusCode, string(msg))
	}

	var out struct {
		TxHash string `json:"txHash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("cardano.Submit: decode response: %w", err)
	}
	if out.TxHash == "" {
		return "", fmt.Errorf("cardano.Submit: signer returned no txHash")
	}
	return out.TxHash, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.projectID != "" {
		req.Header.Set("project_id", c.projectID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(msg))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
