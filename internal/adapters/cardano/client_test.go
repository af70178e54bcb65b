package cardano

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvelasco/mueslibot/internal/domain"
)

const testPolicy = "8a1cfae21368b8bebbbed9800fec304e95cce39a2a57dc35e2e3ebaa"

func TestUtxos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-project", r.Header.Get("project_id"))
		w.Write([]byte(`[
			{"tx_hash": "aa", "output_index": 0, "amount": [
				{"unit": "lovelace", "quantity": "5000000"}
			]},
			{"tx_hash": "bb", "output_index": 1, "amount": [
				{"unit": "lovelace", "quantity": "1500000"},
				{"unit": "` + testPolicy + `4d494c4b", "quantity": "2000000"}
			]}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-project", "", false)
	utxos, err := c.Utxos(context.Background(), "addr1")
	require.NoError(t, err)

	require.Len(t, utxos, 2)
	assert.Equal(t, int64(5_000_000), utxos[0].Value.Coin)
	assert.Equal(t, domain.OutputRef{TxHash: "bb", Index: 1}, utxos[1].Ref)
	asset := domain.AssetID{PolicyID: testPolicy, Name: "4d494c4b"}
	assert.Equal(t, int64(2_000_000), utxos[1].Value.AssetAmount(asset))
}

func TestUtxos_SkipsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"tx_hash": "aa", "output_index": 0, "amount": [{"unit": "short", "quantity": "1"}]},
			{"tx_hash": "bb", "output_index": 0, "amount": [{"unit": "lovelace", "quantity": "1000000"}]}
		]`))
	}))
	defer srv.Close()

	utxos, err := NewClient(srv.URL, "", "", false).Utxos(context.Background(), "addr1")
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, "bb", utxos[0].Ref.TxHash)
}

func TestBlockHeights(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/blocks/latest":
			w.Write([]byte(`{"height": 123456}`))
		case strings.HasPrefix(r.URL.Path, "/txs/"):
			w.Write([]byte(`{"block_height": 123400}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", false)

	tip, err := c.CurrentBlockHeight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(123456), tip)

	at, err := c.TxBlockHeight(context.Background(), "aa11")
	require.NoError(t, err)
	assert.Equal(t, int64(123400), at)
}

func TestTxBlockHeight_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", "", false).TxBlockHeight(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSubmit_DryRun(t *testing.T) {
	c := NewClient("http://unused", "", "", true)

	hash, err := c.Submit(context.Background(), domain.TxPlan{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "dryrun-"))

	// Every dry-run hash is unique.
	other, err := c.Submit(context.Background(), domain.TxPlan{})
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestSubmit_Signer(t *testing.T) {
	var gotPlan domain.TxPlan
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tx", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPlan))
		w.Write([]byte(`{"txHash": "deadbeef"}`))
	}))
	defer srv.Close()

	c := NewClient("http://unused", "", srv.URL, false)
	plan := domain.TxPlan{
		Outputs:       []domain.TxOut{{Address: "addr1c", Value: domain.NewValue(5_000_000)}},
		ChangeAddress: "addr1w",
	}

	hash, err := c.Submit(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", hash)
	assert.Equal(t, plan.ChangeAddress, gotPlan.ChangeAddress)
	require.Len(t, gotPlan.Outputs, 1)
	assert.Equal(t, int64(5_000_000), gotPlan.Outputs[0].Value.Coin)
}

func TestSubmit_SignerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "script evaluation failed", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient("http://unused", "", srv.URL, false).Submit(context.Background(), domain.TxPlan{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script evaluation failed")
}
