package midgard

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippocampus-web3/thorchain-indexer/internal/config"
)

func TestActionAccessors(t *testing.T) {
	action := Action{
		Height: 23456789,
		Date:   "1700000000123456789",
		Metadata: Metadata{
			Send: Send{Memo: "TB:LIST:a:b:1:2:3"},
		},
		In: []Tx{{
			Address: "thor1sender",
			TxID:    "ABCDEF",
			Coins: []Coin{
				{Asset: "BTC.BTC", Amount: "1"},
				{Asset: "THOR.RUNE", Amount: "100000000"},
			},
		}},
	}

	assert.Equal(t, "TB:LIST:a:b:1:2:3", action.Memo())
	assert.Equal(t, "thor1sender", action.SenderAddress())
	assert.Equal(t, "ABCDEF", action.TxID())
	assert.Equal(t, int64(1700000000123456789), action.DateNanos())
	assert.Equal(t, time.UnixMilli(1700000000123).UTC(), action.Timestamp())
	assert.Equal(t, int64(100000000), action.BaseAssetAmount("THOR.RUNE"))
	assert.Equal(t, int64(0), action.BaseAssetAmount("ETH.ETH"))
}

func TestActionAccessorsEmptyInbound(t *testing.T) {
	var action Action
	assert.Equal(t, "", action.SenderAddress())
	assert.Equal(t, "", action.TxID())
	assert.Equal(t, int64(0), action.BaseAssetAmount("THOR.RUNE"))
	assert.Equal(t, int64(0), action.DateNanos())
}

func TestActions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/actions", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "thor1watch", query.Get("address"))
		assert.Equal(t, "send", query.Get("type"))
		assert.Equal(t, "600", query.Get("limit"))
		assert.Equal(t, "1000", query.Get("fromHeight"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"actions": [
				{
					"height": "1001",
					"type": "send",
					"date": "1700000000000000000",
					"status": "success",
					"metadata": {"send": {"memo": "TB:DELIST:thor1node"}},
					"in": [{"address": "thor1sender", "txID": "AA11", "coins": [{"asset": "THOR.RUNE", "amount": "2000000"}]}],
					"out": []
				}
			],
			"count": "1"
		}`))
	}))
	defer server.Close()

	client := NewClient(config.MidgardConfig{BaseUrl: server.URL})

	actions, err := client.Actions("thor1watch", 1000)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, int64(1001), actions[0].Height)
	assert.Equal(t, "TB:DELIST:thor1node", actions[0].Memo())
	assert.Equal(t, "AA11", actions[0].TxID())
}

func TestActionsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(config.MidgardConfig{BaseUrl: server.URL})

	_, err := client.Actions("thor1watch", 0)
	assert.Error(t, err)
}
