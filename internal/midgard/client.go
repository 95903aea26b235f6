package midgard

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hippocampus-web3/thorchain-indexer/internal/config"
)

// Action is one transfer event from the Midgard feed.
type Action struct {
	Height   int64    `json:"height,string"`
	Type     string   `json:"type"`
	Date     string   `json:"date"` // nanoseconds since epoch, as a string
	Status   string   `json:"status"`
	Metadata Metadata `json:"metadata"`
	In       []Tx     `json:"in"`
	Out      []Tx     `json:"out"`
}

type Metadata struct {
	Send Send `json:"send"`
}

type Send struct {
	Memo string `json:"memo"`
}

type Tx struct {
	Address string `json:"address"`
	TxID    string `json:"txID"`
	Coins   []Coin `json:"coins"`
}

type Coin struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

// Memo returns the transfer's memo text.
func (a Action) Memo() string {
	return a.Metadata.Send.Memo
}

// SenderAddress returns the on-chain sending address, empty when absent.
func (a Action) SenderAddress() string {
	if len(a.In) == 0 {
		return ""
	}
	return a.In[0].Address
}

// TxID returns the inbound transaction id, empty when absent.
func (a Action) TxID() string {
	if len(a.In) == 0 {
		return ""
	}
	return a.In[0].TxID
}

// DateNanos returns the feed timestamp in nanoseconds, 0 if unparsable.
// Intra-block ordering follows this value, not the height.
func (a Action) DateNanos() int64 {
	n, err := strconv.ParseInt(a.Date, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Timestamp converts the feed timestamp to a time.Time.
func (a Action) Timestamp() time.Time {
	return time.UnixMilli(a.DateNanos() / 1e6).UTC()
}

// BaseAssetAmount returns the amount of the given asset carried by the
// inbound transfer, 0 when the asset is not present.
func (a Action) BaseAssetAmount(asset string) int64 {
	if len(a.In) == 0 {
		return 0
	}
	for _, coin := range a.In[0].Coins {
		if coin.Asset == asset {
			n, err := strconv.ParseInt(coin.Amount, 10, 64)
			if err != nil {
				return 0
			}
			return n
		}
	}
	return 0
}

type actionsResponse struct {
	Actions []Action `json:"actions"`
	Count   string   `json:"count"`
}

// Client talks to the Midgard REST API.
type Client struct {
	baseUrl string
	limit   int
	httpc   *http.Client
}

func NewClient(cfg config.MidgardConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	limit := cfg.BatchLimit
	if limit == 0 {
		limit = 600
	}
	return &Client{
		baseUrl: strings.TrimRight(cfg.BaseUrl, "/"),
		limit:   limit,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Actions fetches send actions for an address starting at fromHeight.
func (c *Client) Actions(address string, fromHeight int64) ([]Action, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("type", "send")
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("offset", "0")
	params.Set("fromHeight", strconv.FormatInt(fromHeight, 10))

	resp, err := c.httpc.Get(c.baseUrl + "/v2/actions?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch actions for %s: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching actions for %s", resp.StatusCode, address)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read actions response: %w", err)
	}

	var parsed actionsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode actions response: %w", err)
	}

	return parsed.Actions, nil
}
