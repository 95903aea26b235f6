package thornode

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hippocampus-web3/thorchain-indexer/internal/config"
)

// Node is a registry entry as served by THORNode.
type Node struct {
	NodeAddress         string        `json:"node_address"`
	NodeOperatorAddress string        `json:"node_operator_address"`
	Status              string        `json:"status"`
	StatusSince         int64         `json:"status_since"`
	TotalBond           string        `json:"total_bond"`
	SlashPoints         int64         `json:"slash_points"`
	RequestedToLeave    bool          `json:"requested_to_leave"`
	BondProviders       BondProviders `json:"bond_providers"`
}

type BondProviders struct {
	NodeOperatorFee string         `json:"node_operator_fee"`
	Providers       []BondProvider `json:"providers"`
}

type BondProvider struct {
	BondAddress string `json:"bond_address"`
	Bond        string `json:"bond"`
}

// BondAmount returns the provider's bond in base units, 0 if unparsable.
func (p BondProvider) BondAmount() int64 {
	n, err := strconv.ParseInt(p.Bond, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

type lastBlock struct {
	Thorchain int64 `json:"thorchain"`
}

// Client talks to the THORNode REST API.
type Client struct {
	baseUrl string
	httpc   *http.Client
}

func NewClient(cfg config.ThornodeConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseUrl: strings.TrimRight(cfg.BaseUrl, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Nodes fetches the full node registry.
func (c *Client) Nodes() ([]Node, error) {
	var nodes []Node
	if err := c.getJSON("/thorchain/nodes", &nodes); err != nil {
		return nil, fmt.Errorf("failed to fetch nodes: %w", err)
	}
	return nodes, nil
}

// Node fetches a single registry entry.
func (c *Client) Node(address string) (*Node, error) {
	var node Node
	if err := c.getJSON("/thorchain/node/"+address, &node); err != nil {
		return nil, fmt.Errorf("failed to fetch node %s: %w", address, err)
	}
	return &node, nil
}

// LastBlockHeight fetches the current THORChain block height.
func (c *Client) LastBlockHeight() (int64, error) {
	var blocks []lastBlock
	if err := c.getJSON("/thorchain/lastblock", &blocks); err != nil {
		return 0, fmt.Errorf("failed to fetch last block: %w", err)
	}
	if len(blocks) == 0 {
		return 0, fmt.Errorf("empty lastblock response")
	}
	return blocks[0].Thorchain, nil
}

// MinimumBond fetches the MINIMUMBONDINRUNE policy value in base units.
func (c *Client) MinimumBond() (int64, error) {
	body, err := c.get("/thorchain/mimir/key/MINIMUMBONDINRUNE")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch minimum bond: %w", err)
	}
	value, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid minimum bond value %q: %w", string(body), err)
	}
	return value, nil
}

func (c *Client) getJSON(path string, out interface{}) error {
	body, err := c.get(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) get(path string) ([]byte, error) {
	resp, err := c.httpc.Get(c.baseUrl + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	return io.ReadAll(resp.Body)
}
