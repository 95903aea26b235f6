package registry

import (
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
	"github.com/hippocampus-web3/thorchain-indexer/internal/metrics"
	"github.com/hippocampus-web3/thorchain-indexer/internal/thornode"
)

// Per-key freshness windows. The registry is slow and rate limited; parsing
// needs a consistent-enough snapshot, not real-time accuracy.
const (
	nodesTTL       = 30 * time.Second
	heightTTL      = 3 * time.Second
	minimumBondTTL = 10 * time.Minute
	bondInfoTTL    = 30 * time.Second

	staleSuffix = "!stale"
)

// Client is the upstream registry surface the cache wraps.
type Client interface {
	Nodes() ([]thornode.Node, error)
	Node(address string) (*thornode.Node, error)
	LastBlockHeight() (int64, error)
	MinimumBond() (int64, error)
}

// BondInfo is a user's bond position on a node.
type BondInfo struct {
	Bond           int64
	IsBondProvider bool
}

// Cache is a TTL cache over the registry client. Safe for concurrent
// readers; upstream fetches are serialized so a burst of misses cannot
// stampede the registry. On a failed refetch the last good value is served
// when one exists.
type Cache struct {
	client Client
	cache  *gocache.Cache
	mu     sync.Mutex // serializes upstream fetches
}

func NewCache(client Client) *Cache {
	return &Cache{
		client: client,
		cache:  gocache.New(gocache.NoExpiration, time.Minute),
	}
}

// Nodes returns the registry node list.
func (c *Cache) Nodes() ([]thornode.Node, error) {
	value, err := c.get("nodes", nodesTTL, func() (interface{}, error) {
		return c.client.Nodes()
	})
	if err != nil {
		return nil, err
	}
	return value.([]thornode.Node), nil
}

// FindNode looks an address up in the cached node list.
func (c *Cache) FindNode(address string) (*thornode.Node, error) {
	nodes, err := c.Nodes()
	if err != nil {
		return nil, err
	}
	for i := range nodes {
		if nodes[i].NodeAddress == address {
			return &nodes[i], nil
		}
	}
	return nil, nil
}

// BondInfo returns the user's bond position on a node, cached per pair.
func (c *Cache) BondInfo(nodeAddress, userAddress string) (BondInfo, error) {
	key := fmt.Sprintf("bond:%s:%s", nodeAddress, userAddress)
	value, err := c.get(key, bondInfoTTL, func() (interface{}, error) {
		node, err := c.client.Node(nodeAddress)
		if err != nil {
			return nil, err
		}
		info := BondInfo{}
		for _, provider := range node.BondProviders.Providers {
			if provider.BondAddress == userAddress {
				info.IsBondProvider = true
				info.Bond = provider.BondAmount()
				break
			}
		}
		return info, nil
	})
	if err != nil {
		return BondInfo{}, err
	}
	return value.(BondInfo), nil
}

// BlockHeight returns the current chain height.
func (c *Cache) BlockHeight() (int64, error) {
	value, err := c.get("blockHeight", heightTTL, func() (interface{}, error) {
		return c.client.LastBlockHeight()
	})
	if err != nil {
		return 0, err
	}
	return value.(int64), nil
}

// MinimumBond returns the minimum-bond policy value.
func (c *Cache) MinimumBond() (int64, error) {
	value, err := c.get("minimumBond", minimumBondTTL, func() (interface{}, error) {
		return c.client.MinimumBond()
	})
	if err != nil {
		return 0, err
	}
	return value.(int64), nil
}

// Invalidate drops every cached value, stale copies included.
func (c *Cache) Invalidate() {
	c.cache.Flush()
	logger.Info("Registry cache invalidated")
}

func (c *Cache) get(key string, ttl time.Duration, fetch func() (interface{}, error)) (interface{}, error) {
	if value, found := c.cache.Get(key); found {
		metrics.RegistryCacheHits.Inc()
		return value, nil
	}
	metrics.RegistryCacheMisses.Inc()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have refreshed the key while we waited.
	if value, found := c.cache.Get(key); found {
		return value, nil
	}

	value, err := fetch()
	if err != nil {
		if stale, found := c.cache.Get(key + staleSuffix); found {
			logger.Warn("Registry fetch failed for key %s, serving stale value: %v", key, err)
			metrics.RegistryStaleServed.Inc()
			return stale, nil
		}
		return nil, err
	}

	c.cache.Set(key, value, ttl)
	c.cache.Set(key+staleSuffix, value, gocache.NoExpiration)
	return value, nil
}
