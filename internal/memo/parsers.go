package memo

import (
	"time"

	"github.com/hippocampus-web3/thorchain-indexer/internal/midgard"
	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
	"github.com/hippocampus-web3/thorchain-indexer/internal/registry"
	"github.com/hippocampus-web3/thorchain-indexer/internal/thornode"
)

// Registry is the authoritative node registry snapshot a parser validates
// against.
type Registry interface {
	FindNode(address string) (*thornode.Node, error)
	BondInfo(nodeAddress, userAddress string) (registry.BondInfo, error)
}

// Store is the read side of persisted state a parser consults to decide
// merge-vs-insert. A nil row with a nil error means not found.
type Store interface {
	FindListing(nodeAddress string) (*model.NodeListing, error)
	FindWhitelistRequest(nodeAddress, userAddress string) (*model.WhitelistRequest, error)
	FindSubscriptionByCode(code string) (*model.Subscription, error)
}

// Result is the typed outcome of a successful parse: exactly one field is
// set, and the row is ready to be upserted by its natural key.
type Result struct {
	Listing      *model.NodeListing
	Request      *model.WhitelistRequest
	Message      *model.ChatMessage
	Subscription *model.Subscription
}

// ParseFunc validates one feed action and produces the row to persist.
// Re-running against the same stored state yields the same row.
type ParseFunc func(action midgard.Action) (*Result, error)

// Parsers holds one parser per memo grammar family.
type Parsers struct {
	registry             Registry
	store                Store
	minUserMessageAmount int64
	now                  func() time.Time
}

func NewParsers(reg Registry, store Store, minUserMessageAmount int64) *Parsers {
	return &Parsers{
		registry:             reg,
		store:                store,
		minUserMessageAmount: minUserMessageAmount,
		now:                  time.Now,
	}
}

// Get resolves a configured parser name.
func (p *Parsers) Get(name string) (ParseFunc, bool) {
	switch name {
	case "nodeListing":
		return p.parseNodeListing, true
	case "nodeListingV2":
		return p.parseNodeListingV2, true
	case "nodeDelist":
		return p.parseNodeDelist, true
	case "whitelistRequest":
		return p.parseWhitelistRequest, true
	case "chatMessage":
		return p.parseChatMessage, true
	case "subscription":
		return p.parseSubscription, true
	default:
		return nil, false
	}
}
