package repository

import (
	"fmt"

	"github.com/hippocampus-web3/thorchain-indexer/internal/memo"
	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
	"gorm.io/gorm"
)

// Store bundles the typed repositories and adapts them to the read surface
// the parsers consult and the apply/cursor surface the indexing loop drives.
type Store struct {
	Listings      *NodeListingRepo
	Requests      *WhitelistRequestRepo
	Messages      *ChatMessageRepo
	Cursors       *IndexerStateRepo
	Subscriptions *SubscriptionRepo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Listings:      NewNodeListingRepo(db),
		Requests:      NewWhitelistRequestRepo(db),
		Messages:      NewChatMessageRepo(db),
		Cursors:       NewIndexerStateRepo(db),
		Subscriptions: NewSubscriptionRepo(db),
	}
}

// FindListing implements memo.Store.
func (s *Store) FindListing(nodeAddress string) (*model.NodeListing, error) {
	return s.Listings.FindByNodeAddress(nodeAddress)
}

// FindWhitelistRequest implements memo.Store.
func (s *Store) FindWhitelistRequest(nodeAddress, userAddress string) (*model.WhitelistRequest, error) {
	return s.Requests.FindByNodeAndUser(nodeAddress, userAddress)
}

// FindSubscriptionByCode implements memo.Store.
func (s *Store) FindSubscriptionByCode(code string) (*model.Subscription, error) {
	return s.Subscriptions.FindByCode(code)
}

// LastProcessedHeight returns the cursor for a source.
func (s *Store) LastProcessedHeight(address string) (int64, error) {
	return s.Cursors.LastProcessedHeight(address)
}

// AdvanceCursor moves a source cursor up to height.
func (s *Store) AdvanceCursor(address string, height int64) error {
	return s.Cursors.Advance(address, height)
}

// Apply persists a parse result through the repository owning its entity.
func (s *Store) Apply(result *memo.Result) error {
	switch {
	case result.Listing != nil:
		return s.Listings.Save(result.Listing)
	case result.Request != nil:
		return s.Requests.Save(result.Request)
	case result.Message != nil:
		return s.Messages.Create(result.Message)
	case result.Subscription != nil:
		return s.Subscriptions.Save(result.Subscription)
	default:
		return fmt.Errorf("empty parse result")
	}
}
