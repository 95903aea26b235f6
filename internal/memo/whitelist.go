package memo

import (
	"github.com/hippocampus-web3/thorchain-indexer/internal/midgard"
	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
)

// parseWhitelistRequest handles TB:WHT:node:user:amount. A repeated request
// from the same (node, user) pair updates the existing row and resets it to
// pending rather than creating a duplicate.
func (p *Parsers) parseWhitelistRequest(action midgard.Action) (*Result, error) {
	parts := Tokenize(action.Memo())
	if len(parts) != 5 {
		return nil, Rejectf(ReasonFormat, "invalid memo format for whitelist request: %s", action.Memo())
	}

	nodeAddress := parts[2]
	userAddress := parts[3]

	if userAddress == "" || userAddress != action.SenderAddress() {
		return nil, Rejectf(ReasonImpersonation, "impersonated address %s", userAddress)
	}

	intendedBondAmount, err := ParseBaseAmount(parts[4])
	if err != nil {
		return nil, err
	}

	// The node must be listed here, not merely exist on the registry.
	listing, err := p.store.FindListing(nodeAddress)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, Rejectf(ReasonNodeNotFound, "node %s does not exist", nodeAddress)
	}

	existing, err := p.store.FindWhitelistRequest(nodeAddress, userAddress)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.IntendedBondAmount = intendedBondAmount
		existing.Status = model.WhitelistStatusPending
		existing.TxId = action.TxID()
		existing.Height = action.Height
		existing.Timestamp = action.Timestamp()
		return &Result{Request: existing}, nil
	}

	if listing.IsDelisted {
		return nil, Rejectf(ReasonNotListed, "node %s is delisted", nodeAddress)
	}

	return &Result{Request: &model.WhitelistRequest{
		NodeAddress:        nodeAddress,
		UserAddress:        userAddress,
		IntendedBondAmount: intendedBondAmount,
		Status:             model.WhitelistStatusPending,
		TxId:               action.TxID(),
		Height:             action.Height,
		Timestamp:          action.Timestamp(),
	}}, nil
}
