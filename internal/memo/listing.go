package memo

import (
	"github.com/hippocampus-web3/thorchain-indexer/internal/midgard"
	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
)

// parseNodeListing handles v1 listings: TB:LIST:node:operator:min:max:feeBps.
// The operator is caller-supplied, so it must match the sending address and
// the registry's (node, operator) pair before a row is created.
func (p *Parsers) parseNodeListing(action midgard.Action) (*Result, error) {
	parts := Tokenize(action.Memo())
	if len(parts) != 7 {
		return nil, Rejectf(ReasonFormat, "invalid memo format for node listing: %s", action.Memo())
	}

	nodeAddress := parts[2]
	operatorAddress := parts[3]

	if operatorAddress == "" || operatorAddress != action.SenderAddress() {
		return nil, Rejectf(ReasonImpersonation, "impersonated node operator %s for node %s", operatorAddress, nodeAddress)
	}

	minBond, err := ParseBaseAmount(parts[4])
	if err != nil {
		return nil, err
	}
	maxBond, err := ParseBaseAmount(parts[5])
	if err != nil {
		return nil, err
	}
	feeBps, err := ParseBaseAmount(parts[6])
	if err != nil {
		return nil, err
	}

	if maxBond < minBond {
		return nil, Rejectf(ReasonBoundViolation, "maxBond (%d) must be greater than or equal to minBond (%d)", maxBond, minBond)
	}
	if feeBps > MaxFeeBps {
		return nil, Rejectf(ReasonBoundViolation, "feePercentageBps (%d) must be between 0 and %d", feeBps, MaxFeeBps)
	}

	existing, err := p.store.FindListing(nodeAddress)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.OperatorAddress = operatorAddress
		existing.MinBond = minBond
		existing.MaxBond = &maxBond
		existing.FeePercentageBps = feeBps
		existing.IsDelisted = false
		existing.TxId = action.TxID()
		existing.Height = action.Height
		existing.Timestamp = action.Timestamp()
		return &Result{Listing: existing}, nil
	}

	// First listing for this node: the registry must confirm the pair.
	node, err := p.registry.FindNode(nodeAddress)
	if err != nil {
		return nil, err
	}
	if node == nil || node.NodeOperatorAddress != operatorAddress {
		return nil, Rejectf(ReasonOperatorMismatch, "node and node operator mismatch %s %s", nodeAddress, operatorAddress)
	}

	return &Result{Listing: &model.NodeListing{
		NodeAddress:      nodeAddress,
		OperatorAddress:  operatorAddress,
		MinBond:          minBond,
		MaxBond:          &maxBond,
		FeePercentageBps: feeBps,
		TxId:             action.TxID(),
		Height:           action.Height,
		Timestamp:        action.Timestamp(),
	}}, nil
}

// parseNodeListingV2 handles v2 listings: TB:V2:LIST:node:min:target:feeBps.
// The operator is never taken from the memo; it is resolved from the
// registry and the sender must be that operator.
func (p *Parsers) parseNodeListingV2(action midgard.Action) (*Result, error) {
	parts := Tokenize(action.Memo())
	if len(parts) != 7 {
		return nil, Rejectf(ReasonFormat, "invalid memo format for node listing v2: %s", action.Memo())
	}

	nodeAddress := parts[3]

	node, err := p.registry.FindNode(nodeAddress)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, Rejectf(ReasonNodeNotFound, "node %s is not registered", nodeAddress)
	}
	if action.SenderAddress() != node.NodeOperatorAddress {
		return nil, Rejectf(ReasonOnlyOperator, "only the node operator can list node %s", nodeAddress)
	}

	minBond, err := ParseBaseAmount(parts[4])
	if err != nil {
		return nil, err
	}
	targetTotalBond, err := ParseBaseAmount(parts[5])
	if err != nil {
		return nil, err
	}
	feeBps, err := ParseBaseAmount(parts[6])
	if err != nil {
		return nil, err
	}

	if targetTotalBond < minBond {
		return nil, Rejectf(ReasonBoundViolation, "targetTotalBond (%d) must be greater than or equal to minBond (%d)", targetTotalBond, minBond)
	}
	if feeBps > MaxFeeBps {
		return nil, Rejectf(ReasonBoundViolation, "feePercentageBps (%d) must be between 0 and %d", feeBps, MaxFeeBps)
	}

	existing, err := p.store.FindListing(nodeAddress)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		// Re-listing a delisted node brings it back.
		existing.OperatorAddress = node.NodeOperatorAddress
		existing.MinBond = minBond
		existing.TargetTotalBond = &targetTotalBond
		existing.FeePercentageBps = feeBps
		existing.IsDelisted = false
		existing.TxId = action.TxID()
		existing.Height = action.Height
		existing.Timestamp = action.Timestamp()
		return &Result{Listing: existing}, nil
	}

	return &Result{Listing: &model.NodeListing{
		NodeAddress:      nodeAddress,
		OperatorAddress:  node.NodeOperatorAddress,
		MinBond:          minBond,
		TargetTotalBond:  &targetTotalBond,
		FeePercentageBps: feeBps,
		TxId:             action.TxID(),
		Height:           action.Height,
		Timestamp:        action.Timestamp(),
	}}, nil
}

// parseNodeDelist handles TB:DELIST:node. The row is flagged, never removed,
// so whitelist requests and chat history keep their reference.
func (p *Parsers) parseNodeDelist(action midgard.Action) (*Result, error) {
	parts := Tokenize(action.Memo())
	if len(parts) != 3 {
		return nil, Rejectf(ReasonFormat, "invalid memo format for node delist: %s", action.Memo())
	}

	nodeAddress := parts[2]

	node, err := p.registry.FindNode(nodeAddress)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, Rejectf(ReasonNodeNotFound, "node %s is not registered", nodeAddress)
	}
	if action.SenderAddress() != node.NodeOperatorAddress {
		return nil, Rejectf(ReasonOnlyOperator, "only the node operator can delist node %s", nodeAddress)
	}

	existing, err := p.store.FindListing(nodeAddress)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, Rejectf(ReasonNotListed, "node %s is not listed", nodeAddress)
	}

	existing.IsDelisted = true
	existing.TxId = action.TxID()
	existing.Height = action.Height
	existing.Timestamp = action.Timestamp()

	return &Result{Listing: existing}, nil
}
