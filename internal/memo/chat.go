package memo

import (
	"encoding/base64"

	"github.com/hippocampus-web3/thorchain-indexer/internal/midgard"
	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
)

// parseChatMessage handles TB:MSG:node:base64message. The sender's role is
// derived from the registry snapshot and frozen into the row; messages from
// plain users are payment-gated.
func (p *Parsers) parseChatMessage(action midgard.Action) (*Result, error) {
	parts := Tokenize(action.Memo())
	if len(parts) != 4 {
		return nil, Rejectf(ReasonFormat, "invalid memo format for chat message: %s", action.Memo())
	}

	nodeAddress := parts[2]

	sender := action.SenderAddress()
	if sender == "" {
		return nil, Rejectf(ReasonFormat, "no sender address found in transaction %s", action.TxID())
	}

	listing, err := p.store.FindListing(nodeAddress)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, Rejectf(ReasonNodeNotFound, "node %s does not exist", nodeAddress)
	}

	node, err := p.registry.FindNode(nodeAddress)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, Rejectf(ReasonNodeNotFound, "could not fetch node %s details from registry", nodeAddress)
	}

	role := model.RoleUser
	if sender == node.NodeOperatorAddress {
		role = model.RoleNodeOperator
	} else {
		for _, provider := range node.BondProviders.Providers {
			if provider.BondAddress == sender && provider.BondAmount() > 0 {
				role = model.RoleBondProvider
				break
			}
		}
	}

	if role == model.RoleUser {
		if err := CheckTransactionAmount(action, p.minUserMessageAmount); err != nil {
			return nil, err
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, Rejectf(ReasonFormat, "invalid base64 message in transaction %s", action.TxID())
	}

	message := SanitizeText(string(decoded))
	if message == "" {
		return nil, Rejectf(ReasonFormat, "empty message in transaction %s", action.TxID())
	}

	return &Result{Message: &model.ChatMessage{
		NodeAddress: nodeAddress,
		UserAddress: sender,
		Role:        role,
		Message:     message,
		TxId:        action.TxID(),
		Height:      action.Height,
		Timestamp:   action.Timestamp(),
	}}, nil
}
