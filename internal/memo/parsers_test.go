package memo

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippocampus-web3/thorchain-indexer/internal/midgard"
	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
	"github.com/hippocampus-web3/thorchain-indexer/internal/registry"
	"github.com/hippocampus-web3/thorchain-indexer/internal/thornode"
)

const (
	nodeAddr     = "thor1zhacxe8lmhu2a6nakxumsv5h8rzhauqsw74t2t"
	operatorAddr = "thor1crrv4y4ndyl9ppqvacfzfvux363v50xsstz4a8"
	userAddr     = "thor1wd59r6pn0fdaxpu2vcgjypfzr9qh34rhml07ns"
	strangerAddr = "thor1hgjgm68hrgwtvcj7rxzp0zsh9pmaar6g9kfpay"
)

type fakeRegistry struct {
	nodes map[string]*thornode.Node
}

func (f *fakeRegistry) FindNode(address string) (*thornode.Node, error) {
	return f.nodes[address], nil
}

func (f *fakeRegistry) BondInfo(nodeAddress, userAddress string) (registry.BondInfo, error) {
	node := f.nodes[nodeAddress]
	if node == nil {
		return registry.BondInfo{}, nil
	}
	for _, provider := range node.BondProviders.Providers {
		if provider.BondAddress == userAddress {
			return registry.BondInfo{Bond: provider.BondAmount(), IsBondProvider: true}, nil
		}
	}
	return registry.BondInfo{}, nil
}

type fakeStore struct {
	listings      map[string]*model.NodeListing
	requests      map[string]*model.WhitelistRequest
	subscriptions map[string]*model.Subscription
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		listings:      map[string]*model.NodeListing{},
		requests:      map[string]*model.WhitelistRequest{},
		subscriptions: map[string]*model.Subscription{},
	}
}

func (f *fakeStore) FindListing(nodeAddress string) (*model.NodeListing, error) {
	return f.listings[nodeAddress], nil
}

func (f *fakeStore) FindWhitelistRequest(nodeAddress, userAddress string) (*model.WhitelistRequest, error) {
	return f.requests[nodeAddress+"/"+userAddress], nil
}

func (f *fakeStore) FindSubscriptionByCode(code string) (*model.Subscription, error) {
	return f.subscriptions[code], nil
}

func registeredNode() *thornode.Node {
	return &thornode.Node{
		NodeAddress:         nodeAddr,
		NodeOperatorAddress: operatorAddr,
		Status:              "Active",
		BondProviders: thornode.BondProviders{
			NodeOperatorFee: "1000",
			Providers: []thornode.BondProvider{
				{BondAddress: userAddr, Bond: "500000000"},
			},
		},
	}
}

func newAction(memo, sender string) midgard.Action {
	return midgard.Action{
		Height: 1000,
		Date:   "1700000000000000000",
		Metadata: midgard.Metadata{
			Send: midgard.Send{Memo: memo},
		},
		In: []midgard.Tx{{
			Address: sender,
			TxID:    "F00D",
			Coins:   []midgard.Coin{{Asset: BaseAsset, Amount: "100000000"}},
		}},
	}
}

func newParsers(reg Registry, store Store) *Parsers {
	p := NewParsers(reg, store, 10000000)
	p.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return p
}

func TestParseNodeListing(t *testing.T) {
	reg := &fakeRegistry{nodes: map[string]*thornode.Node{nodeAddr: registeredNode()}}

	t.Run("creates a listing for a registered node", func(t *testing.T) {
		p := newParsers(reg, newFakeStore())
		action := newAction("TB:LIST:"+nodeAddr+":"+operatorAddr+":1000000:2000000:100", operatorAddr)

		result, err := p.parseNodeListing(action)
		require.NoError(t, err)
		require.NotNil(t, result.Listing)
		assert.Equal(t, nodeAddr, result.Listing.NodeAddress)
		assert.Equal(t, operatorAddr, result.Listing.OperatorAddress)
		assert.Equal(t, int64(1000000), result.Listing.MinBond)
		require.NotNil(t, result.Listing.MaxBond)
		assert.Equal(t, int64(2000000), *result.Listing.MaxBond)
		assert.Equal(t, int64(100), result.Listing.FeePercentageBps)
		assert.False(t, result.Listing.IsDelisted)
		assert.Equal(t, "F00D", result.Listing.TxId)
	})

	t.Run("rejects a malformed memo", func(t *testing.T) {
		p := newParsers(reg, newFakeStore())
		action := newAction("TB:LIST:"+nodeAddr, operatorAddr)

		_, err := p.parseNodeListing(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonFormat, rejection.Reason)
	})

	t.Run("rejects when the sender is not the claimed operator", func(t *testing.T) {
		p := newParsers(reg, newFakeStore())
		action := newAction("TB:LIST:"+nodeAddr+":"+operatorAddr+":1000000:2000000:100", strangerAddr)

		_, err := p.parseNodeListing(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonImpersonation, rejection.Reason)
	})

	t.Run("rejects a node the registry does not pair with the operator", func(t *testing.T) {
		p := newParsers(&fakeRegistry{nodes: map[string]*thornode.Node{}}, newFakeStore())
		action := newAction("TB:LIST:"+nodeAddr+":"+operatorAddr+":1000000:2000000:100", operatorAddr)

		_, err := p.parseNodeListing(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonOperatorMismatch, rejection.Reason)
	})

	t.Run("rejects maxBond below minBond", func(t *testing.T) {
		p := newParsers(reg, newFakeStore())
		action := newAction("TB:LIST:"+nodeAddr+":"+operatorAddr+":2000000:1000000:100", operatorAddr)

		_, err := p.parseNodeListing(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonBoundViolation, rejection.Reason)
	})

	t.Run("rejects a fee above the cap", func(t *testing.T) {
		p := newParsers(reg, newFakeStore())
		action := newAction("TB:LIST:"+nodeAddr+":"+operatorAddr+":1000000:2000000:10001", operatorAddr)

		_, err := p.parseNodeListing(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonBoundViolation, rejection.Reason)
	})

	t.Run("accepts a fee above 100 bps", func(t *testing.T) {
		p := newParsers(reg, newFakeStore())
		action := newAction("TB:LIST:"+nodeAddr+":"+operatorAddr+":33333333:3333330000:6666", operatorAddr)

		result, err := p.parseNodeListing(action)
		require.NoError(t, err)
		assert.Equal(t, int64(6666), result.Listing.FeePercentageBps)
	})

	t.Run("updates an existing listing in place and clears the delist flag", func(t *testing.T) {
		store := newFakeStore()
		store.listings[nodeAddr] = &model.NodeListing{
			Id:              7,
			NodeAddress:     nodeAddr,
			OperatorAddress: operatorAddr,
			MinBond:         1,
			IsDelisted:      true,
		}
		p := newParsers(reg, store)
		action := newAction("TB:LIST:"+nodeAddr+":"+operatorAddr+":33333333:3333330000:6666", operatorAddr)

		result, err := p.parseNodeListing(action)
		require.NoError(t, err)
		assert.Equal(t, int64(7), result.Listing.Id)
		assert.Equal(t, int64(33333333), result.Listing.MinBond)
		require.NotNil(t, result.Listing.MaxBond)
		assert.Equal(t, int64(3333330000), *result.Listing.MaxBond)
		assert.Equal(t, int64(6666), result.Listing.FeePercentageBps)
		assert.False(t, result.Listing.IsDelisted)
	})

	t.Run("re-parsing yields the same row", func(t *testing.T) {
		p := newParsers(reg, newFakeStore())
		action := newAction("TB:LIST:"+nodeAddr+":"+operatorAddr+":1000000:2000000:100", operatorAddr)

		first, err := p.parseNodeListing(action)
		require.NoError(t, err)
		second, err := p.parseNodeListing(action)
		require.NoError(t, err)
		assert.Equal(t, first.Listing, second.Listing)
	})
}

func TestParseNodeListingV2(t *testing.T) {
	reg := &fakeRegistry{nodes: map[string]*thornode.Node{nodeAddr: registeredNode()}}

	t.Run("creates a listing with the registry-resolved operator", func(t *testing.T) {
		p := newParsers(reg, newFakeStore())
		action := newAction("TB:V2:LIST:"+nodeAddr+":1000000:5000000:100", operatorAddr)

		result, err := p.parseNodeListingV2(action)
		require.NoError(t, err)
		require.NotNil(t, result.Listing)
		assert.Equal(t, operatorAddr, result.Listing.OperatorAddress)
		require.NotNil(t, result.Listing.TargetTotalBond)
		assert.Equal(t, int64(5000000), *result.Listing.TargetTotalBond)
		assert.Nil(t, result.Listing.MaxBond)
	})

	t.Run("rejects a sender that is not the operator", func(t *testing.T) {
		p := newParsers(reg, newFakeStore())
		action := newAction("TB:V2:LIST:"+nodeAddr+":1000000:5000000:100", strangerAddr)

		_, err := p.parseNodeListingV2(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonOnlyOperator, rejection.Reason)
	})

	t.Run("rejects an unregistered node", func(t *testing.T) {
		p := newParsers(&fakeRegistry{nodes: map[string]*thornode.Node{}}, newFakeStore())
		action := newAction("TB:V2:LIST:"+nodeAddr+":1000000:5000000:100", operatorAddr)

		_, err := p.parseNodeListingV2(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonNodeNotFound, rejection.Reason)
	})

	t.Run("rejects targetTotalBond below minBond", func(t *testing.T) {
		p := newParsers(reg, newFakeStore())
		action := newAction("TB:V2:LIST:"+nodeAddr+":5000000:1000000:100", operatorAddr)

		_, err := p.parseNodeListingV2(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonBoundViolation, rejection.Reason)
	})
}

func TestParseNodeDelist(t *testing.T) {
	reg := &fakeRegistry{nodes: map[string]*thornode.Node{nodeAddr: registeredNode()}}

	t.Run("flags a listed node as delisted", func(t *testing.T) {
		store := newFakeStore()
		store.listings[nodeAddr] = &model.NodeListing{NodeAddress: nodeAddr, OperatorAddress: operatorAddr}
		p := newParsers(reg, store)
		action := newAction("TB:DELIST:"+nodeAddr, operatorAddr)

		result, err := p.parseNodeDelist(action)
		require.NoError(t, err)
		assert.True(t, result.Listing.IsDelisted)
	})

	t.Run("rejects a sender that is not the operator", func(t *testing.T) {
		store := newFakeStore()
		store.listings[nodeAddr] = &model.NodeListing{NodeAddress: nodeAddr}
		p := newParsers(reg, store)
		action := newAction("TB:DELIST:"+nodeAddr, strangerAddr)

		_, err := p.parseNodeDelist(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonOnlyOperator, rejection.Reason)
	})

	t.Run("rejects a node that was never listed", func(t *testing.T) {
		p := newParsers(reg, newFakeStore())
		action := newAction("TB:DELIST:"+nodeAddr, operatorAddr)

		_, err := p.parseNodeDelist(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonNotListed, rejection.Reason)
	})
}

func TestParseWhitelistRequest(t *testing.T) {
	reg := &fakeRegistry{nodes: map[string]*thornode.Node{nodeAddr: registeredNode()}}

	listedStore := func() *fakeStore {
		store := newFakeStore()
		store.listings[nodeAddr] = &model.NodeListing{NodeAddress: nodeAddr, OperatorAddress: operatorAddr}
		return store
	}

	t.Run("creates a pending request", func(t *testing.T) {
		p := newParsers(reg, listedStore())
		action := newAction("TB:WHT:"+nodeAddr+":"+userAddr+":100000000", userAddr)

		result, err := p.parseWhitelistRequest(action)
		require.NoError(t, err)
		require.NotNil(t, result.Request)
		assert.Equal(t, model.WhitelistStatusPending, result.Request.Status)
		assert.Equal(t, int64(100000000), result.Request.IntendedBondAmount)
		assert.Equal(t, userAddr, result.Request.UserAddress)
	})

	t.Run("rejects when the sender is not the claimed user", func(t *testing.T) {
		p := newParsers(reg, listedStore())
		action := newAction("TB:WHT:"+nodeAddr+":"+userAddr+":100000000", strangerAddr)

		_, err := p.parseWhitelistRequest(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonImpersonation, rejection.Reason)
	})

	t.Run("rejects an unlisted node", func(t *testing.T) {
		p := newParsers(reg, newFakeStore())
		action := newAction("TB:WHT:"+nodeAddr+":"+userAddr+":100000000", userAddr)

		_, err := p.parseWhitelistRequest(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonNodeNotFound, rejection.Reason)
	})

	t.Run("rejects a new request against a delisted node", func(t *testing.T) {
		store := newFakeStore()
		store.listings[nodeAddr] = &model.NodeListing{NodeAddress: nodeAddr, IsDelisted: true}
		p := newParsers(reg, store)
		action := newAction("TB:WHT:"+nodeAddr+":"+userAddr+":100000000", userAddr)

		_, err := p.parseWhitelistRequest(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonNotListed, rejection.Reason)
	})

	t.Run("a repeated request resets the existing row to pending", func(t *testing.T) {
		store := listedStore()
		store.requests[nodeAddr+"/"+userAddr] = &model.WhitelistRequest{
			Id:                 3,
			NodeAddress:        nodeAddr,
			UserAddress:        userAddr,
			IntendedBondAmount: 1,
			Status:             model.WhitelistStatusRejected,
		}
		p := newParsers(reg, store)
		action := newAction("TB:WHT:"+nodeAddr+":"+userAddr+":200000000", userAddr)

		result, err := p.parseWhitelistRequest(action)
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Request.Id)
		assert.Equal(t, model.WhitelistStatusPending, result.Request.Status)
		assert.Equal(t, int64(200000000), result.Request.IntendedBondAmount)
	})
}

func TestParseChatMessage(t *testing.T) {
	reg := &fakeRegistry{nodes: map[string]*thornode.Node{nodeAddr: registeredNode()}}

	listedStore := func() *fakeStore {
		store := newFakeStore()
		store.listings[nodeAddr] = &model.NodeListing{NodeAddress: nodeAddr, OperatorAddress: operatorAddr}
		return store
	}

	encode := func(text string) string {
		return base64.StdEncoding.EncodeToString([]byte(text))
	}

	t.Run("operator message carries the NO role without payment", func(t *testing.T) {
		p := newParsers(reg, listedStore())
		action := newAction("TB:MSG:"+nodeAddr+":"+encode("hello bonders"), operatorAddr)
		action.In[0].Coins = nil

		result, err := p.parseChatMessage(action)
		require.NoError(t, err)
		require.NotNil(t, result.Message)
		assert.Equal(t, model.RoleNodeOperator, result.Message.Role)
		assert.Equal(t, "hello bonders", result.Message.Message)
	})

	t.Run("bond provider message carries the BP role", func(t *testing.T) {
		p := newParsers(reg, listedStore())
		action := newAction("TB:MSG:"+nodeAddr+":"+encode("gm"), userAddr)
		action.In[0].Coins = nil

		result, err := p.parseChatMessage(action)
		require.NoError(t, err)
		assert.Equal(t, model.RoleBondProvider, result.Message.Role)
	})

	t.Run("plain user message is payment gated", func(t *testing.T) {
		p := newParsers(reg, listedStore())
		action := newAction("TB:MSG:"+nodeAddr+":"+encode("spam"), strangerAddr)
		action.In[0].Coins = []midgard.Coin{{Asset: BaseAsset, Amount: "100"}}

		_, err := p.parseChatMessage(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonInsufficientAmount, rejection.Reason)
	})

	t.Run("plain user message passes the gate with enough payment", func(t *testing.T) {
		p := newParsers(reg, listedStore())
		action := newAction("TB:MSG:"+nodeAddr+":"+encode("honest question"), strangerAddr)

		result, err := p.parseChatMessage(action)
		require.NoError(t, err)
		assert.Equal(t, model.RoleUser, result.Message.Role)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		p := newParsers(reg, listedStore())
		action := newAction("TB:MSG:"+nodeAddr+":!!!not-base64!!!", operatorAddr)

		_, err := p.parseChatMessage(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonFormat, rejection.Reason)
	})

	t.Run("rejects a message that sanitizes to nothing", func(t *testing.T) {
		p := newParsers(reg, listedStore())
		action := newAction("TB:MSG:"+nodeAddr+":"+encode("<script>alert(1)</script>"), operatorAddr)

		_, err := p.parseChatMessage(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonFormat, rejection.Reason)
	})

	t.Run("rejects a node missing from the registry", func(t *testing.T) {
		p := newParsers(&fakeRegistry{nodes: map[string]*thornode.Node{}}, listedStore())
		action := newAction("TB:MSG:"+nodeAddr+":"+encode("hi"), operatorAddr)

		_, err := p.parseChatMessage(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonNodeNotFound, rejection.Reason)
	})
}

func TestParseSubscription(t *testing.T) {
	reg := &fakeRegistry{nodes: map[string]*thornode.Node{}}

	t.Run("renews an expired subscription from now", func(t *testing.T) {
		store := newFakeStore()
		store.subscriptions["SUB-AAAA2222"] = &model.Subscription{
			SubscriptionCode: "SUB-AAAA2222",
			SubscribedUntil:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		}
		p := newParsers(reg, store)
		action := newAction("TB:SUB:SUB-AAAA2222", userAddr)
		action.In[0].Coins = []midgard.Coin{{Asset: BaseAsset, Amount: "250000000"}}

		result, err := p.parseSubscription(action)
		require.NoError(t, err)
		require.NotNil(t, result.Subscription)
		assert.True(t, result.Subscription.Enabled)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), result.Subscription.SubscribedUntil)
	})

	t.Run("extends an active subscription from its expiry", func(t *testing.T) {
		store := newFakeStore()
		store.subscriptions["SUB-AAAA2222"] = &model.Subscription{
			SubscriptionCode: "SUB-AAAA2222",
			SubscribedUntil:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		}
		p := newParsers(reg, store)
		action := newAction("TB:SUB:SUB-AAAA2222", userAddr)

		result, err := p.parseSubscription(action)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), result.Subscription.SubscribedUntil)
	})

	t.Run("rejects an unknown code", func(t *testing.T) {
		p := newParsers(reg, newFakeStore())
		action := newAction("TB:SUB:SUB-MISSING1", userAddr)

		_, err := p.parseSubscription(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonUnknownCode, rejection.Reason)
	})

	t.Run("rejects a payment below one whole unit", func(t *testing.T) {
		store := newFakeStore()
		store.subscriptions["SUB-AAAA2222"] = &model.Subscription{SubscriptionCode: "SUB-AAAA2222"}
		p := newParsers(reg, store)
		action := newAction("TB:SUB:SUB-AAAA2222", userAddr)
		action.In[0].Coins = []midgard.Coin{{Asset: BaseAsset, Amount: "99999999"}}

		_, err := p.parseSubscription(action)
		rejection := AsRejection(err)
		require.NotNil(t, rejection)
		assert.Equal(t, ReasonInsufficientAmount, rejection.Reason)
	})
}

func TestGet(t *testing.T) {
	p := newParsers(&fakeRegistry{}, newFakeStore())

	for _, name := range []string{"nodeListing", "nodeListingV2", "nodeDelist", "whitelistRequest", "chatMessage", "subscription"} {
		parse, ok := p.Get(name)
		assert.True(t, ok, name)
		assert.NotNil(t, parse, name)
	}

	_, ok := p.Get("unknown")
	assert.False(t, ok)
}
