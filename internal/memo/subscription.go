package memo

import (
	"github.com/hippocampus-web3/thorchain-indexer/internal/midgard"
)

// parseSubscription handles TB:SUB:code. Each whole unit of the base asset
// buys one month of subscription, floored; the extension starts at the
// current expiry, or now when the subscription already lapsed.
func (p *Parsers) parseSubscription(action midgard.Action) (*Result, error) {
	parts := Tokenize(action.Memo())
	if len(parts) != 3 {
		return nil, Rejectf(ReasonFormat, "invalid memo format for subscription: %s", action.Memo())
	}

	code := parts[2]

	subscription, err := p.store.FindSubscriptionByCode(code)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, Rejectf(ReasonUnknownCode, "subscription code %s does not exist", code)
	}

	amount := action.BaseAssetAmount(BaseAsset)
	months := int(amount / BaseUnitsPerRune)
	if months < 1 {
		return nil, Rejectf(ReasonInsufficientAmount,
			"subscription renewal on action %s needs at least one whole unit, got %d base units", action.TxID(), amount)
	}

	base := subscription.SubscribedUntil
	if now := p.now(); base.Before(now) {
		base = now
	}

	subscription.SubscribedUntil = base.AddDate(0, months, 0)
	subscription.Enabled = true

	return &Result{Subscription: subscription}, nil
}
