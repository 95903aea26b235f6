package indexer

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/hippocampus-web3/thorchain-indexer/internal/config"
	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
	"github.com/hippocampus-web3/thorchain-indexer/internal/memo"
	"github.com/hippocampus-web3/thorchain-indexer/internal/metrics"
	"github.com/hippocampus-web3/thorchain-indexer/internal/midgard"
	"github.com/hippocampus-web3/thorchain-indexer/internal/notify"
)

// Feed serves ordered transfer events for a watched address.
type Feed interface {
	Actions(address string, fromHeight int64) ([]midgard.Action, error)
}

// Store is the persistence surface the loop drives: per-source cursors and
// the upsert adapter for parse results.
type Store interface {
	LastProcessedHeight(address string) (int64, error)
	AdvanceCursor(address string, height int64) error
	Apply(result *memo.Result) error
}

// Indexer replays the feed for each configured source, dispatches matching
// memos to the grammar parsers and persists the results.
type Indexer struct {
	feed      Feed
	store     Store
	parsers   *memo.Parsers
	sources   []config.SourceConfig
	publisher notify.Publisher
	pool      *ants.Pool
}

func New(feed Feed, store Store, parsers *memo.Parsers, sources []config.SourceConfig, publisher notify.Publisher, concurrency int) (*Indexer, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexer pool: %w", err)
	}
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}

	return &Indexer{
		feed:      feed,
		store:     store,
		parsers:   parsers,
		sources:   sources,
		publisher: publisher,
		pool:      pool,
	}, nil
}

// Run processes every configured source once. Sources are independent and
// fan out over the worker pool; the call returns when all have finished, so
// an in-flight batch always completes before shutdown proceeds.
func (ix *Indexer) Run() {
	var wg sync.WaitGroup
	for _, source := range ix.sources {
		source := source
		wg.Add(1)
		err := ix.pool.Submit(func() {
			defer wg.Done()
			if err := ix.ProcessSource(source); err != nil {
				logger.Error("Error processing source %s: %v", source.Address, err)
			}
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit source %s: %v", source.Address, err)
		}
	}
	wg.Wait()
}

// Release tears the worker pool down.
func (ix *Indexer) Release() {
	ix.pool.Release()
}

// ProcessSource replays one source from its cursor. The cursor advances past
// everything that was fetched, whatever the individual parse outcomes: a
// permanently invalid event is adversarial noise, not something to retry.
func (ix *Indexer) ProcessSource(source config.SourceConfig) error {
	lastBlock, err := ix.store.LastProcessedHeight(source.Address)
	if err != nil {
		return err
	}

	actions, err := ix.feed.Actions(source.Address, lastBlock)
	if err != nil {
		metrics.SourceFetchErrors.Inc()
		return fmt.Errorf("failed to fetch actions for %s: %w", source.Address, err)
	}

	// The feed may replay the cursor height itself; keep strictly newer
	// events only.
	fresh := actions[:0]
	for _, action := range actions {
		if action.Height > lastBlock {
			fresh = append(fresh, action)
		}
	}
	actions = fresh

	// Same-height events must keep intra-block order, so sort on the feed
	// timestamp rather than the height.
	sort.Slice(actions, func(i, j int) bool {
		return actions[i].DateNanos() < actions[j].DateNanos()
	})

	logger.Info("Found %d new actions from block %d for address %s", len(actions), lastBlock, source.Address)

	maxHeight := lastBlock
	for _, action := range actions {
		ix.processAction(action, source)
		if action.Height > maxHeight {
			maxHeight = action.Height
		}
	}

	if len(actions) > 0 {
		if err := ix.store.AdvanceCursor(source.Address, maxHeight+1); err != nil {
			return err
		}
		logger.Debug("Advanced cursor for address %s to %d", source.Address, maxHeight+1)
	}

	return nil
}

func (ix *Indexer) processAction(action midgard.Action, source config.SourceConfig) {
	for _, template := range source.Templates {
		if !templateApplies(template, action.Height) {
			continue
		}
		for _, prefix := range template.Prefixes {
			if !strings.HasPrefix(action.Memo(), prefix) {
				continue
			}

			parse, ok := ix.parsers.Get(template.Parser)
			if !ok {
				logger.Error("Unknown parser %s configured for address %s", template.Parser, source.Address)
				continue
			}

			result, err := runParser(parse, action, template)
			if err != nil {
				if rejection := memo.AsRejection(err); rejection != nil {
					logger.Warn("Skipping invalid action %s: %s", action.TxID(), rejection.Message)
					metrics.ActionsRejected.WithLabelValues(string(rejection.Reason)).Inc()
				} else {
					// Unexpected failure: the event is lost for good since
					// the cursor moves past it, so keep these visible.
					logger.Error("Error processing action %s: %v", action.TxID(), err)
					metrics.ActionFailures.Inc()
				}
				continue
			}

			if err := ix.store.Apply(result); err != nil {
				logger.Error("Error persisting action %s: %v", action.TxID(), err)
				metrics.ActionFailures.Inc()
				continue
			}

			metrics.ActionsIndexed.Inc()
			logger.Debug("Saved action %s via parser %s", action.TxID(), template.Parser)
			ix.publisher.Publish(eventFor(result, action))
		}
	}
}

func runParser(parse memo.ParseFunc, action midgard.Action, template config.TemplateConfig) (*memo.Result, error) {
	if err := memo.CheckTransactionAmount(action, template.MinAmount); err != nil {
		return nil, err
	}
	return parse(action)
}

// templateApplies checks the height window that activates a template; this
// is how incompatible protocol versions coexist on one source address.
func templateApplies(template config.TemplateConfig, height int64) bool {
	if template.HeightFrom > 0 && height < template.HeightFrom {
		return false
	}
	if template.HeightTo > 0 && height > template.HeightTo {
		return false
	}
	return true
}

func eventFor(result *memo.Result, action midgard.Action) notify.Event {
	event := notify.Event{
		TxId: action.TxID(),
		At:   action.Timestamp(),
	}
	switch {
	case result.Listing != nil:
		event.NodeAddress = result.Listing.NodeAddress
		event.UserAddress = result.Listing.OperatorAddress
		if result.Listing.IsDelisted {
			event.Type = notify.EventNodeDelisted
		} else {
			event.Type = notify.EventNodeListed
		}
	case result.Request != nil:
		event.Type = notify.EventWhitelistRequested
		event.NodeAddress = result.Request.NodeAddress
		event.UserAddress = result.Request.UserAddress
	case result.Message != nil:
		event.Type = notify.EventChatMessage
		event.NodeAddress = result.Message.NodeAddress
		event.UserAddress = result.Message.UserAddress
	case result.Subscription != nil:
		event.Type = notify.EventSubscriptionRenewed
		event.UserAddress = result.Subscription.ObservableAddress
		event.Detail = result.Subscription.SubscriptionCode
	}
	return event
}
