package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
	"github.com/hippocampus-web3/thorchain-indexer/internal/metrics"
)

// Event types fanned out to subscribers.
const (
	EventNodeListed             = "node_listed"
	EventNodeDelisted           = "node_delisted"
	EventWhitelistRequested     = "whitelist_requested"
	EventWhitelistStatusChanged = "whitelist_status_changed"
	EventChatMessage            = "chat_message"
	EventSubscriptionRenewed    = "subscription_renewed"
)

// Event is one notification job.
type Event struct {
	Type        string    `json:"type"`
	NodeAddress string    `json:"node_address,omitempty"`
	UserAddress string    `json:"user_address,omitempty"`
	TxId        string    `json:"tx_id,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	At          time.Time `json:"at"`
}

// Publisher pushes events toward subscribers. Publishing is best-effort:
// a notification must never fail the indexing write that triggered it.
type Publisher interface {
	Publish(event Event)
}

// NopPublisher drops every event. Used when notifications are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// Queue publishes events onto a redis list consumed by the Worker.
type Queue struct {
	rdb *redis.Client
	key string
}

func NewQueue(rdb *redis.Client, key string) *Queue {
	return &Queue{rdb: rdb, key: key}
}

func (q *Queue) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode notification event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := q.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		logger.Error("Failed to queue notification event %s: %v", event.Type, err)
		return
	}

	metrics.NotificationsQueued.Inc()
}
