package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the indexing pipeline, the registry cache and the
// reconciliation loop.

var (
	ActionsIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "feed",
		Name:      "actions_indexed_total",
		Help:      "Total actions parsed and persisted",
	})

	ActionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "feed",
		Name:      "actions_rejected_total",
		Help:      "Total actions rejected by validation, by reason",
	}, []string{"reason"})

	ActionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "feed",
		Name:      "action_failures_total",
		Help:      "Total actions dropped by unexpected failures (lost events)",
	})

	SourceFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "feed",
		Name:      "source_fetch_errors_total",
		Help:      "Total feed fetch failures (retried next cycle)",
	})

	RegistryCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "registry",
		Name:      "cache_hits_total",
		Help:      "Total registry cache hits",
	})

	RegistryCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "registry",
		Name:      "cache_misses_total",
		Help:      "Total registry cache misses",
	})

	RegistryStaleServed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "registry",
		Name:      "stale_served_total",
		Help:      "Total registry reads served from a stale value after a failed refetch",
	})

	WhitelistTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "whitelist",
		Name:      "status_transitions_total",
		Help:      "Total whitelist request status transitions, by target status",
	}, []string{"status"})

	NotificationsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "notify",
		Name:      "queued_total",
		Help:      "Total notification jobs pushed to the queue",
	})
)
