package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
)

// Worker drains the notification queue and dispatches each event. Dispatch
// is a structured log entry plus an optional webhook POST.
type Worker struct {
	rdb        *redis.Client
	key        string
	webhookUrl string
	httpc      *http.Client
}

func NewWorker(rdb *redis.Client, key, webhookUrl string) *Worker {
	return &Worker{
		rdb:        rdb,
		key:        key,
		webhookUrl: webhookUrl,
		httpc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Run blocks consuming the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	logger.Info("Notification worker started on queue %s", w.key)

	for {
		values, err := w.rdb.BRPop(ctx, 5*time.Second, w.key).Result()
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Notification worker stopped")
				return
			}
			if !errors.Is(err, redis.Nil) {
				logger.Error("Failed to pop notification job: %v", err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(values) < 2 {
			continue
		}

		var event Event
		if err := json.Unmarshal([]byte(values[1]), &event); err != nil {
			logger.Error("Failed to decode notification job: %v", err)
			continue
		}

		w.dispatch(ctx, event)
	}
}

func (w *Worker) dispatch(ctx context.Context, event Event) {
	logger.Info("Notification %s node=%s user=%s tx=%s", event.Type, event.NodeAddress, event.UserAddress, event.TxId)

	if w.webhookUrl == "" {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode webhook payload: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookUrl, bytes.NewReader(payload))
	if err != nil {
		logger.Error("Failed to build webhook request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpc.Do(req)
	if err != nil {
		logger.Error("Failed to deliver notification %s: %v", event.Type, err)
		return
	}
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Error("Webhook rejected notification %s with status %d", event.Type, resp.StatusCode)
	}
}
