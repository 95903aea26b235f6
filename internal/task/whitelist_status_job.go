package task

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/hippocampus-web3/thorchain-indexer/internal/config"
	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
	"github.com/hippocampus-web3/thorchain-indexer/internal/metrics"
	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
	"github.com/hippocampus-web3/thorchain-indexer/internal/notify"
	"github.com/hippocampus-web3/thorchain-indexer/internal/registry"
)

// BondRegistry serves live bond positions for status derivation.
type BondRegistry interface {
	BondInfo(nodeAddress, userAddress string) (registry.BondInfo, error)
}

// RequestStore is the slice of persistence this job touches: it may read
// requests and mutate status/realBond, nothing else.
type RequestStore interface {
	ListReconcilable() ([]model.WhitelistRequest, error)
	Save(request *model.WhitelistRequest) error
}

// WhitelistStatusJob re-derives whitelist request status from the registry:
// pending -> approved when the user appears as a bond provider, approved ->
// bonded once bond lands, pending -> rejected after the inactivity window.
// Rejected is terminal.
type WhitelistStatusJob struct {
	registry   BondRegistry
	requests   RequestStore
	publisher  notify.Publisher
	interval   time.Duration
	delay      time.Duration
	inactivity time.Duration
	now        func() time.Time
}

func NewWhitelistStatusJob(reg BondRegistry, requests RequestStore, publisher notify.Publisher, cfg config.WhitelistConfig) *WhitelistStatusJob {
	interval := time.Duration(cfg.Interval) * time.Second
	if interval == 0 {
		interval = 3 * time.Minute
	}
	inactivity := time.Duration(cfg.InactivityHours) * time.Hour
	if inactivity == 0 {
		inactivity = 72 * time.Hour
	}
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}
	return &WhitelistStatusJob{
		registry:   reg,
		requests:   requests,
		publisher:  publisher,
		interval:   interval,
		delay:      time.Duration(cfg.DelayMs) * time.Millisecond,
		inactivity: inactivity,
		now:        time.Now,
	}
}

func (j *WhitelistStatusJob) GetName() string {
	return "whitelist_status_updater"
}

func (j *WhitelistStatusJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *WhitelistStatusJob) Execute() {
	requests, err := j.requests.ListReconcilable()
	if err != nil {
		logger.Error("Failed to fetch whitelist requests: %v", err)
		return
	}

	logger.Info("Starting update of %d whitelist requests", len(requests))

	updatedCount := 0
	for i := range requests {
		if j.updateRequest(&requests[i]) {
			updatedCount++
		}
		// The registry is rate limited; spread the per-record lookups out.
		if j.delay > 0 && i < len(requests)-1 {
			time.Sleep(j.delay)
		}
	}

	logger.Info("Finished updating whitelist requests. Updated %d of %d", updatedCount, len(requests))
}

// updateRequest reconciles one row, returning true when it was written.
func (j *WhitelistStatusJob) updateRequest(request *model.WhitelistRequest) bool {
	info, err := j.registry.BondInfo(request.NodeAddress, request.UserAddress)
	if err != nil {
		logger.Error("Failed to fetch bond info for %s/%s: %v", request.NodeAddress, request.UserAddress, err)
		return false
	}

	newStatus := model.WhitelistStatusPending
	if info.IsBondProvider {
		newStatus = model.WhitelistStatusApproved
	}
	if info.IsBondProvider && info.Bond > 0 {
		newStatus = model.WhitelistStatusBonded
	}

	// A request the operator never acted on expires; only an untouched
	// pending row can expire this way.
	if newStatus == model.WhitelistStatusPending &&
		request.Status == model.WhitelistStatusPending &&
		j.now().Sub(request.Timestamp) > j.inactivity {
		newStatus = model.WhitelistStatusRejected
	}

	if request.Status == newStatus && request.RealBond == info.Bond {
		return false
	}

	statusChanged := request.Status != newStatus
	request.Status = newStatus
	request.RealBond = info.Bond

	if err := j.requests.Save(request); err != nil {
		logger.Error("Failed to update whitelist request %d: %v", request.Id, err)
		return false
	}

	logger.Info("Updated whitelist request %d status to %s and realBond to %d", request.Id, newStatus, info.Bond)

	if statusChanged {
		metrics.WhitelistTransitions.WithLabelValues(string(newStatus)).Inc()
		j.publisher.Publish(notify.Event{
			Type:        notify.EventWhitelistStatusChanged,
			NodeAddress: request.NodeAddress,
			UserAddress: request.UserAddress,
			Detail:      string(newStatus),
		})
	}

	return true
}
