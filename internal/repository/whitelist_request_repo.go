package repository

import (
	"errors"
	"fmt"

	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
	"gorm.io/gorm"
)

// WhitelistRequestRepo owns whitelist_requests access. The composite unique
// index on (node_address, user_address) keeps one row per pair.
type WhitelistRequestRepo struct {
	db *gorm.DB
}

func NewWhitelistRequestRepo(db *gorm.DB) *WhitelistRequestRepo {
	return &WhitelistRequestRepo{db: db}
}

// FindByNodeAndUser returns the request for a (node, user) pair, nil when
// absent.
func (r *WhitelistRequestRepo) FindByNodeAndUser(nodeAddress, userAddress string) (*model.WhitelistRequest, error) {
	var request model.WhitelistRequest
	err := r.db.Where("node_address = ? AND user_address = ?", nodeAddress, userAddress).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find whitelist request %s/%s: %w", nodeAddress, userAddress, err)
	}
	return &request, nil
}

// Save inserts or updates a request row.
func (r *WhitelistRequestRepo) Save(request *model.WhitelistRequest) error {
	if err := r.db.Save(request).Error; err != nil {
		return fmt.Errorf("failed to save whitelist request %s/%s: %w", request.NodeAddress, request.UserAddress, err)
	}
	return nil
}

// ListByAddress returns requests visible to an address: those it filed as a
// user plus those targeting nodes it operates.
func (r *WhitelistRequestRepo) ListByAddress(address string, page, pageSize int) ([]model.WhitelistRequest, int64, error) {
	var requests []model.WhitelistRequest
	var total int64

	query := r.db.Model(&model.WhitelistRequest{}).
		Joins("JOIN node_listings ON node_listings.node_address = whitelist_requests.node_address").
		Where("node_listings.operator_address = ? OR whitelist_requests.user_address = ?", address, address)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count whitelist requests: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("whitelist_requests.timestamp DESC").Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list whitelist requests: %w", err)
	}

	return requests, total, nil
}

// ListReconcilable returns every request still subject to reconciliation;
// rejected is terminal and excluded.
func (r *WhitelistRequestRepo) ListReconcilable() ([]model.WhitelistRequest, error) {
	var requests []model.WhitelistRequest
	err := r.db.Where("status <> ?", model.WhitelistStatusRejected).
		Order("timestamp ASC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reconcilable whitelist requests: %w", err)
	}
	return requests, nil
}

// CountByStatus returns row counts grouped by status.
func (r *WhitelistRequestRepo) CountByStatus() (map[model.WhitelistStatus]int64, error) {
	type row struct {
		Status model.WhitelistStatus
		Count  int64
	}
	var rows []row
	err := r.db.Model(&model.WhitelistRequest{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count whitelist requests by status: %w", err)
	}

	counts := make(map[model.WhitelistStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
