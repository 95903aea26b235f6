package repository

import (
	"errors"
	"fmt"

	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
	"gorm.io/gorm"
)

// NodeListingRepo owns node_listings access. The unique index on
// node_address is the storage-level guarantee behind upsert-by-natural-key.
type NodeListingRepo struct {
	db *gorm.DB
}

func NewNodeListingRepo(db *gorm.DB) *NodeListingRepo {
	return &NodeListingRepo{db: db}
}

// FindByNodeAddress returns the listing for a node, nil when absent.
func (r *NodeListingRepo) FindByNodeAddress(nodeAddress string) (*model.NodeListing, error) {
	var listing model.NodeListing
	if err := r.db.Where("node_address = ?", nodeAddress).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find node listing %s: %w", nodeAddress, err)
	}
	return &listing, nil
}

// Save inserts or updates a listing row.
func (r *NodeListingRepo) Save(listing *model.NodeListing) error {
	if err := r.db.Save(listing).Error; err != nil {
		return fmt.Errorf("failed to save node listing %s: %w", listing.NodeAddress, err)
	}
	return nil
}

// List returns listings, newest first, delisted rows excluded when
// activeOnly is set.
func (r *NodeListingRepo) List(activeOnly bool, page, pageSize int) ([]model.NodeListing, int64, error) {
	var listings []model.NodeListing
	var total int64

	query := r.db.Model(&model.NodeListing{})
	if activeOnly {
		query = query.Where("is_delisted = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count node listings: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("timestamp DESC").Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list node listings: %w", err)
	}

	return listings, total, nil
}

// Count returns the total number of listing rows.
func (r *NodeListingRepo) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.NodeListing{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count node listings: %w", err)
	}
	return count, nil
}
