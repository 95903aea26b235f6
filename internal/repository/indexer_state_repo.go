package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
	"gorm.io/gorm"
)

// IndexerStateRepo owns the per-source cursors.
type IndexerStateRepo struct {
	db *gorm.DB
}

func NewIndexerStateRepo(db *gorm.DB) *IndexerStateRepo {
	return &IndexerStateRepo{db: db}
}

// LastProcessedHeight returns the cursor for a source, 0 when the source has
// never been processed.
func (r *IndexerStateRepo) LastProcessedHeight(address string) (int64, error) {
	var state model.IndexerState
	if err := r.db.Where("address = ?", address).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load cursor for %s: %w", address, err)
	}
	return state.LastBlock, nil
}

// Advance moves the cursor up to height. Cursors are monotonic: a lower or
// equal height is a no-op, never a rollback.
func (r *IndexerStateRepo) Advance(address string, height int64) error {
	var state model.IndexerState
	err := r.db.Where("address = ?", address).First(&state).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load cursor for %s: %w", address, err)
		}
		state = model.IndexerState{
			Address:     address,
			LastBlock:   height,
			LastUpdated: time.Now(),
		}
		if err := r.db.Create(&state).Error; err != nil {
			return fmt.Errorf("failed to create cursor for %s: %w", address, err)
		}
		return nil
	}

	if height <= state.LastBlock {
		return nil
	}

	state.LastBlock = height
	state.LastUpdated = time.Now()
	if err := r.db.Save(&state).Error; err != nil {
		return fmt.Errorf("failed to advance cursor for %s: %w", address, err)
	}
	return nil
}
