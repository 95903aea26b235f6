package model

import (
	"time"
)

// IndexerState is the per-source cursor: the highest feed height already
// processed for a watched address. Rows only move upward.
type IndexerState struct {
	Id int64 `json:"id" gorm:"primaryKey"`

	Address     string    `json:"address" gorm:"uniqueIndex;not null"`
	LastBlock   int64     `json:"last_block" gorm:"not null"`
	LastUpdated time.Time `json:"last_updated"`
}

// TableName overrides the default table name
func (IndexerState) TableName() string {
	return "indexer_state"
}
