package model

import (
	"time"
)

// NodeListing is a node offered for bonding on the marketplace. One row per
// node address; later listing memos update the row in place.
type NodeListing struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	NodeAddress     string `json:"node_address" gorm:"uniqueIndex;not null"`
	OperatorAddress string `json:"operator_address" gorm:"not null"`

	// Bond terms in base units. MaxBond comes from v1 listings,
	// TargetTotalBond from v2; either may be absent.
	MinBond         int64  `json:"min_bond" gorm:"not null"`
	MaxBond         *int64 `json:"max_bond"`
	TargetTotalBond *int64 `json:"target_total_bond"`

	FeePercentageBps int64 `json:"fee_percentage_bps" gorm:"not null"`
	IsDelisted       bool  `json:"is_delisted" gorm:"default:false"`

	TxId      string    `json:"tx_id" gorm:"not null"`
	Height    int64     `json:"height" gorm:"not null"`
	Timestamp time.Time `json:"timestamp"`
}

// TableName overrides the default table name
func (NodeListing) TableName() string {
	return "node_listings"
}
