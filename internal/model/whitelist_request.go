package model

import (
	"time"
)

// WhitelistRequest is a user's request to join a node's bond pool. Exactly
// one row per (node, user) pair; a repeated request resets the row to pending.
type WhitelistRequest struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	NodeAddress string `json:"node_address" gorm:"uniqueIndex:idx_whitelist_node_user;not null"`
	UserAddress string `json:"user_address" gorm:"uniqueIndex:idx_whitelist_node_user;not null"`

	IntendedBondAmount int64 `json:"intended_bond_amount" gorm:"not null"`
	// RealBond is the bond observed on the registry, maintained by the
	// status reconciliation loop.
	RealBond int64 `json:"real_bond" gorm:"default:0"`

	Status WhitelistStatus `json:"status" gorm:"default:'pending'"`

	TxId      string    `json:"tx_id" gorm:"not null"`
	Height    int64     `json:"height" gorm:"not null"`
	Timestamp time.Time `json:"timestamp"`
}

// TableName overrides the default table name
func (WhitelistRequest) TableName() string {
	return "whitelist_requests"
}

// WhitelistStatus is the request lifecycle state.
type WhitelistStatus string

const (
	WhitelistStatusPending  WhitelistStatus = "pending"  // waiting for the operator
	WhitelistStatusApproved WhitelistStatus = "approved" // whitelisted, bond not yet sent
	WhitelistStatusBonded   WhitelistStatus = "bonded"   // bond observed on the registry
	WhitelistStatusRejected WhitelistStatus = "rejected" // expired without approval, terminal
)
