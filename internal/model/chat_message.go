package model

import (
	"time"
)

// ChatRole is the sender's relationship to the node, derived from the
// registry at parse time and frozen into the row.
type ChatRole string

const (
	RoleNodeOperator ChatRole = "NO"
	RoleBondProvider ChatRole = "BP"
	RoleUser         ChatRole = "USER"
)

// ChatMessage is an append-only message on a node's board.
type ChatMessage struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	NodeAddress string   `json:"node_address" gorm:"index;not null"`
	UserAddress string   `json:"user_address" gorm:"not null"`
	Role        ChatRole `json:"role" gorm:"not null"`
	Message     string   `json:"message" gorm:"type:text;not null"`

	TxId      string    `json:"tx_id" gorm:"not null"`
	Height    int64     `json:"height" gorm:"not null"`
	Timestamp time.Time `json:"timestamp"`
}

// TableName overrides the default table name
func (ChatMessage) TableName() string {
	return "chat_messages"
}
