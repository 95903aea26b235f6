package model

import (
	"time"
)

// Subscription is a notification subscription renewed on-chain through
// TB:SUB memos carrying the subscription code.
type Subscription struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserId            string    `json:"user_id" gorm:"not null"`
	Email             string    `json:"email" gorm:"not null"`
	ObservableAddress string    `json:"observable_address" gorm:"not null"`
	Channel           string    `json:"channel" gorm:"default:'email'"`
	Enabled           bool      `json:"enabled" gorm:"default:false"`
	SubscribedUntil   time.Time `json:"subscribed_until"`
	SubscriptionCode  string    `json:"subscription_code" gorm:"uniqueIndex;not null"`
}

// TableName overrides the default table name
func (Subscription) TableName() string {
	return "subscriptions"
}
