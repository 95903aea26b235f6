package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/hippocampus-web3/thorchain-indexer/internal/model"
	"gorm.io/gorm"
)

// SubscriptionRepo owns subscriptions access.
type SubscriptionRepo struct {
	db *gorm.DB
}

func NewSubscriptionRepo(db *gorm.DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

// FindByCode returns the subscription carrying a renewal code, nil when
// absent.
func (r *SubscriptionRepo) FindByCode(code string) (*model.Subscription, error) {
	var subscription model.Subscription
	if err := r.db.Where("subscription_code = ?", code).First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find subscription %s: %w", code, err)
	}
	return &subscription, nil
}

// FindActive returns a not-yet-expired subscription for an email and
// observed address, nil when absent.
func (r *SubscriptionRepo) FindActive(email, observableAddress string) (*model.Subscription, error) {
	var subscription model.Subscription
	err := r.db.Where("email = ? AND observable_address = ? AND subscribed_until > ?",
		email, observableAddress, time.Now()).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find subscription for %s: %w", email, err)
	}
	return &subscription, nil
}

// Create inserts a new subscription.
func (r *SubscriptionRepo) Create(subscription *model.Subscription) error {
	if err := r.db.Create(subscription).Error; err != nil {
		return fmt.Errorf("failed to create subscription %s: %w", subscription.SubscriptionCode, err)
	}
	return nil
}

// Save updates a subscription row.
func (r *SubscriptionRepo) Save(subscription *model.Subscription) error {
	if err := r.db.Save(subscription).Error; err != nil {
		return fmt.Errorf("failed to save subscription %s: %w", subscription.SubscriptionCode, err)
	}
	return nil
}
