package store

import (
	"context"
	"errors"
	"time"

	"manuflix-backend/internal/domain/subscriptions"

	"gorm.io/gorm"
)

type SubscriptionStore struct {
	db *gorm.DB
}

func NewSubscriptionStore(db *gorm.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

func (s *SubscriptionStore) Create(ctx context.Context, sub *subscriptions.UserSubscription) error {
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return subscriptions.ErrDuplicateTransaction
		}
		return storeErr("create subscription", err)
	}
	return nil
}

// GetActive returns the most recently created active subscription for the
// user, or (nil, nil) when there is none. Access checks treat that latest
// row as the authoritative one.
func (s *SubscriptionStore) GetActive(ctx context.Context, userID uint) (*subscriptions.UserSubscription, error) {
	var sub subscriptions.UserSubscription
	err := s.db.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("get active subscription", err)
	}
	return &sub, nil
}

func (s *SubscriptionStore) Deactivate(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).
		Model(&subscriptions.UserSubscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return storeErr("deactivate subscription", err)
	}
	return nil
}

// ExistsForTransaction reports whether a paid transaction already produced
// a subscription row.
func (s *SubscriptionStore) ExistsForTransaction(ctx context.Context, transactionID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&subscriptions.UserSubscription{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error
	if err != nil {
		return false, storeErr("count subscriptions for transaction", err)
	}
	return count > 0, nil
}
