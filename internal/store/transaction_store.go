package store

import (
	"context"
	"errors"
	"time"

	"manuflix-backend/internal/domain/billing"

	"gorm.io/gorm"
)

type TransactionStore struct {
	db *gorm.DB
}

func NewTransactionStore(db *gorm.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// Create inserts a pending transaction keyed by the provider charge id.
func (s *TransactionStore) Create(ctx context.Context, tx *billing.Transaction) error {
	if tx.Status == "" {
		tx.Status = billing.StatusPending
	}
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return storeErr("create transaction", err)
	}
	return nil
}

// MarkPaid flips a pending transaction to paid. The conditional UPDATE is
// the serialization point between the polling and webhook delivery paths:
// whichever caller wins affects a row, every later caller gets already=true
// and must skip subscription creation.
func (s *TransactionStore) MarkPaid(ctx context.Context, id uint) (already bool, err error) {
	res := s.db.WithContext(ctx).
		Model(&billing.Transaction{}).
		Where("id = ? AND status = ?", id, billing.StatusPending).
		Updates(map[string]interface{}{
			"status":     billing.StatusPaid,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, storeErr("mark transaction paid", res.Error)
	}
	return res.RowsAffected == 0, nil
}

// UpdateStatus sets an arbitrary status. Safe to repeat with the same value.
func (s *TransactionStore) UpdateStatus(ctx context.Context, id uint, status string) error {
	err := s.db.WithContext(ctx).
		Model(&billing.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return storeErr("update transaction status", err)
	}
	return nil
}

// GetByPaymentID looks a transaction up by its provider charge id. Absence
// is reported as (nil, nil), not an error — webhooks for unknown charges
// are acknowledged, not retried.
func (s *TransactionStore) GetByPaymentID(ctx context.Context, paymentID string) (*billing.Transaction, error) {
	var tx billing.Transaction
	err := s.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr("get transaction by payment id", err)
	}
	return &tx, nil
}

// ListAll returns every transaction with its user and plan, newest first.
// Backs the admin payment overview.
func (s *TransactionStore) ListAll(ctx context.Context) ([]billing.Transaction, error) {
	var out []billing.Transaction
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Plan").
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, storeErr("list all transactions", err)
	}
	return out, nil
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID uint) ([]billing.Transaction, error) {
	var out []billing.Transaction
	err := s.db.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	return out, nil
}
