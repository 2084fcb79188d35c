package billing

import (
	"time"

	"manuflix-backend/internal/domain/plans"
	"manuflix-backend/internal/domain/users"
)

// Transaction statuses. A transaction starts pending and moves to exactly
// one terminal status.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
)

type Transaction struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"index;not null"`
	User   users.User
	PlanID uint `gorm:"not null"`
	Plan   plans.Plan

	AmountBRL     float64 `gorm:"column:amount_brl"`
	PaymentMethod string  `gorm:"type:varchar(20);not null;default:'pix'"`

	// PaymentID is the charge id assigned by the payment provider.
	PaymentID string `gorm:"column:payment_id;uniqueIndex:idx_transactions_payment_id"`

	Status string `gorm:"type:varchar(20);not null;default:'pending'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
