package subscriptions

import (
	"errors"
	"time"

	"manuflix-backend/internal/domain/plans"
	"manuflix-backend/internal/domain/users"
)

// ErrDuplicateTransaction reports an insert for a transaction that already
// has a subscription row. Concurrent confirm deliveries racing past the
// existence check land here via the unique index.
var ErrDuplicateTransaction = errors.New("subscription already exists for transaction")

type UserSubscription struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"index;not null"`
	User   users.User
	PlanID uint `gorm:"not null"`
	Plan   plans.Plan

	// TransactionID ties the subscription to the paid transaction that
	// created it. The unique index is the last line of defense against
	// duplicate activation under at-least-once webhook delivery.
	TransactionID uint `gorm:"uniqueIndex:idx_user_subscriptions_transaction_id"`

	IsActive   bool `gorm:"not null;default:true"`
	IsLifetime bool

	StartsAt time.Time
	// ExpiresAt is nil for lifetime subscriptions.
	ExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
