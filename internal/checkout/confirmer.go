package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"manuflix-backend/internal/domain/billing"
	"manuflix-backend/internal/domain/subscriptions"
	"manuflix-backend/internal/infra/pushinpay"

	"go.uber.org/zap"
)

// Confirmer applies the paid transition to a transaction and activates the
// matching subscription. It is shared by the polling loop and the webhook
// handler; duplicate deliveries of the same confirmation are no-ops.
type Confirmer struct {
	txs   TransactionStore
	plans PlanStore
	subs  SubscriptionStore
	log   *zap.Logger
	now   func() time.Time
}

func NewConfirmer(txs TransactionStore, plans PlanStore, subs SubscriptionStore, log *zap.Logger) *Confirmer {
	return &Confirmer{
		txs:   txs,
		plans: plans,
		subs:  subs,
		log:   log,
		now:   time.Now,
	}
}

// Confirm advances tx when providerStatus is a terminal success. It returns
// confirmed=true only for the invocation that created the subscription;
// repeats short-circuit once they see it already exists.
func (c *Confirmer) Confirm(ctx context.Context, tx *billing.Transaction, providerStatus string) (confirmed bool, err error) {
	_, changed := NextStatus(tx.Status, providerStatus)
	switch {
	case changed:
		already, err := c.txs.MarkPaid(ctx, tx.ID)
		if err != nil {
			return false, err
		}
		tx.Status = billing.StatusPaid
		if already {
			c.log.Debug("transaction already paid by a concurrent delivery",
				zap.Uint("transaction_id", tx.ID))
		}
	case tx.Status == billing.StatusPaid && pushinpay.IsPaidStatus(providerStatus):
		// Re-delivery for a transaction that is already paid. Keep going:
		// a failure after MarkPaid but before Create leaves the transaction
		// paid without a subscription, and this is the path that repairs it.
	default:
		return false, nil
	}

	exists, err := c.subs.ExistsForTransaction(ctx, tx.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	plan, err := c.plans.GetByID(ctx, tx.PlanID)
	if err != nil {
		return false, fmt.Errorf("load plan for confirmation: %w", err)
	}

	now := c.now()
	var expiresAt *time.Time
	if !plan.IsLifetime && plan.DurationDays > 0 {
		t := now.AddDate(0, 0, plan.DurationDays)
		expiresAt = &t
	}

	sub := &subscriptions.UserSubscription{
		UserID:        tx.UserID,
		PlanID:        tx.PlanID,
		TransactionID: tx.ID,
		IsActive:      true,
		IsLifetime:    plan.IsLifetime,
		StartsAt:      now,
		ExpiresAt:     expiresAt,
	}
	if err := c.subs.Create(ctx, sub); err != nil {
		// Concurrent delivery won the insert race past the existence check.
		if errors.Is(err, subscriptions.ErrDuplicateTransaction) {
			return false, nil
		}
		return false, fmt.Errorf("activate subscription: %w", err)
	}

	c.log.Info("payment confirmed, subscription activated",
		zap.Uint("transaction_id", tx.ID),
		zap.Uint("user_id", tx.UserID),
		zap.Uint("plan_id", tx.PlanID),
		zap.Bool("lifetime", plan.IsLifetime))

	return true, nil
}
