// Package checkout drives the PIX payment workflow: charge creation,
// pending-transaction bookkeeping, status polling and the idempotent
// activation of the user's subscription once the provider reports the
// charge as settled.
package checkout

import (
	"context"
	"errors"

	"manuflix-backend/internal/domain/billing"
	"manuflix-backend/internal/domain/plans"
	"manuflix-backend/internal/domain/subscriptions"
	"manuflix-backend/internal/infra/pushinpay"
)

var (
	// ErrValidation covers missing required customer fields. No provider
	// or store call is made when it fires.
	ErrValidation = errors.New("invalid customer data")

	// ErrCheckoutInProgress guards the non-idempotent charge creation:
	// a user with a live pending session cannot open a second one.
	ErrCheckoutInProgress = errors.New("a checkout is already in progress for this user")
)

// Provider is the payment-provider surface the workflow needs.
type Provider interface {
	CreateCharge(ctx context.Context, amountBRL float64, description string, customer pushinpay.Customer) (*pushinpay.Charge, error)
	GetChargeStatus(ctx context.Context, chargeID string) (string, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx *billing.Transaction) error
	MarkPaid(ctx context.Context, id uint) (already bool, err error)
}

type PlanStore interface {
	GetByID(ctx context.Context, id uint) (*plans.Plan, error)
}

type SubscriptionStore interface {
	Create(ctx context.Context, sub *subscriptions.UserSubscription) error
	ExistsForTransaction(ctx context.Context, transactionID uint) (bool, error)
}
