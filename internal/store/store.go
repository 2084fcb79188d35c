// Package store implements the record-store side of the checkout flow over
// Postgres: subscription plans, payment transactions and user subscriptions.
package store

import (
	"errors"
	"fmt"
)

var (
	// ErrStore wraps any persistence failure so callers can treat the
	// whole layer as one recoverable error class.
	ErrStore = errors.New("subscription store error")

	ErrPlanNotFound = errors.New("plan not found")
)

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
}
