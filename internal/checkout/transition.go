package checkout

import (
	"manuflix-backend/internal/domain/billing"
	"manuflix-backend/internal/infra/pushinpay"
)

// NextStatus is the single confirm transition for a transaction. Both the
// polling loop and the webhook handler route through it, so the two
// delivery paths cannot disagree on when a transaction advances.
//
// Only pending transactions move, and only on a provider success status;
// every other combination is a no-op. Calling it again after the move
// reports changed=false, which is what makes at-least-once delivery safe.
func NextStatus(current string, providerStatus string) (next string, changed bool) {
	if current != billing.StatusPending {
		return current, false
	}
	if pushinpay.IsPaidStatus(providerStatus) {
		return billing.StatusPaid, true
	}
	return current, false
}
