package subscriptions

import "time"

// HasAccess reports whether a subscription grants content access at the
// given instant. Lifetime subscriptions never expire; dated ones grant
// access strictly before their expiry.
func HasAccess(now time.Time, sub *UserSubscription) bool {
	if sub == nil || !sub.IsActive {
		return false
	}
	if sub.IsLifetime {
		return true
	}
	if sub.ExpiresAt == nil {
		// Dated subscription without an expiry recorded; treat as open-ended.
		return true
	}
	return now.Before(*sub.ExpiresAt)
}

// IsExpired reports whether a dated subscription has lapsed and should be
// deactivated by the next access check that observes it.
func IsExpired(now time.Time, sub *UserSubscription) bool {
	if sub == nil || sub.IsLifetime || sub.ExpiresAt == nil {
		return false
	}
	return now.After(*sub.ExpiresAt)
}
