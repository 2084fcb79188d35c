package pushinpay

import "strings"

// IsPaidStatus normalizes the provider's success vocabulary. PushinPay
// reports a settled charge as COMPLETED, CONFIRMED or PAID depending on the
// payment path; everything else is non-terminal for the checkout flow.
func IsPaidStatus(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COMPLETED", "CONFIRMED", "PAID":
		return true
	}
	return false
}
