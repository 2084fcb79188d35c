package middleware

import (
	"net/http"
	"time"

	"manuflix-backend/internal/domain/subscriptions"
	"manuflix-backend/internal/store"

	"github.com/gin-gonic/gin"
)

// RequireActiveSubscription gates content routes on the caller's latest
// active subscription. Expired dated subscriptions are deactivated in
// passing so later checks short-circuit.
func RequireActiveSubscription(subs *store.SubscriptionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		sub, err := subs.GetActive(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check subscription"})
			return
		}
		if sub == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Subscription not found"})
			return
		}

		now := time.Now()
		if subscriptions.IsExpired(now, sub) {
			_ = subs.Deactivate(c.Request.Context(), sub.ID)
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "Your subscription has expired"})
			return
		}
		if !subscriptions.HasAccess(now, sub) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Subscription not active"})
			return
		}

		c.Next()
	}
}
