package users

import (
	"net/http"
	"time"

	"manuflix-backend/internal/domain/subscriptions"
	"manuflix-backend/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	subs *store.SubscriptionStore
}

func NewHandler(subs *store.SubscriptionStore) *Handler {
	return &Handler{subs: subs}
}

// GetSubscription returns the caller's latest active subscription and
// whether it currently grants access. A lapsed dated subscription is
// deactivated on sight, mirroring the access check the content pages use.
func (h *Handler) GetSubscription(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sub, err := h.subs.GetActive(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}
	if sub == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}

	now := time.Now()
	if subscriptions.IsExpired(now, sub) {
		_ = h.subs.Deactivate(c.Request.Context(), sub.ID)
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active":       subscriptions.HasAccess(now, sub),
		"subscription": sub,
	})
}
