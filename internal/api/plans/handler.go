package plans

import (
	"net/http"

	"manuflix-backend/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	plans *store.PlanStore
}

func NewHandler(plans *store.PlanStore) *Handler {
	return &Handler{plans: plans}
}

func (h *Handler) ListPlans(c *gin.Context) {
	plansList, err := h.plans.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plans"})
		return
	}

	c.JSON(http.StatusOK, plansList)
}
