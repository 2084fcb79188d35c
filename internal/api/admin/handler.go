package admin

import (
	"net/http"

	"manuflix-backend/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminPayment is the flattened row the admin payment overview renders.
type AdminPayment struct {
	ID        uint    `json:"id"`
	Email     string  `json:"email"`
	PlanName  string  `json:"plan_name"`
	AmountBRL float64 `json:"amount_brl"`
	Status    string  `json:"status"`
	PaymentID string  `json:"payment_id"`
	CreatedAt string  `json:"created_at"`
}

type Handler struct {
	txs *store.TransactionStore
	log *zap.Logger
}

func NewHandler(txs *store.TransactionStore, log *zap.Logger) *Handler {
	return &Handler{txs: txs, log: log}
}

// ListAllPayments returns every transaction across users, newest first.
func (h *Handler) ListAllPayments(c *gin.Context) {
	transactions, err := h.txs.ListAll(c.Request.Context())
	if err != nil {
		h.log.Error("admin payment listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	payments := make([]AdminPayment, 0, len(transactions))
	for _, tx := range transactions {
		payments = append(payments, AdminPayment{
			ID:        tx.ID,
			Email:     tx.User.Email,
			PlanName:  tx.Plan.Name,
			AmountBRL: tx.AmountBRL,
			Status:    tx.Status,
			PaymentID: tx.PaymentID,
			CreatedAt: tx.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	c.JSON(http.StatusOK, payments)
}
