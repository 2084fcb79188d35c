package billing

import (
	"errors"
	"net/http"

	"manuflix-backend/internal/checkout"
	"manuflix-backend/internal/infra/pushinpay"
	"manuflix-backend/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	manager *checkout.Manager
	txs     *store.TransactionStore
	log     *zap.Logger
}

func NewHandler(manager *checkout.Manager, txs *store.TransactionStore, log *zap.Logger) *Handler {
	return &Handler{manager: manager, txs: txs, log: log}
}

// StartCheckout opens a checkout session: one PIX charge, one pending
// transaction, polling until the charge settles or the session is closed.
func (h *Handler) StartCheckout(c *gin.Context) {
	var body struct {
		PlanID   uint `json:"plan_id" binding:"required"`
		Customer struct {
			Email string `json:"email"`
			Name  string `json:"name"`
			CPF   string `json:"cpf"`
		} `json:"customer"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid plan_id"})
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	session, err := h.manager.Start(c.Request.Context(), userID, body.PlanID, pushinpay.Customer{
		Email: body.Customer.Email,
		Name:  body.Customer.Name,
		CPF:   body.Customer.CPF,
	})
	if err != nil {
		h.respondStartError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session.Snapshot())
}

func (h *Handler) respondStartError(c *gin.Context, err error) {
	var provErr *pushinpay.ProviderError

	switch {
	case errors.Is(err, checkout.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "A checkout is already in progress"})
	case errors.Is(err, store.ErrPlanNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan"})
	case errors.As(err, &provErr):
		h.log.Warn("pix charge generation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate PIX payment, please try again"})
	default:
		h.log.Error("checkout start failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start checkout"})
	}
}

func (h *Handler) GetCheckout(c *gin.Context) {
	session, ok := h.manager.Get(c.Param("id"))
	if !ok || session.UserID != c.GetUint("user_id") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Checkout session not found"})
		return
	}

	c.JSON(http.StatusOK, session.Snapshot())
}

// CancelCheckout closes the session when the user dismisses the payment
// modal. The charge itself stays open at the provider; only polling stops.
func (h *Handler) CancelCheckout(c *gin.Context) {
	session, ok := h.manager.Get(c.Param("id"))
	if !ok || session.UserID != c.GetUint("user_id") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Checkout session not found"})
		return
	}

	h.manager.Close(session.ID)
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

func (h *Handler) GetPaymentHistory(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	transactions, err := h.txs.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, transactions)
}
