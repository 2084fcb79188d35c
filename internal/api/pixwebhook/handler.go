// Package pixwebhook receives PushinPay payment notifications. The handler
// applies the same confirm-or-noop transition as the polling path, so a
// notification and a poll observing the same settlement cannot double-
// activate a subscription.
package pixwebhook

import (
	"context"
	"crypto/subtle"
	"net/http"

	"manuflix-backend/internal/domain/billing"
	"manuflix-backend/internal/infra/pushinpay"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type transactionSource interface {
	GetByPaymentID(ctx context.Context, paymentID string) (*billing.Transaction, error)
}

type confirmer interface {
	Confirm(ctx context.Context, tx *billing.Transaction, providerStatus string) (bool, error)
}

type Handler struct {
	txs       transactionSource
	confirmer confirmer
	secret    string
	log       *zap.Logger
}

func NewHandler(txs transactionSource, confirmer confirmer, secret string, log *zap.Logger) *Handler {
	return &Handler{txs: txs, confirmer: confirmer, secret: secret, log: log}
}

func (h *Handler) HandlePaymentConfirmation(c *gin.Context) {
	if h.secret != "" {
		given := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook secret"})
			return
		}
	}

	var event struct {
		PaymentID string `json:"payment_id"`
		Status    string `json:"status"`
	}
	if err := c.ShouldBindJSON(&event); err != nil || event.PaymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing payment_id in webhook payload"})
		return
	}

	tx, err := h.txs.GetByPaymentID(c.Request.Context(), event.PaymentID)
	if err != nil {
		// Retryable: the provider will redeliver.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up transaction"})
		return
	}
	if tx == nil {
		// Unknown charge. Acknowledge so the provider stops retrying.
		h.log.Warn("webhook for unknown payment", zap.String("payment_id", event.PaymentID))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if !pushinpay.IsPaidStatus(event.Status) {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	confirmed, err := h.confirmer.Confirm(c.Request.Context(), tx, event.Status)
	if err != nil {
		h.log.Error("webhook confirmation failed",
			zap.String("payment_id", event.PaymentID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process confirmation"})
		return
	}

	if confirmed {
		h.log.Info("payment confirmed via webhook", zap.String("payment_id", event.PaymentID))
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
