package pushinpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"manuflix-backend/config"

	"go.uber.org/zap"
)

var ErrInvalidAmount = errors.New("charge amount must be positive")

// ProviderError is returned for any non-2xx or malformed response from
// PushinPay. The checkout flow surfaces it as a retryable failure.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("pushinpay: %s (http %d)", e.Message, e.StatusCode)
	}
	return "pushinpay: " + e.Message
}

// DefaultExpirationSeconds is the charge lifetime requested from the
// provider (1 hour, matching the checkout countdown default).
const DefaultExpirationSeconds = 3600

type Customer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	CPF   string `json:"cpf,omitempty"`
}

// Charge mirrors the provider response for POST /pix/charges.
type Charge struct {
	ID             string `json:"id"`
	QRCodeImage    string `json:"qrcode_image"`
	CopyPaste      string `json:"copy_paste"`
	ExpirationDate string `json:"expiration_date"`
	Status         string `json:"status"`
}

type Client struct {
	cfg        config.PushinPayConfig
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(cfg config.PushinPayConfig, log *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

type chargeRequest struct {
	Amount      float64  `json:"amount"`
	Description string   `json:"description"`
	Customer    Customer `json:"customer"`
	Expiration  int      `json:"expiration"`
}

// CreateCharge opens a PIX charge at the provider. It is NOT idempotent:
// every successful call creates a new external financial charge, so callers
// must invoke it at most once per checkout attempt.
func (c *Client) CreateCharge(ctx context.Context, amountBRL float64, description string, customer Customer) (*Charge, error) {
	if amountBRL <= 0 {
		return nil, ErrInvalidAmount
	}

	payload := chargeRequest{
		Amount:      amountBRL,
		Description: description,
		Customer:    customer,
		Expiration:  DefaultExpirationSeconds,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/pix/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build charge request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("pix charge creation rejected",
			zap.Int("status_code", resp.StatusCode))
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: "charge creation failed"}
	}

	var charge Charge
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&charge); err != nil {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: "malformed charge response"}
	}
	if charge.ID == "" {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: "charge response missing id"}
	}

	c.log.Info("pix charge created",
		zap.String("charge_id", charge.ID),
		zap.Float64("amount_brl", amountBRL))

	return &charge, nil
}

// GetChargeStatus returns the provider's current status label for a charge.
// Read-only and safe to call repeatedly.
func (c *Client) GetChargeStatus(ctx context.Context, chargeID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/pix/charges/"+chargeID, nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: "status query failed"}
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", &ProviderError{StatusCode: resp.StatusCode, Message: "malformed status response"}
	}

	return out.Status, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
}
