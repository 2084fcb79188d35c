package checkout

import (
	"context"
	"sync"
	"time"

	"manuflix-backend/internal/domain/billing"
	"manuflix-backend/internal/infra/pushinpay"

	"go.uber.org/zap"
)

type State string

const (
	StateAwaitingPayment State = "awaiting_payment"
	StateConfirmed       State = "confirmed"
	StateClosed          State = "closed"
)

// Session is one live checkout: a charge waiting to be paid, plus the two
// periodic activities that watch it (the provider status poll and the
// display countdown). Both stop together when the session reaches a
// terminal state or is closed.
type Session struct {
	ID     string
	UserID uint

	charge *pushinpay.Charge
	tx     *billing.Transaction

	mu             sync.Mutex
	state          State
	providerStatus string
	secondsLeft    int

	cancel context.CancelFunc
	done   chan struct{}
}

// Snapshot is the read-model the modal renders from.
type Snapshot struct {
	ID             string  `json:"id"`
	State          State   `json:"state"`
	ProviderStatus string  `json:"provider_status"`
	SecondsLeft    int     `json:"seconds_left"`
	QRCodeImage    string  `json:"qrcode_image"`
	CopyPaste      string  `json:"copy_paste"`
	ExpirationDate string  `json:"expiration_date"`
	PlanID         uint    `json:"plan_id"`
	AmountBRL      float64 `json:"amount_brl"`
	TransactionID  uint    `json:"transaction_id"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:             s.ID,
		State:          s.state,
		ProviderStatus: s.providerStatus,
		SecondsLeft:    s.secondsLeft,
		QRCodeImage:    s.charge.QRCodeImage,
		CopyPaste:      s.charge.CopyPaste,
		ExpirationDate: s.charge.ExpirationDate,
		PlanID:         s.tx.PlanID,
		AmountBRL:      s.tx.AmountBRL,
		TransactionID:  s.tx.ID,
	}
}

func (s *Session) run(ctx context.Context, m *Manager) {
	defer close(s.done)

	poll := time.NewTicker(m.cfg.PollInterval)
	defer poll.Stop()
	tick := time.NewTicker(m.cfg.TickInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.tickCountdown()
		case <-poll.C:
			if s.pollOnce(ctx, m) {
				// Free the user's checkout slot before exposing the
				// terminal state, so a caller that sees "confirmed" can
				// immediately open a new checkout.
				m.releaseUser(s.UserID, s.ID)
				s.mu.Lock()
				s.state = StateConfirmed
				s.mu.Unlock()
				m.scheduleEvict(s.ID)
				return
			}
		}
	}
}

// tickCountdown decrements the display countdown. Reaching zero is
// advisory only; the provider stays authoritative on charge expiry, so the
// session keeps polling.
func (s *Session) tickCountdown() {
	s.mu.Lock()
	if s.secondsLeft > 0 {
		s.secondsLeft--
	}
	s.mu.Unlock()
}

func (s *Session) pollOnce(ctx context.Context, m *Manager) (terminal bool) {
	status, err := m.provider.GetChargeStatus(ctx, s.charge.ID)
	if err != nil {
		m.log.Warn("payment status poll failed",
			zap.String("session_id", s.ID),
			zap.String("charge_id", s.charge.ID),
			zap.Error(err))
		return false
	}

	s.mu.Lock()
	s.providerStatus = status
	s.mu.Unlock()

	if _, err := m.confirmer.Confirm(ctx, s.tx, status); err != nil {
		// Store hiccup; leave the transition to the next poll or the webhook.
		m.log.Warn("payment confirmation failed",
			zap.String("session_id", s.ID),
			zap.Error(err))
		return false
	}

	// Terminal success observed, whether this poll performed the
	// transition or the webhook path got there first.
	return pushinpay.IsPaidStatus(status)
}

// countdownSeconds derives the initial display countdown from the charge
// expiration. A missing, unparsable or already-past expiration falls back
// to the provider default of one hour.
func countdownSeconds(now time.Time, expirationDate string) int {
	t, ok := parseExpiration(expirationDate)
	if !ok {
		return pushinpay.DefaultExpirationSeconds
	}
	secs := int(t.Sub(now).Seconds())
	if secs <= 0 {
		return pushinpay.DefaultExpirationSeconds
	}
	return secs
}

func parseExpiration(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
