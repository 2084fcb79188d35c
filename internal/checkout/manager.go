package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"manuflix-backend/internal/domain/billing"
	"manuflix-backend/internal/infra/pushinpay"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Config struct {
	// PollInterval is how often the provider status is queried while a
	// session awaits payment.
	PollInterval time.Duration
	// TickInterval drives the display countdown.
	TickInterval time.Duration
	// EvictAfter is how long a confirmed session stays readable before it
	// is dropped from the manager. The grace period lets the modal render
	// the final "confirmed" snapshot before redirecting.
	EvictAfter time.Duration
}

const (
	defaultPollInterval = 10 * time.Second
	defaultTickInterval = time.Second
	defaultEvictAfter   = 5 * time.Minute
)

// Manager owns the live checkout sessions. One pending session per user:
// charge creation is not idempotent at the provider, so a retried submit
// must not mint a second charge.
type Manager struct {
	provider  Provider
	txs       TransactionStore
	plans     PlanStore
	confirmer *Confirmer
	log       *zap.Logger
	cfg       Config
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	active   map[uint]string
}

func NewManager(provider Provider, txs TransactionStore, plans PlanStore, confirmer *Confirmer, log *zap.Logger, cfg Config) *Manager {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.EvictAfter <= 0 {
		cfg.EvictAfter = defaultEvictAfter
	}
	return &Manager{
		provider:  provider,
		txs:       txs,
		plans:     plans,
		confirmer: confirmer,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
		sessions:  make(map[string]*Session),
		active:    make(map[uint]string),
	}
}

// Start validates the customer, creates the PIX charge, records the pending
// transaction and begins polling. The user slot is reserved before any
// network call so a double submit cannot double-charge.
func (m *Manager) Start(ctx context.Context, userID uint, planID uint, customer pushinpay.Customer) (*Session, error) {
	if strings.TrimSpace(customer.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if strings.TrimSpace(customer.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	m.mu.Lock()
	if _, busy := m.active[userID]; busy {
		m.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	m.active[userID] = ""
	m.mu.Unlock()

	session, err := m.open(ctx, userID, planID, customer)
	if err != nil {
		m.releaseUser(userID, "")
		return nil, err
	}
	return session, nil
}

func (m *Manager) open(ctx context.Context, userID uint, planID uint, customer pushinpay.Customer) (*Session, error) {
	plan, err := m.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	charge, err := m.provider.CreateCharge(ctx, plan.PriceBRL, "Manuflix - "+plan.Name, customer)
	if err != nil {
		return nil, err
	}

	tx := &billing.Transaction{
		UserID:        userID,
		PlanID:        plan.ID,
		AmountBRL:     plan.PriceBRL,
		PaymentMethod: "pix",
		PaymentID:     charge.ID,
		Status:        billing.StatusPending,
	}
	if err := m.txs.Create(ctx, tx); err != nil {
		// The charge now exists at the provider with no local record.
		// Accepted gap: flag it loudly so reconciliation can pick it up.
		m.log.Error("charge created but transaction insert failed",
			zap.String("charge_id", charge.ID),
			zap.Uint("user_id", userID),
			zap.Error(err))
		return nil, err
	}

	s := &Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		charge:         charge,
		tx:             tx,
		state:          StateAwaitingPayment,
		providerStatus: charge.Status,
		secondsLeft:    countdownSeconds(m.now(), charge.ExpirationDate),
		done:           make(chan struct{}),
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.active[userID] = s.ID
	m.mu.Unlock()

	m.log.Info("checkout session opened",
		zap.String("session_id", s.ID),
		zap.Uint("user_id", userID),
		zap.String("charge_id", charge.ID),
		zap.Int("seconds_left", s.secondsLeft))

	go s.run(runCtx, m)
	return s, nil
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close tears a session down, cancelling future polls and countdown ticks.
// A poll already in flight is not interrupted; only scheduled work stops.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}

	s.cancel()
	m.releaseUser(s.UserID, s.ID)

	s.mu.Lock()
	if s.state == StateAwaitingPayment {
		s.state = StateClosed
	}
	s.mu.Unlock()

	m.log.Info("checkout session closed", zap.String("session_id", id))
	return true
}

// scheduleEvict drops a finished session from the manager after the grace
// period, so confirmed sessions do not accumulate for the process lifetime.
func (m *Manager) scheduleEvict(id string) {
	time.AfterFunc(m.cfg.EvictAfter, func() {
		m.mu.Lock()
		_, ok := m.sessions[id]
		if ok {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
		if ok {
			m.log.Debug("checkout session evicted", zap.String("session_id", id))
		}
	})
}

// releaseUser frees the one-pending-checkout-per-user slot, but only if it
// still belongs to the given session (or to the pre-session reservation).
func (m *Manager) releaseUser(userID uint, sessionID string) {
	m.mu.Lock()
	if cur, ok := m.active[userID]; ok && (cur == sessionID || cur == "") {
		delete(m.active, userID)
	}
	m.mu.Unlock()
}
