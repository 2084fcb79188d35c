package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"manuflix-backend/internal/domain/billing"
	"manuflix-backend/internal/domain/plans"
	"manuflix-backend/internal/domain/subscriptions"
	"manuflix-backend/internal/infra/pushinpay"
)

type fakeProvider struct {
	mu          sync.Mutex
	createCalls int
	statusCalls int

	charge    *pushinpay.Charge
	createErr error
	status    string
	statusErr error
}

func (f *fakeProvider) CreateCharge(ctx context.Context, amountBRL float64, description string, customer pushinpay.Customer) (*pushinpay.Charge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.charge != nil {
		ch := *f.charge
		return &ch, nil
	}
	return &pushinpay.Charge{ID: "ch_test", Status: "CREATED"}, nil
}

func (f *fakeProvider) GetChargeStatus(ctx context.Context, chargeID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return "", f.statusErr
	}
	return f.status, nil
}

func (f *fakeProvider) counts() (creates, statuses int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls, f.statusCalls
}

type fakeTxStore struct {
	mu            sync.Mutex
	nextID        uint
	created       []*billing.Transaction
	createErr     error
	markPaidCalls int
	paid          map[uint]bool
	markPaidErr   error
}

func newFakeTxStore() *fakeTxStore {
	return &fakeTxStore{paid: make(map[uint]bool)}
}

func (f *fakeTxStore) Create(ctx context.Context, tx *billing.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	tx.ID = f.nextID
	f.created = append(f.created, tx)
	return nil
}

func (f *fakeTxStore) MarkPaid(ctx context.Context, id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markPaidCalls++
	if f.markPaidErr != nil {
		return false, f.markPaidErr
	}
	if f.paid[id] {
		return true, nil
	}
	f.paid[id] = true
	return false, nil
}

func (f *fakeTxStore) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markPaidCalls
}

type fakePlanStore struct {
	plans map[uint]*plans.Plan
	err   error
}

func (f *fakePlanStore) GetByID(ctx context.Context, id uint) (*plans.Plan, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.plans[id]
	if !ok {
		return nil, errors.New("plan not found")
	}
	cp := *p
	return &cp, nil
}

type fakeSubStore struct {
	mu       sync.Mutex
	created  []*subscriptions.UserSubscription
	existing map[uint]bool
	err      error

	// raceOnce makes the next Create behave as if a concurrent delivery
	// inserted first: the winner's row lands and ours hits the unique index.
	raceOnce bool
}

func newFakeSubStore() *fakeSubStore {
	return &fakeSubStore{existing: make(map[uint]bool)}
}

func (f *fakeSubStore) Create(ctx context.Context, sub *subscriptions.UserSubscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.raceOnce {
		f.raceOnce = false
		f.created = append(f.created, &subscriptions.UserSubscription{TransactionID: sub.TransactionID})
		f.existing[sub.TransactionID] = true
		return subscriptions.ErrDuplicateTransaction
	}
	if f.existing[sub.TransactionID] {
		return subscriptions.ErrDuplicateTransaction
	}
	f.created = append(f.created, sub)
	f.existing[sub.TransactionID] = true
	return nil
}

func (f *fakeSubStore) ExistsForTransaction(ctx context.Context, transactionID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[transactionID], nil
}

func (f *fakeSubStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
