package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"manuflix-backend/internal/domain/billing"
	"manuflix-backend/internal/domain/plans"

	"go.uber.org/zap"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestConfirmer(txs *fakeTxStore, planStore *fakePlanStore, subs *fakeSubStore) *Confirmer {
	c := NewConfirmer(txs, planStore, subs, zap.NewNop())
	c.now = func() time.Time { return testNow }
	return c
}

func monthlyPlanStore() *fakePlanStore {
	return &fakePlanStore{plans: map[uint]*plans.Plan{
		1: {ID: 1, Name: "Mensal", PriceBRL: 29.90, DurationDays: 30},
		2: {ID: 2, Name: "Vitalício", PriceBRL: 297.00, IsLifetime: true},
	}}
}

func pendingTx(planID uint) *billing.Transaction {
	return &billing.Transaction{ID: 7, UserID: 42, PlanID: planID, Status: billing.StatusPending}
}

func TestConfirmActivatesSubscription(t *testing.T) {
	txs := newFakeTxStore()
	subs := newFakeSubStore()
	c := newTestConfirmer(txs, monthlyPlanStore(), subs)

	tx := pendingTx(1)
	confirmed, err := c.Confirm(context.Background(), tx, "PAID")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if !confirmed {
		t.Fatal("Confirm() = false, want true")
	}
	if tx.Status != billing.StatusPaid {
		t.Errorf("transaction status = %q, want paid", tx.Status)
	}
	if subs.count() != 1 {
		t.Fatalf("subscriptions created = %d, want 1", subs.count())
	}

	sub := subs.created[0]
	if sub.UserID != 42 || sub.PlanID != 1 || sub.TransactionID != 7 {
		t.Errorf("subscription keys = %+v", sub)
	}
	if !sub.IsActive || sub.IsLifetime {
		t.Errorf("subscription flags = active:%v lifetime:%v", sub.IsActive, sub.IsLifetime)
	}
	if sub.ExpiresAt == nil {
		t.Fatal("30-day plan must have an expiry")
	}
	want := testNow.AddDate(0, 0, 30)
	if !sub.ExpiresAt.Equal(want) {
		t.Errorf("expiry = %v, want %v", sub.ExpiresAt, want)
	}
}

func TestConfirmLifetimePlanHasNoExpiry(t *testing.T) {
	txs := newFakeTxStore()
	subs := newFakeSubStore()
	c := newTestConfirmer(txs, monthlyPlanStore(), subs)

	confirmed, err := c.Confirm(context.Background(), pendingTx(2), "COMPLETED")
	if err != nil || !confirmed {
		t.Fatalf("Confirm() = (%v, %v)", confirmed, err)
	}

	sub := subs.created[0]
	if !sub.IsLifetime {
		t.Error("subscription should be lifetime")
	}
	if sub.ExpiresAt != nil {
		t.Errorf("lifetime subscription must have no expiry, got %v", sub.ExpiresAt)
	}
}

func TestConfirmNonTerminalStatusIsNoop(t *testing.T) {
	txs := newFakeTxStore()
	subs := newFakeSubStore()
	c := newTestConfirmer(txs, monthlyPlanStore(), subs)

	confirmed, err := c.Confirm(context.Background(), pendingTx(1), "PENDING")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if confirmed {
		t.Error("Confirm() = true for non-terminal status")
	}
	if txs.writes() != 0 {
		t.Errorf("store writes = %d, want 0", txs.writes())
	}
	if subs.count() != 0 {
		t.Errorf("subscriptions created = %d, want 0", subs.count())
	}
}

func TestConfirmIsIdempotentUnderDuplicateDelivery(t *testing.T) {
	txs := newFakeTxStore()
	subs := newFakeSubStore()
	c := newTestConfirmer(txs, monthlyPlanStore(), subs)

	first := pendingTx(1)
	if confirmed, err := c.Confirm(context.Background(), first, "PAID"); err != nil || !confirmed {
		t.Fatalf("first Confirm() = (%v, %v)", confirmed, err)
	}

	// Same settlement redelivered (webhook after poll, or a duplicate
	// webhook): the transaction is already paid in the store.
	redelivered := pendingTx(1)
	confirmed, err := c.Confirm(context.Background(), redelivered, "PAID")
	if err != nil {
		t.Fatalf("second Confirm() error = %v", err)
	}
	if confirmed {
		t.Error("second Confirm() = true, want noop")
	}
	if subs.count() != 1 {
		t.Fatalf("subscriptions created = %d, want exactly 1", subs.count())
	}
}

func TestConfirmRepairsSubscriptionAfterTransientStoreFailure(t *testing.T) {
	txs := newFakeTxStore()
	subs := newFakeSubStore()
	c := newTestConfirmer(txs, monthlyPlanStore(), subs)

	// The transaction is marked paid, then the subscription insert fails.
	subs.err = errors.New("connection reset")
	tx := pendingTx(1)
	if _, err := c.Confirm(context.Background(), tx, "PAID"); err == nil {
		t.Fatal("Confirm() should surface the store failure")
	}
	if tx.Status != billing.StatusPaid {
		t.Fatalf("transaction status = %q, want paid", tx.Status)
	}
	if subs.count() != 0 {
		t.Fatalf("subscriptions created = %d, want 0", subs.count())
	}

	// The store recovers and the poller retries with the same transaction,
	// now already paid. The missing subscription must still be created.
	subs.err = nil
	confirmed, err := c.Confirm(context.Background(), tx, "PAID")
	if err != nil {
		t.Fatalf("retry Confirm() error = %v", err)
	}
	if !confirmed {
		t.Fatal("retry Confirm() = false, want true")
	}
	if subs.count() != 1 {
		t.Fatalf("subscriptions created = %d, want 1", subs.count())
	}
	if txs.writes() != 1 {
		t.Errorf("MarkPaid calls = %d, want 1", txs.writes())
	}
}

func TestConfirmPaidTransactionReloadedFromStoreActivates(t *testing.T) {
	txs := newFakeTxStore()
	subs := newFakeSubStore()
	c := newTestConfirmer(txs, monthlyPlanStore(), subs)

	// Webhook delivery after a crash between MarkPaid and the subscription
	// insert: the transaction loads from the store already paid.
	reloaded := &billing.Transaction{ID: 7, UserID: 42, PlanID: 1, Status: billing.StatusPaid}
	confirmed, err := c.Confirm(context.Background(), reloaded, "CONFIRMED")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if !confirmed {
		t.Fatal("Confirm() = false, want true")
	}
	if subs.count() != 1 {
		t.Fatalf("subscriptions created = %d, want 1", subs.count())
	}
	if txs.writes() != 0 {
		t.Errorf("MarkPaid calls = %d, want 0", txs.writes())
	}

	// A further redelivery is a noop once the subscription exists.
	confirmed, err = c.Confirm(context.Background(), reloaded, "CONFIRMED")
	if err != nil || confirmed {
		t.Fatalf("redelivered Confirm() = (%v, %v), want noop", confirmed, err)
	}
	if subs.count() != 1 {
		t.Fatalf("subscriptions created = %d, want exactly 1", subs.count())
	}
}

func TestConfirmPaidTransactionIgnoresNonTerminalStatus(t *testing.T) {
	txs := newFakeTxStore()
	subs := newFakeSubStore()
	c := newTestConfirmer(txs, monthlyPlanStore(), subs)

	paid := &billing.Transaction{ID: 7, UserID: 42, PlanID: 1, Status: billing.StatusPaid}
	confirmed, err := c.Confirm(context.Background(), paid, "PENDING")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if confirmed || subs.count() != 0 {
		t.Errorf("Confirm() = %v with %d subscriptions, want noop", confirmed, subs.count())
	}
}

func TestConfirmToleratesLosingInsertRace(t *testing.T) {
	txs := newFakeTxStore()
	subs := newFakeSubStore()
	c := newTestConfirmer(txs, monthlyPlanStore(), subs)

	// A concurrent delivery inserts between our existence check and Create;
	// the unique index rejects ours and Confirm treats it as a noop.
	subs.raceOnce = true
	confirmed, err := c.Confirm(context.Background(), pendingTx(1), "PAID")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if confirmed {
		t.Error("Confirm() = true after losing the insert race")
	}
	if subs.count() != 1 {
		t.Fatalf("subscriptions created = %d, want exactly 1", subs.count())
	}
}

func TestConfirmShortCircuitsWhenSubscriptionExists(t *testing.T) {
	txs := newFakeTxStore()
	subs := newFakeSubStore()
	subs.existing[7] = true // crash happened after a previous MarkPaid+Create
	c := newTestConfirmer(txs, monthlyPlanStore(), subs)

	confirmed, err := c.Confirm(context.Background(), pendingTx(1), "PAID")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if confirmed {
		t.Error("Confirm() = true, want noop")
	}
	if subs.count() != 0 {
		t.Errorf("subscriptions created = %d, want 0", subs.count())
	}
}
