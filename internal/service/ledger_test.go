package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain"
	"github.com/Strob0t/LeaseForge/internal/domain/ledger"
	"github.com/Strob0t/LeaseForge/internal/domain/money"
	"github.com/Strob0t/LeaseForge/internal/port/messagequeue"
)

// ledgerFixture creates a tenancy starting 2025-01-01 (rent 50000, due day 5)
// and returns the ledger service pinned to the given clock.
func ledgerFixture(t *testing.T, now time.Time) (*LedgerService, *mockStore, *mockQueue, string) {
	t.Helper()
	store := newMockStore()
	q := &mockQueue{}

	tenSvc := NewTenancyService(store, q, nil, nil, testDueDay)
	ten := mustCreateTenancy(t, tenSvc, leaseRequest())

	svc := NewLedgerService(store, q, nil, testDueDay)
	svc.now = func() time.Time { return now }
	return svc, store, q, ten.ID
}

func firstObligation(t *testing.T, store *mockStore, tenantID string) *ledger.RentPayment {
	t.Helper()
	ob, err := store.GetObligationByPeriod(context.Background(), tenantID, money.Period{Year: 2025, Month: time.January})
	if err != nil {
		t.Fatalf("get first obligation: %v", err)
	}
	return ob
}

func TestPartialPaymentsAccumulate(t *testing.T) {
	now := date(2025, time.January, 3)
	svc, store, q, tenantID := ledgerFixture(t, now)
	ob := firstObligation(t, store, tenantID)

	pay := func(amount int64) *ledger.RentPayment {
		rp, err := svc.RecordPayment(context.Background(), ob.ID, ledger.PaymentInput{
			Amount:      decimal.NewFromInt(amount),
			PaymentDate: now,
		})
		if err != nil {
			t.Fatalf("record payment %d: %v", amount, err)
		}
		return rp
	}

	rp := pay(30000)
	if rp.Status != ledger.StatusPartial {
		t.Fatalf("after 30000 expected partial, got %s", rp.Status)
	}

	rp = pay(20000)
	if rp.Status != ledger.StatusPaid {
		t.Fatalf("after 50000 total expected paid, got %s", rp.Status)
	}
	if rp.IsLate {
		t.Fatal("payment before due date must not be late")
	}
	if rp.Overpaid() {
		t.Fatal("exact payment must not be overpaid")
	}

	rp = pay(10000)
	if rp.Status != ledger.StatusPaid || !rp.Overpaid() {
		t.Fatalf("expected paid and overpaid, got %s overpaid=%v", rp.Status, rp.Overpaid())
	}
	if !q.published(messagequeue.SubjectPaymentRecorded) {
		t.Fatal("expected rent.payment_recorded event")
	}
}

func TestPaymentOnDueDateIsOnTime(t *testing.T) {
	due := date(2025, time.January, 5)
	svc, store, _, tenantID := ledgerFixture(t, due)
	ob := firstObligation(t, store, tenantID)

	rp, err := svc.RecordPayment(context.Background(), ob.ID, ledger.PaymentInput{
		Amount:      decimal.NewFromInt(50000),
		PaymentDate: due,
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if rp.Status != ledger.StatusPaid || rp.IsLate {
		t.Fatalf("payment on the due date must be on-time, got %s late=%v", rp.Status, rp.IsLate)
	}
}

func TestPaymentAfterDueDateIsLate(t *testing.T) {
	now := date(2025, time.January, 10)
	svc, store, _, tenantID := ledgerFixture(t, now)
	ob := firstObligation(t, store, tenantID)

	rp, err := svc.RecordPayment(context.Background(), ob.ID, ledger.PaymentInput{
		Amount:      decimal.NewFromInt(50000),
		PaymentDate: now,
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if rp.Status != ledger.StatusPaid || !rp.IsLate {
		t.Fatalf("expected paid but late, got %s late=%v", rp.Status, rp.IsLate)
	}

	// Fully paid clears the tenant-level flag even when the period was late.
	ten, err := store.GetTenancy(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("get tenancy: %v", err)
	}
	if ten.IsLateOnRent {
		t.Fatal("settled ledger must clear the tenant late flag")
	}
}

func TestRecordPaymentRejectsNonPositive(t *testing.T) {
	now := date(2025, time.January, 3)
	svc, store, _, tenantID := ledgerFixture(t, now)
	ob := firstObligation(t, store, tenantID)

	_, err := svc.RecordPayment(context.Background(), ob.ID, ledger.PaymentInput{Amount: decimal.Zero})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestWaivedObligationRejectsPayment(t *testing.T) {
	now := date(2025, time.January, 3)
	svc, store, q, tenantID := ledgerFixture(t, now)
	ob := firstObligation(t, store, tenantID)

	if _, err := svc.Waive(context.Background(), ob.ID, "landlord-1", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("waive without reason: expected ErrValidation, got %v", err)
	}

	waived, err := svc.Waive(context.Background(), ob.ID, "landlord-1", "unit uninhabitable during repairs")
	if err != nil {
		t.Fatalf("waive: %v", err)
	}
	if waived.Status != ledger.StatusWaived {
		t.Fatalf("expected waived, got %s", waived.Status)
	}
	if !q.published(messagequeue.SubjectPaymentWaived) {
		t.Fatal("expected rent.payment_waived event")
	}

	_, err = svc.RecordPayment(context.Background(), ob.ID, ledger.PaymentInput{
		Amount:      decimal.NewFromInt(50000),
		PaymentDate: now,
	})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestAssessLateFee(t *testing.T) {
	svc, store, _, tenantID := ledgerFixture(t, date(2025, time.January, 3))
	ob := firstObligation(t, store, tenantID)

	// Not yet past due.
	_, err := svc.AssessLateFee(context.Background(), ob.ID, "landlord-1", decimal.NewFromInt(2500))
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState before due date, got %v", err)
	}

	svc.now = func() time.Time { return date(2025, time.January, 10) }
	rp, err := svc.AssessLateFee(context.Background(), ob.ID, "landlord-1", decimal.NewFromInt(2500))
	if err != nil {
		t.Fatalf("assess late fee: %v", err)
	}
	if !rp.LateFee.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("expected late fee 2500, got %s", rp.LateFee)
	}
	if !rp.AmountDue.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("late fee must not change amount due, got %s", rp.AmountDue)
	}
	if rp.Status != ledger.StatusLate {
		t.Fatalf("expected late, got %s", rp.Status)
	}
}

func TestSweepOverdue(t *testing.T) {
	svc, store, _, tenantID := ledgerFixture(t, date(2025, time.January, 10))

	flipped, err := svc.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if flipped != 1 {
		t.Fatalf("expected 1 flipped obligation, got %d", flipped)
	}

	ob := firstObligation(t, store, tenantID)
	if ob.Status != ledger.StatusLate || !ob.IsLate {
		t.Fatalf("expected late after sweep, got %s late=%v", ob.Status, ob.IsLate)
	}
	ten, _ := store.GetTenancy(context.Background(), tenantID)
	if !ten.IsLateOnRent {
		t.Fatal("expected tenant late flag raised by sweep")
	}
}

func TestRolloverIdempotent(t *testing.T) {
	svc, _, _, _ := ledgerFixture(t, date(2025, time.March, 10))

	created, err := svc.Rollover(context.Background())
	if err != nil {
		t.Fatalf("rollover: %v", err)
	}
	// January was seeded at creation; February and March are new.
	if created != 2 {
		t.Fatalf("expected 2 created, got %d", created)
	}

	created, err = svc.Rollover(context.Background())
	if err != nil {
		t.Fatalf("second rollover: %v", err)
	}
	if created != 0 {
		t.Fatalf("expected idempotent rollover, got %d created", created)
	}
}

func TestEnsureObligationBounds(t *testing.T) {
	svc, _, _, tenantID := ledgerFixture(t, date(2025, time.March, 10))

	_, _, err := svc.EnsureObligation(context.Background(), tenantID, money.Period{Year: 2024, Month: time.December})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("period before lease: expected ErrValidation, got %v", err)
	}
	_, _, err = svc.EnsureObligation(context.Background(), tenantID, money.Period{Year: 2026, Month: time.January})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("period after lease: expected ErrValidation, got %v", err)
	}

	rp, created, err := svc.EnsureObligation(context.Background(), tenantID, money.Period{Year: 2025, Month: time.June})
	if err != nil || !created {
		t.Fatalf("expected new obligation, got created=%v err=%v", created, err)
	}
	if !rp.DueDate.Equal(date(2025, time.June, 5)) {
		t.Fatalf("expected due 2025-06-05, got %s", rp.DueDate)
	}
}
