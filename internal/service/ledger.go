package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/adapter/otel"
	"github.com/Strob0t/LeaseForge/internal/domain"
	"github.com/Strob0t/LeaseForge/internal/domain/audit"
	"github.com/Strob0t/LeaseForge/internal/domain/ledger"
	"github.com/Strob0t/LeaseForge/internal/domain/money"
	"github.com/Strob0t/LeaseForge/internal/domain/tenancy"
	"github.com/Strob0t/LeaseForge/internal/port/database"
	"github.com/Strob0t/LeaseForge/internal/port/messagequeue"
)

// LedgerService handles rent obligations and payments.
type LedgerService struct {
	store   database.Store
	queue   messagequeue.Queue
	metrics *otel.Metrics
	dueDay  int
	now     func() time.Time
}

// NewLedgerService creates a new LedgerService. metrics may be nil.
func NewLedgerService(store database.Store, queue messagequeue.Queue, metrics *otel.Metrics, dueDay int) *LedgerService {
	return &LedgerService{
		store:   store,
		queue:   queue,
		metrics: metrics,
		dueDay:  dueDay,
		now:     time.Now,
	}
}

// EnsureObligation generates the rent obligation for one billing period of
// an active tenancy. Generation is idempotent; replays return the existing
// row with created=false.
func (s *LedgerService) EnsureObligation(ctx context.Context, tenantID string, period money.Period) (*ledger.RentPayment, bool, error) {
	t, err := s.store.GetTenancy(ctx, tenantID)
	if err != nil {
		return nil, false, err
	}
	if t.Status != tenancy.StatusActive {
		return nil, false, fmt.Errorf("tenancy %s is %s, no new obligations: %w", tenantID, t.Status, domain.ErrInvalidState)
	}
	if period.Before(t.FirstPeriod()) || money.PeriodOf(t.LeaseEndDate).Before(period) {
		return nil, false, fmt.Errorf("period %s is outside the lease %s to %s: %w",
			period.Key(), t.LeaseStartDate.Format("2006-01-02"), t.LeaseEndDate.Format("2006-01-02"), domain.ErrValidation)
	}

	return s.store.EnsureObligation(ctx, t.ID, t.PropertyID, period, t.MonthlyRent, period.DueDate(s.dueDay))
}

// ResolveObligation returns the obligation for (tenant, period), generating
// it on demand when the period is still open on an active tenancy.
func (s *LedgerService) ResolveObligation(ctx context.Context, tenantID string, period money.Period) (*ledger.RentPayment, error) {
	rp, err := s.store.GetObligationByPeriod(ctx, tenantID, period)
	if err == nil {
		return rp, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	rp, _, err = s.EnsureObligation(ctx, tenantID, period)
	return rp, err
}

// Get returns an obligation by ID.
func (s *LedgerService) Get(ctx context.Context, id string) (*ledger.RentPayment, error) {
	return s.store.GetObligation(ctx, id)
}

// ListByTenant returns the full ledger for a tenancy, oldest period first.
func (s *LedgerService) ListByTenant(ctx context.Context, tenantID string) ([]ledger.RentPayment, error) {
	return s.store.ListObligationsByTenant(ctx, tenantID)
}

// RecordPayment records one externally confirmed payment against an
// obligation. Partial amounts accumulate; overpayment is accepted and
// surfaced on the returned obligation, never rolled into another period.
func (s *LedgerService) RecordPayment(ctx context.Context, obligationID string, in ledger.PaymentInput) (*ledger.RentPayment, error) {
	if err := money.RequirePositive(in.Amount, "amount"); err != nil {
		return nil, err
	}
	ctx, span := otel.StartPaymentSpan(ctx, obligationID)
	defer span.End()

	if in.PaymentDate.IsZero() {
		in.PaymentDate = s.now()
	}
	in.PaymentDate = dateOnly(in.PaymentDate)

	rp, tenantLate, err := s.store.RecordPayment(ctx, obligationID, in, dateOnly(s.now()))
	if err != nil {
		return nil, err
	}
	if rp.Overpaid() {
		slog.Warn("obligation overpaid",
			"obligation_id", rp.ID, "tenant_id", rp.TenantID,
			"amount_paid", rp.AmountPaid, "amount_due", rp.AmountDue)
	}

	if s.metrics != nil {
		s.metrics.PaymentsRecorded.Add(ctx, 1)
	}
	publish(ctx, s.queue, messagequeue.SubjectPaymentRecorded, messagequeue.PaymentEventPayload{
		ObligationID: rp.ID,
		TenantID:     rp.TenantID,
		PropertyID:   rp.PropertyID,
		PeriodKey:    rp.PeriodKey,
		Amount:       in.Amount.String(),
		Status:       string(rp.Status),
		Overpaid:     rp.Overpaid(),
		TenantLate:   tenantLate,
	})
	return rp, nil
}

// AssessLateFee adds a fee to a past-due, unsettled obligation.
func (s *LedgerService) AssessLateFee(ctx context.Context, obligationID, actorID string, fee decimal.Decimal) (*ledger.RentPayment, error) {
	if err := money.RequirePositive(fee, "late_fee"); err != nil {
		return nil, err
	}

	rp, err := s.store.AssessLateFee(ctx, obligationID, fee, dateOnly(s.now()))
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.LateFeesAssessed.Add(ctx, 1)
	}
	s.audit(ctx, actorID, audit.ActionLateFeeAssessed, rp.ID, "fee "+fee.String())
	publish(ctx, s.queue, messagequeue.SubjectLateFeeAssessed, messagequeue.PaymentEventPayload{
		ObligationID: rp.ID,
		TenantID:     rp.TenantID,
		PropertyID:   rp.PropertyID,
		PeriodKey:    rp.PeriodKey,
		Amount:       fee.String(),
		Status:       string(rp.Status),
	})
	return rp, nil
}

// Waive forgives an unsettled obligation. A reason is required; waived
// periods count as neither late nor on-time.
func (s *LedgerService) Waive(ctx context.Context, obligationID, actorID, reason string) (*ledger.RentPayment, error) {
	if reason == "" {
		return nil, fmt.Errorf("waive reason is required: %w", domain.ErrValidation)
	}

	rp, err := s.store.WaiveObligation(ctx, obligationID, reason, dateOnly(s.now()))
	if err != nil {
		return nil, err
	}

	s.audit(ctx, actorID, audit.ActionPaymentWaived, rp.ID, reason)
	publish(ctx, s.queue, messagequeue.SubjectPaymentWaived, messagequeue.PaymentEventPayload{
		ObligationID: rp.ID,
		TenantID:     rp.TenantID,
		PropertyID:   rp.PropertyID,
		PeriodKey:    rp.PeriodKey,
		Status:       string(rp.Status),
	})
	return rp, nil
}

// Rollover generates any missing obligations for every active tenancy, from
// the lease start through the current period (capped at the lease end).
// Safe to run repeatedly; returns the number of rows created.
func (s *LedgerService) Rollover(ctx context.Context) (int, error) {
	ctx, span := otel.StartRolloverSpan(ctx)
	defer span.End()

	tenancies, err := s.store.ListActiveTenancies(ctx)
	if err != nil {
		return 0, err
	}

	current := money.PeriodOf(s.now())
	var created int
	for i := range tenancies {
		t := &tenancies[i]
		last := money.PeriodOf(t.LeaseEndDate)
		if current.Before(last) {
			last = current
		}
		for _, period := range money.PeriodsBetween(t.FirstPeriod(), last) {
			_, isNew, err := s.store.EnsureObligation(ctx, t.ID, t.PropertyID, period, t.MonthlyRent, period.DueDate(s.dueDay))
			if err != nil {
				return created, fmt.Errorf("rollover tenant %s period %s: %w", t.ID, period.Key(), err)
			}
			if isNew {
				created++
			}
		}
	}
	return created, nil
}

// SweepOverdue marks every open obligation past its due date as late.
// Returns the number of flipped rows.
func (s *LedgerService) SweepOverdue(ctx context.Context) (int, error) {
	ctx, span := otel.StartSweepSpan(ctx)
	defer span.End()

	return s.store.SweepOverdue(ctx, dateOnly(s.now()))
}

func (s *LedgerService) audit(ctx context.Context, actorID, action, entityID, detail string) {
	e := &audit.Entry{ActorID: actorID, Action: action, EntityKind: "obligation", EntityID: entityID, Detail: detail}
	if err := s.store.AppendAudit(ctx, e); err != nil {
		slog.Error("failed to append audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}
