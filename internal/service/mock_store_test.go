package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain"
	"github.com/Strob0t/LeaseForge/internal/domain/audit"
	"github.com/Strob0t/LeaseForge/internal/domain/booking"
	"github.com/Strob0t/LeaseForge/internal/domain/ledger"
	"github.com/Strob0t/LeaseForge/internal/domain/maintenance"
	"github.com/Strob0t/LeaseForge/internal/domain/money"
	"github.com/Strob0t/LeaseForge/internal/domain/tenancy"
	"github.com/Strob0t/LeaseForge/internal/port/identity"
	"github.com/Strob0t/LeaseForge/internal/port/messagequeue"
)

// mockStore is an in-memory database.Store with the same transactional
// semantics as the postgres adapter: guarded transitions, idempotent
// obligation upserts, and overlap rejection.
type mockStore struct {
	mu          sync.Mutex
	tenancies   map[string]*tenancy.Tenant
	obligations map[string]*ledger.RentPayment
	maints      map[string]*maintenance.Request
	bookings    map[string]*booking.Booking
	auditLog    []audit.Entry
	seq         int
}

func newMockStore() *mockStore {
	return &mockStore{
		tenancies:   make(map[string]*tenancy.Tenant),
		obligations: make(map[string]*ledger.RentPayment),
		maints:      make(map[string]*maintenance.Request),
		bookings:    make(map[string]*booking.Booking),
	}
}

func (m *mockStore) id(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

// rangesOverlap matches daterange && daterange: half-open [start, end).
func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func (m *mockStore) unitTaken(propertyID string, from, to time.Time) bool {
	for _, t := range m.tenancies {
		if t.PropertyID == propertyID && t.Status == tenancy.StatusActive &&
			rangesOverlap(t.LeaseStartDate, t.LeaseEndDate, from, to) {
			return true
		}
	}
	for _, b := range m.bookings {
		if b.PropertyID == propertyID &&
			(b.Status == booking.StatusPending || b.Status == booking.StatusConfirmed) &&
			rangesOverlap(b.CheckIn, b.CheckOut, from, to) {
			return true
		}
	}
	return false
}

// --- Tenancies ---

func (m *mockStore) CreateTenancy(_ context.Context, req tenancy.CreateRequest, firstPeriod money.Period, dueDate time.Time) (*tenancy.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unitTaken(req.PropertyID, req.LeaseStartDate, req.LeaseEndDate) {
		return nil, fmt.Errorf("unit %s is occupied: %w", req.PropertyID, domain.ErrConflict)
	}

	now := time.Now()
	t := &tenancy.Tenant{
		ID:              m.id("tenant"),
		PropertyID:      req.PropertyID,
		LandlordID:      req.LandlordID,
		Occupant:        req.Occupant,
		LeaseStartDate:  req.LeaseStartDate,
		LeaseEndDate:    req.LeaseEndDate,
		MonthlyRent:     req.MonthlyRent,
		SecurityDeposit: req.SecurityDeposit,
		Status:          tenancy.StatusActive,
		MoveInDate:      req.MoveInDate,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.tenancies[t.ID] = t

	rp := &ledger.RentPayment{
		ID:           m.id("rp"),
		TenantID:     t.ID,
		PropertyID:   t.PropertyID,
		PaymentMonth: firstPeriod,
		PeriodKey:    firstPeriod.Key(),
		AmountDue:    t.MonthlyRent,
		Status:       ledger.StatusPending,
		DueDate:      dueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.obligations[rp.ID] = rp

	out := *t
	return &out, nil
}

func (m *mockStore) GetTenancy(_ context.Context, id string) (*tenancy.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tenancies[id]
	if !ok {
		return nil, fmt.Errorf("get tenancy %s: %w", id, domain.ErrNotFound)
	}
	out := *t
	return &out, nil
}

func (m *mockStore) ListTenanciesByLandlord(_ context.Context, landlordID string) ([]tenancy.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []tenancy.Tenant
	for _, t := range m.tenancies {
		if t.LandlordID == landlordID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockStore) ListActiveTenancies(_ context.Context) ([]tenancy.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []tenancy.Tenant
	for _, t := range m.tenancies {
		if t.Status == tenancy.StatusActive {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) CloseTenancy(_ context.Context, id string, to tenancy.Status, moveOut time.Time, conditionNotes, evictionReason string) (*tenancy.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tenancies[id]
	if !ok {
		return nil, fmt.Errorf("close tenancy %s: %w", id, domain.ErrNotFound)
	}
	if t.Status != tenancy.StatusActive {
		return nil, fmt.Errorf("close tenancy %s: no longer active: %w", id, domain.ErrConflict)
	}

	t.Status = to
	t.MoveOutDate = &moveOut
	if conditionNotes != "" {
		t.ConditionNotes = conditionNotes
	}
	t.EvictionReason = evictionReason
	t.Version++
	t.UpdatedAt = time.Now()

	out := *t
	return &out, nil
}

func (m *mockStore) RenewTenancy(_ context.Context, id string, newEnd time.Time, newRent *decimal.Decimal, version int) (*tenancy.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tenancies[id]
	if !ok {
		return nil, fmt.Errorf("renew tenancy %s: %w", id, domain.ErrNotFound)
	}
	if t.Status != tenancy.StatusActive || t.Version != version {
		return nil, fmt.Errorf("renew tenancy %s: %w", id, domain.ErrConflict)
	}

	t.LeaseEndDate = newEnd
	if newRent != nil {
		t.MonthlyRent = *newRent
	}
	t.Version++
	t.UpdatedAt = time.Now()

	out := *t
	return &out, nil
}

// --- Rent ledger ---

func (m *mockStore) EnsureObligation(_ context.Context, tenantID, propertyID string, period money.Period, amountDue decimal.Decimal, dueDate time.Time) (*ledger.RentPayment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rp := range m.obligations {
		if rp.TenantID == tenantID && rp.PaymentMonth == period {
			out := *rp
			return &out, false, nil
		}
	}

	now := time.Now()
	rp := &ledger.RentPayment{
		ID:           m.id("rp"),
		TenantID:     tenantID,
		PropertyID:   propertyID,
		PaymentMonth: period,
		PeriodKey:    period.Key(),
		AmountDue:    amountDue,
		Status:       ledger.StatusPending,
		DueDate:      dueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.obligations[rp.ID] = rp

	out := *rp
	return &out, true, nil
}

func (m *mockStore) GetObligation(_ context.Context, id string) (*ledger.RentPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rp, ok := m.obligations[id]
	if !ok {
		return nil, fmt.Errorf("get obligation %s: %w", id, domain.ErrNotFound)
	}
	out := *rp
	return &out, nil
}

func (m *mockStore) GetObligationByPeriod(_ context.Context, tenantID string, period money.Period) (*ledger.RentPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rp := range m.obligations {
		if rp.TenantID == tenantID && rp.PaymentMonth == period {
			out := *rp
			return &out, nil
		}
	}
	return nil, fmt.Errorf("get obligation %s/%s: %w", tenantID, period.Key(), domain.ErrNotFound)
}

func (m *mockStore) ListObligationsByTenant(_ context.Context, tenantID string) ([]ledger.RentPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.obligationsOf(tenantID), nil
}

func (m *mockStore) obligationsOf(tenantID string) []ledger.RentPayment {
	var out []ledger.RentPayment
	for _, rp := range m.obligations {
		if rp.TenantID == tenantID {
			out = append(out, *rp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentMonth.Before(out[j].PaymentMonth) })
	return out
}

func (m *mockStore) refreshLateness(tenantID string, asOf time.Time) bool {
	late := ledger.DeriveLateness(m.obligationsOf(tenantID), asOf)
	if t, ok := m.tenancies[tenantID]; ok {
		t.IsLateOnRent = late
	}
	return late
}

func (m *mockStore) RecordPayment(_ context.Context, obligationID string, in ledger.PaymentInput, asOf time.Time) (*ledger.RentPayment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rp, ok := m.obligations[obligationID]
	if !ok {
		return nil, false, fmt.Errorf("record payment on %s: %w", obligationID, domain.ErrNotFound)
	}
	if rp.Status == ledger.StatusWaived {
		return nil, false, fmt.Errorf("obligation %s is waived: %w", obligationID, domain.ErrInvalidState)
	}

	rp.AmountPaid = rp.AmountPaid.Add(in.Amount)
	rp.Status = ledger.DeriveStatus(rp.AmountPaid, rp.AmountDue, rp.DueDate, asOf)
	paymentDate := in.PaymentDate
	rp.PaymentDate = &paymentDate
	rp.IsLate = ledger.DeriveIsLate(rp.Status, rp.DueDate, rp.PaymentDate, asOf)
	rp.PaymentMethod = in.PaymentMethod
	rp.TransactionID = in.TransactionID
	if in.Notes != "" {
		rp.Notes = in.Notes
	}
	rp.UpdatedAt = time.Now()

	late := m.refreshLateness(rp.TenantID, asOf)
	out := *rp
	return &out, late, nil
}

func (m *mockStore) AssessLateFee(_ context.Context, obligationID string, fee decimal.Decimal, asOf time.Time) (*ledger.RentPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rp, ok := m.obligations[obligationID]
	if !ok {
		return nil, fmt.Errorf("assess late fee on %s: %w", obligationID, domain.ErrNotFound)
	}
	if rp.Status == ledger.StatusPaid || rp.Status == ledger.StatusWaived {
		return nil, fmt.Errorf("obligation %s is settled: %w", obligationID, domain.ErrInvalidState)
	}
	if !asOf.After(rp.DueDate) {
		return nil, fmt.Errorf("obligation %s is not past due: %w", obligationID, domain.ErrInvalidState)
	}

	rp.LateFee = rp.LateFee.Add(fee)
	rp.IsLate = true
	if rp.Status == ledger.StatusPending {
		rp.Status = ledger.StatusLate
	}
	m.refreshLateness(rp.TenantID, asOf)

	out := *rp
	return &out, nil
}

func (m *mockStore) WaiveObligation(_ context.Context, obligationID, reason string, asOf time.Time) (*ledger.RentPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rp, ok := m.obligations[obligationID]
	if !ok {
		return nil, fmt.Errorf("waive obligation %s: %w", obligationID, domain.ErrNotFound)
	}
	if rp.Status == ledger.StatusPaid || rp.Status == ledger.StatusWaived {
		return nil, fmt.Errorf("obligation %s is settled: %w", obligationID, domain.ErrInvalidState)
	}

	rp.Status = ledger.StatusWaived
	rp.IsLate = false
	rp.WaivedReason = reason
	m.refreshLateness(rp.TenantID, asOf)

	out := *rp
	return &out, nil
}

func (m *mockStore) SweepOverdue(_ context.Context, asOf time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var flipped int
	for _, rp := range m.obligations {
		if !asOf.After(rp.DueDate) {
			continue
		}
		switch rp.Status {
		case ledger.StatusPending:
			rp.Status = ledger.StatusLate
			rp.IsLate = true
			flipped++
		case ledger.StatusPartial:
			if !rp.IsLate {
				rp.IsLate = true
				flipped++
			}
		}
	}
	for id := range m.tenancies {
		m.refreshLateness(id, asOf)
	}
	return flipped, nil
}

func (m *mockStore) ComputeStats(_ context.Context, landlordID string, asOf time.Time) (*ledger.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &ledger.Stats{LandlordID: landlordID, TotalMonthlyRent: decimal.Zero, ComputedAt: asOf}
	mine := make(map[string]bool)
	for _, t := range m.tenancies {
		if t.LandlordID != landlordID {
			continue
		}
		mine[t.ID] = true
		stats.TotalTenants++
		if t.Status == tenancy.StatusActive {
			stats.ActiveTenants++
			stats.TotalMonthlyRent = stats.TotalMonthlyRent.Add(t.MonthlyRent)
		}
	}

	for _, rp := range m.obligations {
		// Only periods strictly past due count; waived periods are neither
		// late nor on-time and stay out of the denominator.
		if !mine[rp.TenantID] || rp.Status == ledger.StatusWaived || !rp.DueDate.Before(asOf) {
			continue
		}
		stats.TotalPeriodsDue++
		wasLate := rp.Status != ledger.StatusPaid ||
			(rp.PaymentDate != nil && rp.PaymentDate.After(rp.DueDate))
		if wasLate {
			stats.LatePayments++
		}
		if rp.AmountPaid.GreaterThan(rp.AmountDue.Add(rp.LateFee)) {
			stats.OverpaidPeriods++
		}
	}

	if stats.TotalPeriodsDue > 0 {
		stats.OnTimeRate = float64(stats.TotalPeriodsDue-stats.LatePayments) / float64(stats.TotalPeriodsDue)
	} else {
		stats.OnTimeRate = 1.0
	}
	return stats, nil
}

// --- Maintenance ---

func (m *mockStore) CreateMaintenance(_ context.Context, req maintenance.CreateRequest) (*maintenance.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	r := &maintenance.Request{
		ID:          m.id("maint"),
		PropertyID:  req.PropertyID,
		TenantID:    req.TenantID,
		LandlordID:  req.LandlordID,
		Category:    req.Category,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      maintenance.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.maints[r.ID] = r

	out := *r
	return &out, nil
}

func (m *mockStore) GetMaintenance(_ context.Context, id string) (*maintenance.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.maints[id]
	if !ok {
		return nil, fmt.Errorf("get maintenance request %s: %w", id, domain.ErrNotFound)
	}
	out := *r
	return &out, nil
}

func (m *mockStore) ListMaintenanceByProperty(_ context.Context, propertyID string) ([]maintenance.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []maintenance.Request
	for _, r := range m.maints {
		if r.PropertyID == propertyID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockStore) TransitionMaintenance(_ context.Context, req *maintenance.Request, from maintenance.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.maints[req.ID]
	if !ok {
		return fmt.Errorf("transition maintenance request %s: %w", req.ID, domain.ErrNotFound)
	}
	if stored.Status != from {
		return fmt.Errorf("transition maintenance request %s from %s: %w", req.ID, from, domain.ErrConflict)
	}

	// completed_at is write-once, matching the SQL COALESCE guard.
	if stored.CompletedAt != nil {
		req.CompletedAt = stored.CompletedAt
	}
	req.UpdatedAt = time.Now()
	copied := *req
	m.maints[req.ID] = &copied
	return nil
}

// --- Bookings ---

func (m *mockStore) CreateBooking(_ context.Context, b *booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unitTaken(b.PropertyID, b.CheckIn, b.CheckOut) {
		return fmt.Errorf("unit %s is occupied: %w", b.PropertyID, domain.ErrConflict)
	}

	now := time.Now()
	b.ID = m.id("booking")
	b.Status = booking.StatusPending
	b.Version = 1
	b.CreatedAt = now
	b.UpdatedAt = now

	copied := *b
	m.bookings[b.ID] = &copied
	return nil
}

func (m *mockStore) GetBooking(_ context.Context, id string) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("get booking %s: %w", id, domain.ErrNotFound)
	}
	out := *b
	return &out, nil
}

func (m *mockStore) ListBookingsByProperty(_ context.Context, propertyID string) ([]booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []booking.Booking
	for _, b := range m.bookings {
		if b.PropertyID == propertyID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out, nil
}

func (m *mockStore) TransitionBooking(_ context.Context, id string, from, to booking.Status, reason string, cancelledAt *time.Time) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("transition booking %s: %w", id, domain.ErrNotFound)
	}
	if b.Status != from {
		return nil, fmt.Errorf("transition booking %s from %s: %w", id, from, domain.ErrConflict)
	}

	b.Status = to
	if reason != "" {
		b.CancellationReason = reason
	}
	if cancelledAt != nil {
		b.CancellationDate = cancelledAt
	}
	b.Version++
	b.UpdatedAt = time.Now()

	out := *b
	return &out, nil
}

// --- Audit ---

func (m *mockStore) AppendAudit(_ context.Context, e *audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = m.id("audit")
	e.CreatedAt = time.Now()
	m.auditLog = append(m.auditLog, *e)
	return nil
}

func (m *mockStore) ListAuditByEntity(_ context.Context, entityKind, entityID string) ([]audit.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []audit.Entry
	for _, e := range m.auditLog {
		if e.EntityKind == entityKind && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// mockQueue records published subjects for assertions.
type mockQueue struct {
	mu       sync.Mutex
	subjects []string
}

func (q *mockQueue) Publish(_ context.Context, subject string, _ []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.subjects = append(q.subjects, subject)
	return nil
}

func (q *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *mockQueue) Drain() error { return nil }

func (q *mockQueue) Close() error { return nil }

func (q *mockQueue) IsConnected() bool { return true }

func (q *mockQueue) published(subject string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, s := range q.subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// mockResolver serves canned identity profiles.
type mockResolver struct {
	profiles map[string]identity.Profile
}

func (r *mockResolver) Resolve(_ context.Context, userID string) (*identity.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("resolve user %s: %w", userID, domain.ErrNotFound)
	}
	return &p, nil
}
