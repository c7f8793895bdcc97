// Package database defines the database store port (interface).
package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain/audit"
	"github.com/Strob0t/LeaseForge/internal/domain/booking"
	"github.com/Strob0t/LeaseForge/internal/domain/ledger"
	"github.com/Strob0t/LeaseForge/internal/domain/maintenance"
	"github.com/Strob0t/LeaseForge/internal/domain/money"
	"github.com/Strob0t/LeaseForge/internal/domain/tenancy"
)

// Store is the port interface for database operations. Implementations must
// make every mutation atomic: a rejected operation leaves no partial rows.
type Store interface {
	// Tenancies. CreateTenancy inserts the tenant and seeds the first
	// period's obligation in one transaction; it returns ErrConflict when
	// the unit already has an overlapping active tenancy or live booking.
	CreateTenancy(ctx context.Context, req tenancy.CreateRequest, firstPeriod money.Period, dueDate time.Time) (*tenancy.Tenant, error)
	GetTenancy(ctx context.Context, id string) (*tenancy.Tenant, error)
	ListTenanciesByLandlord(ctx context.Context, landlordID string) ([]tenancy.Tenant, error)
	ListActiveTenancies(ctx context.Context) ([]tenancy.Tenant, error)
	// CloseTenancy moves an active tenancy to a terminal status. The update
	// is guarded on the current status; losing a race returns ErrConflict.
	CloseTenancy(ctx context.Context, id string, to tenancy.Status, moveOut time.Time, conditionNotes, evictionReason string) (*tenancy.Tenant, error)
	RenewTenancy(ctx context.Context, id string, newEnd time.Time, newRent *decimal.Decimal, version int) (*tenancy.Tenant, error)

	// Rent ledger. EnsureObligation is an upsert by (tenant_id, payment_month);
	// created reports whether a new row was inserted.
	EnsureObligation(ctx context.Context, tenantID, propertyID string, period money.Period, amountDue decimal.Decimal, dueDate time.Time) (rp *ledger.RentPayment, created bool, err error)
	GetObligation(ctx context.Context, id string) (*ledger.RentPayment, error)
	GetObligationByPeriod(ctx context.Context, tenantID string, period money.Period) (*ledger.RentPayment, error)
	ListObligationsByTenant(ctx context.Context, tenantID string) ([]ledger.RentPayment, error)
	// RecordPayment accumulates a partial payment under a row lock,
	// recomputes the obligation status and the tenant late flag, and returns
	// both. Safe under concurrent partial payments.
	RecordPayment(ctx context.Context, obligationID string, in ledger.PaymentInput, asOf time.Time) (rp *ledger.RentPayment, tenantLate bool, err error)
	AssessLateFee(ctx context.Context, obligationID string, fee decimal.Decimal, asOf time.Time) (*ledger.RentPayment, error)
	WaiveObligation(ctx context.Context, obligationID, reason string, asOf time.Time) (*ledger.RentPayment, error)
	// SweepOverdue flips past-due open obligations to late and refreshes the
	// affected tenants' late flags. Returns the number of flipped rows.
	SweepOverdue(ctx context.Context, asOf time.Time) (int, error)
	ComputeStats(ctx context.Context, landlordID string, asOf time.Time) (*ledger.Stats, error)

	// Maintenance.
	CreateMaintenance(ctx context.Context, req maintenance.CreateRequest) (*maintenance.Request, error)
	GetMaintenance(ctx context.Context, id string) (*maintenance.Request, error)
	ListMaintenanceByProperty(ctx context.Context, propertyID string) ([]maintenance.Request, error)
	// TransitionMaintenance persists m guarded on the expected current
	// status; losing a race returns ErrConflict.
	TransitionMaintenance(ctx context.Context, m *maintenance.Request, from maintenance.Status) error

	// Bookings. CreateBooking returns ErrConflict on unit overlap with an
	// active tenancy or a live booking.
	CreateBooking(ctx context.Context, b *booking.Booking) error
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	ListBookingsByProperty(ctx context.Context, propertyID string) ([]booking.Booking, error)
	TransitionBooking(ctx context.Context, id string, from, to booking.Status, reason string, cancelledAt *time.Time) (*booking.Booking, error)

	// Audit log (append-only).
	AppendAudit(ctx context.Context, e *audit.Entry) error
	ListAuditByEntity(ctx context.Context, entityKind, entityID string) ([]audit.Entry, error)
}
