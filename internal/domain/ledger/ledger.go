// Package ledger defines per-period rent obligations and the pure rules
// that derive their status.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain/money"
)

// Status represents the settlement state of one rent obligation.
// It is always a pure function of (amount_paid, amount_due, due_date, now),
// except for the explicitly administrative "waived".
type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
	StatusLate    Status = "late"
	StatusWaived  Status = "waived"
)

// RentPayment is the obligation record for one tenant and one billing month.
// AmountPaid accumulates across partial payments; LateFee is tracked
// separately from AmountDue and billed at collection time.
type RentPayment struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenant_id"`
	PropertyID    string          `json:"property_id"`
	PaymentMonth  money.Period    `json:"-"`
	PeriodKey     string          `json:"payment_month"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	LateFee       decimal.Decimal `json:"late_fee"`
	Status        Status          `json:"status"`
	IsLate        bool            `json:"is_late"`
	DueDate       time.Time       `json:"due_date"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	WaivedReason  string          `json:"waived_reason,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Overpaid reports whether more than the due amount plus late fee was paid.
// Overpayment is accepted and surfaced, never silently rolled forward.
func (p *RentPayment) Overpaid() bool {
	return p.AmountPaid.GreaterThan(p.AmountDue.Add(p.LateFee))
}

// Settled reports whether the obligation needs no further collection.
func (p *RentPayment) Settled() bool {
	return p.Status == StatusPaid || p.Status == StatusWaived
}

// DeriveStatus computes the obligation status from its inputs. A payment
// dated exactly on the due date is on-time (comparison is inclusive).
func DeriveStatus(amountPaid, amountDue decimal.Decimal, dueDate, asOf time.Time) Status {
	switch {
	case amountPaid.GreaterThanOrEqual(amountDue):
		return StatusPaid
	case amountPaid.IsPositive():
		return StatusPartial
	case asOf.After(dueDate):
		return StatusLate
	default:
		return StatusPending
	}
}

// DeriveIsLate reports whether an obligation was settled after its due date,
// or remains unsettled past it.
func DeriveIsLate(status Status, dueDate time.Time, paymentDate *time.Time, asOf time.Time) bool {
	switch status {
	case StatusPaid:
		return paymentDate != nil && paymentDate.After(dueDate)
	case StatusWaived:
		return false
	default:
		return asOf.After(dueDate)
	}
}

// DeriveLateness reports whether any obligation leaves the tenant late on
// rent. This is the single source of truth for the tenant-level flag; the
// stored column is a cache of this result.
func DeriveLateness(payments []RentPayment, asOf time.Time) bool {
	for i := range payments {
		p := &payments[i]
		if p.Settled() {
			continue
		}
		if asOf.After(p.DueDate) {
			return true
		}
	}
	return false
}

// PaymentInput describes one recorded (externally confirmed) payment.
type PaymentInput struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PaymentDate   time.Time       `json:"payment_date"`
	Notes         string          `json:"notes,omitempty"`
}

// Stats aggregates a landlord's portfolio from the full ledger history.
type Stats struct {
	LandlordID       string          `json:"landlord_id"`
	TotalTenants     int             `json:"total_tenants"`
	ActiveTenants    int             `json:"active_tenants"`
	TotalMonthlyRent decimal.Decimal `json:"total_monthly_rent"`
	TotalPeriodsDue  int             `json:"total_periods_due"`
	LatePayments     int             `json:"late_payments"`
	OverpaidPeriods  int             `json:"overpaid_periods"`
	OnTimeRate       float64         `json:"on_time_rate"`
	ComputedAt       time.Time       `json:"computed_at"`
}
