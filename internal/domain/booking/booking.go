// Package booking defines short-stay reservations, structurally parallel to
// a tenancy but fixed-term rather than recurring.
package booking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain"
	"github.com/Strob0t/LeaseForge/internal/domain/money"
)

// Status represents the reservation state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// Booking is one short-stay reservation of a unit.
type Booking struct {
	ID                 string          `json:"id"`
	PropertyID         string          `json:"property_id"`
	GuestID            string          `json:"guest_id"`
	HostID             string          `json:"host_id"`
	CheckIn            time.Time       `json:"check_in"`
	CheckOut           time.Time       `json:"check_out"`
	TotalMonths        int             `json:"total_months"`
	MonthlyRent        decimal.Decimal `json:"monthly_rent"`
	ServiceFee         decimal.Decimal `json:"service_fee"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	Status             Status          `json:"status"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CancellationDate   *time.Time      `json:"cancellation_date,omitempty"`
	Version            int             `json:"version"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// CreateRequest holds the fields needed to reserve a unit.
type CreateRequest struct {
	PropertyID  string          `json:"property_id"`
	GuestID     string          `json:"guest_id"`
	HostID      string          `json:"host_id"`
	CheckIn     time.Time       `json:"check_in"`
	CheckOut    time.Time       `json:"check_out"`
	TotalMonths int             `json:"total_months"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
}

// Validate checks the reservation terms.
func (r CreateRequest) Validate() error {
	if r.PropertyID == "" {
		return fmt.Errorf("property_id is required: %w", domain.ErrValidation)
	}
	if r.GuestID == "" || r.HostID == "" {
		return fmt.Errorf("guest_id and host_id are required: %w", domain.ErrValidation)
	}
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return fmt.Errorf("check_in and check_out are required: %w", domain.ErrValidation)
	}
	if !r.CheckOut.After(r.CheckIn) {
		return fmt.Errorf("check_out %s must be after check_in %s: %w",
			r.CheckOut.Format("2006-01-02"), r.CheckIn.Format("2006-01-02"), domain.ErrValidation)
	}
	if r.TotalMonths < 1 {
		return fmt.Errorf("total_months must be at least 1: %w", domain.ErrValidation)
	}
	return money.RequirePositive(r.MonthlyRent, "monthly_rent")
}

// ComputeTotals derives the service fee and total amount from the platform
// commission rate. total = rent * months + fee, fee = rent * months * rate.
func ComputeTotals(monthlyRent decimal.Decimal, totalMonths int, commissionRate decimal.Decimal) (fee, total decimal.Decimal) {
	base := monthlyRent.Mul(decimal.NewFromInt(int64(totalMonths)))
	fee = base.Mul(commissionRate).Round(2)
	return fee, base.Add(fee)
}
