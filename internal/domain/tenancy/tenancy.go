// Package tenancy defines the long-term lease domain entity and its
// status machine.
package tenancy

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain"
	"github.com/Strob0t/LeaseForge/internal/domain/money"
)

// Status represents the lifecycle state of a tenancy.
type Status string

const (
	StatusActive  Status = "active"
	StatusEnded   Status = "ended"
	StatusEvicted Status = "evicted"
)

// CanTransition reports whether moving from one status to another is legal.
// Active is the only non-terminal state; ended and evicted never transition.
func CanTransition(from, to Status) bool {
	if from != StatusActive {
		return false
	}
	return to == StatusEnded || to == StatusEvicted
}

// Occupant identifies who holds the lease: a registered platform user, or an
// independent tenant known only by name and contact.
type Occupant struct {
	UserID  string `json:"user_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// Tenant represents one occupancy of a rental unit.
type Tenant struct {
	ID              string          `json:"id"`
	PropertyID      string          `json:"property_id"`
	LandlordID      string          `json:"landlord_id"`
	Occupant        Occupant        `json:"occupant"`
	LeaseStartDate  time.Time       `json:"lease_start_date"`
	LeaseEndDate    time.Time       `json:"lease_end_date"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	Status          Status          `json:"status"`
	IsLateOnRent    bool            `json:"is_late_on_rent"`
	MoveInDate      *time.Time      `json:"move_in_date,omitempty"`
	MoveOutDate     *time.Time      `json:"move_out_date,omitempty"`
	ConditionNotes  string          `json:"condition_notes,omitempty"`
	EvictionReason  string          `json:"eviction_reason,omitempty"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateRequest holds the fields needed to let a unit.
type CreateRequest struct {
	PropertyID      string          `json:"property_id"`
	LandlordID      string          `json:"landlord_id"`
	Occupant        Occupant        `json:"occupant"`
	LeaseStartDate  time.Time       `json:"lease_start_date"`
	LeaseEndDate    time.Time       `json:"lease_end_date"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	MoveInDate      *time.Time      `json:"move_in_date,omitempty"`
}

// Validate checks the lease terms. It does not check unit availability;
// overlap is enforced at the storage layer.
func (r CreateRequest) Validate() error {
	if r.PropertyID == "" {
		return fmt.Errorf("property_id is required: %w", domain.ErrValidation)
	}
	if r.LandlordID == "" {
		return fmt.Errorf("landlord_id is required: %w", domain.ErrValidation)
	}
	if r.Occupant.UserID == "" && r.Occupant.Name == "" {
		return fmt.Errorf("occupant user_id or name is required: %w", domain.ErrValidation)
	}
	if r.LeaseStartDate.IsZero() || r.LeaseEndDate.IsZero() {
		return fmt.Errorf("lease dates are required: %w", domain.ErrValidation)
	}
	if !r.LeaseEndDate.After(r.LeaseStartDate) {
		return fmt.Errorf("lease_end_date %s must be after lease_start_date %s: %w",
			r.LeaseEndDate.Format("2006-01-02"), r.LeaseStartDate.Format("2006-01-02"), domain.ErrValidation)
	}
	if err := money.RequirePositive(r.MonthlyRent, "monthly_rent"); err != nil {
		return err
	}
	return money.RequireNonNegative(r.SecurityDeposit, "security_deposit")
}

// RenewRequest extends a lease, optionally changing rent for future periods.
type RenewRequest struct {
	NewEndDate time.Time        `json:"new_end_date"`
	NewRent    *decimal.Decimal `json:"new_rent,omitempty"`
}

// FirstPeriod returns the billing period of the lease start.
func (t *Tenant) FirstPeriod() money.Period {
	return money.PeriodOf(t.LeaseStartDate)
}
