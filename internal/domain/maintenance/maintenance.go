// Package maintenance defines repair/service requests and their status
// pipeline.
package maintenance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain"
)

// Status represents the position of a request in the repair pipeline.
type Status string

const (
	StatusPending      Status = "pending"
	StatusAssigned     Status = "assigned"
	StatusScheduled    Status = "scheduled"
	StatusInProgress   Status = "in_progress"
	StatusPendingParts Status = "pending_parts"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

// Priority of a maintenance request.
type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityMedium    Priority = "medium"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency:
		return true
	}
	return false
}

// transitions is the single source of truth for legal pipeline moves.
// Cancel is reachable from every non-terminal state.
var transitions = map[Status][]Status{
	StatusPending:      {StatusAssigned, StatusCancelled},
	StatusAssigned:     {StatusScheduled, StatusCancelled},
	StatusScheduled:    {StatusInProgress, StatusPendingParts, StatusCompleted, StatusCancelled},
	StatusInProgress:   {StatusPendingParts, StatusCompleted, StatusCancelled},
	StatusPendingParts: {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusCompleted:    nil,
	StatusCancelled:    nil,
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func Terminal(s Status) bool {
	return len(transitions[s]) == 0
}

// Request is one repair/service request. TenantID is empty for
// landlord-initiated requests.
type Request struct {
	ID              string           `json:"id"`
	PropertyID      string           `json:"property_id"`
	TenantID        string           `json:"tenant_id,omitempty"`
	LandlordID      string           `json:"landlord_id"`
	Category        string           `json:"category"`
	Description     string           `json:"description,omitempty"`
	Priority        Priority         `json:"priority"`
	Status          Status           `json:"status"`
	Vendor          string           `json:"vendor,omitempty"`
	VendorContact   string           `json:"vendor_contact,omitempty"`
	ScheduledDate   *time.Time       `json:"scheduled_date,omitempty"`
	EstimatedCost   *decimal.Decimal `json:"estimated_cost,omitempty"`
	ActualCost      *decimal.Decimal `json:"actual_cost,omitempty"`
	ResolutionNotes string           `json:"resolution_notes,omitempty"`
	CancelReason    string           `json:"cancel_reason,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// CreateRequest holds the fields needed to open a maintenance request.
type CreateRequest struct {
	PropertyID  string   `json:"property_id"`
	TenantID    string   `json:"tenant_id,omitempty"`
	LandlordID  string   `json:"landlord_id"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
}

// Validate checks the request fields.
func (r CreateRequest) Validate() error {
	if r.PropertyID == "" {
		return fmt.Errorf("property_id is required: %w", domain.ErrValidation)
	}
	if r.LandlordID == "" {
		return fmt.Errorf("landlord_id is required: %w", domain.ErrValidation)
	}
	if r.Category == "" {
		return fmt.Errorf("category is required: %w", domain.ErrValidation)
	}
	if !ValidPriority(r.Priority) {
		return fmt.Errorf("unknown priority %q: %w", r.Priority, domain.ErrValidation)
	}
	return nil
}
