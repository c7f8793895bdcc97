// Package audit defines append-only records of administrative actions.
package audit

import "time"

// Entry is one administrative action. Entries are never updated or deleted.
type Entry struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	EntityKind string    `json:"entity_kind"`
	EntityID   string    `json:"entity_id"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Actions recorded by the lifecycle services.
const (
	ActionTenancyEnded    = "tenancy.ended"
	ActionTenantEvicted   = "tenancy.evicted"
	ActionLeaseRenewed    = "tenancy.renewed"
	ActionLateFeeAssessed = "rent.late_fee_assessed"
	ActionPaymentWaived   = "rent.payment_waived"
	ActionBookingCancel   = "booking.cancelled"
)
