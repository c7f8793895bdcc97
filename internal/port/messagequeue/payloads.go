package messagequeue

// TenancyEventPayload is the schema for tenancy.* messages.
type TenancyEventPayload struct {
	TenantID   string `json:"tenant_id"`
	PropertyID string `json:"property_id"`
	LandlordID string `json:"landlord_id"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
}

// PaymentEventPayload is the schema for rent.* messages.
type PaymentEventPayload struct {
	ObligationID string `json:"obligation_id"`
	TenantID     string `json:"tenant_id"`
	PropertyID   string `json:"property_id"`
	PeriodKey    string `json:"payment_month"`
	Amount       string `json:"amount"`
	Status       string `json:"status"`
	Overpaid     bool   `json:"overpaid,omitempty"`
	TenantLate   bool   `json:"tenant_late"`
}

// MaintenanceEventPayload is the schema for maintenance.* messages.
type MaintenanceEventPayload struct {
	RequestID  string `json:"request_id"`
	PropertyID string `json:"property_id"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
}

// BookingEventPayload is the schema for booking.* messages.
type BookingEventPayload struct {
	BookingID  string `json:"booking_id"`
	PropertyID string `json:"property_id"`
	GuestID    string `json:"guest_id"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
}
