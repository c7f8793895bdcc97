package messagequeue

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Validate checks whether data is valid JSON conforming to the schema
// associated with the given subject. Unknown subjects pass validation
// (future-proof for new message types).
func Validate(subject string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON on subject %s", subject)
	}

	var target any
	switch {
	case strings.HasPrefix(subject, "tenancy."):
		target = &TenancyEventPayload{}
	case strings.HasPrefix(subject, "rent."):
		target = &PaymentEventPayload{}
	case strings.HasPrefix(subject, "maintenance."):
		target = &MaintenanceEventPayload{}
	case strings.HasPrefix(subject, "booking."):
		target = &BookingEventPayload{}
	default:
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", subject, err)
	}
	return nil
}
