package maintenance

import (
	"errors"
	"testing"

	"github.com/Strob0t/LeaseForge/internal/domain"
)

func TestTransitionTable(t *testing.T) {
	all := []Status{
		StatusPending, StatusAssigned, StatusScheduled, StatusInProgress,
		StatusPendingParts, StatusCompleted, StatusCancelled,
	}
	legal := map[[2]Status]bool{
		{StatusPending, StatusAssigned}:        true,
		{StatusAssigned, StatusScheduled}:      true,
		{StatusScheduled, StatusInProgress}:    true,
		{StatusScheduled, StatusPendingParts}:  true,
		{StatusScheduled, StatusCompleted}:     true,
		{StatusInProgress, StatusPendingParts}: true,
		{StatusInProgress, StatusCompleted}:    true,
		{StatusPendingParts, StatusInProgress}: true,
		{StatusPendingParts, StatusCompleted}:  true,
	}
	// Cancel from every non-terminal state.
	for _, from := range all {
		if !Terminal(from) {
			legal[[2]Status{from, StatusCancelled}] = true
		}
	}
	for _, from := range all {
		for _, to := range all {
			want := legal[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStates(t *testing.T) {
	if !Terminal(StatusCompleted) || !Terminal(StatusCancelled) {
		t.Fatal("completed and cancelled must be terminal")
	}
	if Terminal(StatusPendingParts) {
		t.Fatal("pending_parts is not terminal")
	}
}

func TestCreateRequestValidate(t *testing.T) {
	req := CreateRequest{
		PropertyID: "prop-1",
		LandlordID: "ll-1",
		Category:   "plumbing",
		Priority:   PriorityHigh,
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req.Priority = "urgent"
	if err := req.Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown priority, got %v", err)
	}
}

func TestCreateRequestTenantOptional(t *testing.T) {
	// Landlord-initiated requests have no tenant.
	req := CreateRequest{
		PropertyID: "prop-1",
		LandlordID: "ll-1",
		Category:   "inspection",
		Priority:   PriorityLow,
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
