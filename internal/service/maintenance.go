package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain"
	"github.com/Strob0t/LeaseForge/internal/domain/maintenance"
	"github.com/Strob0t/LeaseForge/internal/port/database"
	"github.com/Strob0t/LeaseForge/internal/port/messagequeue"
)

// MaintenanceService handles the repair request pipeline.
type MaintenanceService struct {
	store database.Store
	queue messagequeue.Queue
	now   func() time.Time
}

// NewMaintenanceService creates a new MaintenanceService.
func NewMaintenanceService(store database.Store, queue messagequeue.Queue) *MaintenanceService {
	return &MaintenanceService{store: store, queue: queue, now: time.Now}
}

// Create opens a maintenance request. A tenant-filed request must reference
// a tenancy on the same unit.
func (s *MaintenanceService) Create(ctx context.Context, req maintenance.CreateRequest) (*maintenance.Request, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.TenantID != "" {
		t, err := s.store.GetTenancy(ctx, req.TenantID)
		if err != nil {
			return nil, err
		}
		if t.PropertyID != req.PropertyID {
			return nil, fmt.Errorf("tenancy %s is not on unit %s: %w", req.TenantID, req.PropertyID, domain.ErrValidation)
		}
	}

	m, err := s.store.CreateMaintenance(ctx, req)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.queue, messagequeue.SubjectMaintenanceCreated, messagequeue.MaintenanceEventPayload{
		RequestID:  m.ID,
		PropertyID: m.PropertyID,
		Status:     string(m.Status),
		Priority:   string(m.Priority),
	})
	return m, nil
}

// Get returns a maintenance request by ID.
func (s *MaintenanceService) Get(ctx context.Context, id string) (*maintenance.Request, error) {
	return s.store.GetMaintenance(ctx, id)
}

// ListByProperty returns all maintenance requests for a unit, newest first.
func (s *MaintenanceService) ListByProperty(ctx context.Context, propertyID string) ([]maintenance.Request, error) {
	return s.store.ListMaintenanceByProperty(ctx, propertyID)
}

// Assign hands the request to a vendor.
func (s *MaintenanceService) Assign(ctx context.Context, id, vendor, vendorContact string) (*maintenance.Request, error) {
	if vendor == "" {
		return nil, fmt.Errorf("vendor is required: %w", domain.ErrValidation)
	}
	return s.transition(ctx, id, maintenance.StatusAssigned, func(m *maintenance.Request) {
		m.Vendor = vendor
		m.VendorContact = vendorContact
	})
}

// Schedule books the vendor visit.
func (s *MaintenanceService) Schedule(ctx context.Context, id string, when time.Time, estimatedCost *decimal.Decimal) (*maintenance.Request, error) {
	if when.IsZero() {
		return nil, fmt.Errorf("scheduled_date is required: %w", domain.ErrValidation)
	}
	if estimatedCost != nil && estimatedCost.IsNegative() {
		return nil, fmt.Errorf("estimated_cost must not be negative: %w", domain.ErrValidation)
	}
	return s.transition(ctx, id, maintenance.StatusScheduled, func(m *maintenance.Request) {
		m.ScheduledDate = &when
		if estimatedCost != nil {
			m.EstimatedCost = estimatedCost
		}
	})
}

// Start marks the work as underway.
func (s *MaintenanceService) Start(ctx context.Context, id string) (*maintenance.Request, error) {
	return s.transition(ctx, id, maintenance.StatusInProgress, nil)
}

// HoldForParts pauses the work while parts are on order. Work resumes via
// Start.
func (s *MaintenanceService) HoldForParts(ctx context.Context, id string) (*maintenance.Request, error) {
	return s.transition(ctx, id, maintenance.StatusPendingParts, nil)
}

// Complete closes the request with the final cost and notes. The completion
// timestamp is set exactly once; a second Complete fails on the terminal
// status check.
func (s *MaintenanceService) Complete(ctx context.Context, id string, actualCost *decimal.Decimal, resolutionNotes string) (*maintenance.Request, error) {
	if actualCost != nil && actualCost.IsNegative() {
		return nil, fmt.Errorf("actual_cost must not be negative: %w", domain.ErrValidation)
	}
	completedAt := s.now()
	m, err := s.transition(ctx, id, maintenance.StatusCompleted, func(m *maintenance.Request) {
		m.ActualCost = actualCost
		m.ResolutionNotes = resolutionNotes
		m.CompletedAt = &completedAt
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.queue, messagequeue.SubjectMaintenanceCompleted, messagequeue.MaintenanceEventPayload{
		RequestID:  m.ID,
		PropertyID: m.PropertyID,
		Status:     string(m.Status),
		Priority:   string(m.Priority),
	})
	return m, nil
}

// Cancel abandons the request from any non-terminal state.
func (s *MaintenanceService) Cancel(ctx context.Context, id, reason string) (*maintenance.Request, error) {
	return s.transition(ctx, id, maintenance.StatusCancelled, func(m *maintenance.Request) {
		m.CancelReason = reason
	})
}

// transition loads the request, checks the pipeline rules, applies mutate,
// and persists guarded on the loaded status.
func (s *MaintenanceService) transition(ctx context.Context, id string, to maintenance.Status, mutate func(*maintenance.Request)) (*maintenance.Request, error) {
	m, err := s.store.GetMaintenance(ctx, id)
	if err != nil {
		return nil, err
	}
	from := m.Status
	if !maintenance.CanTransition(from, to) {
		return nil, fmt.Errorf("maintenance request %s is %s, cannot move to %s: %w", id, from, to, domain.ErrInvalidState)
	}

	m.Status = to
	if mutate != nil {
		mutate(m)
	}
	if err := s.store.TransitionMaintenance(ctx, m, from); err != nil {
		return nil, err
	}
	return m, nil
}
