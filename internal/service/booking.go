package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/adapter/otel"
	"github.com/Strob0t/LeaseForge/internal/domain"
	"github.com/Strob0t/LeaseForge/internal/domain/audit"
	"github.com/Strob0t/LeaseForge/internal/domain/booking"
	"github.com/Strob0t/LeaseForge/internal/port/database"
	"github.com/Strob0t/LeaseForge/internal/port/messagequeue"
)

// BookingService handles short-stay reservations.
type BookingService struct {
	store          database.Store
	queue          messagequeue.Queue
	metrics        *otel.Metrics
	commissionRate decimal.Decimal
	now            func() time.Time
}

// NewBookingService creates a new BookingService. metrics may be nil.
func NewBookingService(store database.Store, queue messagequeue.Queue, metrics *otel.Metrics, commissionRate decimal.Decimal) *BookingService {
	return &BookingService{
		store:          store,
		queue:          queue,
		metrics:        metrics,
		commissionRate: commissionRate,
		now:            time.Now,
	}
}

// Create reserves a unit. The service fee and total are derived from the
// platform commission rate; the unit must be free of overlapping tenancies
// and bookings.
func (s *BookingService) Create(ctx context.Context, req booking.CreateRequest) (*booking.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fee, total := booking.ComputeTotals(req.MonthlyRent, req.TotalMonths, s.commissionRate)
	b := &booking.Booking{
		PropertyID:  req.PropertyID,
		GuestID:     req.GuestID,
		HostID:      req.HostID,
		CheckIn:     dateOnly(req.CheckIn),
		CheckOut:    dateOnly(req.CheckOut),
		TotalMonths: req.TotalMonths,
		MonthlyRent: req.MonthlyRent,
		ServiceFee:  fee,
		TotalAmount: total,
	}
	if err := s.store.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BookingsCreated.Add(ctx, 1)
	}
	s.publishEvent(ctx, messagequeue.SubjectBookingCreated, b, "")
	return b, nil
}

// Get returns a booking by ID.
func (s *BookingService) Get(ctx context.Context, id string) (*booking.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// ListByProperty returns all bookings for a unit, earliest check-in first.
func (s *BookingService) ListByProperty(ctx context.Context, propertyID string) ([]booking.Booking, error) {
	return s.store.ListBookingsByProperty(ctx, propertyID)
}

// Confirm accepts a pending reservation.
func (s *BookingService) Confirm(ctx context.Context, id string) (*booking.Booking, error) {
	b, err := s.transition(ctx, id, booking.StatusConfirmed, "", nil)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, messagequeue.SubjectBookingConfirmed, b, "")
	return b, nil
}

// Cancel withdraws a pending or confirmed reservation. A reason is required.
func (s *BookingService) Cancel(ctx context.Context, id, actorID, reason string) (*booking.Booking, error) {
	if reason == "" {
		return nil, fmt.Errorf("cancellation reason is required: %w", domain.ErrValidation)
	}
	cancelledAt := s.now()
	b, err := s.transition(ctx, id, booking.StatusCancelled, reason, &cancelledAt)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, actorID, audit.ActionBookingCancel, b.ID, reason)
	s.publishEvent(ctx, messagequeue.SubjectBookingCancelled, b, reason)
	return b, nil
}

// Complete closes out a confirmed reservation after the stay.
func (s *BookingService) Complete(ctx context.Context, id string) (*booking.Booking, error) {
	b, err := s.transition(ctx, id, booking.StatusCompleted, "", nil)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, messagequeue.SubjectBookingCompleted, b, "")
	return b, nil
}

func (s *BookingService) transition(ctx context.Context, id string, to booking.Status, reason string, cancelledAt *time.Time) (*booking.Booking, error) {
	current, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.CanTransition(current.Status, to) {
		return nil, fmt.Errorf("booking %s is %s, cannot move to %s: %w", id, current.Status, to, domain.ErrInvalidState)
	}
	return s.store.TransitionBooking(ctx, id, current.Status, to, reason, cancelledAt)
}

func (s *BookingService) publishEvent(ctx context.Context, subject string, b *booking.Booking, reason string) {
	publish(ctx, s.queue, subject, messagequeue.BookingEventPayload{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		GuestID:    b.GuestID,
		Status:     string(b.Status),
		Reason:     reason,
	})
}

func (s *BookingService) audit(ctx context.Context, actorID, action, entityID, detail string) {
	e := &audit.Entry{ActorID: actorID, Action: action, EntityKind: "booking", EntityID: entityID, Detail: detail}
	if err := s.store.AppendAudit(ctx, e); err != nil {
		slog.Error("failed to append audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}
