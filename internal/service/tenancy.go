package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Strob0t/LeaseForge/internal/adapter/otel"
	"github.com/Strob0t/LeaseForge/internal/domain"
	"github.com/Strob0t/LeaseForge/internal/domain/audit"
	"github.com/Strob0t/LeaseForge/internal/domain/money"
	"github.com/Strob0t/LeaseForge/internal/domain/tenancy"
	"github.com/Strob0t/LeaseForge/internal/port/database"
	"github.com/Strob0t/LeaseForge/internal/port/identity"
	"github.com/Strob0t/LeaseForge/internal/port/messagequeue"
)

// TenancyService handles the long-term lease lifecycle.
type TenancyService struct {
	store    database.Store
	queue    messagequeue.Queue
	resolver identity.Resolver
	metrics  *otel.Metrics
	dueDay   int
	now      func() time.Time
}

// NewTenancyService creates a new TenancyService. resolver and metrics may
// be nil.
func NewTenancyService(store database.Store, queue messagequeue.Queue, resolver identity.Resolver, metrics *otel.Metrics, dueDay int) *TenancyService {
	return &TenancyService{
		store:    store,
		queue:    queue,
		resolver: resolver,
		metrics:  metrics,
		dueDay:   dueDay,
		now:      time.Now,
	}
}

// Create lets a unit to an occupant. The first period's rent obligation is
// generated atomically with the tenancy. When the occupant is a platform
// user, the display name and contact are resolved from the identity service.
func (s *TenancyService) Create(ctx context.Context, req tenancy.CreateRequest) (*tenancy.Tenant, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Occupant.UserID != "" && s.resolver != nil {
		profile, err := s.resolver.Resolve(ctx, req.Occupant.UserID)
		if err != nil {
			if req.Occupant.Name == "" {
				return nil, fmt.Errorf("resolve occupant %s: %w", req.Occupant.UserID, err)
			}
			slog.Warn("occupant lookup failed, keeping provided details",
				"user_id", req.Occupant.UserID, "error", err)
		} else {
			req.Occupant.Name = profile.Name
			if profile.Contact != "" {
				req.Occupant.Contact = profile.Contact
			}
		}
	}

	firstPeriod := money.PeriodOf(req.LeaseStartDate)
	t, err := s.store.CreateTenancy(ctx, req, firstPeriod, firstPeriod.DueDate(s.dueDay))
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TenanciesCreated.Add(ctx, 1)
	}
	publish(ctx, s.queue, messagequeue.SubjectTenancyCreated, messagequeue.TenancyEventPayload{
		TenantID:   t.ID,
		PropertyID: t.PropertyID,
		LandlordID: t.LandlordID,
		Status:     string(t.Status),
	})
	return t, nil
}

// Get returns a tenancy by ID.
func (s *TenancyService) Get(ctx context.Context, id string) (*tenancy.Tenant, error) {
	return s.store.GetTenancy(ctx, id)
}

// ListByLandlord returns all tenancies, current and past, for a landlord.
func (s *TenancyService) ListByLandlord(ctx context.Context, landlordID string) ([]tenancy.Tenant, error) {
	return s.store.ListTenanciesByLandlord(ctx, landlordID)
}

// End closes an active tenancy normally.
func (s *TenancyService) End(ctx context.Context, id, actorID string, moveOut *time.Time, conditionNotes string) (*tenancy.Tenant, error) {
	return s.close(ctx, id, actorID, tenancy.StatusEnded, moveOut, conditionNotes, "")
}

// Evict closes an active tenancy for cause. A reason is required.
func (s *TenancyService) Evict(ctx context.Context, id, actorID, reason string) (*tenancy.Tenant, error) {
	if reason == "" {
		return nil, fmt.Errorf("eviction reason is required: %w", domain.ErrValidation)
	}
	return s.close(ctx, id, actorID, tenancy.StatusEvicted, nil, "", reason)
}

func (s *TenancyService) close(ctx context.Context, id, actorID string, to tenancy.Status, moveOut *time.Time, conditionNotes, evictionReason string) (*tenancy.Tenant, error) {
	current, err := s.store.GetTenancy(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tenancy.CanTransition(current.Status, to) {
		return nil, fmt.Errorf("tenancy %s is %s, cannot move to %s: %w", id, current.Status, to, domain.ErrInvalidState)
	}

	out := dateOnly(s.now())
	if moveOut != nil && !moveOut.IsZero() {
		out = dateOnly(*moveOut)
	}
	if out.Before(dateOnly(current.LeaseStartDate)) {
		return nil, fmt.Errorf("move-out %s is before the lease start %s: %w",
			out.Format("2006-01-02"), current.LeaseStartDate.Format("2006-01-02"), domain.ErrValidation)
	}

	t, err := s.store.CloseTenancy(ctx, id, to, out, conditionNotes, evictionReason)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TenanciesClosed.Add(ctx, 1)
	}

	action := audit.ActionTenancyEnded
	subject := messagequeue.SubjectTenancyEnded
	if to == tenancy.StatusEvicted {
		action = audit.ActionTenantEvicted
		subject = messagequeue.SubjectTenantEvicted
	}
	s.audit(ctx, actorID, action, t.ID, evictionReason)
	publish(ctx, s.queue, subject, messagequeue.TenancyEventPayload{
		TenantID:   t.ID,
		PropertyID: t.PropertyID,
		LandlordID: t.LandlordID,
		Status:     string(t.Status),
		Reason:     evictionReason,
	})
	return t, nil
}

// Renew extends an active lease. The new end date must extend the current
// one; an optional new rent applies to future periods only, never to
// already-generated obligations.
func (s *TenancyService) Renew(ctx context.Context, id, actorID string, req tenancy.RenewRequest) (*tenancy.Tenant, error) {
	current, err := s.store.GetTenancy(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != tenancy.StatusActive {
		return nil, fmt.Errorf("tenancy %s is %s, only active leases renew: %w", id, current.Status, domain.ErrInvalidState)
	}
	if req.NewEndDate.IsZero() || !req.NewEndDate.After(current.LeaseEndDate) {
		return nil, fmt.Errorf("new_end_date must extend the current lease end %s: %w",
			current.LeaseEndDate.Format("2006-01-02"), domain.ErrValidation)
	}
	if req.NewRent != nil {
		if err := money.RequirePositive(*req.NewRent, "new_rent"); err != nil {
			return nil, err
		}
	}

	t, err := s.store.RenewTenancy(ctx, id, req.NewEndDate, req.NewRent, current.Version)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, actorID, audit.ActionLeaseRenewed, t.ID, "extended to "+req.NewEndDate.Format("2006-01-02"))
	publish(ctx, s.queue, messagequeue.SubjectLeaseRenewed, messagequeue.TenancyEventPayload{
		TenantID:   t.ID,
		PropertyID: t.PropertyID,
		LandlordID: t.LandlordID,
		Status:     string(t.Status),
	})
	return t, nil
}

// AuditTrail returns the administrative history of a tenancy.
func (s *TenancyService) AuditTrail(ctx context.Context, id string) ([]audit.Entry, error) {
	return s.store.ListAuditByEntity(ctx, "tenancy", id)
}

// audit appends an administrative record. The operation already committed,
// so a failed append is logged rather than propagated.
func (s *TenancyService) audit(ctx context.Context, actorID, action, entityID, detail string) {
	e := &audit.Entry{ActorID: actorID, Action: action, EntityKind: "tenancy", EntityID: entityID, Detail: detail}
	if err := s.store.AppendAudit(ctx, e); err != nil {
		slog.Error("failed to append audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}
