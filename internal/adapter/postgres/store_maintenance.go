package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain"
	"github.com/Strob0t/LeaseForge/internal/domain/maintenance"
)

const maintenanceColumns = `id, property_id, tenant_id, landlord_id, category, description, priority,
	 status, vendor, vendor_contact, scheduled_date, estimated_cost, actual_cost,
	 resolution_notes, cancel_reason, completed_at, created_at, updated_at`

func scanMaintenance(row scannable) (maintenance.Request, error) {
	var m maintenance.Request
	var tenantID *string
	var estimated, actual decimal.NullDecimal
	err := row.Scan(&m.ID, &m.PropertyID, &tenantID, &m.LandlordID, &m.Category, &m.Description,
		&m.Priority, &m.Status, &m.Vendor, &m.VendorContact, &m.ScheduledDate,
		&estimated, &actual, &m.ResolutionNotes, &m.CancelReason,
		&m.CompletedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return m, err
	}
	if tenantID != nil {
		m.TenantID = *tenantID
	}
	m.EstimatedCost = decimalPtr(estimated)
	m.ActualCost = decimalPtr(actual)
	return m, nil
}

func (s *Store) CreateMaintenance(ctx context.Context, req maintenance.CreateRequest) (*maintenance.Request, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO maintenance_requests (property_id, tenant_id, landlord_id, category, description, priority)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+maintenanceColumns,
		req.PropertyID, nullIfEmpty(req.TenantID), req.LandlordID, req.Category, req.Description, req.Priority)

	m, err := scanMaintenance(row)
	if err != nil {
		return nil, fmt.Errorf("create maintenance request for unit %s: %w", req.PropertyID, err)
	}
	return &m, nil
}

func (s *Store) GetMaintenance(ctx context.Context, id string) (*maintenance.Request, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_requests WHERE id = $1`, id)

	m, err := scanMaintenance(row)
	if err != nil {
		return nil, notFoundWrap(err, "get maintenance request %s", id)
	}
	return &m, nil
}

func (s *Store) ListMaintenanceByProperty(ctx context.Context, propertyID string) ([]maintenance.Request, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_requests WHERE property_id = $1 ORDER BY created_at DESC`,
		propertyID)
	if err != nil {
		return nil, fmt.Errorf("list maintenance requests for unit %s: %w", propertyID, err)
	}
	defer rows.Close()

	var requests []maintenance.Request
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan maintenance request: %w", err)
		}
		requests = append(requests, m)
	}
	return requests, rows.Err()
}

// TransitionMaintenance persists the request guarded on the expected current
// status, so two concurrent transitions cannot both succeed. completed_at is
// write-once: a request completed at T keeps T forever.
func (s *Store) TransitionMaintenance(ctx context.Context, m *maintenance.Request, from maintenance.Status) error {
	row := s.pool.QueryRow(ctx,
		`UPDATE maintenance_requests
		 SET status = $2, vendor = $3, vendor_contact = $4, scheduled_date = $5,
		     estimated_cost = $6, actual_cost = $7, resolution_notes = $8, cancel_reason = $9,
		     completed_at = COALESCE(completed_at, $10),
		     updated_at = now()
		 WHERE id = $1 AND status = $11
		 RETURNING `+maintenanceColumns,
		m.ID, m.Status, m.Vendor, m.VendorContact, nullTime(m.ScheduledDate),
		nullDecimal(m.EstimatedCost), nullDecimal(m.ActualCost), m.ResolutionNotes, m.CancelReason,
		nullTime(m.CompletedAt), from)

	updated, err := scanMaintenance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, gerr := s.GetMaintenance(ctx, m.ID); gerr != nil {
				return gerr
			}
			return fmt.Errorf("transition maintenance request %s from %s: %w", m.ID, from, domain.ErrConflict)
		}
		return fmt.Errorf("transition maintenance request %s: %w", m.ID, err)
	}
	*m = updated
	return nil
}
