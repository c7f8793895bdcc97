package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain"
	"github.com/Strob0t/LeaseForge/internal/domain/money"
	"github.com/Strob0t/LeaseForge/internal/domain/tenancy"
)

const tenantColumns = `id, property_id, landlord_id, occupant_user_id, occupant_name, occupant_contact,
	 lease_start_date, lease_end_date, monthly_rent, security_deposit, status, is_late_on_rent,
	 move_in_date, move_out_date, condition_notes, eviction_reason, version, created_at, updated_at`

func scanTenant(row scannable) (tenancy.Tenant, error) {
	var t tenancy.Tenant
	err := row.Scan(&t.ID, &t.PropertyID, &t.LandlordID,
		&t.Occupant.UserID, &t.Occupant.Name, &t.Occupant.Contact,
		&t.LeaseStartDate, &t.LeaseEndDate, &t.MonthlyRent, &t.SecurityDeposit,
		&t.Status, &t.IsLateOnRent, &t.MoveInDate, &t.MoveOutDate,
		&t.ConditionNotes, &t.EvictionReason, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// CreateTenancy inserts the tenant and seeds the first period's obligation in
// one transaction. Availability of the unit is checked against both active
// tenancies and live bookings under an advisory lock; the exclusion
// constraint backstops same-table races.
func (s *Store) CreateTenancy(ctx context.Context, req tenancy.CreateRequest, firstPeriod money.Period, dueDate time.Time) (*tenancy.Tenant, error) {
	var t tenancy.Tenant
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockProperty(ctx, tx, req.PropertyID); err != nil {
			return err
		}
		if err := checkUnitAvailable(ctx, tx, req.PropertyID, req.LeaseStartDate, req.LeaseEndDate); err != nil {
			return err
		}

		row := tx.QueryRow(ctx,
			`INSERT INTO tenants (property_id, landlord_id, occupant_user_id, occupant_name, occupant_contact,
			     lease_start_date, lease_end_date, monthly_rent, security_deposit, move_in_date)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING `+tenantColumns,
			req.PropertyID, req.LandlordID, req.Occupant.UserID, req.Occupant.Name, req.Occupant.Contact,
			req.LeaseStartDate, req.LeaseEndDate, req.MonthlyRent, req.SecurityDeposit, nullTime(req.MoveInDate))

		var err error
		t, err = scanTenant(row)
		if err != nil {
			return conflictWrap(err, "create tenancy for unit %s", req.PropertyID)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO rent_payments (tenant_id, property_id, payment_month, amount_due, due_date)
			 VALUES ($1, $2, $3, $4, $5)`,
			t.ID, t.PropertyID, firstPeriod.Start(), t.MonthlyRent, dueDate)
		if err != nil {
			return fmt.Errorf("seed first obligation for tenant %s: %w", t.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// checkUnitAvailable rejects the requested range when it overlaps an active
// tenancy or a live (pending or confirmed) booking on the same unit.
func checkUnitAvailable(ctx context.Context, tx pgx.Tx, propertyID string, from, to time.Time) error {
	var tenancyTaken, bookingTaken bool
	err := tx.QueryRow(ctx,
		`SELECT
		   EXISTS (SELECT 1 FROM tenants
		           WHERE property_id = $1 AND status = 'active'
		             AND daterange(lease_start_date, lease_end_date) && daterange($2::date, $3::date)),
		   EXISTS (SELECT 1 FROM bookings
		           WHERE property_id = $1 AND status IN ('pending', 'confirmed')
		             AND daterange(check_in, check_out) && daterange($2::date, $3::date))`,
		propertyID, from, to,
	).Scan(&tenancyTaken, &bookingTaken)
	if err != nil {
		return fmt.Errorf("check availability of unit %s: %w", propertyID, err)
	}
	if tenancyTaken || bookingTaken {
		return fmt.Errorf("unit %s is occupied between %s and %s: %w",
			propertyID, from.Format("2006-01-02"), to.Format("2006-01-02"), domain.ErrConflict)
	}
	return nil
}

func (s *Store) GetTenancy(ctx context.Context, id string) (*tenancy.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)

	t, err := scanTenant(row)
	if err != nil {
		return nil, notFoundWrap(err, "get tenancy %s", id)
	}
	return &t, nil
}

func (s *Store) ListTenanciesByLandlord(ctx context.Context, landlordID string) ([]tenancy.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE landlord_id = $1 ORDER BY created_at DESC`, landlordID)
	if err != nil {
		return nil, fmt.Errorf("list tenancies for landlord %s: %w", landlordID, err)
	}
	defer rows.Close()

	return collectTenants(rows)
}

func (s *Store) ListActiveTenancies(ctx context.Context) ([]tenancy.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE status = 'active' ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active tenancies: %w", err)
	}
	defer rows.Close()

	return collectTenants(rows)
}

func collectTenants(rows pgx.Rows) ([]tenancy.Tenant, error) {
	var tenants []tenancy.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenancy: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// CloseTenancy moves an active tenancy into a terminal status. The WHERE
// clause guards on the current status so two concurrent closes cannot both
// succeed; the loser gets ErrConflict.
func (s *Store) CloseTenancy(ctx context.Context, id string, to tenancy.Status, moveOut time.Time, conditionNotes, evictionReason string) (*tenancy.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tenants
		 SET status = $2, move_out_date = $3,
		     condition_notes = CASE WHEN $4 <> '' THEN $4 ELSE condition_notes END,
		     eviction_reason = $5,
		     version = version + 1, updated_at = now()
		 WHERE id = $1 AND status = 'active'
		 RETURNING `+tenantColumns,
		id, to, moveOut, conditionNotes, evictionReason)

	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, gerr := s.GetTenancy(ctx, id); gerr != nil {
				return nil, gerr
			}
			return nil, fmt.Errorf("close tenancy %s: no longer active: %w", id, domain.ErrConflict)
		}
		return nil, fmt.Errorf("close tenancy %s: %w", id, err)
	}
	return &t, nil
}

// RenewTenancy extends the lease end date and optionally changes the rent
// for future periods. Already-generated obligations keep their amounts.
// The update is guarded on the caller's version (optimistic locking).
func (s *Store) RenewTenancy(ctx context.Context, id string, newEnd time.Time, newRent *decimal.Decimal, version int) (*tenancy.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tenants
		 SET lease_end_date = $2,
		     monthly_rent = COALESCE($3, monthly_rent),
		     version = version + 1, updated_at = now()
		 WHERE id = $1 AND status = 'active' AND version = $4
		 RETURNING `+tenantColumns,
		id, newEnd, nullDecimal(newRent), version)

	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, gerr := s.GetTenancy(ctx, id); gerr != nil {
				return nil, gerr
			}
			return nil, fmt.Errorf("renew tenancy %s: %w", id, domain.ErrConflict)
		}
		return nil, fmt.Errorf("renew tenancy %s: %w", id, err)
	}
	return &t, nil
}
