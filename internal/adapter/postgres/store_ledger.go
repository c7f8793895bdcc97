package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Strob0t/LeaseForge/internal/domain"
	"github.com/Strob0t/LeaseForge/internal/domain/ledger"
	"github.com/Strob0t/LeaseForge/internal/domain/money"
)

const rentPaymentColumns = `id, tenant_id, property_id, payment_month, amount_due, amount_paid, late_fee,
	 status, is_late, due_date, payment_method, transaction_id, payment_date, waived_reason, notes,
	 created_at, updated_at`

func scanRentPayment(row scannable) (ledger.RentPayment, error) {
	var p ledger.RentPayment
	var month time.Time
	err := row.Scan(&p.ID, &p.TenantID, &p.PropertyID, &month, &p.AmountDue, &p.AmountPaid, &p.LateFee,
		&p.Status, &p.IsLate, &p.DueDate, &p.PaymentMethod, &p.TransactionID, &p.PaymentDate,
		&p.WaivedReason, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.PaymentMonth = money.PeriodOf(month)
	p.PeriodKey = p.PaymentMonth.Key()
	return p, nil
}

// EnsureObligation inserts the obligation row for (tenant, period) if it does
// not exist yet. Generation is idempotent: replays and concurrent rollover
// runs land on the same row.
func (s *Store) EnsureObligation(ctx context.Context, tenantID, propertyID string, period money.Period, amountDue decimal.Decimal, dueDate time.Time) (*ledger.RentPayment, bool, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO rent_payments (tenant_id, property_id, payment_month, amount_due, due_date)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (tenant_id, payment_month) DO NOTHING
		 RETURNING `+rentPaymentColumns,
		tenantID, propertyID, period.Start(), amountDue, dueDate)

	p, err := scanRentPayment(row)
	if err == nil {
		return &p, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("ensure obligation %s/%s: %w", tenantID, period.Key(), err)
	}

	existing, err := s.GetObligationByPeriod(ctx, tenantID, period)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *Store) GetObligation(ctx context.Context, id string) (*ledger.RentPayment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+rentPaymentColumns+` FROM rent_payments WHERE id = $1`, id)

	p, err := scanRentPayment(row)
	if err != nil {
		return nil, notFoundWrap(err, "get obligation %s", id)
	}
	return &p, nil
}

func (s *Store) GetObligationByPeriod(ctx context.Context, tenantID string, period money.Period) (*ledger.RentPayment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+rentPaymentColumns+` FROM rent_payments WHERE tenant_id = $1 AND payment_month = $2`,
		tenantID, period.Start())

	p, err := scanRentPayment(row)
	if err != nil {
		return nil, notFoundWrap(err, "get obligation %s/%s", tenantID, period.Key())
	}
	return &p, nil
}

func (s *Store) ListObligationsByTenant(ctx context.Context, tenantID string) ([]ledger.RentPayment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+rentPaymentColumns+` FROM rent_payments WHERE tenant_id = $1 ORDER BY payment_month ASC`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("list obligations for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	return collectRentPayments(rows)
}

func collectRentPayments(rows pgx.Rows) ([]ledger.RentPayment, error) {
	var payments []ledger.RentPayment
	for rows.Next() {
		p, err := scanRentPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// RecordPayment accumulates one payment onto the obligation under a row
// lock, rederives the status, and refreshes the tenant late flag from the
// full ledger inside the same transaction. Concurrent partial payments
// serialize on the FOR UPDATE lock so no amount is lost.
func (s *Store) RecordPayment(ctx context.Context, obligationID string, in ledger.PaymentInput, asOf time.Time) (*ledger.RentPayment, bool, error) {
	var updated ledger.RentPayment
	var tenantLate bool
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+rentPaymentColumns+` FROM rent_payments WHERE id = $1 FOR UPDATE`, obligationID)
		current, err := scanRentPayment(row)
		if err != nil {
			return notFoundWrap(err, "record payment on %s", obligationID)
		}
		if current.Status == ledger.StatusWaived {
			return fmt.Errorf("obligation %s is waived: %w", obligationID, domain.ErrInvalidState)
		}

		newPaid := current.AmountPaid.Add(in.Amount)
		status := ledger.DeriveStatus(newPaid, current.AmountDue, current.DueDate, asOf)
		paymentDate := in.PaymentDate
		isLate := ledger.DeriveIsLate(status, current.DueDate, &paymentDate, asOf)

		row = tx.QueryRow(ctx,
			`UPDATE rent_payments
			 SET amount_paid = $2, status = $3, is_late = $4,
			     payment_method = $5, transaction_id = $6, payment_date = $7,
			     notes = CASE WHEN $8 <> '' THEN $8 ELSE notes END,
			     updated_at = now()
			 WHERE id = $1
			 RETURNING `+rentPaymentColumns,
			obligationID, newPaid, status, isLate,
			in.PaymentMethod, in.TransactionID, in.PaymentDate, in.Notes)
		updated, err = scanRentPayment(row)
		if err != nil {
			return fmt.Errorf("record payment on %s: %w", obligationID, err)
		}

		tenantLate, err = refreshTenantLateness(ctx, tx, updated.TenantID, asOf)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return &updated, tenantLate, nil
}

// refreshTenantLateness rederives the tenant-level late flag from every
// obligation on the ledger and writes it back. Must run inside the caller's
// transaction so the flag cannot drift from the rows it summarizes.
func refreshTenantLateness(ctx context.Context, tx pgx.Tx, tenantID string, asOf time.Time) (bool, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+rentPaymentColumns+` FROM rent_payments WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return false, fmt.Errorf("load ledger for tenant %s: %w", tenantID, err)
	}
	payments, err := collectRentPayments(rows)
	rows.Close()
	if err != nil {
		return false, err
	}

	late := ledger.DeriveLateness(payments, asOf)
	tag, err := tx.Exec(ctx,
		`UPDATE tenants SET is_late_on_rent = $2, updated_at = now() WHERE id = $1`, tenantID, late)
	if err := execExpectOne(tag, err, "refresh late flag for tenant %s", tenantID); err != nil {
		return false, err
	}
	return late, nil
}

// AssessLateFee adds a fee to an obligation that is past due and unsettled.
// The fee accumulates separately from the rent amount.
func (s *Store) AssessLateFee(ctx context.Context, obligationID string, fee decimal.Decimal, asOf time.Time) (*ledger.RentPayment, error) {
	var updated ledger.RentPayment
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+rentPaymentColumns+` FROM rent_payments WHERE id = $1 FOR UPDATE`, obligationID)
		current, err := scanRentPayment(row)
		if err != nil {
			return notFoundWrap(err, "assess late fee on %s", obligationID)
		}
		if current.Settled() {
			return fmt.Errorf("obligation %s is settled: %w", obligationID, domain.ErrInvalidState)
		}
		if !asOf.After(current.DueDate) {
			return fmt.Errorf("obligation %s is not past due: %w", obligationID, domain.ErrInvalidState)
		}

		row = tx.QueryRow(ctx,
			`UPDATE rent_payments
			 SET late_fee = late_fee + $2, is_late = TRUE,
			     status = CASE WHEN status = 'pending' THEN 'late' ELSE status END,
			     updated_at = now()
			 WHERE id = $1
			 RETURNING `+rentPaymentColumns,
			obligationID, fee)
		updated, err = scanRentPayment(row)
		if err != nil {
			return fmt.Errorf("assess late fee on %s: %w", obligationID, err)
		}

		_, err = refreshTenantLateness(ctx, tx, updated.TenantID, asOf)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// WaiveObligation forgives an unsettled obligation. Waived periods count as
// neither late nor on-time anywhere downstream.
func (s *Store) WaiveObligation(ctx context.Context, obligationID, reason string, asOf time.Time) (*ledger.RentPayment, error) {
	var updated ledger.RentPayment
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+rentPaymentColumns+` FROM rent_payments WHERE id = $1 FOR UPDATE`, obligationID)
		current, err := scanRentPayment(row)
		if err != nil {
			return notFoundWrap(err, "waive obligation %s", obligationID)
		}
		if current.Settled() {
			return fmt.Errorf("obligation %s is settled: %w", obligationID, domain.ErrInvalidState)
		}

		row = tx.QueryRow(ctx,
			`UPDATE rent_payments
			 SET status = 'waived', is_late = FALSE, waived_reason = $2, updated_at = now()
			 WHERE id = $1
			 RETURNING `+rentPaymentColumns,
			obligationID, reason)
		updated, err = scanRentPayment(row)
		if err != nil {
			return fmt.Errorf("waive obligation %s: %w", obligationID, err)
		}

		_, err = refreshTenantLateness(ctx, tx, updated.TenantID, asOf)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SweepOverdue flips pending obligations past their due date to late, marks
// past-due partials late, and raises the late flag on affected tenants. The
// comparison is on the calendar date so the due day itself is never late.
func (s *Store) SweepOverdue(ctx context.Context, asOf time.Time) (int, error) {
	var flipped int
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE rent_payments
			 SET status = 'late', is_late = TRUE, updated_at = now()
			 WHERE status = 'pending' AND due_date < $1::date`, asOf)
		if err != nil {
			return fmt.Errorf("sweep pending obligations: %w", err)
		}
		flipped = int(tag.RowsAffected())

		tag, err = tx.Exec(ctx,
			`UPDATE rent_payments
			 SET is_late = TRUE, updated_at = now()
			 WHERE status = 'partial' AND is_late = FALSE AND due_date < $1::date`, asOf)
		if err != nil {
			return fmt.Errorf("sweep partial obligations: %w", err)
		}
		flipped += int(tag.RowsAffected())

		_, err = tx.Exec(ctx,
			`UPDATE tenants t
			 SET is_late_on_rent = TRUE, updated_at = now()
			 WHERE t.is_late_on_rent = FALSE
			   AND EXISTS (SELECT 1 FROM rent_payments p
			               WHERE p.tenant_id = t.id
			                 AND p.status NOT IN ('paid', 'waived')
			                 AND p.due_date < $1::date)`, asOf)
		if err != nil {
			return fmt.Errorf("sweep tenant flags: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return flipped, nil
}

// ComputeStats aggregates the landlord's portfolio from the underlying
// tables, never from cached flags. Lateness is rederived in SQL with the
// same rules as ledger.DeriveIsLate.
func (s *Store) ComputeStats(ctx context.Context, landlordID string, asOf time.Time) (*ledger.Stats, error) {
	stats := &ledger.Stats{LandlordID: landlordID, ComputedAt: asOf}

	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'active'),
		        COALESCE(SUM(monthly_rent) FILTER (WHERE status = 'active'), 0)
		 FROM tenants WHERE landlord_id = $1`, landlordID,
	).Scan(&stats.TotalTenants, &stats.ActiveTenants, &stats.TotalMonthlyRent)
	if err != nil {
		return nil, fmt.Errorf("compute tenancy stats for %s: %w", landlordID, err)
	}

	// Only periods strictly past due count toward the rate; waived periods
	// are neither late nor on-time and stay out of the denominator.
	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status <> 'paid'
		                            OR payment_date > due_date),
		        COUNT(*) FILTER (WHERE amount_paid > amount_due + late_fee)
		 FROM rent_payments p
		 JOIN tenants t ON t.id = p.tenant_id
		 WHERE t.landlord_id = $1
		   AND p.status <> 'waived'
		   AND p.due_date < $2::date`, landlordID, asOf,
	).Scan(&stats.TotalPeriodsDue, &stats.LatePayments, &stats.OverpaidPeriods)
	if err != nil {
		return nil, fmt.Errorf("compute ledger stats for %s: %w", landlordID, err)
	}

	if stats.TotalPeriodsDue > 0 {
		stats.OnTimeRate = float64(stats.TotalPeriodsDue-stats.LatePayments) / float64(stats.TotalPeriodsDue)
	} else {
		stats.OnTimeRate = 1.0
	}
	return stats, nil
}
