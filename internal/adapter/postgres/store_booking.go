package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/LeaseForge/internal/domain"
	"github.com/Strob0t/LeaseForge/internal/domain/booking"
)

const bookingColumns = `id, property_id, guest_id, host_id, check_in, check_out, total_months,
	 monthly_rent, service_fee, total_amount, status, cancellation_reason, cancellation_date,
	 version, created_at, updated_at`

func scanBooking(row scannable) (booking.Booking, error) {
	var b booking.Booking
	err := row.Scan(&b.ID, &b.PropertyID, &b.GuestID, &b.HostID, &b.CheckIn, &b.CheckOut,
		&b.TotalMonths, &b.MonthlyRent, &b.ServiceFee, &b.TotalAmount, &b.Status,
		&b.CancellationReason, &b.CancellationDate, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// CreateBooking inserts the reservation after checking the unit against both
// active tenancies and live bookings. Runs under the same advisory lock as
// CreateTenancy so the two cannot race past each other.
func (s *Store) CreateBooking(ctx context.Context, b *booking.Booking) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockProperty(ctx, tx, b.PropertyID); err != nil {
			return err
		}
		if err := checkUnitAvailable(ctx, tx, b.PropertyID, b.CheckIn, b.CheckOut); err != nil {
			return err
		}

		row := tx.QueryRow(ctx,
			`INSERT INTO bookings (property_id, guest_id, host_id, check_in, check_out,
			     total_months, monthly_rent, service_fee, total_amount)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING `+bookingColumns,
			b.PropertyID, b.GuestID, b.HostID, b.CheckIn, b.CheckOut,
			b.TotalMonths, b.MonthlyRent, b.ServiceFee, b.TotalAmount)

		created, err := scanBooking(row)
		if err != nil {
			return conflictWrap(err, "create booking for unit %s", b.PropertyID)
		}
		*b = created
		return nil
	})
}

func (s *Store) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)

	b, err := scanBooking(row)
	if err != nil {
		return nil, notFoundWrap(err, "get booking %s", id)
	}
	return &b, nil
}

func (s *Store) ListBookingsByProperty(ctx context.Context, propertyID string) ([]booking.Booking, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE property_id = $1 ORDER BY check_in ASC`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for unit %s: %w", propertyID, err)
	}
	defer rows.Close()

	var bookings []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// TransitionBooking moves a reservation between statuses, guarded on the
// expected current status.
func (s *Store) TransitionBooking(ctx context.Context, id string, from, to booking.Status, reason string, cancelledAt *time.Time) (*booking.Booking, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE bookings
		 SET status = $3,
		     cancellation_reason = CASE WHEN $4 <> '' THEN $4 ELSE cancellation_reason END,
		     cancellation_date = COALESCE($5, cancellation_date),
		     version = version + 1, updated_at = now()
		 WHERE id = $1 AND status = $2
		 RETURNING `+bookingColumns,
		id, from, to, reason, nullTime(cancelledAt))

	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, gerr := s.GetBooking(ctx, id); gerr != nil {
				return nil, gerr
			}
			return nil, fmt.Errorf("transition booking %s from %s: %w", id, from, domain.ErrConflict)
		}
		return nil, fmt.Errorf("transition booking %s: %w", id, err)
	}
	return &b, nil
}
