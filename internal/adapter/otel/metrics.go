package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "leaseforge"

// Metrics holds all LeaseForge metric instruments.
type Metrics struct {
	TenanciesCreated metric.Int64Counter
	TenanciesClosed  metric.Int64Counter
	PaymentsRecorded metric.Int64Counter
	LateFeesAssessed metric.Int64Counter
	BookingsCreated  metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TenanciesCreated, err = meter.Int64Counter("leaseforge.tenancies.created",
		metric.WithDescription("Number of tenancies created"))
	if err != nil {
		return nil, err
	}

	m.TenanciesClosed, err = meter.Int64Counter("leaseforge.tenancies.closed",
		metric.WithDescription("Number of tenancies ended or evicted"))
	if err != nil {
		return nil, err
	}

	m.PaymentsRecorded, err = meter.Int64Counter("leaseforge.payments.recorded",
		metric.WithDescription("Number of rent payments recorded"))
	if err != nil {
		return nil, err
	}

	m.LateFeesAssessed, err = meter.Int64Counter("leaseforge.latefees.assessed",
		metric.WithDescription("Number of late fees assessed"))
	if err != nil {
		return nil, err
	}

	m.BookingsCreated, err = meter.Int64Counter("leaseforge.bookings.created",
		metric.WithDescription("Number of bookings created"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
