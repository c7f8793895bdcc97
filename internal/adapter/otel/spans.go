package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "leaseforge"

// StartPaymentSpan starts a span for recording a rent payment.
func StartPaymentSpan(ctx context.Context, obligationID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "payment",
		trace.WithAttributes(attribute.String("obligation.id", obligationID)),
	)
}

// StartRolloverSpan starts a span for the monthly obligation rollover job.
func StartRolloverSpan(ctx context.Context) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "rollover")
}

// StartSweepSpan starts a span for the overdue sweep job.
func StartSweepSpan(ctx context.Context) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "sweep")
}
