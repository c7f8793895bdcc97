// Package service implements the lifecycle use-cases on top of the ports.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Strob0t/LeaseForge/internal/port/messagequeue"
)

// dateOnly truncates t to its calendar date in UTC. All due-date comparisons
// run on dates, so a payment at any time on the due day is on-time.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// publish sends an event payload to the queue. Delivery is fire-and-forget:
// the lifecycle operation already committed and must not fail on a publish
// error.
func publish(ctx context.Context, queue messagequeue.Queue, subject string, payload any) {
	if queue == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal event payload", "subject", subject, "error", err)
		return
	}
	if err := queue.Publish(ctx, subject, data); err != nil {
		slog.Error("failed to publish event", "subject", subject, "error", err)
	}
}
