package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/Strob0t/LeaseForge/internal/config"
)

// Scheduler runs the ledger housekeeping jobs: monthly obligation rollover
// and the daily overdue sweep.
type Scheduler struct {
	cron   *cron.Cron
	ledger *LedgerService
}

// NewScheduler creates a scheduler wired to the ledger service.
func NewScheduler(ledger *LedgerService) *Scheduler {
	return &Scheduler{cron: cron.New(), ledger: ledger}
}

// Start registers the cron entries and starts the scheduler.
func (s *Scheduler) Start(cfg config.Scheduler) error {
	if _, err := s.cron.AddFunc(cfg.RolloverSpec, func() {
		created, err := s.ledger.Rollover(context.Background())
		if err != nil {
			slog.Error("obligation rollover failed", "error", err)
			return
		}
		slog.Info("obligation rollover finished", "created", created)
	}); err != nil {
		return fmt.Errorf("schedule rollover %q: %w", cfg.RolloverSpec, err)
	}

	if _, err := s.cron.AddFunc(cfg.SweepSpec, func() {
		flipped, err := s.ledger.SweepOverdue(context.Background())
		if err != nil {
			slog.Error("overdue sweep failed", "error", err)
			return
		}
		slog.Info("overdue sweep finished", "flipped", flipped)
	}); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", cfg.SweepSpec, err)
	}

	s.cron.Start()
	slog.Info("scheduler started", "rollover", cfg.RolloverSpec, "sweep", cfg.SweepSpec)
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
