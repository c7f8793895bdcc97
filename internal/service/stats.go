package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Strob0t/LeaseForge/internal/domain/ledger"
	"github.com/Strob0t/LeaseForge/internal/port/cache"
	"github.com/Strob0t/LeaseForge/internal/port/database"
)

// StatsService serves portfolio statistics with a short-TTL snapshot cache.
type StatsService struct {
	store database.Store
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewStatsService creates a new StatsService. c may be nil to disable caching.
func NewStatsService(store database.Store, c cache.Cache, ttl time.Duration) *StatsService {
	return &StatsService{store: store, cache: c, ttl: ttl, now: time.Now}
}

// Portfolio returns the landlord's aggregated portfolio statistics. A cached
// snapshot is served within the TTL; the database recompute is always from
// the underlying ledger rows, never from cached flags.
func (s *StatsService) Portfolio(ctx context.Context, landlordID string) (*ledger.Stats, error) {
	key := "stats:" + landlordID

	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var cached ledger.Stats
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	stats, err := s.store.ComputeStats(ctx, landlordID, dateOnly(s.now()))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				slog.Warn("failed to cache stats snapshot", "landlord_id", landlordID, "error", err)
			}
		}
	}
	return stats, nil
}

// Invalidate drops the cached snapshot for a landlord so the next read
// recomputes.
func (s *StatsService) Invalidate(ctx context.Context, landlordID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, "stats:"+landlordID); err != nil {
		slog.Warn("failed to invalidate stats snapshot", "landlord_id", landlordID, "error", err)
	}
}
