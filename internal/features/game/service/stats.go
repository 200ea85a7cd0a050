package service

import (
	"context"
	"time"

	"slot-game-backend/internal/features/game/models"
	"slot-game-backend/internal/features/game/repository"
)

// Stats maintains the process-wide spin and award counters over a rolling
// reset window. The reset check runs on both read and write paths so a
// stale window never leaks into odds computation.
type Stats struct {
	repo   repository.StatsRepository
	prizes []models.Prize
	cfg    Config
}

// NewStats creates the global stats tracker for the configured prize table.
func NewStats(repo repository.StatsRepository, prizes []models.Prize, cfg Config) *Stats {
	return &Stats{repo: repo, prizes: prizes, cfg: cfg.withDefaults()}
}

// resetIfStale returns a fresh window when the stored one is missing or
// older than the reset window, otherwise the stored stats with award
// entries backfilled for prizes added since the last reset.
func (s *Stats) resetIfStale(stats models.GlobalStats, exists bool, now time.Time) models.GlobalStats {
	if !exists || now.Sub(stats.WindowStart) > s.cfg.StatsResetWindow {
		return models.NewGlobalStats(s.prizes, now)
	}
	if stats.Awards == nil {
		stats.Awards = make(map[string]int64, len(s.prizes))
	}
	for _, p := range s.prizes {
		if _, ok := stats.Awards[p.Name]; !ok {
			stats.Awards[p.Name] = 0
		}
	}
	return stats
}

// RecordSpin counts one spin, win or lose.
func (s *Stats) RecordSpin(ctx context.Context, now time.Time) error {
	_, err := s.repo.Update(ctx, func(stats models.GlobalStats, exists bool) models.GlobalStats {
		stats = s.resetIfStale(stats, exists, now)
		stats.TotalSpins++
		return stats
	})
	return err
}

// RecordAward counts one award of the named prize.
func (s *Stats) RecordAward(ctx context.Context, prizeName string, now time.Time) error {
	_, err := s.repo.Update(ctx, func(stats models.GlobalStats, exists bool) models.GlobalStats {
		stats = s.resetIfStale(stats, exists, now)
		stats.Awards[prizeName]++
		return stats
	})
	return err
}

// Snapshot returns the current window, applying the reset check on the
// read side as well.
func (s *Stats) Snapshot(ctx context.Context, now time.Time) (models.GlobalStats, error) {
	stats, exists, err := s.repo.Get(ctx)
	if err != nil {
		return models.GlobalStats{}, err
	}
	fresh := s.resetIfStale(stats, exists, now)
	if !exists || fresh.WindowStart != stats.WindowStart {
		// Persist the reset so counters don't keep accumulating against a
		// stale window between reads.
		return s.repo.Update(ctx, func(stats models.GlobalStats, exists bool) models.GlobalStats {
			return s.resetIfStale(stats, exists, now)
		})
	}
	return fresh, nil
}
