package repository

import (
	"context"
	"time"

	"slot-game-backend/internal/features/game/models"
)

// SpinRepository stores per-user spin-period records. A missing record is
// not an error: Get returns the zero record so first-run state looks like
// an exhausted previous period.
type SpinRepository interface {
	Get(ctx context.Context, userID int64) (models.SpinPeriodRecord, error)
	// Update applies fn atomically against the user's record. Concurrent
	// updates for the same user must not interleave; updates for different
	// users may proceed independently.
	Update(ctx context.Context, userID int64, fn func(models.SpinPeriodRecord) models.SpinPeriodRecord) (models.SpinPeriodRecord, error)
}

// CooldownRepository stores cooldown start timestamps per class and user.
type CooldownRepository interface {
	// Get returns the cooldown start and whether an entry exists.
	Get(ctx context.Context, class models.CooldownClass, userID int64) (time.Time, bool, error)
	Set(ctx context.Context, class models.CooldownClass, userID int64, startedAt time.Time) error
	Delete(ctx context.Context, class models.CooldownClass, userID int64) error
}

// StatsRepository stores the global stats singleton. Update must be atomic
// with respect to other Update calls.
type StatsRepository interface {
	Get(ctx context.Context) (models.GlobalStats, bool, error)
	Update(ctx context.Context, fn func(models.GlobalStats, bool) models.GlobalStats) (models.GlobalStats, error)
}
