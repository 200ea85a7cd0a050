package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"slot-game-backend/internal/features/game/models"
	"slot-game-backend/internal/features/game/repository"
)

// Ledger tracks the two long cooldown classes and the per-period spin
// counter. All clock inputs are explicit so the ledger is deterministic
// under test.
type Ledger struct {
	spins     repository.SpinRepository
	cooldowns repository.CooldownRepository
	cfg       Config
}

// NewLedger creates a cooldown ledger over the given repositories.
func NewLedger(spins repository.SpinRepository, cooldowns repository.CooldownRepository, cfg Config) *Ledger {
	return &Ledger{spins: spins, cooldowns: cooldowns, cfg: cfg.withDefaults()}
}

func (l *Ledger) classDuration(class models.CooldownClass) time.Duration {
	return l.cfg.cooldownDuration(class == models.CooldownWinner)
}

// CheckCooldown reports whether the user is inside the given cooldown class
// and how long remains. Expired entries are removed on read; a failed
// lazy delete is logged but does not fail the check since the entry is
// already logically absent.
func (l *Ledger) CheckCooldown(ctx context.Context, class models.CooldownClass, userID int64, now time.Time) (bool, time.Duration, error) {
	startedAt, ok, err := l.cooldowns.Get(ctx, class, userID)
	if err != nil {
		return false, 0, err
	}
	if !ok {
		return false, 0, nil
	}

	remaining := l.classDuration(class) - now.Sub(startedAt)
	if remaining > 0 {
		return true, remaining, nil
	}

	if err := l.cooldowns.Delete(ctx, class, userID); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Str("class", string(class)).
			Msg("failed to remove expired cooldown entry")
	}
	return false, 0, nil
}

// StartCooldown begins (or restarts) the class cooldown at now.
func (l *Ledger) StartCooldown(ctx context.Context, class models.CooldownClass, userID int64, now time.Time) error {
	return l.cooldowns.Set(ctx, class, userID, now)
}

// ClearCooldown removes the class cooldown if present.
func (l *Ledger) ClearCooldown(ctx context.Context, class models.CooldownClass, userID int64) error {
	return l.cooldowns.Delete(ctx, class, userID)
}

// RecordSpin increments the user's spin count for the current period,
// resetting the counter first when the stored period is stale. Returns the
// new count.
func (l *Ledger) RecordSpin(ctx context.Context, userID int64, now time.Time) (int, error) {
	key := PeriodKey(l.cfg.SpinPeriod, now)
	rec, err := l.spins.Update(ctx, userID, func(rec models.SpinPeriodRecord) models.SpinPeriodRecord {
		if rec.PeriodKey != key {
			rec = models.SpinPeriodRecord{PeriodKey: key}
		}
		rec.Count++
		return rec
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record spin: %w", err)
	}
	return rec.Count, nil
}

// SpinsRemaining returns how many spins the user has left in the current
// period. A stale record means a fresh period with full allowance.
func (l *Ledger) SpinsRemaining(ctx context.Context, userID int64, now time.Time) (int, error) {
	rec, err := l.spins.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if rec.PeriodKey != PeriodKey(l.cfg.SpinPeriod, now) {
		return l.cfg.MaxSpinsPerPeriod, nil
	}
	remaining := l.cfg.MaxSpinsPerPeriod - rec.Count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// EvaluateEligibility runs the long-form checks: winner cooldown first (it
// dominates), then loser cooldown, then the period spin counter. Reaching
// the max-spins boundary starts a loser cooldown as a side effect, so the
// block duration is anchored to the blocking attempt.
func (l *Ledger) EvaluateEligibility(ctx context.Context, userID int64, now time.Time) (models.EligibilityDecision, error) {
	active, remaining, err := l.CheckCooldown(ctx, models.CooldownWinner, userID, now)
	if err != nil {
		return models.EligibilityDecision{}, err
	}
	if active {
		return models.EligibilityDecision{Reason: models.BlockWinnerCooldown, Remaining: remaining}, nil
	}

	active, remaining, err = l.CheckCooldown(ctx, models.CooldownLoser, userID, now)
	if err != nil {
		return models.EligibilityDecision{}, err
	}
	if active {
		return models.EligibilityDecision{Reason: models.BlockLoserCooldown, Remaining: remaining}, nil
	}

	rec, err := l.spins.Get(ctx, userID)
	if err != nil {
		return models.EligibilityDecision{}, err
	}
	if rec.PeriodKey != PeriodKey(l.cfg.SpinPeriod, now) {
		return models.EligibilityDecision{}, nil
	}
	if rec.Count >= l.cfg.MaxSpinsPerPeriod {
		if err := l.StartCooldown(ctx, models.CooldownLoser, userID, now); err != nil {
			return models.EligibilityDecision{}, fmt.Errorf("failed to start loser cooldown: %w", err)
		}
		return models.EligibilityDecision{Reason: models.BlockLoserCooldown, Remaining: l.cfg.LoserCooldown}, nil
	}
	return models.EligibilityDecision{}, nil
}

// RecordWin puts the user into the winner cooldown and clears any loser
// cooldown; winner state always dominates.
func (l *Ledger) RecordWin(ctx context.Context, userID int64, now time.Time) error {
	if err := l.StartCooldown(ctx, models.CooldownWinner, userID, now); err != nil {
		return fmt.Errorf("failed to start winner cooldown: %w", err)
	}
	if err := l.ClearCooldown(ctx, models.CooldownLoser, userID); err != nil {
		return fmt.Errorf("failed to clear loser cooldown: %w", err)
	}
	return nil
}
