package service

import (
	"context"
	"sync"
	"time"

	"slot-game-backend/internal/features/game/models"
)

// Gate decides whether a spin may run right now. It layers a process-local
// anti-spam cooldown on top of the ledger's durable checks. The short
// cooldown state lives only for the lifetime of the process; losing it on
// restart is accepted behavior.
type Gate struct {
	ledger *Ledger
	cfg    Config

	mu       sync.Mutex
	lastSpin map[int64]time.Time
}

// NewGate creates an eligibility gate over the ledger.
func NewGate(ledger *Ledger, cfg Config) *Gate {
	return &Gate{ledger: ledger, cfg: cfg.withDefaults(), lastSpin: make(map[int64]time.Time)}
}

// CanSpin composes the long-form ledger checks with the short cooldown.
// It never records the short cooldown; callers that commit to executing
// the spin must call Commit exactly once.
func (g *Gate) CanSpin(ctx context.Context, userID int64, now time.Time) (models.EligibilityDecision, error) {
	decision, err := g.ledger.EvaluateEligibility(ctx, userID, now)
	if err != nil {
		return models.EligibilityDecision{}, err
	}
	if !decision.Allowed() {
		return decision, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if last, ok := g.lastSpin[userID]; ok {
		if elapsed := now.Sub(last); elapsed < g.cfg.ShortCooldown {
			return models.EligibilityDecision{
				Reason:    models.BlockShortCooldown,
				Remaining: g.cfg.ShortCooldown - elapsed,
			}, nil
		}
	}
	return models.EligibilityDecision{}, nil
}

// Commit records the accepted spin attempt for the short cooldown.
func (g *Gate) Commit(userID int64, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastSpin[userID] = now
}
