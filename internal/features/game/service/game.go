package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"slot-game-backend/internal/features/game/models"
)

// Game ties the gate, engine and ledger together into the single flow the
// delivery layers call: check eligibility, draw, record the spin and any
// win. Transport concerns stay outside.
type Game struct {
	gate   *Gate
	engine *Engine
	ledger *Ledger
	prizes []models.Prize

	// play attempts for one user run one at a time: the eligibility check
	// and the records it guards must act as a single unit
	mu    sync.Mutex
	users map[int64]*sync.Mutex
}

// PlayResult is the outcome of one play attempt. When Decision blocks the
// spin, Outcome is meaningless and SpinsLeft is zero.
type PlayResult struct {
	Decision  models.EligibilityDecision
	Outcome   models.SpinOutcome
	SpinsLeft int
}

// NewGame wires the play flow.
func NewGame(gate *Gate, engine *Engine, ledger *Ledger, prizes []models.Prize) *Game {
	return &Game{gate: gate, engine: engine, ledger: ledger, prizes: prizes, users: make(map[int64]*sync.Mutex)}
}

// userLock returns the mutex serializing one user's play attempts.
func (g *Game) userLock(userID int64) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		g.users[userID] = lock
	}
	return lock
}

// Prizes returns the static prize table in declared order.
func (g *Game) Prizes() []models.Prize { return g.prizes }

// SpinsLeft reports the user's remaining spins for the current period.
func (g *Game) SpinsLeft(ctx context.Context, userID int64, now time.Time) (int, error) {
	return g.ledger.SpinsRemaining(ctx, userID, now)
}

// Status reports the user's current eligibility and remaining spins
// without consuming anything.
func (g *Game) Status(ctx context.Context, userID int64, now time.Time) (models.EligibilityDecision, int, error) {
	decision, err := g.gate.CanSpin(ctx, userID, now)
	if err != nil {
		return models.EligibilityDecision{}, 0, err
	}
	left, err := g.ledger.SpinsRemaining(ctx, userID, now)
	if err != nil {
		return models.EligibilityDecision{}, 0, err
	}
	return decision, left, nil
}

// Play runs one full spin attempt for the user. The short cooldown is
// committed only after both eligibility layers pass, exactly once per
// accepted attempt.
func (g *Game) Play(ctx context.Context, userID int64, now time.Time) (PlayResult, error) {
	lock := g.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	decision, err := g.gate.CanSpin(ctx, userID, now)
	if err != nil {
		return PlayResult{}, err
	}
	if !decision.Allowed() {
		return PlayResult{Decision: decision}, nil
	}
	g.gate.Commit(userID, now)

	outcome, err := g.engine.Spin(ctx, now)
	if err != nil {
		return PlayResult{}, err
	}

	if _, err := g.ledger.RecordSpin(ctx, userID, now); err != nil {
		return PlayResult{}, err
	}
	if outcome.Won() {
		if err := g.ledger.RecordWin(ctx, userID, now); err != nil {
			return PlayResult{}, err
		}
		log.Info().Int64("user_id", userID).Str("prize", outcome.Prize.Name).Msg("prize won")
		return PlayResult{Outcome: outcome}, nil
	}

	left, err := g.ledger.SpinsRemaining(ctx, userID, now)
	if err != nil {
		return PlayResult{}, err
	}
	return PlayResult{Outcome: outcome, SpinsLeft: left}, nil
}
