// Package memory provides in-process implementations of the game
// repositories. They back tests and single-node deployments that don't
// want a redis dependency; the durability contract is the caller's problem.
package memory

import (
	"context"
	"sync"
	"time"

	"slot-game-backend/internal/features/game/models"
	"slot-game-backend/internal/features/game/repository"
)

type spinRepository struct {
	mu      sync.Mutex
	records map[int64]models.SpinPeriodRecord
}

// NewSpinRepository returns an in-memory SpinRepository.
func NewSpinRepository() repository.SpinRepository {
	return &spinRepository{records: make(map[int64]models.SpinPeriodRecord)}
}

func (r *spinRepository) Get(ctx context.Context, userID int64) (models.SpinPeriodRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[userID], nil
}

func (r *spinRepository) Update(ctx context.Context, userID int64, fn func(models.SpinPeriodRecord) models.SpinPeriodRecord) (models.SpinPeriodRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := fn(r.records[userID])
	r.records[userID] = rec
	return rec, nil
}

type cooldownKey struct {
	class  models.CooldownClass
	userID int64
}

type cooldownRepository struct {
	mu      sync.Mutex
	entries map[cooldownKey]time.Time
}

// NewCooldownRepository returns an in-memory CooldownRepository.
func NewCooldownRepository() repository.CooldownRepository {
	return &cooldownRepository{entries: make(map[cooldownKey]time.Time)}
}

func (r *cooldownRepository) Get(ctx context.Context, class models.CooldownClass, userID int64) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.entries[cooldownKey{class, userID}]
	return at, ok, nil
}

func (r *cooldownRepository) Set(ctx context.Context, class models.CooldownClass, userID int64, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[cooldownKey{class, userID}] = startedAt
	return nil
}

func (r *cooldownRepository) Delete(ctx context.Context, class models.CooldownClass, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, cooldownKey{class, userID})
	return nil
}

type statsRepository struct {
	mu     sync.Mutex
	stats  models.GlobalStats
	exists bool
}

// NewStatsRepository returns an in-memory StatsRepository.
func NewStatsRepository() repository.StatsRepository {
	return &statsRepository{}
}

func (r *statsRepository) Get(ctx context.Context) (models.GlobalStats, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats, r.exists, nil
}

func (r *statsRepository) Update(ctx context.Context, fn func(models.GlobalStats, bool) models.GlobalStats) (models.GlobalStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = fn(r.stats, r.exists)
	r.exists = true
	return r.stats, nil
}
