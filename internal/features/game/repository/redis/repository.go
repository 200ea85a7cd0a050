package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"slot-game-backend/internal/features/game/models"
	"slot-game-backend/internal/features/game/repository"
)

const (
	keyPrefixSpins    = "spins:"
	keyPrefixCooldown = "cooldown:"
	keyGlobalStats    = "stats:global"

	// Optimistic WATCH transactions retry on conflicting writes before
	// giving up. Contention is per user key, so conflicts are rare.
	maxTxRetries = 5
)

func makeSpinKey(userID int64) string {
	return fmt.Sprintf("%s%d", keyPrefixSpins, userID)
}

func makeCooldownKey(class models.CooldownClass, userID int64) string {
	return fmt.Sprintf("%s%s:%d", keyPrefixCooldown, class, userID)
}

type spinRepository struct {
	client *redis.Client
}

// NewSpinRepository returns a redis-backed SpinRepository.
func NewSpinRepository(client *redis.Client) repository.SpinRepository {
	return &spinRepository{client: client}
}

func (r *spinRepository) Get(ctx context.Context, userID int64) (models.SpinPeriodRecord, error) {
	var rec models.SpinPeriodRecord
	data, err := r.client.Get(ctx, makeSpinKey(userID)).Bytes()
	if err == redis.Nil {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("failed to read spin record: %w", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode spin record: %w", err)
	}
	return rec, nil
}

func (r *spinRepository) Update(ctx context.Context, userID int64, fn func(models.SpinPeriodRecord) models.SpinPeriodRecord) (models.SpinPeriodRecord, error) {
	key := makeSpinKey(userID)
	var out models.SpinPeriodRecord

	txf := func(tx *redis.Tx) error {
		var rec models.SpinPeriodRecord
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("failed to read spin record: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("failed to decode spin record: %w", err)
			}
		}

		rec = fn(rec)
		out = rec

		encoded, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode spin record: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return out, err
	}
	return out, fmt.Errorf("spin record update for user %d: too many conflicting writes", userID)
}

type cooldownRepository struct {
	client *redis.Client
}

// NewCooldownRepository returns a redis-backed CooldownRepository.
func NewCooldownRepository(client *redis.Client) repository.CooldownRepository {
	return &cooldownRepository{client: client}
}

func (r *cooldownRepository) Get(ctx context.Context, class models.CooldownClass, userID int64) (time.Time, bool, error) {
	data, err := r.client.Get(ctx, makeCooldownKey(class, userID)).Bytes()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read %s cooldown: %w", class, err)
	}
	var entry models.CooldownEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to decode %s cooldown: %w", class, err)
	}
	return entry.StartedAt, true, nil
}

func (r *cooldownRepository) Set(ctx context.Context, class models.CooldownClass, userID int64, startedAt time.Time) error {
	data, err := json.Marshal(models.CooldownEntry{StartedAt: startedAt})
	if err != nil {
		return fmt.Errorf("failed to encode %s cooldown: %w", class, err)
	}
	return r.client.Set(ctx, makeCooldownKey(class, userID), data, 0).Err()
}

func (r *cooldownRepository) Delete(ctx context.Context, class models.CooldownClass, userID int64) error {
	return r.client.Del(ctx, makeCooldownKey(class, userID)).Err()
}

type statsRepository struct {
	client *redis.Client
}

// NewStatsRepository returns a redis-backed StatsRepository.
func NewStatsRepository(client *redis.Client) repository.StatsRepository {
	return &statsRepository{client: client}
}

func (r *statsRepository) Get(ctx context.Context) (models.GlobalStats, bool, error) {
	var stats models.GlobalStats
	data, err := r.client.Get(ctx, keyGlobalStats).Bytes()
	if err == redis.Nil {
		return stats, false, nil
	}
	if err != nil {
		return stats, false, fmt.Errorf("failed to read global stats: %w", err)
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		return stats, false, fmt.Errorf("failed to decode global stats: %w", err)
	}
	return stats, true, nil
}

func (r *statsRepository) Update(ctx context.Context, fn func(models.GlobalStats, bool) models.GlobalStats) (models.GlobalStats, error) {
	var out models.GlobalStats

	txf := func(tx *redis.Tx) error {
		var stats models.GlobalStats
		exists := true
		data, err := tx.Get(ctx, keyGlobalStats).Bytes()
		if err == redis.Nil {
			exists = false
		} else if err != nil {
			return fmt.Errorf("failed to read global stats: %w", err)
		} else if err := json.Unmarshal(data, &stats); err != nil {
			return fmt.Errorf("failed to decode global stats: %w", err)
		}

		stats = fn(stats, exists)
		out = stats

		encoded, err := json.Marshal(stats)
		if err != nil {
			return fmt.Errorf("failed to encode global stats: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyGlobalStats, encoded, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, keyGlobalStats)
		if err == nil {
			return out, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return out, err
	}
	return out, fmt.Errorf("global stats update: too many conflicting writes")
}
