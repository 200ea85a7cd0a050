package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-game-backend/internal/features/game/models"
	"slot-game-backend/internal/features/game/repository/memory"
)

func newTestLedger() *Ledger {
	return NewLedger(memory.NewSpinRepository(), memory.NewCooldownRepository(), DefaultConfig())
}

func TestCheckCooldownAbsent(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	active, remaining, err := l.CheckCooldown(ctx, models.CooldownWinner, 1, time.Now())
	require.NoError(t, err)
	assert.False(t, active)
	assert.Zero(t, remaining)
}

func TestCheckCooldownActiveAndExpiry(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, l.StartCooldown(ctx, models.CooldownWinner, 1, now))

	active, remaining, err := l.CheckCooldown(ctx, models.CooldownWinner, 1, now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, 23*time.Hour, remaining)

	// one second past the 24h class duration the entry is gone
	active, _, err = l.CheckCooldown(ctx, models.CooldownWinner, 1, now.Add(24*time.Hour+time.Second))
	require.NoError(t, err)
	assert.False(t, active)

	// the expired entry was lazily removed, not just ignored
	_, ok, err := memoryCooldownPeek(l, ctx, models.CooldownWinner, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func memoryCooldownPeek(l *Ledger, ctx context.Context, class models.CooldownClass, userID int64) (time.Time, bool, error) {
	return l.cooldowns.Get(ctx, class, userID)
}

func TestRecordSpinResetsOnPeriodRollover(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	now := PeriodStart(15*time.Hour, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)).Add(time.Hour)

	for i := 1; i <= 3; i++ {
		count, err := l.RecordSpin(ctx, 1, now)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	// next period: counter starts over
	count, err := l.RecordSpin(ctx, 1, now.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSpinsRemaining(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	left, err := l.SpinsRemaining(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 15, left)

	for i := 0; i < 4; i++ {
		_, err := l.RecordSpin(ctx, 1, now)
		require.NoError(t, err)
	}
	left, err = l.SpinsRemaining(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 11, left)

	// stale record means a fresh period with full allowance
	left, err = l.SpinsRemaining(ctx, 1, now.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 15, left)
}

func TestEvaluateEligibilityMaxSpinsStartsLoserCooldown(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	now := PeriodStart(15*time.Hour, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)).Add(time.Hour)

	for i := 0; i < 15; i++ {
		_, err := l.RecordSpin(ctx, 1, now)
		require.NoError(t, err)
	}

	decision, err := l.EvaluateEligibility(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, models.BlockLoserCooldown, decision.Reason)
	assert.Equal(t, 15*time.Hour, decision.Remaining)

	// the boundary check started a durable loser cooldown anchored at now
	startedAt, ok, err := memoryCooldownPeek(l, ctx, models.CooldownLoser, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, now, startedAt)

	// still blocked just before expiry, free right after
	decision, err = l.EvaluateEligibility(ctx, 1, now.Add(15*time.Hour-time.Second))
	require.NoError(t, err)
	assert.Equal(t, models.BlockLoserCooldown, decision.Reason)

	decision, err = l.EvaluateEligibility(ctx, 1, now.Add(15*time.Hour+time.Second))
	require.NoError(t, err)
	assert.True(t, decision.Allowed())
}

func TestWinnerCooldownDominates(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, l.StartCooldown(ctx, models.CooldownLoser, 1, now))
	require.NoError(t, l.RecordWin(ctx, 1, now))

	// loser cooldown is cleared the moment the user wins
	_, ok, err := memoryCooldownPeek(l, ctx, models.CooldownLoser, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	decision, err := l.EvaluateEligibility(ctx, 1, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.BlockWinnerCooldown, decision.Reason)

	// blocked for exactly 24h regardless of the prior loser state
	decision, err = l.EvaluateEligibility(ctx, 1, now.Add(24*time.Hour-time.Second))
	require.NoError(t, err)
	assert.Equal(t, models.BlockWinnerCooldown, decision.Reason)

	decision, err = l.EvaluateEligibility(ctx, 1, now.Add(24*time.Hour+time.Second))
	require.NoError(t, err)
	assert.True(t, decision.Allowed())
}

func TestRecordSpinConcurrentSameUser(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	now := PeriodStart(15*time.Hour, time.Now().UTC()).Add(time.Hour)

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := l.RecordSpin(ctx, 1, now)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// no lost updates: every spin landed
	rec, err := l.spins.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, n, rec.Count)
}
