package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-game-backend/internal/features/game/models"
	"slot-game-backend/internal/features/game/repository/memory"
)

func newTestGame(t *testing.T, prizes []models.Prize, seed int64) *Game {
	t.Helper()
	require.NoError(t, models.ValidatePrizes(prizes))
	cfg := DefaultConfig()
	ledger := NewLedger(memory.NewSpinRepository(), memory.NewCooldownRepository(), cfg)
	stats := NewStats(memory.NewStatsRepository(), prizes, cfg)
	engine := NewEngineWithRand(stats, prizes, cfg, rand.New(rand.NewSource(seed)))
	return NewGame(NewGate(ledger, cfg), engine, ledger, prizes)
}

// neverWinTable makes losses certain while staying a valid prize table.
func neverWinTable() []models.Prize {
	return []models.Prize{{Name: "unreachable", Symbol: "🪙", Probability: 1e-9, Message: "won", Amount: 1, Decimals: 9}}
}

// alwaysWinTable makes a win near-certain for the winner-path tests.
func alwaysWinTable() []models.Prize {
	return []models.Prize{{Name: "jackpot", Symbol: "7️⃣", Probability: 99.9, Message: "won", Amount: 1, Decimals: 9}}
}

func TestPlayExhaustsPeriodThenBlocks(t *testing.T) {
	ctx := context.Background()
	game := newTestGame(t, neverWinTable(), 1)
	now := PeriodStart(15*time.Hour, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)).Add(time.Hour)

	for i := 0; i < 15; i++ {
		// step past the short cooldown between attempts
		res, err := game.Play(ctx, 1, now.Add(time.Duration(i)*10*time.Second))
		require.NoError(t, err)
		require.True(t, res.Decision.Allowed(), "spin %d blocked early", i+1)
		assert.False(t, res.Outcome.Won())
		assert.Equal(t, 15-(i+1), res.SpinsLeft)
	}

	blockedAt := now.Add(16 * 10 * time.Second)
	res, err := game.Play(ctx, 1, blockedAt)
	require.NoError(t, err)
	assert.Equal(t, models.BlockLoserCooldown, res.Decision.Reason)
	assert.Equal(t, 15*time.Hour, res.Decision.Remaining)

	// still blocked until the loser cooldown runs out from the blocking spin
	res, err = game.Play(ctx, 1, blockedAt.Add(15*time.Hour-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.BlockLoserCooldown, res.Decision.Reason)

	// after expiry the fresh period grants the full allowance again
	res, err = game.Play(ctx, 1, blockedAt.Add(15*time.Hour+time.Minute))
	require.NoError(t, err)
	require.True(t, res.Decision.Allowed())
	assert.Equal(t, 14, res.SpinsLeft)
}

func TestPlayConcurrentAtMaxSpinsBoundary(t *testing.T) {
	// simultaneous attempts at the last allowed spin must not both pass
	// the eligibility check before either one records
	ctx := context.Background()
	prizes := neverWinTable()
	cfg := DefaultConfig()
	spins := memory.NewSpinRepository()
	ledger := NewLedger(spins, memory.NewCooldownRepository(), cfg)
	stats := NewStats(memory.NewStatsRepository(), prizes, cfg)
	engine := NewEngineWithRand(stats, prizes, cfg, rand.New(rand.NewSource(1)))
	game := NewGame(NewGate(ledger, cfg), engine, ledger, prizes)

	base := PeriodStart(15*time.Hour, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)).Add(time.Hour)
	for i := 0; i < 14; i++ {
		res, err := game.Play(ctx, 1, base.Add(time.Duration(i)*10*time.Second))
		require.NoError(t, err)
		require.True(t, res.Decision.Allowed(), "setup spin %d blocked", i+1)
	}

	boundary := base.Add(30 * time.Minute)
	const attempts = 8
	results := make([]PlayResult, attempts)
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = game.Play(ctx, 1, boundary)
		}(i)
	}
	wg.Wait()

	var allowed int
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		if results[i].Decision.Allowed() {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)

	// the period counter lands exactly on the cap, never past it
	rec, err := spins.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 15, rec.Count)
}

func TestPlayWinStartsWinnerCooldown(t *testing.T) {
	ctx := context.Background()
	game := newTestGame(t, alwaysWinTable(), 1)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	res, err := game.Play(ctx, 1, now)
	require.NoError(t, err)
	require.True(t, res.Decision.Allowed())
	require.True(t, res.Outcome.Won())
	assert.Equal(t, "jackpot", res.Outcome.Prize.Name)
	assert.Equal(t, [3]string{"7️⃣", "7️⃣", "7️⃣"}, res.Outcome.Symbols)

	res, err = game.Play(ctx, 1, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.BlockWinnerCooldown, res.Decision.Reason)

	res, err = game.Play(ctx, 1, now.Add(24*time.Hour+time.Second))
	require.NoError(t, err)
	assert.True(t, res.Decision.Allowed())
}

func TestPlayShortCooldownBlocksDoubleClick(t *testing.T) {
	ctx := context.Background()
	game := newTestGame(t, neverWinTable(), 1)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	res, err := game.Play(ctx, 1, now)
	require.NoError(t, err)
	require.True(t, res.Decision.Allowed())

	res, err = game.Play(ctx, 1, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, models.BlockShortCooldown, res.Decision.Reason)
}
