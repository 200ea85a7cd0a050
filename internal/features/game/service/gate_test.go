package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-game-backend/internal/features/game/models"
)

func newTestGate() *Gate {
	return NewGate(newTestLedger(), DefaultConfig())
}

func TestGateShortCooldown(t *testing.T) {
	ctx := context.Background()
	g := newTestGate()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	decision, err := g.CanSpin(ctx, 1, now)
	require.NoError(t, err)
	assert.True(t, decision.Allowed())

	// checking alone must not arm the short cooldown
	decision, err = g.CanSpin(ctx, 1, now)
	require.NoError(t, err)
	assert.True(t, decision.Allowed())

	g.Commit(1, now)

	decision, err = g.CanSpin(ctx, 1, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, models.BlockShortCooldown, decision.Reason)
	assert.Equal(t, 2*time.Second, decision.Remaining)

	decision, err = g.CanSpin(ctx, 1, now.Add(3*time.Second))
	require.NoError(t, err)
	assert.True(t, decision.Allowed())
}

func TestGateShortCooldownIsPerUser(t *testing.T) {
	ctx := context.Background()
	g := newTestGate()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	g.Commit(1, now)

	decision, err := g.CanSpin(ctx, 2, now)
	require.NoError(t, err)
	assert.True(t, decision.Allowed())
}

func TestGateLongCooldownTakesPriority(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger()
	g := NewGate(ledger, DefaultConfig())
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, ledger.RecordWin(ctx, 1, now))
	g.Commit(1, now)

	// the durable winner cooldown is reported, not the short one
	decision, err := g.CanSpin(ctx, 1, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, models.BlockWinnerCooldown, decision.Reason)
}
