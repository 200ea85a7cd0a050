package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-game-backend/internal/features/wallet/repository/memory"
)

// ton foundation address, a known-good mainnet address
const testAddr = "EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg8xqB2N"

func TestRegisterAndLookup(t *testing.T) {
	ctx := context.Background()
	s := NewService(memory.NewUserRepository())

	require.NoError(t, s.Register(ctx, 1, "alice"))
	wallet, err := s.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, wallet)

	// unknown users are not an error, just walletless
	wallet, err = s.GetWallet(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, wallet)
}

func TestSetWalletValidates(t *testing.T) {
	ctx := context.Background()
	s := NewService(memory.NewUserRepository())

	_, err := s.SetWallet(ctx, 1, "alice", "not-an-address")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	canonical, err := s.SetWallet(ctx, 1, "alice", testAddr)
	require.NoError(t, err)
	assert.NotEmpty(t, canonical)

	wallet, err := s.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, canonical, wallet)
}

func TestRegisterKeepsWallet(t *testing.T) {
	ctx := context.Background()
	s := NewService(memory.NewUserRepository())

	_, err := s.SetWallet(ctx, 1, "alice", testAddr)
	require.NoError(t, err)

	// re-registering with a new username must not drop the wallet
	require.NoError(t, s.Register(ctx, 1, "alice_renamed"))
	wallet, err := s.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, wallet)
}
