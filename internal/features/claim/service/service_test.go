package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-game-backend/internal/features/claim/models"
)

type fakeWallets struct {
	mu      sync.Mutex
	wallets map[int64]string
}

func (f *fakeWallets) GetWallet(ctx context.Context, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wallets[userID], nil
}

func (f *fakeWallets) set(userID int64, addr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets[userID] = addr
}

type fakeExecutor struct {
	mu    sync.Mutex
	calls int
	fail  *models.ExecutionError
}

func (f *fakeExecutor) Execute(ctx context.Context, prizeName, toAddress string) (string, *models.ExecutionError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return "", f.fail
	}
	return "tx-hash-1", nil
}

func newTestCoordinator(wallets map[int64]string) (*Coordinator, *fakeWallets, *fakeExecutor) {
	fw := &fakeWallets{wallets: wallets}
	fe := &fakeExecutor{}
	return NewCoordinator(fw, fe, time.Second), fw, fe
}

func TestClaimHappyPath(t *testing.T) {
	ctx := context.Background()
	c, _, fe := newTestCoordinator(map[int64]string{1: "wallet-1"})

	res, err := c.Claim(ctx, "msg-1", 1, 1, "1 CDT")
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	assert.Equal(t, "tx-hash-1", res.TxHash)
	assert.Equal(t, "wallet-1", res.Wallet)
	assert.Equal(t, 1, fe.calls)

	// second attempt by anyone, the winner included, is rejected
	res, err = c.Claim(ctx, "msg-1", 1, 1, "1 CDT")
	require.NoError(t, err)
	assert.Equal(t, models.DecisionAlreadyClaimed, res.Decision)
	assert.Equal(t, 1, fe.calls)
}

func TestClaimNotOwner(t *testing.T) {
	ctx := context.Background()
	c, _, fe := newTestCoordinator(map[int64]string{2: "wallet-2"})

	res, err := c.Claim(ctx, "msg-1", 1, 2, "1 CDT")
	require.NoError(t, err)
	assert.Equal(t, models.DecisionNotOwner, res.Decision)
	assert.Zero(t, fe.calls)
}

func TestClaimNeedsWalletThenResume(t *testing.T) {
	ctx := context.Background()
	c, fw, fe := newTestCoordinator(map[int64]string{})

	res, err := c.Claim(ctx, "msg-1", 1, 1, "1 CDT")
	require.NoError(t, err)
	assert.Equal(t, models.DecisionNeedsWallet, res.Decision)
	assert.Zero(t, fe.calls)

	_, ok := c.PendingFor(1)
	assert.True(t, ok)

	// wallet registration resumes the recorded claim
	fw.set(1, "wallet-1")
	resumed, prizeName, ok, err := c.ResumePending(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1 CDT", prizeName)
	assert.True(t, resumed.Succeeded())

	_, ok = c.PendingFor(1)
	assert.False(t, ok)

	// nothing left to resume
	_, _, ok, err = c.ResumePending(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClaimFailureAllowsOwnerRetry(t *testing.T) {
	ctx := context.Background()
	c, _, fe := newTestCoordinator(map[int64]string{1: "wallet-1", 2: "wallet-2"})
	fe.fail = &models.ExecutionError{Kind: models.ErrKindInsufficientGasFunds, Detail: "no gas"}

	res, err := c.Claim(ctx, "msg-1", 1, 1, "1 CDT")
	require.NoError(t, err)
	assert.Equal(t, models.DecisionProceed, res.Decision)
	require.NotNil(t, res.ExecErr)
	assert.Equal(t, models.ErrKindInsufficientGasFunds, res.ExecErr.Kind)

	fc, ok := c.FailedFor(1)
	require.True(t, ok)
	assert.Equal(t, "msg-1", fc.EventID)

	// the event lock still shuts out other users
	res, err = c.Claim(ctx, "msg-1", 1, 2, "1 CDT")
	require.NoError(t, err)
	assert.Equal(t, models.DecisionNotOwner, res.Decision)

	// owner retry goes through once the executor recovers
	fe.fail = nil
	retried, ok, err := c.RetryFailed(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, retried.Succeeded())

	// failure record cleared; nothing to retry anymore
	_, ok, err = c.RetryFailed(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClaimConcurrentSameEvent(t *testing.T) {
	ctx := context.Background()
	c, _, fe := newTestCoordinator(map[int64]string{1: "wallet-1"})

	const n = 16
	var wg sync.WaitGroup
	results := make([]models.Result, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			res, err := c.Claim(ctx, "msg-1", 1, 1, "1 CDT")
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	// exactly one attempt reached execution
	var succeeded int
	for _, res := range results {
		if res.Succeeded() {
			succeeded++
		} else {
			assert.Equal(t, models.DecisionAlreadyClaimed, res.Decision)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, fe.calls)
}
