package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"slot-game-backend/internal/features/claim/models"
)

// Executor submits the on-chain transfer for a prize. Implementations must
// bound their own latency; the coordinator additionally enforces a timeout
// around every call.
type Executor interface {
	Execute(ctx context.Context, prizeName, toAddress string) (txHash string, err *models.ExecutionError)
}

// WalletDirectory resolves a user's payout address; empty means none
// registered.
type WalletDirectory interface {
	GetWallet(ctx context.Context, userID int64) (string, error)
}

const defaultExecuteTimeout = 2 * time.Minute

// Coordinator enforces at-most-one successful claim per winning event and
// tracks pending/failed claims for resume and retry. All claim-tracking
// state is process-local: initialized empty at start, never persisted,
// acceptable to lose on restart.
type Coordinator struct {
	wallets  WalletDirectory
	executor Executor
	timeout  time.Duration

	mu      sync.Mutex
	events  map[string]*eventState
	pending map[int64]models.PendingClaim
	failed  map[int64]models.FailedClaim
}

type eventState struct {
	userID    int64
	prizeName string
	status    models.Status
}

// NewCoordinator creates a claim coordinator. A zero timeout falls back to
// the default execution bound.
func NewCoordinator(wallets WalletDirectory, executor Executor, timeout time.Duration) *Coordinator {
	if timeout == 0 {
		timeout = defaultExecuteTimeout
	}
	return &Coordinator{
		wallets:  wallets,
		executor: executor,
		timeout:  timeout,
		events:   make(map[string]*eventState),
		pending:  make(map[int64]models.PendingClaim),
		failed:   make(map[int64]models.FailedClaim),
	}
}

// InitiateClaim runs the guards for a claim attempt on eventID. winnerID is
// the user the winning event belongs to, callerID the user attempting the
// claim. On Proceed the event is locked (Claiming) and the resolved wallet
// returned; the caller must follow up with CompleteClaim.
func (c *Coordinator) InitiateClaim(ctx context.Context, eventID string, winnerID, callerID int64, prizeName string) (models.Decision, string, error) {
	c.mu.Lock()
	ev, ok := c.events[eventID]
	if ok {
		// a locked or completed event is closed to everyone; only the
		// owner of a failed claim may re-enter
		if ev.status == models.StatusClaiming || ev.status == models.StatusClaimed {
			c.mu.Unlock()
			return models.DecisionAlreadyClaimed, "", nil
		}
		if ev.userID != callerID {
			c.mu.Unlock()
			return models.DecisionNotOwner, "", nil
		}
	} else if winnerID != callerID {
		c.mu.Unlock()
		return models.DecisionNotOwner, "", nil
	}
	c.mu.Unlock()

	wallet, err := c.wallets.GetWallet(ctx, callerID)
	if err != nil {
		return "", "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if wallet == "" {
		c.pending[callerID] = models.PendingClaim{EventID: eventID, PrizeName: prizeName}
		return models.DecisionNeedsWallet, "", nil
	}

	// re-check under the lock: the wallet lookup yielded
	if ev, ok := c.events[eventID]; ok && (ev.status == models.StatusClaiming || ev.status == models.StatusClaimed) {
		return models.DecisionAlreadyClaimed, "", nil
	}
	c.events[eventID] = &eventState{userID: callerID, prizeName: prizeName, status: models.StatusClaiming}
	return models.DecisionProceed, wallet, nil
}

// CompleteClaim records the execution result for a previously initiated
// claim. Success marks the event Claimed and clears the user's pending and
// failed records. Failure marks it ClaimFailed and stores the failure for
// an explicit retry; the event lock is kept so no other user can interleave.
func (c *Coordinator) CompleteClaim(eventID string, userID int64, wallet, txHash string, execErr *models.ExecutionError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev, ok := c.events[eventID]
	if !ok || ev.userID != userID {
		log.Warn().Str("event_id", eventID).Int64("user_id", userID).
			Msg("completion for unknown claim event")
		return
	}

	if execErr == nil {
		ev.status = models.StatusClaimed
		delete(c.pending, userID)
		delete(c.failed, userID)
		log.Info().Str("event_id", eventID).Int64("user_id", userID).
			Str("tx_hash", txHash).Msg("claim completed")
		return
	}

	ev.status = models.StatusFailed
	c.failed[userID] = models.FailedClaim{
		EventID:   eventID,
		PrizeName: ev.prizeName,
		Wallet:    wallet,
		Err:       execErr,
	}
	log.Error().Str("event_id", eventID).Int64("user_id", userID).
		Str("kind", string(execErr.Kind)).Str("detail", execErr.Detail).
		Msg("claim execution failed")
}

// Execute runs the bounded transfer for a claim that already passed
// InitiateClaim and records the outcome. Execution failures are surfaced in
// the result, never retried here.
func (c *Coordinator) Execute(ctx context.Context, eventID string, userID int64, wallet, prizeName string) models.Result {
	execCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	txHash, execErr := c.executor.Execute(execCtx, prizeName, wallet)
	if execErr == nil && execCtx.Err() != nil {
		execErr = &models.ExecutionError{Kind: models.ErrKindUnexpected, Detail: "claim execution timed out"}
	}

	c.CompleteClaim(eventID, userID, wallet, txHash, execErr)
	return models.Result{Decision: models.DecisionProceed, Wallet: wallet, TxHash: txHash, ExecErr: execErr}
}

// Claim runs the whole flow: guards, bounded execution, completion.
func (c *Coordinator) Claim(ctx context.Context, eventID string, winnerID, callerID int64, prizeName string) (models.Result, error) {
	decision, wallet, err := c.InitiateClaim(ctx, eventID, winnerID, callerID, prizeName)
	if err != nil {
		return models.Result{}, err
	}
	if decision != models.DecisionProceed {
		return models.Result{Decision: decision}, nil
	}
	return c.Execute(ctx, eventID, callerID, wallet, prizeName), nil
}

// RetryFailed replays the user's recorded failed claim. ok is false when
// there is nothing to retry (the claim already completed).
func (c *Coordinator) RetryFailed(ctx context.Context, userID int64) (models.Result, bool, error) {
	c.mu.Lock()
	fc, ok := c.failed[userID]
	c.mu.Unlock()
	if !ok {
		return models.Result{}, false, nil
	}
	res, err := c.Claim(ctx, fc.EventID, userID, userID, fc.PrizeName)
	return res, true, err
}

// ResumePending replays the user's pending claim after a wallet became
// available. ok is false when no claim was waiting.
func (c *Coordinator) ResumePending(ctx context.Context, userID int64) (models.Result, string, bool, error) {
	c.mu.Lock()
	pc, ok := c.pending[userID]
	if ok {
		// consumed regardless of outcome; a failure moves it to failed
		delete(c.pending, userID)
	}
	c.mu.Unlock()
	if !ok {
		return models.Result{}, "", false, nil
	}
	res, err := c.Claim(ctx, pc.EventID, userID, userID, pc.PrizeName)
	return res, pc.PrizeName, true, err
}

// PendingFor returns the user's pending claim, if any.
func (c *Coordinator) PendingFor(userID int64) (models.PendingClaim, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pc, ok := c.pending[userID]
	return pc, ok
}

// FailedFor returns the user's failed claim, if any.
func (c *Coordinator) FailedFor(userID int64) (models.FailedClaim, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fc, ok := c.failed[userID]
	return fc, ok
}
