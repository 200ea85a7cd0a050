package models

import "fmt"

// Status tracks one winning event through the claim state machine:
// Unclaimed (no record) → Claiming → Claimed or ClaimFailed; a failed
// claim may re-enter Claiming on an explicit user retry.
type Status string

const (
	StatusClaiming Status = "claiming"
	StatusClaimed  Status = "claimed"
	StatusFailed   Status = "failed"
)

// Decision is the answer to a claim initiation.
type Decision string

const (
	// DecisionProceed: the caller owns the event and has a wallet; the
	// event is now locked for execution.
	DecisionProceed Decision = "proceed"
	// DecisionAlreadyClaimed: the event is locked or completed.
	DecisionAlreadyClaimed Decision = "already_claimed"
	// DecisionNotOwner: someone else's prize.
	DecisionNotOwner Decision = "not_owner"
	// DecisionNeedsWallet: the winner has no registered address yet; a
	// pending claim was recorded so wallet registration can resume it.
	DecisionNeedsWallet Decision = "needs_wallet"
)

// ErrorKind classifies execution failures reported by the claim executor.
type ErrorKind string

const (
	ErrKindUnconfigured                ErrorKind = "unconfigured"
	ErrKindInvalidPrize                ErrorKind = "invalid_prize"
	ErrKindInvalidAddress              ErrorKind = "invalid_address"
	ErrKindInsufficientGasFunds        ErrorKind = "insufficient_gas_funds"
	ErrKindInsufficientContractBalance ErrorKind = "insufficient_contract_balance"
	ErrKindEstimationFailed            ErrorKind = "estimation_failed"
	ErrKindTransactionReverted         ErrorKind = "transaction_reverted"
	ErrKindUnexpected                  ErrorKind = "unexpected"
)

// ExecutionError is a typed failure from the claim executor.
type ExecutionError struct {
	Kind   ErrorKind
	Detail string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("claim execution failed (%s): %s", e.Kind, e.Detail)
}

// UserMessage renders the failure for the winner.
func (e *ExecutionError) UserMessage() string {
	switch e.Kind {
	case ErrKindUnconfigured:
		return "Payouts are not configured. Please contact admin."
	case ErrKindInvalidPrize:
		return "Invalid prize."
	case ErrKindInvalidAddress:
		return "Invalid wallet address."
	case ErrKindInsufficientGasFunds:
		return "The prize wallet has no funds for network fees. Please contact admin."
	case ErrKindInsufficientContractBalance:
		return "Insufficient token balance in the prize pool. Please contact admin."
	case ErrKindEstimationFailed:
		return "The transfer could not be prepared: " + e.Detail
	case ErrKindTransactionReverted:
		return "The transaction failed on-chain: " + e.Detail
	default:
		return "Error processing claim: " + e.Detail
	}
}

// PendingClaim remembers a win whose claim is waiting for the winner to
// register a wallet. Process-local; lost on restart by design.
type PendingClaim struct {
	EventID   string
	PrizeName string
}

// FailedClaim remembers the last failed execution for a user so the retry
// action can replay it against the same event lock.
type FailedClaim struct {
	EventID   string
	PrizeName string
	Wallet    string
	Err       *ExecutionError
}

// Result is what a full claim attempt produced.
type Result struct {
	Decision Decision
	// Wallet the payout targeted; set for Proceed and NeedsWallet-resume paths.
	Wallet string
	// TxHash of the transfer; set when the claim succeeded.
	TxHash string
	// ExecErr is set when Decision is Proceed but execution failed.
	ExecErr *ExecutionError
}

// Succeeded reports whether the claim completed with a transaction.
func (r Result) Succeeded() bool {
	return r.Decision == DecisionProceed && r.ExecErr == nil
}
