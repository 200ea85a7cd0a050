package models

import "time"

// CooldownClass distinguishes the two independent long cooldowns.
type CooldownClass string

const (
	// CooldownWinner blocks a user after a winning spin.
	CooldownWinner CooldownClass = "winner"
	// CooldownLoser blocks a user who burned all spins of a period.
	CooldownLoser CooldownClass = "loser"
)

// SpinPeriodRecord tracks how many spins a user took inside one rate-limit
// window. A stale PeriodKey means the record belongs to a previous window
// and counts as zero.
type SpinPeriodRecord struct {
	PeriodKey string `json:"period"`
	Count     int    `json:"count"`
}

// CooldownEntry marks when a cooldown period began. Absence of an entry
// means the user is not in cooldown; an entry older than its class duration
// is expired and treated the same.
type CooldownEntry struct {
	StartedAt time.Time `json:"started_at"`
}

// GlobalStats is the process-wide spin/award counter set. Awards always
// holds an entry (possibly zero) for every configured prize.
type GlobalStats struct {
	WindowStart time.Time        `json:"last_reset"`
	TotalSpins  int64            `json:"total_spins"`
	Awards      map[string]int64 `json:"prizes_awarded"`
}

// NewGlobalStats returns a zeroed stats window starting at now.
func NewGlobalStats(prizes []Prize, now time.Time) GlobalStats {
	awards := make(map[string]int64, len(prizes))
	for _, p := range prizes {
		awards[p.Name] = 0
	}
	return GlobalStats{WindowStart: now, TotalSpins: 0, Awards: awards}
}

// BlockReason says why a spin was rejected.
type BlockReason string

const (
	BlockNone           BlockReason = ""
	BlockWinnerCooldown BlockReason = "winner_cooldown"
	BlockLoserCooldown  BlockReason = "max_spins"
	BlockShortCooldown  BlockReason = "short_cooldown"
)

// EligibilityDecision is the outcome of the spin gate. Remaining is how
// long the user stays blocked; zero when allowed.
type EligibilityDecision struct {
	Reason    BlockReason
	Remaining time.Duration
}

// Allowed reports whether the spin may proceed.
func (d EligibilityDecision) Allowed() bool { return d.Reason == BlockNone }

// SpinOutcome is the result of one executed spin. Prize is nil on a loss.
type SpinOutcome struct {
	Prize   *Prize
	Symbols [3]string
}

// Won reports whether the spin hit a prize.
func (o SpinOutcome) Won() bool { return o.Prize != nil }
