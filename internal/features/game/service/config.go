package service

import "time"

// Config collects the fairness-engine constants. Zero fields are filled
// with the defaults the game shipped with.
type Config struct {
	// MaxSpinsPerPeriod is how many spins a user gets per spin period.
	MaxSpinsPerPeriod int
	// SpinPeriod is the width of the epoch-aligned spin-count window.
	SpinPeriod time.Duration
	// WinnerCooldown blocks a user after a win.
	WinnerCooldown time.Duration
	// LoserCooldown blocks a user who exhausted the period's spins.
	LoserCooldown time.Duration
	// ShortCooldown is the in-memory anti-double-click guard.
	ShortCooldown time.Duration
	// StatsResetWindow bounds the global stats accumulation window.
	StatsResetWindow time.Duration
	// MinSpinsForAdjust is the sample size below which base probabilities
	// are used unadjusted.
	MinSpinsForAdjust int64
}

// DefaultConfig returns the shipped game constants.
func DefaultConfig() Config {
	return Config{
		MaxSpinsPerPeriod: 15,
		SpinPeriod:        15 * time.Hour,
		WinnerCooldown:    24 * time.Hour,
		LoserCooldown:     15 * time.Hour,
		ShortCooldown:     3 * time.Second,
		StatsResetWindow:  48 * time.Hour,
		MinSpinsForAdjust: 10,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxSpinsPerPeriod == 0 {
		c.MaxSpinsPerPeriod = def.MaxSpinsPerPeriod
	}
	if c.SpinPeriod == 0 {
		c.SpinPeriod = def.SpinPeriod
	}
	if c.WinnerCooldown == 0 {
		c.WinnerCooldown = def.WinnerCooldown
	}
	if c.LoserCooldown == 0 {
		c.LoserCooldown = def.LoserCooldown
	}
	if c.ShortCooldown == 0 {
		c.ShortCooldown = def.ShortCooldown
	}
	if c.StatsResetWindow == 0 {
		c.StatsResetWindow = def.StatsResetWindow
	}
	if c.MinSpinsForAdjust == 0 {
		c.MinSpinsForAdjust = def.MinSpinsForAdjust
	}
	return c
}

func (c Config) cooldownDuration(winner bool) time.Duration {
	if winner {
		return c.WinnerCooldown
	}
	return c.LoserCooldown
}
