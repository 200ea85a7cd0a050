package service

import (
	"slot-game-backend/internal/features/game/models"
)

// Bounds on the self-correcting probability adjustment. The factor throttles
// over-awarded prizes down to 0.3x and boosts under-awarded ones up to 2.0x;
// the adjusted value is then clamped to [0.1, base*1.5] to bound single-step
// swings.
const (
	minAdjustFactor    = 0.3
	maxAdjustFactor    = 2.0
	minAdjustedPercent = 0.1
	maxBaseMultiplier  = 1.5
)

// adjustmentFactor computes the feedback factor for one prize from its base
// probability, actual award count and expected award count. Pure, so the
// boost/throttle branches are testable without a stats store.
func adjustmentFactor(awarded, expected float64) float64 {
	denom := expected
	if denom < 1 {
		denom = 1
	}
	if awarded > expected {
		factor := 1 - (awarded-expected)/denom
		if factor < minAdjustFactor {
			factor = minAdjustFactor
		}
		return factor
	}
	factor := 1 + (expected-awarded)/denom
	if factor > maxAdjustFactor {
		factor = maxAdjustFactor
	}
	return factor
}

// AdjustedProbabilities returns each prize's effective win chance in
// percent, corrected against the award history in stats. Below minSample
// total spins the base probabilities are returned unchanged.
func AdjustedProbabilities(stats models.GlobalStats, prizes []models.Prize, minSample int64) map[string]float64 {
	adjusted := make(map[string]float64, len(prizes))

	if stats.TotalSpins < minSample {
		for _, p := range prizes {
			adjusted[p.Name] = p.Probability
		}
		return adjusted
	}

	for _, p := range prizes {
		expected := p.Probability / 100 * float64(stats.TotalSpins)
		awarded := float64(stats.Awards[p.Name])

		prob := p.Probability * adjustmentFactor(awarded, expected)
		if ceiling := p.Probability * maxBaseMultiplier; prob > ceiling {
			prob = ceiling
		}
		if prob < minAdjustedPercent {
			prob = minAdjustedPercent
		}
		adjusted[p.Name] = prob
	}
	return adjusted
}
