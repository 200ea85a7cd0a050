package models

import (
	"encoding/json"
	"fmt"
	"os"
)

// Prize is one row of the static prize table. The table is loaded once at
// startup and its declared order is significant: the spin draw walks it
// top to bottom, so earlier prizes win cumulative-probability ties.
type Prize struct {
	// Name uniquely identifies the prize ("1 CDT", "100 CDT", ...).
	Name string `json:"name"`
	// Symbol is the slot glyph shown three times on a winning spin.
	Symbol string `json:"symbol"`
	// Probability is the base win chance in percent, (0, 100].
	Probability float64 `json:"probability"`
	// Message is the announcement text for a winning spin.
	Message string `json:"message"`
	// Token is the jetton master address the reward is paid in.
	Token string `json:"token"`
	// Amount is the reward size in token base units.
	Amount int64 `json:"amount"`
	// Decimals is the token's decimal count (9 for most jettons).
	Decimals int `json:"decimals"`
}

// SlotSymbols is the full glyph set the reels draw from. Losing spins pick
// from the subset not used by any prize.
var SlotSymbols = []string{"🍒", "🍋", "🍊", "🍉", "🍇", "🔔", "⭐", "7️⃣", "💎", "🪙"}

// DefaultPrizes returns the built-in prize table. Token addresses are empty
// until configured; claims against an unconfigured prize fail with a
// configuration error instead of being silently dropped.
func DefaultPrizes() []Prize {
	return []Prize{
		{
			Name:        "1 CDT",
			Symbol:      "🪙",
			Probability: 5.0,
			Message:     "🪙 Nice! Triple Coins - You won 1 CDT! 🪙",
			Amount:      1_000_000_000,
			Decimals:    9,
		},
		{
			Name:        "10 TSN",
			Symbol:      "💎",
			Probability: 3.0,
			Message:     "💎 Great! Triple Diamonds - You won 10 TSN! 💎",
			Amount:      10_000_000_000,
			Decimals:    9,
		},
		{
			Name:        "0.01 WLD",
			Symbol:      "🍉",
			Probability: 0.5,
			Message:     "🍉 Lucky! Triple Watermelons - You won 0.01 WLD! 🍉",
			Amount:      10_000_000,
			Decimals:    9,
		},
		{
			Name:        "0.01 USDC",
			Symbol:      "⭐",
			Probability: 0.5,
			Message:     "⭐ Lucky! Triple Stars - You won 0.01 USDC! ⭐",
			Amount:      10_000,
			Decimals:    6,
		},
		{
			Name:        "100 CDT",
			Symbol:      "7️⃣",
			Probability: 0.2,
			Message:     "🎉 JACKPOT! Triple 7 - You won 100 CDT! 🎉",
			Amount:      100_000_000_000,
			Decimals:    9,
		},
	}
}

// LoadPrizes reads the prize table from a JSON file, falling back to the
// built-in table when path is empty. The table is validated before use.
func LoadPrizes(path string) ([]Prize, error) {
	prizes := DefaultPrizes()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prize table: %w", err)
		}
		prizes = nil
		if err := json.Unmarshal(data, &prizes); err != nil {
			return nil, fmt.Errorf("failed to parse prize table: %w", err)
		}
	}
	if err := ValidatePrizes(prizes); err != nil {
		return nil, err
	}
	return prizes, nil
}

// ValidatePrizes enforces the table invariants: unique names, probabilities
// in (0, 100], a total below 100% so a losing outcome always remains, and at
// least two reel glyphs left unclaimed so a losing spin can show a
// non-identical triple.
func ValidatePrizes(prizes []Prize) error {
	if len(prizes) == 0 {
		return fmt.Errorf("prize table is empty")
	}
	seen := make(map[string]struct{}, len(prizes))
	symbols := make(map[string]struct{}, len(prizes))
	var total float64
	for _, p := range prizes {
		if p.Name == "" {
			return fmt.Errorf("prize with empty name")
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("duplicate prize name: %s", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Symbol == "" {
			return fmt.Errorf("prize %s has no symbol", p.Name)
		}
		symbols[p.Symbol] = struct{}{}
		if p.Probability <= 0 || p.Probability > 100 {
			return fmt.Errorf("prize %s has invalid probability %.2f", p.Name, p.Probability)
		}
		if p.Amount <= 0 {
			return fmt.Errorf("prize %s has invalid amount %d", p.Name, p.Amount)
		}
		total += p.Probability
	}
	if total >= 100 {
		return fmt.Errorf("prize probabilities sum to %.2f%%, must stay below 100%%", total)
	}
	losing := 0
	for _, s := range SlotSymbols {
		if _, ok := symbols[s]; !ok {
			losing++
		}
	}
	if losing < 2 {
		return fmt.Errorf("prize symbols leave %d of %d reel glyphs for losing spins, need at least 2", losing, len(SlotSymbols))
	}
	return nil
}

// PrizeByName returns the prize with the given name, or nil.
func PrizeByName(prizes []Prize, name string) *Prize {
	for i := range prizes {
		if prizes[i].Name == name {
			return &prizes[i]
		}
	}
	return nil
}
