package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePrizesAcceptsDefaultTable(t *testing.T) {
	require.NoError(t, ValidatePrizes(DefaultPrizes()))
}

// tableUsingSymbols builds one prize per glyph, with probabilities low
// enough to stay under the 100% cap for a full-glyph table.
func tableUsingSymbols(symbols []string) []Prize {
	prizes := make([]Prize, 0, len(symbols))
	for i, s := range symbols {
		prizes = append(prizes, Prize{
			Name:        fmt.Sprintf("prize-%d", i),
			Symbol:      s,
			Probability: 9.9,
			Amount:      1,
			Decimals:    9,
		})
	}
	return prizes
}

func TestValidatePrizesRequiresLosingGlyphs(t *testing.T) {
	// a prize on every reel glyph leaves nothing for a losing spin to show
	err := ValidatePrizes(tableUsingSymbols(SlotSymbols))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "losing")

	// one free glyph cannot make a non-identical triple either
	err = ValidatePrizes(tableUsingSymbols(SlotSymbols[:len(SlotSymbols)-1]))
	require.Error(t, err)

	// two free glyphs is the minimum
	assert.NoError(t, ValidatePrizes(tableUsingSymbols(SlotSymbols[:len(SlotSymbols)-2])))
}

func TestValidatePrizesRejectsBadRows(t *testing.T) {
	base := DefaultPrizes()

	dup := append(DefaultPrizes(), base[0])
	assert.Error(t, ValidatePrizes(dup))

	overflow := tableUsingSymbols(SlotSymbols[:5])
	for i := range overflow {
		overflow[i].Probability = 25
	}
	assert.Error(t, ValidatePrizes(overflow))

	assert.Error(t, ValidatePrizes(nil))
}
