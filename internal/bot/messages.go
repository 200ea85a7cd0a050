package bot

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"slot-game-backend/internal/features/game/models"
)

const spinAnimation = "🎰 Spinning the slot...\n\n[▓▓▓▓▓▓▓▓▓] 100%\nGood luck! 🍀"

var loseMessages = []string{
	"❌ You didn't win this time.\nTry your luck again!",
	"❌ Almost there! Not quite a winning combination.\nSpin again!",
	"❌ No luck this round!\nGive it another shot!",
	"❌ Not the winning combination.\nKeep trying!",
	"❌ So close!\nTry again!",
}

func randomLoseMessage() string {
	return loseMessages[rand.Intn(len(loseMessages))]
}

func userLink(userID int64, username string) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, userID, username)
}

func formatResult(outcome models.SpinOutcome, userID int64, username string) string {
	const divider = "───────────────"
	slotDisplay := fmt.Sprintf("%s | %s | %s", outcome.Symbols[0], outcome.Symbols[1], outcome.Symbols[2])
	base := fmt.Sprintf("%s\n🎰 Result:\n%s\n%s\n\n", divider, slotDisplay, divider)

	var message string
	if outcome.Won() {
		message = outcome.Prize.Message
	} else {
		message = randomLoseMessage()
	}

	footer := fmt.Sprintf("\n\n<blockquote>Spin by: %s</blockquote>", userLink(userID, username))
	return base + message + footer
}

func formatDuration(d time.Duration) string {
	total := int64(d.Seconds())
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

func cooldownMessage(remaining time.Duration, userID int64, username string, isWinner bool) string {
	link := userLink(userID, username)
	if isWinner {
		return fmt.Sprintf("🎉 %s, you already won a prize!\n\nYou can play again in: %s", link, formatDuration(remaining))
	}
	return fmt.Sprintf("⏳ %s, you reached the max spins for today!\n\nYou can play again in: %s", link, formatDuration(remaining))
}

func shortCooldownMessage(remaining time.Duration, userID int64, username string) string {
	secs := int64(remaining.Seconds()) + 1
	return fmt.Sprintf("⏱️ Please wait %ds before spinning again, %s", secs, userLink(userID, username))
}

func prizeLines(prizes []models.Prize, withProbability bool) string {
	var b strings.Builder
	for i, p := range prizes {
		if i > 0 {
			b.WriteByte('\n')
		}
		if withProbability {
			fmt.Fprintf(&b, "• %s - %s%s%s (Probability: %g%%)", p.Name, p.Symbol, p.Symbol, p.Symbol, p.Probability)
		} else {
			fmt.Fprintf(&b, "• %s - %s%s%s", p.Name, p.Symbol, p.Symbol, p.Symbol)
		}
	}
	return b.String()
}

func startMessage(prizes []models.Prize) string {
	return fmt.Sprintf(`🎰 <b>Welcome to the Slot Game!</b> 🎰

Ready to test your luck? 🍀

<b>Available Prizes:</b>
%s

Use /slot to spin the reels!

Good luck! 🎯`, prizeLines(prizes, false))
}

func prizesMessage(prizes []models.Prize) string {
	return fmt.Sprintf(`🎰 <b>Slot Game - Available Prizes</b> 🎰

%s

Use /slot to spin and try your luck! 🍀`, prizeLines(prizes, true))
}

// PromoMessage renders the recurring teaser the promo worker posts.
func PromoMessage(prizes []models.Prize) string {
	return fmt.Sprintf(`🎁 <b><u>SLOT GAME</u></b> 🎁

🎰 Spin the slot machine and test your luck!

<blockquote>💡 How to play:

1️⃣ Type /slot in the group to spin the slot machine.

2️⃣ Match three identical symbols to win a prize!

🏆 Prizes:
%s</blockquote>

<blockquote>✨ Commands:
/slot → Spin the slot machine</blockquote>

Good luck! 🍀`, prizeLines(prizes, false))
}

func walletInstructions(username, botUsername string) string {
	return fmt.Sprintf(`👋 Hi %s!

To claim your prize, you need to register your wallet address.

📝 Steps:
1. Click here to message me privately: @%s
2. Send me your wallet address using:
   <code>/wallet your_wallet_address</code>

⚠️ Make sure to send it in PRIVATE MESSAGE for security!

After registering, your prize will be automatically sent to your wallet.`, username, botUsername)
}

func claimSuccessMessage(userID int64, username, prizeName, wallet, txHash string) string {
	return fmt.Sprintf(`✅ %s, your claim was successful!

🎁 Prize: %s
👛 Sent to: <code>%s</code>
🔗 TxHash: <code>%s</code>

Check your wallet!`, userLink(userID, username), prizeName, wallet, txHash)
}

func claimErrorMessage(userID int64, username, detail, adminUsername string) string {
	msg := fmt.Sprintf("❌ %s, there was an error processing your claim:\n\n%s\n", userLink(userID, username), detail)
	if adminUsername != "" {
		msg += fmt.Sprintf("\nPlease contact %s for assistance.\n", adminUsername)
	}
	msg += "\nYou can also try again by clicking the button below:"
	return msg
}
