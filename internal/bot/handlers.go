package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	claimmodels "slot-game-backend/internal/features/claim/models"
	gamemodels "slot-game-backend/internal/features/game/models"
	walletservice "slot-game-backend/internal/features/wallet/service"
	"slot-game-backend/internal/platform/telegram"
)

func (b *Bot) handleStart(ctx context.Context, msg *telegram.Message) {
	user := *msg.From
	if err := b.wallets.Register(ctx, user.ID, displayName(user)); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to register user")
	}
	b.reply(ctx, msg.Chat.ID, msg.MessageThreadID, startMessage(b.prizes), nil)
}

func (b *Bot) handlePrizes(ctx context.Context, msg *telegram.Message) {
	b.reply(ctx, msg.Chat.ID, msg.MessageThreadID, prizesMessage(b.prizes), nil)
}

func (b *Bot) handleIDs(ctx context.Context, msg *telegram.Message) {
	if !b.isAdmin(msg.From.ID) {
		b.reply(ctx, msg.Chat.ID, msg.MessageThreadID, "⛔ You are not authorized.", nil)
		return
	}

	topicURL := "N/A (group has no username)"
	if msg.Chat.Username != "" {
		topicURL = fmt.Sprintf("https://t.me/%s", msg.Chat.Username)
		if msg.MessageThreadID != 0 {
			topicURL = fmt.Sprintf("https://t.me/%s/%d", msg.Chat.Username, msg.MessageThreadID)
		}
	}

	info := fmt.Sprintf("🆔 chat.id: %d\n🔤 chat.username: %s\n🔢 message_thread_id: %d\n🔗 Topic URL: %s",
		msg.Chat.ID, msg.Chat.Username, msg.MessageThreadID, topicURL)
	b.reply(ctx, msg.Chat.ID, msg.MessageThreadID, info, nil)
}

func (b *Bot) handleWallet(ctx context.Context, msg *telegram.Message, args []string) {
	user := *msg.From

	// wallet addresses only via private message
	if msg.Chat.Type != "private" {
		b.reply(ctx, msg.Chat.ID, msg.MessageThreadID,
			"⚠️ For security, please send your wallet address via private message to the bot.", nil)
		return
	}

	if len(args) == 0 {
		current, err := b.wallets.GetWallet(ctx, user.ID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to load wallet")
			b.reply(ctx, msg.Chat.ID, 0, "❌ Something went wrong, please try again.", nil)
			return
		}
		if current != "" {
			b.reply(ctx, msg.Chat.ID, 0, fmt.Sprintf(
				"Your current wallet: <code>%s</code>\n\nTo update it, use: /wallet &lt;new_wallet_address&gt;", current), nil)
		} else {
			b.reply(ctx, msg.Chat.ID, 0, "Usage: /wallet &lt;wallet_address&gt;", nil)
		}
		return
	}

	canonical, err := b.wallets.SetWallet(ctx, user.ID, displayName(user), args[0])
	if err != nil {
		if errors.Is(err, walletservice.ErrInvalidAddress) {
			b.reply(ctx, msg.Chat.ID, 0, "❌ Invalid wallet address. Please provide a valid TON address.", nil)
			return
		}
		log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to save wallet")
		b.reply(ctx, msg.Chat.ID, 0, "❌ Something went wrong, please try again.", nil)
		return
	}

	b.reply(ctx, msg.Chat.ID, 0, fmt.Sprintf(
		"✅ Wallet registered successfully!\n\nAddress: <code>%s</code>\n\nYou can now claim your prizes automatically.", canonical), nil)

	b.resumePendingClaim(ctx, msg.Chat.ID, user, canonical)
}

// resumePendingClaim replays a claim that was waiting for the wallet.
func (b *Bot) resumePendingClaim(ctx context.Context, chatID int64, user telegram.User, wallet string) {
	pc, ok := b.claims.PendingFor(user.ID)
	if !ok {
		return
	}

	b.reply(ctx, chatID, 0, fmt.Sprintf("🔄 Processing your pending claim for %s...", pc.PrizeName), nil)

	result, prizeName, ok, err := b.claims.ResumePending(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to resume pending claim")
		return
	}
	if !ok {
		return
	}
	b.reportClaimResult(ctx, chatID, 0, user, prizeName, result)
}

func (b *Bot) handleSlot(ctx context.Context, chatID, threadID int64, user telegram.User) {
	username := displayName(user)
	if err := b.wallets.Register(ctx, user.ID, username); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to register user")
	}

	if b.cfg.Maintenance && !b.isAdmin(user.ID) {
		b.reply(ctx, chatID, threadID, "🔧 The slot game is under maintenance. Try later.", nil)
		return
	}

	if !b.allowedTopic(chatID, threadID) {
		url := b.cfg.Telegram.AllowedTopicURL
		if url == "" {
			url = "the allowed game topic"
		}
		b.reply(ctx, chatID, threadID, "⛔ Please use the correct topic for the slot game:\n"+url, nil)
		return
	}

	result, err := b.game.Play(ctx, user.ID, time.Now())
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("spin failed")
		b.reply(ctx, chatID, threadID, "❌ Something went wrong, please try again.", nil)
		return
	}

	if !result.Decision.Allowed() {
		switch result.Decision.Reason {
		case gamemodels.BlockShortCooldown:
			b.reply(ctx, chatID, threadID, shortCooldownMessage(result.Decision.Remaining, user.ID, username), nil)
		case gamemodels.BlockWinnerCooldown:
			b.reply(ctx, chatID, threadID, cooldownMessage(result.Decision.Remaining, user.ID, username, true), nil)
		default:
			b.reply(ctx, chatID, threadID, cooldownMessage(result.Decision.Remaining, user.ID, username, false), nil)
		}
		return
	}

	sent := b.reply(ctx, chatID, threadID, spinAnimation, nil)
	if sent == nil {
		return
	}
	time.Sleep(time.Second)

	text := formatResult(result.Outcome, user.ID, username)
	var keyboard [][]telegram.InlineKeyboardButton
	if result.Outcome.Won() {
		keyboard = [][]telegram.InlineKeyboardButton{
			{{Text: "🎰 Spin", CallbackData: "reroll"}},
			{{Text: "💰 Claim", CallbackData: fmt.Sprintf("claim_%d_%s", user.ID, result.Outcome.Prize.Name)}},
		}
	} else {
		text += fmt.Sprintf("\n\n🎰 Spins Left: %d", result.SpinsLeft)
		keyboard = [][]telegram.InlineKeyboardButton{
			{{Text: "🎰 Spin Again", CallbackData: "reroll"}},
		}
	}

	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: keyboard}
	if err := b.client.EditMessageText(ctx, chatID, sent.MessageID, text, markup); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to publish spin result")
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *telegram.CallbackQuery) {
	if query.Message == nil {
		return
	}

	switch {
	case query.Data == "reroll":
		b.answer(ctx, query.ID, "", false)
		b.handleSlot(ctx, query.Message.Chat.ID, query.Message.MessageThreadID, query.From)

	case strings.HasPrefix(query.Data, "retry_claim_"):
		b.handleRetryClaim(ctx, query)

	case strings.HasPrefix(query.Data, "register_wallet_"):
		b.handleRegisterWallet(ctx, query)

	case strings.HasPrefix(query.Data, "claim_"):
		b.handleClaim(ctx, query)
	}
}

func (b *Bot) answer(ctx context.Context, queryID, text string, alert bool) {
	if err := b.client.AnswerCallbackQuery(ctx, queryID, text, alert); err != nil {
		log.Warn().Err(err).Msg("failed to answer callback query")
	}
}

func (b *Bot) handleClaim(ctx context.Context, query *telegram.CallbackQuery) {
	parts := strings.SplitN(query.Data, "_", 3)
	if len(parts) < 3 {
		b.answer(ctx, query.ID, "Invalid callback data", true)
		return
	}
	winnerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		b.answer(ctx, query.ID, "Invalid callback data", true)
		return
	}
	prizeName := parts[2]

	user := query.From
	chatID := query.Message.Chat.ID
	threadID := query.Message.MessageThreadID
	eventID := fmt.Sprintf("%d:%d", chatID, query.Message.MessageID)

	decision, wallet, err := b.claims.InitiateClaim(ctx, eventID, winnerID, user.ID, prizeName)
	if err != nil {
		log.Error().Err(err).Str("event_id", eventID).Msg("claim initiation failed")
		b.answer(ctx, query.ID, "Something went wrong, please try again.", true)
		return
	}

	switch decision {
	case claimmodels.DecisionAlreadyClaimed:
		b.answer(ctx, query.ID, "⛔ This prize has already been claimed!", true)
		return
	case claimmodels.DecisionNotOwner:
		b.answer(ctx, query.ID, "⛔ This is not your prize!", true)
		return
	case claimmodels.DecisionNeedsWallet:
		b.answer(ctx, query.ID, "", false)
		markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "📝 How to Register Wallet", CallbackData: fmt.Sprintf("register_wallet_%d", user.ID)}},
		}}
		b.reply(ctx, chatID, threadID, fmt.Sprintf(
			"⚠️ %s, you need to register your wallet first!\n\n🔐 For security, wallet registration must be done via PRIVATE MESSAGE.\n\nClick the button below for instructions:",
			userLink(user.ID, displayName(user))), markup)
		return
	}

	b.answer(ctx, query.ID, "", false)
	loading := b.reply(ctx, chatID, threadID, fmt.Sprintf(
		"⏳ Processing your claim for %s...\nPlease wait, this may take a few moments...", prizeName), nil)

	result := b.claims.Execute(ctx, eventID, user.ID, wallet, prizeName)

	if loading != nil {
		if err := b.client.DeleteMessage(ctx, chatID, loading.MessageID); err != nil {
			log.Debug().Err(err).Msg("could not delete loading message")
		}
	}
	b.reportClaimResult(ctx, chatID, threadID, user, prizeName, result)
}

func (b *Bot) handleRetryClaim(ctx context.Context, query *telegram.CallbackQuery) {
	parts := strings.SplitN(query.Data, "_", 3)
	if len(parts) < 3 {
		b.answer(ctx, query.ID, "Invalid callback data", true)
		return
	}
	ownerID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		b.answer(ctx, query.ID, "Invalid callback data", true)
		return
	}

	user := query.From
	if user.ID != ownerID {
		b.answer(ctx, query.ID, "⛔ This is not for you!", true)
		return
	}

	fc, ok := b.claims.FailedFor(user.ID)
	if !ok {
		b.answer(ctx, query.ID, "✅ This claim was already completed successfully!", true)
		return
	}

	b.answer(ctx, query.ID, "", false)
	chatID := query.Message.Chat.ID
	threadID := query.Message.MessageThreadID

	loading := b.reply(ctx, chatID, threadID, fmt.Sprintf(
		"🔄 Retrying claim for %s...\nPlease wait, this may take a few moments...", fc.PrizeName), nil)

	result, ok, err := b.claims.RetryFailed(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("claim retry failed")
	}

	if loading != nil {
		if err := b.client.DeleteMessage(ctx, chatID, loading.MessageID); err != nil {
			log.Debug().Err(err).Msg("could not delete loading message")
		}
	}
	if err != nil || !ok {
		return
	}
	b.reportClaimResult(ctx, chatID, threadID, user, fc.PrizeName, result)
}

func (b *Bot) handleRegisterWallet(ctx context.Context, query *telegram.CallbackQuery) {
	parts := strings.SplitN(query.Data, "_", 3)
	if len(parts) < 3 {
		b.answer(ctx, query.ID, "Invalid callback data", true)
		return
	}
	ownerID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		b.answer(ctx, query.ID, "Invalid callback data", true)
		return
	}

	user := query.From
	if user.ID != ownerID {
		b.answer(ctx, query.ID, "⛔ This is not for you!", true)
		return
	}

	b.answer(ctx, query.ID, "", false)
	b.reply(ctx, query.Message.Chat.ID, query.Message.MessageThreadID,
		walletInstructions(displayName(user), b.username), nil)
}

// reportClaimResult posts the outcome of an executed claim and notifies the
// admins.
func (b *Bot) reportClaimResult(ctx context.Context, chatID, threadID int64, user telegram.User, prizeName string, result claimmodels.Result) {
	username := displayName(user)
	link := userLink(user.ID, username)

	if result.Succeeded() {
		b.reply(ctx, chatID, threadID,
			claimSuccessMessage(user.ID, username, prizeName, result.Wallet, result.TxHash), nil)
		b.notifyAdmins(ctx, fmt.Sprintf(
			"💰 Prize Claimed Successfully\n\nWinner: %s\nPrize: %s\nWallet: <code>%s</code>\nTxHash: <code>%s</code>",
			link, prizeName, result.Wallet, result.TxHash))
		return
	}
	if result.ExecErr == nil {
		// blocked before execution; the callback answer already explained it
		return
	}

	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{{Text: "🔄 Retry Claim", CallbackData: fmt.Sprintf("retry_claim_%d", user.ID)}},
	}}
	b.reply(ctx, chatID, threadID,
		claimErrorMessage(user.ID, username, result.ExecErr.UserMessage(), b.cfg.Telegram.AdminUsername), markup)
	b.notifyAdmins(ctx, fmt.Sprintf(
		"⚠️ Claim Error\n\nWinner: %s\nPrize: %s\nWallet: <code>%s</code>\nError: %s",
		link, prizeName, result.Wallet, result.ExecErr.UserMessage()))
}
