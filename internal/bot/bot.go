package bot

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"slot-game-backend/internal/common/config"
	claimservice "slot-game-backend/internal/features/claim/service"
	gamemodels "slot-game-backend/internal/features/game/models"
	gameservice "slot-game-backend/internal/features/game/service"
	walletservice "slot-game-backend/internal/features/wallet/service"
	"slot-game-backend/internal/platform/telegram"
)

const pollTimeout = 60 // seconds, server-side long poll hold

// Bot is the Telegram front of the slot game: command routing, callback
// buttons and the claim conversation.
type Bot struct {
	client  *telegram.Client
	cfg     *config.Config
	game    *gameservice.Game
	wallets *walletservice.Service
	claims  *claimservice.Coordinator
	prizes  []gamemodels.Prize

	username string
}

func New(client *telegram.Client, cfg *config.Config, game *gameservice.Game, wallets *walletservice.Service, claims *claimservice.Coordinator, prizes []gamemodels.Prize) *Bot {
	return &Bot{
		client:  client,
		cfg:     cfg,
		game:    game,
		wallets: wallets,
		claims:  claims,
		prizes:  prizes,
	}
}

// Run long-polls for updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	me, err := b.client.GetMe(ctx)
	if err != nil {
		return err
	}
	b.username = me.Username
	log.Info().Str("username", b.username).Msg("bot started")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.client.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("getUpdates failed")
			time.Sleep(3 * time.Second)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			update := u
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, u telegram.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("update handler panicked")
		}
	}()

	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil && strings.HasPrefix(u.Message.Text, "/"):
		b.handleCommand(ctx, u.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil {
		return
	}

	fields := strings.Fields(msg.Text)
	command := strings.TrimSuffix(fields[0], "@"+b.username)
	args := fields[1:]

	switch command {
	case "/start":
		b.handleStart(ctx, msg)
	case "/slot":
		b.handleSlot(ctx, msg.Chat.ID, msg.MessageThreadID, *msg.From)
	case "/prizes":
		b.handlePrizes(ctx, msg)
	case "/wallet":
		b.handleWallet(ctx, msg, args)
	case "/ids":
		b.handleIDs(ctx, msg)
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.cfg.Telegram.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// allowedTopic reports whether the game may run in this chat and thread.
// An unset allowed chat disables the restriction.
func (b *Bot) allowedTopic(chatID, threadID int64) bool {
	if b.cfg.Telegram.AllowedChatID == 0 {
		return true
	}
	if chatID != b.cfg.Telegram.AllowedChatID {
		return false
	}
	if b.cfg.Telegram.AllowedThreadID != 0 && threadID != b.cfg.Telegram.AllowedThreadID {
		return false
	}
	return true
}

func (b *Bot) notifyAdmins(ctx context.Context, text string) {
	for _, adminID := range b.cfg.Telegram.AdminIDs {
		if _, err := b.client.SendMessage(ctx, adminID, text, &telegram.SendOptions{ParseMode: "HTML"}); err != nil {
			log.Warn().Err(err).Int64("admin_id", adminID).Msg("failed to notify admin")
		}
	}
}

func (b *Bot) reply(ctx context.Context, chatID, threadID int64, text string, markup *telegram.InlineKeyboardMarkup) *telegram.Message {
	msg, err := b.client.SendMessage(ctx, chatID, text, &telegram.SendOptions{
		ThreadID:    threadID,
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	})
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
		return nil
	}
	return msg
}

func displayName(u telegram.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "Player"
}
