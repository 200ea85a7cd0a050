package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	go_redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"slot-game-backend/internal/platform/telegram"
)

const lastPromoKey = "promo:last_message_id"

// promoPhoto is the teaser image attached to every recurring post.
const promoPhoto = "https://files.catbox.moe/wacjw8.jpg"

// PromoWorker reposts the game teaser to the allowed topic on a fixed
// interval, deleting the previous teaser first. The last message id lives
// in redis so a restart keeps replacing the same post.
type PromoWorker struct {
	client   *telegram.Client
	rdb      *go_redis.Client
	chatID   int64
	threadID int64
	interval time.Duration
	message  string
}

func NewPromoWorker(client *telegram.Client, rdb *go_redis.Client, chatID, threadID int64, interval time.Duration, message string) *PromoWorker {
	return &PromoWorker{
		client:   client,
		rdb:      rdb,
		chatID:   chatID,
		threadID: threadID,
		interval: interval,
		message:  message,
	}
}

// Start runs the repost loop until ctx is canceled. A zero interval or
// missing chat disables the worker.
func (w *PromoWorker) Start(ctx context.Context) {
	if w.interval <= 0 || w.chatID == 0 {
		log.Info().Msg("promo worker disabled")
		return
	}

	log.Info().Dur("interval", w.interval).Msg("promo worker started")
	w.post(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("promo worker stopped")
			return
		case <-ticker.C:
			w.post(ctx)
		}
	}
}

func (w *PromoWorker) post(ctx context.Context) {
	if lastID, err := w.rdb.Get(ctx, lastPromoKey).Int64(); err == nil && lastID != 0 {
		if err := w.client.DeleteMessage(ctx, w.chatID, lastID); err != nil {
			log.Warn().Err(err).Int64("message_id", lastID).Msg("could not delete previous promo message")
		}
	} else if err != nil && !errors.Is(err, go_redis.Nil) {
		log.Warn().Err(err).Msg("failed to load previous promo message id")
	}

	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{{Text: "🎰 Spin Now!", CallbackData: "reroll"}},
	}}
	sent, err := w.client.SendPhoto(ctx, w.chatID, promoPhoto, w.message, &telegram.SendOptions{
		ThreadID:    w.threadID,
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to send promo message")
		return
	}

	if err := w.rdb.Set(ctx, lastPromoKey, strconv.FormatInt(sent.MessageID, 10), 0).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to store promo message id")
	}
	log.Info().Int64("message_id", sent.MessageID).Msg("promo message sent")
}
