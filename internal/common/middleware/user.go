package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	walletservice "slot-game-backend/internal/features/wallet/service"
)

// AutoRegisterUser upserts the authenticated Telegram user into the wallet
// directory so the game layer always has a user record.
func AutoRegisterUser(wallets *walletservice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			c.Next()
			return
		}

		telegramUser, ok := user.(initdata.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user data format"})
			return
		}

		if err := wallets.Register(c.Request.Context(), telegramUser.ID, telegramUser.Username); err != nil {
			log.Error().Err(err).Int64("user_id", telegramUser.ID).Msg("failed to register user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create/update user"})
			return
		}

		c.Next()
	}
}
