package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"slot-game-backend/internal/common/middleware"
	"slot-game-backend/internal/features/game/service"
)

type GameHandler struct {
	game     *service.Game
	stats    *service.Stats
	adminIDs []int64
}

func NewGameHandler(game *service.Game, stats *service.Stats, adminIDs []int64) *GameHandler {
	return &GameHandler{
		game:     game,
		stats:    stats,
		adminIDs: adminIDs,
	}
}

func (h *GameHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/prizes", h.getPrizes)

	users := router.Group("/users")
	{
		users.GET("/me/spins", h.getMySpins)
	}

	admin := router.Group("/stats")
	admin.Use(middleware.RequireAdmin(h.adminIDs))
	{
		admin.GET("", h.getStats)
	}
}

type prizeResponse struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Probability float64 `json:"probability"`
}

func (h *GameHandler) getPrizes(c *gin.Context) {
	prizes := h.game.Prizes()
	out := make([]prizeResponse, 0, len(prizes))
	for _, p := range prizes {
		out = append(out, prizeResponse{Name: p.Name, Symbol: p.Symbol, Probability: p.Probability})
	}
	c.JSON(http.StatusOK, gin.H{"prizes": out})
}

type spinsResponse struct {
	SpinsLeft        int    `json:"spins_left"`
	Blocked          bool   `json:"blocked"`
	BlockReason      string `json:"block_reason,omitempty"`
	RemainingSeconds int64  `json:"remaining_seconds,omitempty"`
}

func (h *GameHandler) getMySpins(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	telegramUser, ok := user.(initdata.User)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user data format"})
		return
	}

	decision, left, err := h.game.Status(c.Request.Context(), telegramUser.ID, time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := spinsResponse{SpinsLeft: left}
	if !decision.Allowed() {
		resp.Blocked = true
		resp.BlockReason = string(decision.Reason)
		resp.RemainingSeconds = int64(decision.Remaining.Round(time.Second).Seconds())
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GameHandler) getStats(c *gin.Context) {
	stats, err := h.stats.Snapshot(c.Request.Context(), time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
