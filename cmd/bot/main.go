package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"slot-game-backend/internal/bot"
	"slot-game-backend/internal/common/config"
	"slot-game-backend/internal/common/logger"
	"slot-game-backend/internal/common/middleware"
	claimservice "slot-game-backend/internal/features/claim/service"
	gamehttp "slot-game-backend/internal/features/game/delivery/http"
	gamemodels "slot-game-backend/internal/features/game/models"
	gameredis "slot-game-backend/internal/features/game/repository/redis"
	gameservice "slot-game-backend/internal/features/game/service"
	walletredis "slot-game-backend/internal/features/wallet/repository/redis"
	walletservice "slot-game-backend/internal/features/wallet/service"
	"slot-game-backend/internal/platform/redis"
	"slot-game-backend/internal/platform/telegram"
	"slot-game-backend/internal/platform/ton"
	"slot-game-backend/internal/workers"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init("slot-game-backend", cfg.Debug)

	prizes, err := gamemodels.LoadPrizes(cfg.Game.PrizeTablePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load prize table")
	}

	rdb, err := redis.New(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()
	log.Info().Str("host", cfg.Redis.Host).Msg("redis connection established")

	gameCfg := gameservice.Config{
		MaxSpinsPerPeriod: cfg.Game.MaxSpinsPerPeriod,
		SpinPeriod:        cfg.Game.SpinPeriod,
		WinnerCooldown:    cfg.Game.WinnerCooldown,
		LoserCooldown:     cfg.Game.LoserCooldown,
		ShortCooldown:     cfg.Game.ShortCooldown,
		StatsResetWindow:  cfg.Game.StatsWindow,
		MinSpinsForAdjust: cfg.Game.MinSampleSpins,
	}

	ledger := gameservice.NewLedger(gameredis.NewSpinRepository(rdb), gameredis.NewCooldownRepository(rdb), gameCfg)
	stats := gameservice.NewStats(gameredis.NewStatsRepository(rdb), prizes, gameCfg)
	engine := gameservice.NewEngine(stats, prizes, gameCfg)
	gate := gameservice.NewGate(ledger, gameCfg)
	game := gameservice.NewGame(gate, engine, ledger, prizes)

	wallets := walletservice.NewService(walletredis.NewUserRepository(rdb))

	executor, err := ton.NewExecutor(ctx, cfg.Ton.ConfigURL, cfg.Ton.WalletSeed, prizes)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize prize wallet")
	}
	claims := claimservice.NewCoordinator(wallets, executor, 0)

	tg := telegram.NewClient(cfg.Telegram.BotToken)
	gameBot := bot.New(tg, cfg, game, wallets, claims, prizes)

	promo := workers.NewPromoWorker(tg, rdb,
		cfg.Telegram.AllowedChatID, cfg.Telegram.AllowedThreadID,
		cfg.Game.PromoInterval, bot.PromoMessage(prizes))
	go promo.Start(ctx)

	server := newHTTPServer(cfg, game, stats, wallets, rdb)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	go func() {
		if err := gameBot.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("bot stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
}

func newHTTPServer(cfg *config.Config, game *gameservice.Game, stats *gameservice.Stats, wallets *walletservice.Service, rdb *goredis.Client) *http.Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", "init_data"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "slot-game-backend",
		})
	})
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready", "error": "redis unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.TelegramInitData(cfg.Telegram.BotToken))
	v1.Use(middleware.RequireAuth())
	v1.Use(middleware.AutoRegisterUser(wallets))

	gamehttp.NewGameHandler(game, stats, cfg.Telegram.AdminIDs).RegisterRoutes(v1)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
