package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	// Maintenance blocks the game for everyone but admins.
	Maintenance bool `env:"MAINTENANCE" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Telegram struct {
		BotToken string  `env:"BOT_TOKEN,required"`
		AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

		// AllowedChatID/AllowedThreadID restrict the game to one group
		// topic; zero values disable the check.
		AllowedChatID   int64  `env:"ALLOWED_CHAT_ID" envDefault:"0"`
		AllowedThreadID int64  `env:"ALLOWED_THREAD_ID" envDefault:"0"`
		AllowedTopicURL string `env:"ALLOWED_TOPIC_URL" envDefault:""`
		AdminUsername   string `env:"ADMIN_USERNAME" envDefault:""`
	}

	Ton struct {
		ConfigURL string `env:"TON_CONFIG_URL" envDefault:"https://ton.org/global-config.json"`
		// WalletSeed is the 24-word mnemonic of the prize wallet. Empty
		// disables payouts: claims fail with a configuration error.
		WalletSeed string `env:"TON_WALLET_SEED" envDefault:""`
	}

	Game struct {
		// PrizeTablePath points to a JSON prize table; empty uses the
		// built-in one.
		PrizeTablePath string `env:"PRIZE_TABLE_PATH" envDefault:""`

		MaxSpinsPerPeriod int           `env:"MAX_SPINS_PER_PERIOD" envDefault:"15"`
		SpinPeriod        time.Duration `env:"SPIN_PERIOD" envDefault:"15h"`
		WinnerCooldown    time.Duration `env:"WINNER_COOLDOWN" envDefault:"24h"`
		LoserCooldown     time.Duration `env:"LOSER_COOLDOWN" envDefault:"15h"`
		ShortCooldown     time.Duration `env:"SHORT_COOLDOWN" envDefault:"3s"`
		StatsWindow       time.Duration `env:"STATS_WINDOW" envDefault:"48h"`
		MinSampleSpins    int64         `env:"MIN_SAMPLE_SPINS" envDefault:"10"`

		// PromoInterval is how often the promo worker reposts the game
		// teaser; zero disables the worker.
		PromoInterval time.Duration `env:"PROMO_INTERVAL" envDefault:"3h"`
	}
}

func Load() *Config {
	// a missing .env file is fine, production sets variables directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
