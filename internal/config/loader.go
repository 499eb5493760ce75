package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SWINGBOT_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been
// validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SWINGBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Wallet.PrivateKey, "SWINGBOT_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.Address, "SWINGBOT_WALLET_ADDRESS")
	setInt(&cfg.Wallet.ChainID, "SWINGBOT_WALLET_CHAIN_ID")
	setStr(&cfg.Wallet.RPCURL, "SWINGBOT_WALLET_RPC_URL")

	setStr(&cfg.Tokens.Stable, "SWINGBOT_TOKENS_STABLE")
	setStr(&cfg.Tokens.Target, "SWINGBOT_TOKENS_TARGET")

	setFloat64(&cfg.Trading.SlippagePercent, "SWINGBOT_TRADING_SLIPPAGE_PERCENT")
	setFloat64(&cfg.Trading.ProfitPercent, "SWINGBOT_TRADING_PROFIT_PERCENT")
	setFloat64(&cfg.Trading.StopLossPercent, "SWINGBOT_TRADING_STOP_LOSS_PERCENT")
	setDuration(&cfg.Trading.PollInterval, "SWINGBOT_TRADING_POLL_INTERVAL")
	setBool(&cfg.Trading.DryRun, "SWINGBOT_TRADING_DRY_RUN")

	setStr(&cfg.Oracle.BaseURL, "SWINGBOT_ORACLE_BASE_URL")
	setStr(&cfg.Router.BaseURL, "SWINGBOT_ROUTER_BASE_URL")

	setStr(&cfg.Redis.Addr, "SWINGBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SWINGBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SWINGBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SWINGBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SWINGBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SWINGBOT_REDIS_TLS_ENABLED")

	setStr(&cfg.Postgres.DSN, "SWINGBOT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SWINGBOT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SWINGBOT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SWINGBOT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SWINGBOT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SWINGBOT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SWINGBOT_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SWINGBOT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SWINGBOT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SWINGBOT_POSTGRES_RUN_MIGRATIONS")

	setStr(&cfg.Notify.TelegramToken, "SWINGBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SWINGBOT_NOTIFY_TELEGRAM_CHAT_ID")

	setStr(&cfg.LogLevel, "SWINGBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
