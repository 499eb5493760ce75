// Package config defines the process-wide configuration for swingbot and
// provides validation helpers. The configuration is read once at startup
// and treated as immutable afterwards.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SWINGBOT_* environment
// variables.
type Config struct {
	Wallet   WalletConfig   `toml:"wallet"`
	Tokens   TokensConfig   `toml:"tokens"`
	Trading  TradingConfig  `toml:"trading"`
	Oracle   OracleConfig   `toml:"oracle"`
	Router   RouterConfig   `toml:"router"`
	Redis    RedisConfig    `toml:"redis"`
	Postgres PostgresConfig `toml:"postgres"`
	Notify   NotifyConfig   `toml:"notify"`
	LogLevel string         `toml:"log_level"`
}

// WalletConfig holds the trading wallet credentials and chain parameters.
type WalletConfig struct {
	PrivateKey string `toml:"private_key"`
	// Address enables watch-only operation (balance queries without
	// signing) when no private key is configured; ignored otherwise.
	Address string `toml:"address"`
	ChainID int    `toml:"chain_id"`
	// RPCURL overrides the built-in RPC endpoint for the chain.
	RPCURL string `toml:"rpc_url"`
}

// TokensConfig names the traded pair: the stable token is the holding
// currency, the target token is the asset being accumulated.
type TokensConfig struct {
	Stable string `toml:"stable"`
	Target string `toml:"target"`
}

// TradingConfig holds the decision thresholds and loop timing.
type TradingConfig struct {
	SlippagePercent float64  `toml:"slippage_percent"`
	ProfitPercent   float64  `toml:"profit_percent"`
	StopLossPercent float64  `toml:"stop_loss_percent"`
	PollInterval    duration `toml:"poll_interval"`
	// DryRun evaluates every cycle but skips swap execution and all
	// state writes.
	DryRun bool `toml:"dry_run"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// OracleConfig holds the price-feed endpoint.
type OracleConfig struct {
	BaseURL string `toml:"base_url"`
}

// RouterConfig holds the swap-router API endpoint.
type RouterConfig struct {
	BaseURL string `toml:"base_url"`
}

// RedisConfig holds Redis connection parameters for the limit store.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds the swap-journal database connection. The journal
// is disabled when every connection field is empty.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// Enabled reports whether a journal connection is configured.
func (p PostgresConfig) Enabled() bool {
	return strings.TrimSpace(p.DSN) != "" || strings.TrimSpace(p.Host) != ""
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken  string `toml:"telegram_token"`
	TelegramChatID string `toml:"telegram_chat_id"`
}

// Defaults returns the built-in configuration, mirroring the defaults the
// bot shipped with: USDC/WMATIC on Polygon, 1% slippage, 60s cycles.
func Defaults() Config {
	return Config{
		Wallet: WalletConfig{
			ChainID: 137,
		},
		Tokens: TokensConfig{
			Stable: "USDC",
			Target: "WMATIC",
		},
		Trading: TradingConfig{
			SlippagePercent: 1,
			ProfitPercent:   5,
			StopLossPercent: 10,
			PollInterval:    duration{60 * time.Second},
		},
		Oracle: OracleConfig{
			BaseURL: "https://api.coingecko.com/api/v3",
		},
		Router: RouterConfig{
			BaseURL: "https://api.1inch.io/v5.0",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		Postgres: PostgresConfig{
			SSLMode:      "disable",
			PoolMaxConns: 4,
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for mistakes that would only surface
// mid-cycle otherwise. It returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Wallet.PrivateKey) == "" {
		if !c.Trading.DryRun {
			return fmt.Errorf("config: wallet.private_key is required unless trading.dry_run is set")
		}
		if strings.TrimSpace(c.Wallet.Address) == "" {
			return fmt.Errorf("config: dry_run needs wallet.private_key or wallet.address")
		}
	}
	if c.Wallet.ChainID <= 0 {
		return fmt.Errorf("config: wallet.chain_id must be positive")
	}
	if strings.TrimSpace(c.Tokens.Stable) == "" || strings.TrimSpace(c.Tokens.Target) == "" {
		return fmt.Errorf("config: tokens.stable and tokens.target are required")
	}
	if strings.EqualFold(c.Tokens.Stable, c.Tokens.Target) {
		return fmt.Errorf("config: tokens.stable and tokens.target must differ")
	}
	if c.Trading.SlippagePercent < 0 {
		return fmt.Errorf("config: trading.slippage_percent cannot be negative")
	}
	if c.Trading.ProfitPercent <= 0 {
		return fmt.Errorf("config: trading.profit_percent must be positive")
	}
	if c.Trading.StopLossPercent < 0 || c.Trading.StopLossPercent >= 100 {
		return fmt.Errorf("config: trading.stop_loss_percent must be in [0, 100)")
	}
	if c.Trading.PollInterval.Duration < time.Second {
		return fmt.Errorf("config: trading.poll_interval must be at least 1s")
	}
	if strings.TrimSpace(c.Redis.Addr) == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		return fmt.Errorf("config: notify.telegram_token and notify.telegram_chat_id must be set together")
	}
	return nil
}
