package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Wallet.PrivateKey = "0xabc123"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "USDC", cfg.Tokens.Stable)
	assert.Equal(t, "WMATIC", cfg.Tokens.Target)
	assert.Equal(t, 137, cfg.Wallet.ChainID)
	assert.Equal(t, 1.0, cfg.Trading.SlippagePercent)
	assert.Equal(t, 60*time.Second, cfg.Trading.PollInterval.Duration)
	assert.False(t, cfg.Postgres.Enabled())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
log_level = "debug"

[tokens]
stable = "USDT"
target = "WETH"

[trading]
slippage_percent = 0.5
poll_interval = "30s"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	t.Setenv("SWINGBOT_TOKENS_TARGET", "WBTC")
	t.Setenv("SWINGBOT_TRADING_POLL_INTERVAL", "90s")
	t.Setenv("SWINGBOT_TRADING_DRY_RUN", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "USDT", cfg.Tokens.Stable)
	// Env wins over the file.
	assert.Equal(t, "WBTC", cfg.Tokens.Target)
	assert.Equal(t, 0.5, cfg.Trading.SlippagePercent)
	assert.Equal(t, 90*time.Second, cfg.Trading.PollInterval.Duration)
	assert.True(t, cfg.Trading.DryRun)
	// Untouched fields keep defaults.
	assert.Equal(t, 137, cfg.Wallet.ChainID)
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MissingKeyAllowedInDryRun(t *testing.T) {
	cfg := Defaults()
	cfg.Trading.DryRun = true
	cfg.Wallet.Address = "0x1234"
	assert.NoError(t, cfg.Validate())

	// Dry run still needs an address to watch.
	cfg.Wallet.Address = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing private key", func(c *Config) { c.Wallet.PrivateKey = "" }},
		{"zero chain id", func(c *Config) { c.Wallet.ChainID = 0 }},
		{"missing stable", func(c *Config) { c.Tokens.Stable = "" }},
		{"same pair legs", func(c *Config) { c.Tokens.Target = c.Tokens.Stable }},
		{"negative slippage", func(c *Config) { c.Trading.SlippagePercent = -1 }},
		{"zero profit", func(c *Config) { c.Trading.ProfitPercent = 0 }},
		{"stop loss over 100", func(c *Config) { c.Trading.StopLossPercent = 100 }},
		{"interval too short", func(c *Config) { c.Trading.PollInterval = duration{100 * time.Millisecond} }},
		{"missing redis addr", func(c *Config) { c.Redis.Addr = "" }},
		{"telegram token without chat", func(c *Config) { c.Notify.TelegramToken = "t" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPostgresEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.DSN = "postgres://u:p@localhost:5432/swingbot"
	assert.True(t, cfg.Postgres.Enabled())

	cfg = Defaults()
	cfg.Postgres.Host = "localhost"
	assert.True(t, cfg.Postgres.Enabled())
}
