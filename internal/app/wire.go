package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avelkov/swingbot/internal/config"
	"github.com/avelkov/swingbot/internal/domain"
	"github.com/avelkov/swingbot/internal/executor"
	"github.com/avelkov/swingbot/internal/notify"
	"github.com/avelkov/swingbot/internal/oracle"
	"github.com/avelkov/swingbot/internal/router"
	"github.com/avelkov/swingbot/internal/store/postgres"
	redisstore "github.com/avelkov/swingbot/internal/store/redis"
	"github.com/avelkov/swingbot/internal/wallet"
)

// Dependencies bundles every collaborator the trading loop needs. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	LimitStore domain.LimitStore
	Journal    domain.SwapJournal // nil when no database is configured
	Oracle     domain.PriceOracle
	Router     *router.Client
	Wallet     *wallet.Wallet
	Executor   domain.SwapExecutor
	Notifier   *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Redis (limit store) ---
	redisClient, err := redisstore.New(ctx, redisstore.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })
	deps.LimitStore = redisstore.NewLimitStore(redisClient)

	// --- PostgreSQL (swap journal, optional) ---
	if cfg.Postgres.Enabled() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}
		deps.Journal = postgres.NewSwapJournal(pgClient.Pool())
	}

	// --- Chain wallet ---
	w, err := wallet.New(ctx, wallet.Config{
		PrivateKey: cfg.Wallet.PrivateKey,
		Address:    cfg.Wallet.Address,
		ChainID:    cfg.Wallet.ChainID,
		RPCURL:     cfg.Wallet.RPCURL,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: wallet: %w", err)
	}
	closers = append(closers, w.Close)
	deps.Wallet = w

	// --- HTTP collaborators ---
	deps.Oracle = oracle.NewCoinGecko(cfg.Oracle.BaseURL)
	deps.Router = router.New(cfg.Router.BaseURL, cfg.Wallet.ChainID)
	deps.Executor = executor.New(deps.Router, w, cfg.Trading.SlippagePercent, logger)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	deps.Notifier = notify.NewNotifier(senders, logger)

	return deps, cleanup, nil
}
