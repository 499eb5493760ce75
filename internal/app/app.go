// Package app provides the top-level application lifecycle: it wires the
// collaborators together, starts the trading loop, and tears everything
// down on shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/avelkov/swingbot/internal/config"
	"github.com/avelkov/swingbot/internal/engine"
	"github.com/avelkov/swingbot/internal/trader"
)

// App is the root application object. It owns the configuration, logger,
// and a list of cleanup functions that are called in reverse order on
// shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the trading loop, and blocks until
// the context is cancelled or the loop fails fatally.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("pair", a.cfg.Tokens.Stable+"/"+a.cfg.Tokens.Target),
		slog.Int("chain_id", a.cfg.Wallet.ChainID),
		slog.Bool("dry_run", a.cfg.Trading.DryRun),
	)

	deps, cleanup, err := Wire(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	eng := engine.New(engine.Params{
		SlippagePercent: a.cfg.Trading.SlippagePercent,
		ProfitPercent:   a.cfg.Trading.ProfitPercent,
		StopLossPercent: a.cfg.Trading.StopLossPercent,
	})

	tr := trader.New(
		trader.Config{
			StableSymbol: a.cfg.Tokens.Stable,
			TargetSymbol: a.cfg.Tokens.Target,
			PollInterval: a.cfg.Trading.PollInterval.Duration,
			DryRun:       a.cfg.Trading.DryRun,
		},
		eng,
		deps.Router,
		deps.Wallet,
		deps.Oracle,
		deps.Router,
		deps.LimitStore,
		deps.Executor,
		deps.Journal,
		deps.Notifier,
		a.logger,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tr.Run(ctx)
	})
	return g.Wait()
}

// Close tears down all resources in reverse registration order. It is
// safe to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
