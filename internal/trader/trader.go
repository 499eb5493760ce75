// Package trader runs the trading loop: once per interval it gathers
// balances, prices, limits, and a quote, hands them to the decision
// engine, and applies the resulting decision. Cycles are strictly
// serial; one runs to completion before the next starts.
package trader

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avelkov/swingbot/internal/domain"
	"github.com/avelkov/swingbot/internal/engine"
)

// Notifier is the sliver of the notification layer the trader uses.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Config holds the loop parameters frozen at startup.
type Config struct {
	StableSymbol string
	TargetSymbol string
	PollInterval time.Duration
	// DryRun evaluates decisions but skips swap execution and all
	// state writes.
	DryRun bool
}

// Trader owns one pair's trading loop.
type Trader struct {
	cfg      Config
	engine   *engine.Engine
	tokens   domain.TokenLister
	balances domain.BalanceReader
	oracle   domain.PriceOracle
	quotes   domain.QuoteProvider
	limits   domain.LimitStore
	executor domain.SwapExecutor
	journal  domain.SwapJournal // optional
	notifier Notifier           // optional
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// New creates a Trader. journal and notifier may be nil; both are
// best-effort reporting channels.
func New(
	cfg Config,
	eng *engine.Engine,
	tokens domain.TokenLister,
	balances domain.BalanceReader,
	oracle domain.PriceOracle,
	quotes domain.QuoteProvider,
	limits domain.LimitStore,
	exec domain.SwapExecutor,
	journal domain.SwapJournal,
	notifier Notifier,
	logger *slog.Logger,
) *Trader {
	return &Trader{
		cfg:      cfg,
		engine:   eng,
		tokens:   tokens,
		balances: balances,
		oracle:   oracle,
		quotes:   quotes,
		limits:   limits,
		executor: exec,
		journal:  journal,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "trader")),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Run executes cycles until the context is cancelled or a cycle fails
// fatally. A transient cycle failure is logged and the loop continues
// after the interval; the position carried across cycles is only
// advanced by a successfully applied cycle.
func (t *Trader) Run(ctx context.Context) error {
	pos := domain.PositionUnknown
	t.logger.InfoContext(ctx, "trading loop starting",
		slog.String("pair", t.pairKey()),
		slog.Duration("interval", t.cfg.PollInterval),
		slog.Bool("dry_run", t.cfg.DryRun),
	)

	for {
		next, err := t.Cycle(ctx, pos)
		switch {
		case err == nil:
			pos = next
		case domain.IsFatal(err):
			t.logger.ErrorContext(ctx, "fatal cycle failure, terminating",
				slog.String("error", err.Error()),
			)
			t.notify(ctx, "swingbot fatal error", err.Error())
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			t.logger.ErrorContext(ctx, "cycle failed, will retry next interval",
				slog.String("error", err.Error()),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.cfg.PollInterval):
		}
	}
}

// Cycle runs one full iteration and returns the position to carry into
// the next cycle. Failures before a decision is committed are transient;
// failures while applying a committed BUY/SELL are wrapped as fatal.
func (t *Trader) Cycle(ctx context.Context, prev domain.Position) (domain.Position, error) {
	stableTok, targetTok, err := t.resolveTokens(ctx)
	if err != nil {
		return prev, err
	}

	stableBal, err := t.balances.TokenBalance(ctx, stableTok.Address)
	if err != nil {
		return prev, fmt.Errorf("trader: stable balance: %w", err)
	}
	targetBal, err := t.balances.TokenBalance(ctx, targetTok.Address)
	if err != nil {
		return prev, fmt.Errorf("trader: target balance: %w", err)
	}

	pos := engine.NextPosition(prev, stableBal, targetBal)

	prices, err := t.oracle.Prices(ctx, t.cfg.StableSymbol, t.cfg.TargetSymbol)
	if err != nil {
		return prev, fmt.Errorf("trader: prices: %w", err)
	}

	limits, err := t.limits.Get(ctx, t.pairKey())
	if err != nil {
		return prev, fmt.Errorf("trader: read limits: %w", err)
	}

	in := engine.Inputs{
		Position:      pos,
		StableToken:   stableTok,
		TargetToken:   targetTok,
		StableBalance: stableBal,
		TargetBalance: targetBal,
		StablePrice:   prices[t.cfg.StableSymbol],
		TargetPrice:   prices[t.cfg.TargetSymbol],
		Limits:        limits,
	}

	// The quote must be fresh for the slippage computation in this same
	// cycle, so it is requested after the position settles.
	switch pos {
	case domain.PositionWaitingToBuy:
		if stableBal.Sign() > 0 {
			in.Quote, err = t.quotes.GetQuote(ctx, stableTok, targetTok, stableBal)
		}
	case domain.PositionWaitingToSell:
		if targetBal.Sign() > 0 {
			in.Quote, err = t.quotes.GetQuote(ctx, targetTok, stableTok, targetBal)
		}
	}
	if err != nil {
		return prev, fmt.Errorf("trader: quote: %w", err)
	}

	dec := t.engine.Evaluate(in)
	t.logCycle(ctx, in, dec)

	if !dec.Action.IsSwap() {
		return dec.NextPosition, nil
	}

	if t.cfg.DryRun {
		t.logger.InfoContext(ctx, "dry run, skipping execution",
			slog.String("action", dec.Action.String()),
		)
		return pos, nil
	}

	return t.apply(ctx, in, dec)
}

// apply executes a committed BUY/SELL decision. Once the swap executor
// has been invoked, any failure is fatal: on-chain state and persisted
// limits may have diverged and a blind retry risks double-execution.
func (t *Trader) apply(ctx context.Context, in engine.Inputs, dec engine.Decision) (domain.Position, error) {
	txHash, err := t.executor.Swap(ctx, *dec.Swap)
	if err != nil {
		return in.Position, domain.Fatal(fmt.Errorf("trader: execute %s: %w", dec.Action, err))
	}

	if err := t.limits.Put(ctx, t.pairKey(), *dec.Limits); err != nil {
		return in.Position, domain.Fatal(fmt.Errorf("trader: persist limits after %s: %w", dec.Action, err))
	}

	t.journalSwap(ctx, in, dec, txHash)
	t.notify(ctx, fmt.Sprintf("swingbot %s %s", dec.Action, t.pairKey()), dec.Narrative)

	return dec.NextPosition, nil
}

func (t *Trader) journalSwap(ctx context.Context, in engine.Inputs, dec engine.Decision, txHash string) {
	if t.journal == nil {
		return
	}
	rec := domain.SwapRecord{
		ID:         t.newID(),
		Pair:       t.pairKey(),
		Side:       dec.Action.String(),
		FromSymbol: dec.Swap.From.Symbol,
		ToSymbol:   dec.Swap.To.Symbol,
		AmountIn:   dec.Swap.Amount.String(),
		AmountOut:  in.Quote.ToAmount.String(),
		Price:      in.TargetPrice,
		Slippage:   dec.Slippage,
		TxHash:     txHash,
		ExecutedAt: t.now(),
	}
	if err := t.journal.Insert(ctx, rec); err != nil {
		t.logger.WarnContext(ctx, "swap journal write failed",
			slog.String("swap_id", rec.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (t *Trader) notify(ctx context.Context, title, message string) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.Notify(ctx, title, message); err != nil {
		t.logger.WarnContext(ctx, "notification failed",
			slog.String("error", err.Error()),
		)
	}
}

func (t *Trader) logCycle(ctx context.Context, in engine.Inputs, dec engine.Decision) {
	attrs := []any{
		slog.String("action", dec.Action.String()),
		slog.String("position", in.Position.String()),
		slog.Float64("target_price", in.TargetPrice),
		slog.Float64("buy_limit", in.Limits.Buy),
		slog.Float64("sell_limit", in.Limits.Sell),
		slog.Float64("stop_limit", in.Limits.Stop),
	}
	if !math.IsNaN(dec.Slippage) {
		attrs = append(attrs, slog.Float64("slippage", dec.Slippage))
	}
	t.logger.InfoContext(ctx, dec.Narrative, attrs...)
}

func (t *Trader) resolveTokens(ctx context.Context) (domain.Token, domain.Token, error) {
	tokens, err := t.tokens.Tokens(ctx)
	if err != nil {
		return domain.Token{}, domain.Token{}, fmt.Errorf("trader: token list: %w", err)
	}

	stableTok, ok := tokens[strings.ToUpper(t.cfg.StableSymbol)]
	if !ok {
		return domain.Token{}, domain.Token{}, fmt.Errorf("trader: %s: %w", t.cfg.StableSymbol, domain.ErrTokenNotListed)
	}
	targetTok, ok := tokens[strings.ToUpper(t.cfg.TargetSymbol)]
	if !ok {
		return domain.Token{}, domain.Token{}, fmt.Errorf("trader: %s: %w", t.cfg.TargetSymbol, domain.ErrTokenNotListed)
	}
	return stableTok, targetTok, nil
}

func (t *Trader) pairKey() string {
	return domain.PairKey(t.cfg.StableSymbol, t.cfg.TargetSymbol)
}
