package domain

import (
	"context"
	"math/big"
)

// PriceOracle returns current unit prices in the reference currency (USD).
type PriceOracle interface {
	// Prices resolves every symbol to its current price. Unknown symbols
	// fail the whole call.
	Prices(ctx context.Context, symbols ...string) (map[string]float64, error)
}

// QuoteProvider estimates the destination amount for a prospective swap.
type QuoteProvider interface {
	GetQuote(ctx context.Context, from, to Token, amount *big.Int) (*Quote, error)
}

// TokenLister resolves pair symbols to on-chain token descriptors.
type TokenLister interface {
	// Tokens returns the router's supported tokens keyed by symbol.
	Tokens(ctx context.Context) (map[string]Token, error)
}

// BalanceReader queries on-chain token balances in base units.
type BalanceReader interface {
	TokenBalance(ctx context.Context, tokenAddress string) (*big.Int, error)
}

// SwapExecutor performs an on-chain exchange. It is side-effecting and
// non-idempotent; it returns the swap transaction hash on success.
type SwapExecutor interface {
	Swap(ctx context.Context, order SwapOrder) (txHash string, err error)
}

// LimitStore persists the three limit prices per pair key. Get falls back
// to InactiveLimits for absent fields and never fails on missing records.
type LimitStore interface {
	Get(ctx context.Context, pairKey string) (LimitPrices, error)
	Put(ctx context.Context, pairKey string, limits LimitPrices) error
}

// SwapJournal records executed swaps for operators.
type SwapJournal interface {
	Insert(ctx context.Context, rec SwapRecord) error
	List(ctx context.Context, pair string, limit int) ([]SwapRecord, error)
}
