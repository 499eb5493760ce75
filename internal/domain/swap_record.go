package domain

import "time"

// SwapRecord is one journaled swap execution. The journal is reporting
// only; trading state never depends on it.
type SwapRecord struct {
	ID         string // UUID
	Pair       string // PairKey of the traded pair
	Side       string // "BUY" or "SELL"
	FromSymbol string
	ToSymbol   string
	AmountIn   string // base units, decimal string
	AmountOut  string // quoted destination amount, base units
	Price      float64
	Slippage   float64
	TxHash     string
	ExecutedAt time.Time
}
