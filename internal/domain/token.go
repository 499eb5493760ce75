package domain

import "math/big"

// Token identifies one leg of the trading pair on-chain.
type Token struct {
	Symbol  string
	Address string
}

// Quote is one router estimate for swapping Amount of the source token.
// It lives for a single decision cycle and is never persisted.
type Quote struct {
	FromSymbol   string
	ToSymbol     string
	FromDecimals int
	ToDecimals   int
	ToAmount     *big.Int // estimated destination amount, base units
}

// SwapOrder carries the parameters of a swap the engine decided to execute.
type SwapOrder struct {
	From   Token
	To     Token
	Amount *big.Int // full source-token balance, base units
}
