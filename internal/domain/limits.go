package domain

// SellLimitNever is the sentinel stored as SellLimitPrice when no profit
// target is armed. No real price reaches it, so the sell threshold can
// never trigger on its own.
const SellLimitNever = 9999999999

// LimitPrices are the three persisted thresholds for one trading pair.
// They are owned by the decision engine: the limit store only reads and
// writes them verbatim.
type LimitPrices struct {
	Buy  float64 // buy at or below; 0 disables buying
	Sell float64 // sell at or above; SellLimitNever disables
	Stop float64 // force-sell at or below; 0 disables
}

// InactiveLimits returns the defaults used when the store holds no record
// for the pair and after a completed sell: buying is blocked until an
// operator arms a buy limit, and neither sell threshold can fire.
func InactiveLimits() LimitPrices {
	return LimitPrices{Buy: 0, Sell: SellLimitNever, Stop: 0}
}

// PairKey builds the store key for a pair, e.g. "USDC_WMATIC".
func PairKey(stableSymbol, targetSymbol string) string {
	return stableSymbol + "_" + targetSymbol
}
