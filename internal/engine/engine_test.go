package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelkov/swingbot/internal/domain"
)

var (
	usdc   = domain.Token{Symbol: "USDC", Address: "0x2791bca1f2de4661ed88a30c99a7a9449aa84174"}
	wmatic = domain.Token{Symbol: "WMATIC", Address: "0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270"}
)

func defaultParams() Params {
	return Params{SlippagePercent: 1, ProfitPercent: 5, StopLossPercent: 10}
}

func buyInputs(buyLimit float64, quotedOut int64) Inputs {
	return Inputs{
		Position:      domain.PositionWaitingToBuy,
		StableToken:   usdc,
		TargetToken:   wmatic,
		StableBalance: big.NewInt(1_000_000), // 1.0 USDC at 6 decimals
		TargetBalance: big.NewInt(0),
		StablePrice:   1.0,
		TargetPrice:   1.0,
		Quote: &domain.Quote{
			FromSymbol:   "USDC",
			ToSymbol:     "WMATIC",
			FromDecimals: 6,
			ToDecimals:   6,
			ToAmount:     big.NewInt(quotedOut),
		},
		Limits: domain.LimitPrices{Buy: buyLimit, Sell: domain.SellLimitNever, Stop: 0},
	}
}

func TestNextPosition_OnlyStable(t *testing.T) {
	pos := NextPosition(domain.PositionUnknown, big.NewInt(1000), big.NewInt(0))
	assert.Equal(t, domain.PositionWaitingToBuy, pos)
}

func TestNextPosition_OnlyTarget(t *testing.T) {
	pos := NextPosition(domain.PositionUnknown, big.NewInt(0), big.NewInt(42))
	assert.Equal(t, domain.PositionWaitingToSell, pos)
}

func TestNextPosition_AmbiguousIsSticky(t *testing.T) {
	// Both zero and both non-zero keep the previous position.
	assert.Equal(t, domain.PositionUnknown,
		NextPosition(domain.PositionUnknown, big.NewInt(0), big.NewInt(0)))
	assert.Equal(t, domain.PositionWaitingToSell,
		NextPosition(domain.PositionWaitingToSell, big.NewInt(5), big.NewInt(5)))
	assert.Equal(t, domain.PositionWaitingToBuy,
		NextPosition(domain.PositionWaitingToBuy, big.NewInt(0), big.NewInt(0)))
}

func TestEvaluate_BuyWithinSlippage(t *testing.T) {
	// 1.0 USDC portfolio at $1, quoted 0.99 WMATIC at $1: slippage 1.0%,
	// exactly at the default tolerance.
	e := New(defaultParams())
	dec := e.Evaluate(buyInputs(1.0, 990_000))

	assert.Equal(t, domain.ActionBuy, dec.Action)
	assert.InDelta(t, 1.0, dec.Slippage, 1e-9)
	require.NotNil(t, dec.Swap)
	assert.Equal(t, usdc, dec.Swap.From)
	assert.Equal(t, wmatic, dec.Swap.To)
	assert.Equal(t, big.NewInt(1_000_000), dec.Swap.Amount)
	assert.Equal(t, domain.PositionWaitingToSell, dec.NextPosition)
}

func TestEvaluate_BuyBlockedBySlippage(t *testing.T) {
	// Quoted 0.97 WMATIC: slippage 3% over the 1% tolerance.
	e := New(defaultParams())
	dec := e.Evaluate(buyInputs(1.0, 970_000))

	assert.Equal(t, domain.ActionHodl, dec.Action)
	assert.InDelta(t, 3.0, dec.Slippage, 1e-9)
	assert.Nil(t, dec.Swap)
	assert.Equal(t, domain.PositionWaitingToBuy, dec.NextPosition)
}

func TestEvaluate_BuyNeverFiresAboveLimit(t *testing.T) {
	// Perfect quote, but the price sits above the buy limit.
	e := New(defaultParams())
	in := buyInputs(0.99, 1_000_000)
	dec := e.Evaluate(in)

	assert.Equal(t, domain.ActionHodl, dec.Action)
	assert.Nil(t, dec.Swap)
	assert.Nil(t, dec.Limits)
}

func TestEvaluate_BuyArmsSellAndStopLimits(t *testing.T) {
	e := New(defaultParams())
	in := buyInputs(100, 990_000)
	in.TargetPrice = 100

	dec := e.Evaluate(in)
	require.Equal(t, domain.ActionBuy, dec.Action)
	require.NotNil(t, dec.Limits)
	assert.Equal(t, (1+5.0/100)*100.0, dec.Limits.Sell)
	assert.Equal(t, (1-10.0/100)*100.0, dec.Limits.Stop)
	assert.Equal(t, 100.0, dec.Limits.Buy)
}

func sellInputs(price, sellLimit, stopLimit float64, quotedOut int64) Inputs {
	return Inputs{
		Position:      domain.PositionWaitingToSell,
		StableToken:   usdc,
		TargetToken:   wmatic,
		StableBalance: big.NewInt(0),
		TargetBalance: big.NewInt(1_000_000), // 1.0 WMATIC at 6 decimals
		StablePrice:   1.0,
		TargetPrice:   price,
		Quote: &domain.Quote{
			FromSymbol:   "WMATIC",
			ToSymbol:     "USDC",
			FromDecimals: 6,
			ToDecimals:   6,
			ToAmount:     big.NewInt(quotedOut),
		},
		Limits: domain.LimitPrices{Buy: 0, Sell: sellLimit, Stop: stopLimit},
	}
}

func TestEvaluate_SellAtProfitTarget(t *testing.T) {
	// Price reached the sell limit; quoted value within tolerance.
	e := New(defaultParams())
	dec := e.Evaluate(sellInputs(2.0, 2.0, 0, 1_990_000))

	assert.Equal(t, domain.ActionSell, dec.Action)
	assert.InDelta(t, 0.5, dec.Slippage, 1e-9)
	require.NotNil(t, dec.Swap)
	assert.Equal(t, wmatic, dec.Swap.From)
	assert.Equal(t, usdc, dec.Swap.To)
	assert.Equal(t, domain.PositionWaitingToBuy, dec.NextPosition)
}

func TestEvaluate_StopLossTriggersSell(t *testing.T) {
	// Price $0.80 under the $0.85 stop; sell limit far away at $2.00.
	e := New(defaultParams())
	dec := e.Evaluate(sellInputs(0.80, 2.00, 0.85, 796_000))

	assert.Equal(t, domain.ActionSell, dec.Action)
	assert.InDelta(t, 0.5, dec.Slippage, 1e-9)
}

func TestEvaluate_SellNeverFiresBetweenThresholds(t *testing.T) {
	// Price strictly between stop and sell limits: HODL regardless of quote.
	e := New(defaultParams())
	dec := e.Evaluate(sellInputs(1.0, 2.0, 0.85, 1_000_000))

	assert.Equal(t, domain.ActionHodl, dec.Action)
	assert.Nil(t, dec.Swap)
	assert.Nil(t, dec.Limits)
}

func TestEvaluate_SellResetsLimits(t *testing.T) {
	e := New(defaultParams())
	dec := e.Evaluate(sellInputs(2.0, 2.0, 0, 1_990_000))

	require.NotNil(t, dec.Limits)
	assert.Equal(t, domain.InactiveLimits(), *dec.Limits)
	assert.Equal(t, 0.0, dec.Limits.Buy)
	assert.Equal(t, 0.0, dec.Limits.Stop)
	assert.Equal(t, float64(domain.SellLimitNever), dec.Limits.Sell)
}

func TestEvaluate_SellBlockedBySlippage(t *testing.T) {
	// Stop triggered but the quote is 3% under portfolio value.
	e := New(defaultParams())
	dec := e.Evaluate(sellInputs(0.80, 2.00, 0.85, 776_000))

	assert.Equal(t, domain.ActionHodl, dec.Action)
	assert.InDelta(t, 3.0, dec.Slippage, 1e-9)
}

func TestEvaluate_UnknownPositionIsNoop(t *testing.T) {
	e := New(defaultParams())
	dec := e.Evaluate(Inputs{Position: domain.PositionUnknown, TargetPrice: 1.0})

	assert.Equal(t, domain.ActionNoop, dec.Action)
	assert.Nil(t, dec.Swap)
	assert.Equal(t, domain.PositionUnknown, dec.NextPosition)
}

func TestEvaluate_ZeroPortfolioValueIsNoop(t *testing.T) {
	e := New(defaultParams())
	in := buyInputs(1.0, 990_000)
	in.StableBalance = big.NewInt(0)
	dec := e.Evaluate(in)

	assert.Equal(t, domain.ActionNoop, dec.Action)
	assert.Equal(t, domain.PositionWaitingToBuy, dec.NextPosition)
	assert.Contains(t, dec.Narrative, "portfolio value is zero")
}

func TestEvaluate_MissingQuoteIsNoop(t *testing.T) {
	e := New(defaultParams())
	in := buyInputs(1.0, 990_000)
	in.Quote = nil
	dec := e.Evaluate(in)

	assert.Equal(t, domain.ActionNoop, dec.Action)
}

func TestEvaluate_Idempotent(t *testing.T) {
	e := New(defaultParams())
	in := buyInputs(1.0, 990_000)

	first := e.Evaluate(in)
	second := e.Evaluate(in)

	assert.Equal(t, first.Action, second.Action)
	assert.Equal(t, first.NextPosition, second.NextPosition)
	assert.Equal(t, first.Narrative, second.Narrative)
	assert.Equal(t, first.Slippage, second.Slippage)
	require.NotNil(t, second.Swap)
	assert.Equal(t, first.Swap.Amount, second.Swap.Amount)
	assert.Equal(t, *first.Limits, *second.Limits)
}

func TestEvaluate_DoesNotMutateInputBalance(t *testing.T) {
	e := New(defaultParams())
	in := buyInputs(1.0, 990_000)
	dec := e.Evaluate(in)

	require.NotNil(t, dec.Swap)
	dec.Swap.Amount.SetInt64(7)
	assert.Equal(t, big.NewInt(1_000_000), in.StableBalance)
}

func TestBaseUnitsToFloat(t *testing.T) {
	assert.Equal(t, 1.0, baseUnitsToFloat(big.NewInt(1_000_000), 6))
	assert.Equal(t, 0.99, baseUnitsToFloat(big.NewInt(990_000), 6))
	assert.Equal(t, 0.0, baseUnitsToFloat(nil, 6))

	// 18-decimal amounts stay representable through big.Float.
	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	assert.True(t, ok)
	assert.Equal(t, 1.5, baseUnitsToFloat(wei, 18))
}
