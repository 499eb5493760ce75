// Package engine implements the trading decision engine: a pure function of
// balances, prices, the cycle's quote, and the persisted limit prices that
// emits exactly one of BUY, SELL, HODL, or NOOP per cycle together with the
// limit-price updates to persist when a swap executes.
package engine

import (
	"fmt"
	"math"
	"math/big"

	"github.com/avelkov/swingbot/internal/domain"
)

// Params are the frozen trading thresholds from configuration.
type Params struct {
	SlippagePercent float64 // max tolerated slippage
	ProfitPercent   float64 // sell limit armed at (1+p/100) x buy price
	StopLossPercent float64 // stop limit armed at (1-p/100) x buy price
}

// Inputs is everything one evaluation sees. The engine performs no I/O;
// the driver gathers these and applies the resulting Decision.
type Inputs struct {
	Position      domain.Position
	StableToken   domain.Token
	TargetToken   domain.Token
	StableBalance *big.Int
	TargetBalance *big.Int
	StablePrice   float64
	TargetPrice   float64
	Quote         *domain.Quote // for the direction implied by Position; nil when unknown
	Limits        domain.LimitPrices
}

// Decision is the outcome of one evaluation. Swap and Limits are set only
// when Action is BUY or SELL; Limits are the values to persist after the
// swap completes. NextPosition is the position to carry into the next
// cycle assuming the decision is applied successfully.
type Decision struct {
	Action       domain.Action
	Swap         *domain.SwapOrder
	Limits       *domain.LimitPrices
	NextPosition domain.Position
	Slippage     float64 // computed actual slippage; NaN when not computed
	Narrative    string
}

// Engine evaluates decision cycles under a fixed set of Params.
type Engine struct {
	params Params
}

// New creates an Engine with the given thresholds.
func New(p Params) *Engine {
	return &Engine{params: p}
}

// NextPosition derives the position from current balances. Holding only
// stable means waiting to buy, holding only target means waiting to sell;
// any other combination keeps prev, so a restart re-derives the position
// from the chain without external state.
func NextPosition(prev domain.Position, stableBalance, targetBalance *big.Int) domain.Position {
	stableZero := stableBalance == nil || stableBalance.Sign() == 0
	targetZero := targetBalance == nil || targetBalance.Sign() == 0

	switch {
	case !stableZero && targetZero:
		return domain.PositionWaitingToBuy
	case stableZero && !targetZero:
		return domain.PositionWaitingToSell
	default:
		return prev
	}
}

// Evaluate runs one decision cycle. It is a pure function: identical
// inputs always produce the identical decision.
func (e *Engine) Evaluate(in Inputs) Decision {
	switch in.Position {
	case domain.PositionWaitingToBuy:
		return e.evaluateBuy(in)
	case domain.PositionWaitingToSell:
		return e.evaluateSell(in)
	default:
		return Decision{
			Action:       domain.ActionNoop,
			NextPosition: in.Position,
			Slippage:     math.NaN(),
			Narrative:    fmt.Sprintf("Current Status: %s. Nothing to do", in.Position),
		}
	}
}

func (e *Engine) evaluateBuy(in Inputs) Decision {
	if in.Limits.Buy < in.TargetPrice {
		return Decision{
			Action:       domain.ActionHodl,
			NextPosition: in.Position,
			Slippage:     math.NaN(),
			Narrative: fmt.Sprintf("HODL (Current Price: $%v, Buy Limit: $%v, Slippage Allowed: +%v%%)",
				in.TargetPrice, in.Limits.Buy, e.params.SlippagePercent),
		}
	}

	if in.Quote == nil {
		return e.anomaly(in, "no quote available for buy evaluation")
	}

	// Portfolio value of the held stable leg vs. the quoted target leg,
	// both valued at their own oracle prices.
	portfolioValue := baseUnitsToFloat(in.StableBalance, in.Quote.FromDecimals) * in.StablePrice
	quotedValue := baseUnitsToFloat(in.Quote.ToAmount, in.Quote.ToDecimals) * in.TargetPrice
	if portfolioValue <= 0 {
		return e.anomaly(in, "portfolio value is zero, slippage undefined")
	}
	slippage := slippagePercent(portfolioValue, quotedValue)

	if slippage > e.params.SlippagePercent {
		return Decision{
			Action:       domain.ActionHodl,
			NextPosition: in.Position,
			Slippage:     slippage,
			Narrative: fmt.Sprintf("HODL (Current Price: $%v, Buy Limit: $%v, Slippage: %.2f%%, Slippage Allowed: +%v%%)",
				in.TargetPrice, in.Limits.Buy, slippage, e.params.SlippagePercent),
		}
	}

	limits := domain.LimitPrices{
		Buy:  in.Limits.Buy,
		Sell: (1 + e.params.ProfitPercent/100) * in.TargetPrice,
		Stop: (1 - e.params.StopLossPercent/100) * in.TargetPrice,
	}
	return Decision{
		Action: domain.ActionBuy,
		Swap: &domain.SwapOrder{
			From:   in.StableToken,
			To:     in.TargetToken,
			Amount: new(big.Int).Set(in.StableBalance),
		},
		Limits:       &limits,
		NextPosition: domain.PositionWaitingToSell,
		Slippage:     slippage,
		Narrative: fmt.Sprintf("BUY %v %s (Current Price: $%v, Buy Limit: $%v, Slippage: %.2f%%, Slippage Allowed: +%v%%)",
			baseUnitsToFloat(in.Quote.ToAmount, in.Quote.ToDecimals), in.Quote.ToSymbol,
			in.TargetPrice, in.Limits.Buy, slippage, e.params.SlippagePercent),
	}
}

func (e *Engine) evaluateSell(in Inputs) Decision {
	if in.TargetPrice < in.Limits.Sell && in.Limits.Stop < in.TargetPrice {
		return Decision{
			Action:       domain.ActionHodl,
			NextPosition: in.Position,
			Slippage:     math.NaN(),
			Narrative: fmt.Sprintf("HODL (Current Price: $%v, Sell Limit: $%v, Stop Limit: $%v, Slippage Allowed: +%v%%)",
				in.TargetPrice, in.Limits.Sell, in.Limits.Stop, e.params.SlippagePercent),
		}
	}

	if in.Quote == nil {
		return e.anomaly(in, "no quote available for sell evaluation")
	}

	portfolioValue := baseUnitsToFloat(in.TargetBalance, in.Quote.FromDecimals) * in.TargetPrice
	quotedValue := baseUnitsToFloat(in.Quote.ToAmount, in.Quote.ToDecimals) * in.StablePrice
	if portfolioValue <= 0 {
		return e.anomaly(in, "portfolio value is zero, slippage undefined")
	}
	slippage := slippagePercent(portfolioValue, quotedValue)

	if slippage > e.params.SlippagePercent {
		return Decision{
			Action:       domain.ActionHodl,
			NextPosition: in.Position,
			Slippage:     slippage,
			Narrative: fmt.Sprintf("HODL (Current Price: $%v, Sell Limit: $%v, Stop Limit: $%v, Slippage: %.2f%%, Slippage Allowed: +%v%%)",
				in.TargetPrice, in.Limits.Sell, in.Limits.Stop, slippage, e.params.SlippagePercent),
		}
	}

	limits := domain.InactiveLimits()
	return Decision{
		Action: domain.ActionSell,
		Swap: &domain.SwapOrder{
			From:   in.TargetToken,
			To:     in.StableToken,
			Amount: new(big.Int).Set(in.TargetBalance),
		},
		Limits:       &limits,
		NextPosition: domain.PositionWaitingToBuy,
		Slippage:     slippage,
		Narrative: fmt.Sprintf("SELL (Current Price: $%v, Sell Limit: $%v, Stop Limit: $%v, Slippage: %.2f%%, Slippage Allowed: +%v%%)",
			in.TargetPrice, in.Limits.Sell, in.Limits.Stop, slippage, e.params.SlippagePercent),
	}
}

// anomaly resolves an ambiguous or undefined evaluation to NOOP without
// changing position; the condition is reported, never propagated.
func (e *Engine) anomaly(in Inputs, reason string) Decision {
	return Decision{
		Action:       domain.ActionNoop,
		NextPosition: in.Position,
		Slippage:     math.NaN(),
		Narrative:    fmt.Sprintf("NOOP (%s; Current Price: $%v)", reason, in.TargetPrice),
	}
}

// slippagePercent is the percentage the quoted destination value falls
// short of the current portfolio value. Quantized to 1e-8 of a percent so
// a quote sitting exactly at the tolerance is not rejected by float noise.
func slippagePercent(portfolioValue, quotedValue float64) float64 {
	raw := (portfolioValue - quotedValue) * 100 / portfolioValue
	return math.Round(raw*1e8) / 1e8
}

// baseUnitsToFloat converts an integer base-unit amount to a display value
// at the given decimal precision.
func baseUnitsToFloat(amount *big.Int, decimals int) float64 {
	if amount == nil {
		return 0
	}
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(amount), scale).Float64()
	return f
}
