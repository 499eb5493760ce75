package domain

// Action is the outcome of one decision cycle.
type Action int

const (
	ActionNoop Action = iota // ambiguous balances, nothing evaluated
	ActionHodl               // evaluated, thresholds or slippage not met
	ActionBuy                // swap full stable balance into the target token
	ActionSell               // swap full target balance into the stable token
)

// String returns the action label for logs and the swap journal.
func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	case ActionHodl:
		return "HODL"
	default:
		return "NOOP"
	}
}

// IsSwap reports whether the action requires executing an on-chain swap.
func (a Action) IsSwap() bool {
	return a == ActionBuy || a == ActionSell
}
