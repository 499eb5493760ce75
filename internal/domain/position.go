// Package domain defines the core types and collaborator interfaces for the
// swing-trading loop: positions, actions, limit prices, quotes, and the
// external-service contracts implemented by the store, oracle, router, and
// executor packages.
package domain

// Position describes which side of the pair the wallet currently holds.
// It is derived from on-chain balances every cycle and never persisted.
type Position int

const (
	PositionUnknown       Position = iota
	PositionWaitingToBuy           // holding only the stable token
	PositionWaitingToSell          // holding only the target token
)

// String returns the canonical status label for logs.
func (p Position) String() string {
	switch p {
	case PositionWaitingToBuy:
		return "WAITING_TO_BUY"
	case PositionWaitingToSell:
		return "WAITING_TO_SELL"
	default:
		return "UNKNOWN"
	}
}
