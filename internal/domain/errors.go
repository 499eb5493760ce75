package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrTokenNotListed = errors.New("token not listed by router")
	ErrUnknownSymbol  = errors.New("symbol not known to price oracle")
	ErrSwapReverted   = errors.New("swap transaction reverted")
)

// FatalError marks a failure after a committed trading decision: the swap
// may have executed while the persisted limits were not updated (or vice
// versa). Retrying blind risks double-execution, so the driver terminates
// the process when it sees one.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal wraps err as a FatalError.
func Fatal(err error) error {
	return &FatalError{Err: err}
}

// IsFatal reports whether err carries a FatalError anywhere in its chain.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
