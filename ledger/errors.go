package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds rejects a buy or a fixed deposit larger than the
	// cash balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientShares rejects a sell of a symbol that is not held or is
	// held in a smaller quantity.
	ErrInsufficientShares = errors.New("insufficient shares")
	// ErrInsufficientBalance rejects a transfer larger than its source balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrNotFound is returned when an account, holding or instrument is missing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOrder rejects a trade with a non-positive quantity or price, or
	// one with more decimal places than the ledger keeps.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrInvalidAmount rejects a transfer or deposit with a non-positive amount
	// or tenure, and any amount finer than the ledger keeps.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrStaleQuote rejects a trade whose quoted price no longer matches the
	// instrument's price.
	ErrStaleQuote = errors.New("stale quote")
)

// StoreError wraps an I/O failure from the ledger store. The failed
// operation left no partial state behind; it is not retried.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// IsRejection reports whether err is a business-rule rejection rather than a
// store failure or a missing record.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInsufficientShares) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInvalidOrder) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrStaleQuote)
}
