package order

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyItems is returned when an order is created without any items.
	ErrEmptyItems = errors.New("order must contain at least one item")

	// ErrCurrencyMismatch is returned when items of one order carry different currencies.
	ErrCurrencyMismatch = errors.New("order items must share one currency")
)

// InvalidTransitionError reports a lifecycle move denied by the transition policy.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition from %s to %s", e.From, e.To)
}

// CannotCancelError reports a cancel attempt on an order that already left Pending.
type CannotCancelError struct {
	Current Status
}

func (e *CannotCancelError) Error() string {
	return fmt.Sprintf("order in status %s cannot be cancelled", e.Current)
}
