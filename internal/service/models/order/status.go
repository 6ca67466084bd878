package order

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// Status is the lifecycle state of an order, persisted as a small integer code.
type Status int16

const (
	StatusPending    Status = 1
	StatusProcessing Status = 2
	StatusShipped    Status = 3
	StatusDelivered  Status = 4
	StatusCancelled  Status = 5
)

var ErrInvalidStatus = errors.New("invalid order status")

// allowedTransitions is the single source of truth for legal lifecycle moves.
// Any pair not listed here is denied, including self-transitions and skips.
// Delivered and Cancelled have no entries: they are terminal.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransitionTo reports whether the policy permits moving from s to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}

	return false
}

// Terminal reports whether no transition out of s is permitted.
func (s Status) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusShipped:
		return "shipped"
	case StatusDelivered:
		return "delivered"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", int16(s))
	}
}

func (s Status) Value() (driver.Value, error) {
	return int64(s), nil
}

// ParseStatus converts a persisted integer code back into a Status.
func ParseStatus(code int16) (Status, error) {
	s := Status(code)
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return s, nil
	default:
		return 0, ErrInvalidStatus
	}
}

// ParseStatusName converts a status name (as used in query strings) into a Status.
func ParseStatusName(name string) (Status, error) {
	switch name {
	case "pending":
		return StatusPending, nil
	case "processing":
		return StatusProcessing, nil
	case "shipped":
		return StatusShipped, nil
	case "delivered":
		return StatusDelivered, nil
	case "cancelled":
		return StatusCancelled, nil
	default:
		return 0, ErrInvalidStatus
	}
}
