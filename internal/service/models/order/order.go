package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/quickcart/order-svc/internal/service/models/currency"
	"github.com/quickcart/order-svc/internal/service/models/orderitem"
)

// Order is the aggregate root for a customer purchase. All lifecycle mutations
// go through Cancel and TransitionTo, which consult the transition policy.
type Order struct {
	ID              uuid.UUID             `json:"id"`
	CustomerID      int64                 `json:"customerId"`
	Status          Status                `json:"status"`
	TotalPriceCents int64                 `json:"totalPriceCents"`
	PaidCents       int64                 `json:"paidCents"`
	Currency        currency.Currency     `json:"currency"`
	CancelReason    string                `json:"cancelReason,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	OrderItems      []orderitem.OrderItem `json:"orderItems"`
}

// New builds a Pending order for the given customer. The total price is the
// sum of item subtotals, computed once here and never recomputed. UpdatedAt
// stays zero until the first state-changing mutation.
func New(customerID int64, items []orderitem.OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	cur := items[0].PriceCurrency
	var total int64
	for _, item := range items {
		if item.PriceCurrency != cur {
			return nil, ErrCurrencyMismatch
		}
		total += item.Subtotal()
	}

	id := uuid.New()
	for i := range items {
		items[i].OrderID = id
	}

	return &Order{
		ID:              id,
		CustomerID:      customerID,
		Status:          StatusPending,
		TotalPriceCents: total,
		Currency:        cur,
		CreatedAt:       time.Now().UTC(),
		OrderItems:      items,
	}, nil
}

// CanCancel reports whether the order may still be cancelled.
func (o *Order) CanCancel() bool {
	return o.Status.CanTransitionTo(StatusCancelled)
}

// CanTransitionTo reports whether the policy permits moving to target.
func (o *Order) CanTransitionTo(target Status) bool {
	return o.Status.CanTransitionTo(target)
}

// Cancel moves the order to Cancelled. Only Pending orders can be cancelled;
// the check goes through the same policy table as TransitionTo.
func (o *Order) Cancel(reason string) error {
	if !o.CanCancel() {
		return &CannotCancelError{Current: o.Status}
	}

	o.Status = StatusCancelled
	o.CancelReason = reason
	o.UpdatedAt = time.Now().UTC()

	return nil
}

// TransitionTo moves the order to target if the policy allows it.
func (o *Order) TransitionTo(target Status) error {
	if !o.CanTransitionTo(target) {
		return &InvalidTransitionError{From: o.Status, To: target}
	}

	o.Status = target
	o.UpdatedAt = time.Now().UTC()

	return nil
}

// PaymentComplete reports whether the accumulated payment covers the total.
// The lifecycle advancer only picks up Pending orders that satisfy this.
func (o *Order) PaymentComplete() bool {
	return o.PaidCents == o.TotalPriceCents
}
