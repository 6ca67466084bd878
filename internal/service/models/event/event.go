package event

import (
	"time"

	"github.com/google/uuid"
)

// Topic names for the domain event queues. Consumers are expected to be
// idempotent on (order id, status) pairs: delivery is at-least-once.
const (
	TopicOrderCreated       = "order-created"
	TopicOrderStatusChanged = "order-status-changed"
	TopicOrderCancelled     = "order-cancelled"
)

// OrderCreated announces a newly created order.
type OrderCreated struct {
	OrderID         uuid.UUID      `json:"orderId"`
	CustomerID      int64          `json:"customerId"`
	TotalPriceCents int64          `json:"totalPriceCents"`
	Currency        string         `json:"currency"`
	CreatedAt       time.Time      `json:"createdAt"`
	Items           []OrderLineRef `json:"items"`
}

// OrderLineRef is the item shape carried inside OrderCreated.
type OrderLineRef struct {
	ProductID  int64 `json:"productId"`
	Quantity   int   `json:"quantity"`
	PriceCents int64 `json:"priceCents"`
}

// OrderStatusChanged announces a lifecycle transition.
type OrderStatusChanged struct {
	OrderID        uuid.UUID `json:"orderId"`
	PreviousStatus string    `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	ChangedAt      time.Time `json:"changedAt"`
}

// OrderCancelled announces a customer-initiated cancellation.
type OrderCancelled struct {
	OrderID     uuid.UUID `json:"orderId"`
	CustomerID  int64     `json:"customerId"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelledAt"`
}
