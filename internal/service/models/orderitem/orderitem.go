package orderitem

import (
	"errors"

	"github.com/google/uuid"

	"github.com/quickcart/order-svc/internal/service/models/currency"
)

var (
	ErrInvalidQuantity = errors.New("order item quantity must be positive")
	ErrNegativePrice   = errors.New("order item price must not be negative")
)

// OrderItem represents an item within an order. Items are fixed at order
// creation: there are no mutators that could bypass the New validation.
type OrderItem struct {
	ID            uuid.UUID         `json:"id"`
	OrderID       uuid.UUID         `json:"orderId"`
	ProductID     int64             `json:"productId"`
	Quantity      int               `json:"quantity"`
	ProductTitle  string            `json:"productTitle"`
	PriceCents    int64             `json:"priceCents"`
	PriceCurrency currency.Currency `json:"priceCurrency"`
}

// New validates and builds an order item. Quantity must be positive and the
// unit price non-negative.
func New(productID int64, title string, quantity int, priceCents int64, cur currency.Currency) (*OrderItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if priceCents < 0 {
		return nil, ErrNegativePrice
	}

	return &OrderItem{
		ID:            uuid.New(),
		ProductID:     productID,
		Quantity:      quantity,
		ProductTitle:  title,
		PriceCents:    priceCents,
		PriceCurrency: cur,
	}, nil
}

// Subtotal is unit price times quantity, in cents.
func (oi *OrderItem) Subtotal() int64 {
	return oi.PriceCents * int64(oi.Quantity)
}
