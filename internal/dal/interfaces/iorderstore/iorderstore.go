package iorderstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/quickcart/order-svc/internal/service/models/order"
)

// IOrderStore is the persistence surface the service and the lifecycle
// advancer depend on. Implementations must be safe for concurrent use.
type IOrderStore interface {
	// GetByID loads an order header plus all its items.
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)

	// GetBatchByStatus loads up to limit order headers in the given status,
	// oldest first.
	GetBatchByStatus(ctx context.Context, status order.Status, limit int) ([]order.Order, error)

	// Add inserts the order header and all its items atomically.
	Add(ctx context.Context, o order.Order) error

	// Update persists header fields of a mutated order, conditional on the
	// status the order was read in.
	Update(ctx context.Context, o order.Order, from order.Status) error

	// List retrieves orders with their items based on filter criteria.
	List(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
