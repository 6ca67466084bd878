package iorderrepo

import (
	"context"

	"github.com/google/uuid"

	"github.com/quickcart/order-svc/internal/service/models/order"
)

// IOrderRepository is an interface for order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	QueryByStatus(ctx context.Context, status order.Status, limit int) ([]order.Order, error)
	UpdateStatus(ctx context.Context, o order.Order, from order.Status) error
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
