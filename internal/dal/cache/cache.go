package cache

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/quickcart/order-svc/internal/service/models/order"
)

// OrderCache is a derived, disposable view over the store. Implementations
// are advisory: callers swallow and log any error they return.
type OrderCache interface {
	Get(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Set(ctx context.Context, o *order.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var ErrCacheMiss = errors.New("cache miss")
