package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quickcart/order-svc/internal/dal/postgres"
	orderrepo "github.com/quickcart/order-svc/internal/dal/repositories/order/postgres"
	"github.com/quickcart/order-svc/internal/dal/uow"
	"github.com/quickcart/order-svc/internal/service/models/order"
	"github.com/quickcart/order-svc/internal/service/models/orderitem"
)

// Re-exported so callers don't reach into the repository package.
var (
	ErrOrderNotFound  = orderrepo.ErrOrderNotFound
	ErrStatusConflict = orderrepo.ErrStatusConflict
)

// PostgresOrderStore is the authoritative persistence layer for orders.
// It performs no retries: failures propagate to the caller.
type PostgresOrderStore struct {
	client *postgres.Client
}

// NewPostgresOrderStore creates a store over the given Postgres client.
func NewPostgresOrderStore(client *postgres.Client) *PostgresOrderStore {
	return &PostgresOrderStore{client: client}
}

// GetByID loads an order header plus all its items in one logical read.
func (s *PostgresOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	work := uow.NewUnitOfWork(s.client)

	o, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := work.OrderItemRepository().QueryByOrderIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	o.OrderItems = items

	return o, nil
}

// GetBatchByStatus loads up to limit order headers in the given status,
// oldest first. Items are not loaded: the advancer only touches headers.
func (s *PostgresOrderStore) GetBatchByStatus(
	ctx context.Context,
	status order.Status,
	limit int,
) ([]order.Order, error) {
	work := uow.NewUnitOfWork(s.client)

	return work.OrderRepository().QueryByStatus(ctx, status, limit)
}

// Add inserts the order header and all its items as one transaction. If any
// item insert fails the whole write rolls back: a partial order is never
// observable.
func (s *PostgresOrderStore) Add(ctx context.Context, o order.Order) error {
	work := uow.NewUnitOfWork(s.client)

	if err := work.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = work.Rollback(ctx)
	}()

	if err := work.OrderRepository().Insert(ctx, o); err != nil {
		return err
	}

	if err := work.OrderItemRepository().BulkInsert(ctx, o.OrderItems); err != nil {
		return err
	}

	return work.Commit(ctx)
}

// Update persists header fields of a mutated order. Items are immutable after
// creation and are not rewritten. The write is conditional on the status the
// order was read in; ErrStatusConflict means a concurrent writer got there
// first.
func (s *PostgresOrderStore) Update(ctx context.Context, o order.Order, from order.Status) error {
	work := uow.NewUnitOfWork(s.client)

	return work.OrderRepository().UpdateStatus(ctx, o, from)
}

// List retrieves orders with their items based on filter criteria.
func (s *PostgresOrderStore) List(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	work := uow.NewUnitOfWork(s.client)

	orders, err := work.OrderRepository().Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIDs := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}

	items, err := work.OrderItemRepository().QueryByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	attachItems(orders, items)

	return orders, nil
}

// attachItems distributes items to their orders in one pass over each slice.
// Orders without matching items keep the empty slice set at scan time.
func attachItems(orders []order.Order, items []orderitem.OrderItem) {
	byOrder := make(map[uuid.UUID][]orderitem.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	for i := range orders {
		if its, ok := byOrder[orders[i].ID]; ok {
			orders[i].OrderItems = its
		}
	}
}

// IsNotFound reports whether err means the order does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}
