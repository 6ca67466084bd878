package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quickcart/order-svc/internal/dal/cache"
	"github.com/quickcart/order-svc/internal/dal/interfaces/iorderstore"
	"github.com/quickcart/order-svc/internal/events"
	"github.com/quickcart/order-svc/internal/service/models/event"
	"github.com/quickcart/order-svc/internal/service/models/order"
	"github.com/quickcart/order-svc/internal/service/models/orderitem"
)

// ErrForbidden is returned when a customer acts on an order they do not own.
var ErrForbidden = errors.New("order belongs to another customer")

// OrderService is a service for managing orders. Writes go through the store;
// reads go through the cache-aside path. The cache and the publisher are
// auxiliary: their failures are logged and swallowed, never surfaced.
type OrderService struct {
	store     iorderstore.IOrderStore
	cache     cache.OrderCache
	publisher events.IEventPublisher
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		panic("ordersvc: store is required")
	}

	return s
}

// WithStore sets the order store for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStore(store iorderstore.IOrderStore) option {
	return func(s *OrderService) {
		s.store = store
	}
}

// WithCache sets the read cache for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCache(c cache.OrderCache) option {
	return func(s *OrderService) {
		s.cache = c
	}
}

// WithPublisher sets the event publisher for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPublisher(p events.IEventPublisher) option {
	return func(s *OrderService) {
		s.publisher = p
	}
}

// CreateOrder builds a Pending order for the customer and persists it
// atomically with its items.
func (s *OrderService) CreateOrder(
	ctx context.Context,
	customerID int64,
	items []orderitem.OrderItem,
) (*order.Order, error) {
	o, err := order.New(customerID, items)
	if err != nil {
		return nil, err
	}

	if err := s.store.Add(ctx, *o); err != nil {
		return nil, err
	}

	s.cacheSet(ctx, o)

	refs := make([]event.OrderLineRef, len(o.OrderItems))
	for i, item := range o.OrderItems {
		refs[i] = event.OrderLineRef{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
		}
	}
	s.publish(ctx, event.TopicOrderCreated, o.ID, event.OrderCreated{
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
		TotalPriceCents: o.TotalPriceCents,
		Currency:        o.Currency.String(),
		CreatedAt:       o.CreatedAt,
		Items:           refs,
	})

	return o, nil
}

// CancelOrder cancels a Pending order owned by the customer. The order is
// loaded from the store, not the cache: cancellation needs ground truth.
func (s *OrderService) CancelOrder(
	ctx context.Context,
	orderID uuid.UUID,
	customerID int64,
	reason string,
) error {
	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if o.CustomerID != customerID {
		return ErrForbidden
	}

	prev := o.Status
	if err := o.Cancel(reason); err != nil {
		return err
	}

	if err := s.store.Update(ctx, *o, prev); err != nil {
		return err
	}

	s.cacheDelete(ctx, o.ID)

	s.publish(ctx, event.TopicOrderCancelled, o.ID, event.OrderCancelled{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Reason:      reason,
		CancelledAt: o.UpdatedAt,
	})

	return nil
}

// GetOrder loads one order, probing the cache first and falling back to the
// store on miss. Misses are not cached.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	if s.cache != nil {
		o, err := s.cache.Get(ctx, orderID)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.WarnContext(ctx, "Order cache read failed", "order_id", orderID, "error", err)
		}
	}

	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, o)

	return o, nil
}

// ListOrders retrieves orders with their items based on filter criteria.
func (s *OrderService) ListOrders(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	return s.store.List(ctx, filter)
}

func (s *OrderService) cacheSet(ctx context.Context, o *order.Order) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, o); err != nil {
		slog.WarnContext(ctx, "Order cache write failed", "order_id", o.ID, "error", err)
	}
}

func (s *OrderService) cacheDelete(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		slog.WarnContext(ctx, "Order cache invalidation failed", "order_id", id, "error", err)
	}
}

// publish emits a domain event keyed by order id. The mutation has already
// committed when this runs: a publish failure is logged, never propagated.
func (s *OrderService) publish(ctx context.Context, topic string, orderID uuid.UUID, payload any) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to marshal event payload", "topic", topic, "order_id", orderID, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, topic, orderID.String(), body); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event", "topic", topic, "order_id", orderID, "error", err)
	}
}
