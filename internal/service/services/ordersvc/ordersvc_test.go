package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcart/order-svc/internal/dal/store"
	"github.com/quickcart/order-svc/internal/service/models/currency"
	"github.com/quickcart/order-svc/internal/service/models/event"
	"github.com/quickcart/order-svc/internal/service/models/order"
	"github.com/quickcart/order-svc/internal/service/models/orderitem"
)

func testItems(t *testing.T) []orderitem.OrderItem {
	t.Helper()

	a, err := orderitem.New(1, "leash", 2, 1000, currency.CurrencyUSD)
	require.NoError(t, err)
	b, err := orderitem.New(2, "collar", 1, 2500, currency.CurrencyUSD)
	require.NoError(t, err)

	return []orderitem.OrderItem{*a, *b}
}

func newService(st *mockStore, c *mockCache, p *mockPublisher) *OrderService {
	return MustNewOrderService(
		WithStore(st),
		WithCache(c),
		WithPublisher(p),
	)
}

func TestCreateOrder(t *testing.T) {
	st, c, p := newMockStore(), newMockCache(), &mockPublisher{}
	svc := newService(st, c, p)

	o, err := svc.CreateOrder(context.Background(), 42, testItems(t))
	require.NoError(t, err)

	assert.Equal(t, int64(4500), o.TotalPriceCents)
	assert.Equal(t, order.StatusPending, o.Status)

	// persisted, cached and announced
	assert.Equal(t, 1, st.addCalls)
	assert.Equal(t, 1, c.setCalls)

	events := p.published()
	require.Len(t, events, 1)
	assert.Equal(t, event.TopicOrderCreated, events[0].topic)
	assert.Equal(t, o.ID.String(), events[0].key)

	var payload event.OrderCreated
	require.NoError(t, json.Unmarshal(events[0].payload, &payload))
	assert.Equal(t, o.ID, payload.OrderID)
	assert.Len(t, payload.Items, 2)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	st, c, p := newMockStore(), newMockCache(), &mockPublisher{}
	svc := newService(st, c, p)

	_, err := svc.CreateOrder(context.Background(), 42, nil)
	assert.ErrorIs(t, err, order.ErrEmptyItems)
	assert.Equal(t, 0, st.addCalls)
	assert.Empty(t, p.published())
}

func TestCreateOrder_StoreFailureAborts(t *testing.T) {
	st, c, p := newMockStore(), newMockCache(), &mockPublisher{}
	st.addErr = errors.New("connection refused")
	svc := newService(st, c, p)

	_, err := svc.CreateOrder(context.Background(), 42, testItems(t))
	assert.Error(t, err)
	assert.Equal(t, 0, c.setCalls, "no cache write after a failed insert")
	assert.Empty(t, p.published(), "no event after a failed insert")
}

func TestCreateOrder_PublishFailureIsSwallowed(t *testing.T) {
	st, c, p := newMockStore(), newMockCache(), &mockPublisher{}
	p.err = errors.New("broker unavailable")
	svc := newService(st, c, p)

	o, err := svc.CreateOrder(context.Background(), 42, testItems(t))
	require.NoError(t, err, "the committed mutation is the source of truth")
	assert.Equal(t, 1, st.addCalls)
	assert.NotNil(t, o)
}

func TestCancelOrder(t *testing.T) {
	st, c, p := newMockStore(), newMockCache(), &mockPublisher{}
	svc := newService(st, c, p)

	o, err := svc.CreateOrder(context.Background(), 42, testItems(t))
	require.NoError(t, err)

	require.NoError(t, svc.CancelOrder(context.Background(), o.ID, 42, "changed my mind"))

	stored, err := st.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, stored.Status)

	assert.Equal(t, 1, c.deleteCalls, "cancel must invalidate the cache entry")

	events := p.published()
	require.Len(t, events, 2)
	assert.Equal(t, event.TopicOrderCancelled, events[1].topic)
}

func TestCancelOrder_CacheCoherence(t *testing.T) {
	st, c, p := newMockStore(), newMockCache(), &mockPublisher{}
	svc := newService(st, c, p)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, 42, testItems(t))
	require.NoError(t, err)

	require.NoError(t, svc.CancelOrder(ctx, o.ID, 42, "late"))

	// immediate read must not see a stale Pending snapshot
	got, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
}

func TestCancelOrder_WrongCustomer(t *testing.T) {
	st, c, p := newMockStore(), newMockCache(), &mockPublisher{}
	svc := newService(st, c, p)

	o, err := svc.CreateOrder(context.Background(), 42, testItems(t))
	require.NoError(t, err)

	err = svc.CancelOrder(context.Background(), o.ID, 99, "not mine")
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := st.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, stored.Status)
}

func TestCancelOrder_AlreadyCancelled(t *testing.T) {
	st, c, p := newMockStore(), newMockCache(), &mockPublisher{}
	svc := newService(st, c, p)

	o, err := svc.CreateOrder(context.Background(), 42, testItems(t))
	require.NoError(t, err)

	err = svc.CancelOrder(context.Background(), o.ID, 42, "first")
	require.NoError(t, err)

	err = svc.CancelOrder(context.Background(), o.ID, 42, "second")
	var cannotCancel *order.CannotCancelError
	assert.ErrorAs(t, err, &cannotCancel)
}

func TestCancelOrder_StatusConflictPropagates(t *testing.T) {
	st, c, p := newMockStore(), newMockCache(), &mockPublisher{}
	svc := newService(st, c, p)

	o, err := svc.CreateOrder(context.Background(), 42, testItems(t))
	require.NoError(t, err)

	st.updateErr = store.ErrStatusConflict

	err = svc.CancelOrder(context.Background(), o.ID, 42, "racing the advancer")
	assert.ErrorIs(t, err, store.ErrStatusConflict)
	assert.Equal(t, 0, c.deleteCalls, "no invalidation when nothing changed")
}

func TestGetOrder_CacheAside(t *testing.T) {
	st, c, p := newMockStore(), newMockCache(), &mockPublisher{}
	svc := newService(st, c, p)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, 42, testItems(t))
	require.NoError(t, err)

	storeReadsBefore := st.getCalls

	// first read hits the cache populated on create
	first, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, storeReadsBefore, st.getCalls, "cache hit must not touch the store")

	// consecutive reads with no writes return identical data
	second, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetOrder_MissPopulatesCache(t *testing.T) {
	st, c, p := newMockStore(), newMockCache(), &mockPublisher{}
	svc := newService(st, c, p)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, 42, testItems(t))
	require.NoError(t, err)

	// evict to force a miss
	require.NoError(t, c.Delete(ctx, o.ID))
	setCallsBefore := c.setCalls

	got, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, setCallsBefore+1, c.setCalls, "miss must repopulate the cache")
}

func TestGetOrder_CacheFailureFallsBackToStore(t *testing.T) {
	st, c, p := newMockStore(), newMockCache(), &mockPublisher{}
	svc := newService(st, c, p)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, 42, testItems(t))
	require.NoError(t, err)

	c.getErr = errors.New("redis unreachable")
	c.setErr = errors.New("redis unreachable")

	got, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err, "cache failures are advisory")
	assert.Equal(t, o.ID, got.ID)
}

func TestGetOrder_NotFound(t *testing.T) {
	st, c, p := newMockStore(), newMockCache(), &mockPublisher{}
	svc := newService(st, c, p)

	o, err := order.New(1, testItems(t))
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), o.ID)
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}
