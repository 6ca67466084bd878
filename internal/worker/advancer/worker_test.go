package advancer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcart/order-svc/internal/dal/store"
	"github.com/quickcart/order-svc/internal/service/models/currency"
	"github.com/quickcart/order-svc/internal/service/models/event"
	"github.com/quickcart/order-svc/internal/service/models/order"
	"github.com/quickcart/order-svc/internal/service/models/orderitem"
)

type mockStore struct {
	mu sync.Mutex

	batch    []order.Order
	batchErr error

	limitSeen  int
	statusSeen order.Status

	updated     map[uuid.UUID]order.Order
	updateErrs  map[uuid.UUID]error
	updateCalls int
}

func newStoreWith(batch []order.Order) *mockStore {
	return &mockStore{
		batch:      batch,
		updated:    map[uuid.UUID]order.Order{},
		updateErrs: map[uuid.UUID]error{},
	}
}

func (m *mockStore) GetByID(context.Context, uuid.UUID) (*order.Order, error) {
	return nil, store.ErrOrderNotFound
}

func (m *mockStore) GetBatchByStatus(_ context.Context, status order.Status, limit int) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusSeen = status
	m.limitSeen = limit
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	return append([]order.Order(nil), m.batch...), nil
}

func (m *mockStore) Add(context.Context, order.Order) error {
	return nil
}

func (m *mockStore) Update(_ context.Context, o order.Order, _ order.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if err := m.updateErrs[o.ID]; err != nil {
		return err
	}
	m.updated[o.ID] = o
	return nil
}

func (m *mockStore) List(context.Context, *order.QueryOrdersModel) ([]order.Order, error) {
	return nil, nil
}

type mockPublisher struct {
	mu       sync.Mutex
	failKeys map[string]error
	keys     []string
	topics   []string
}

func (m *mockPublisher) Publish(_ context.Context, topic string, key string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failKeys[key]; err != nil {
		return err
	}
	m.keys = append(m.keys, key)
	m.topics = append(m.topics, topic)
	return nil
}

func (m *mockPublisher) publishedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}

func pendingOrder(t *testing.T, paid bool) order.Order {
	t.Helper()

	item, err := orderitem.New(1, "kettle", 1, 3000, currency.CurrencyUSD)
	require.NoError(t, err)

	o, err := order.New(7, []orderitem.OrderItem{*item})
	require.NoError(t, err)

	if paid {
		o.PaidCents = o.TotalPriceCents
	}

	return *o
}

func TestProcessBatch_AdvancesOnlyEligible(t *testing.T) {
	orders := []order.Order{
		pendingOrder(t, true),
		pendingOrder(t, false),
		pendingOrder(t, true),
		pendingOrder(t, false),
		pendingOrder(t, true),
	}
	st := newStoreWith(orders)
	pub := &mockPublisher{}

	w := NewWorker(Config{Store: st, Publisher: pub, BatchSize: 5})
	w.processBatch(context.Background())

	assert.Equal(t, order.StatusPending, st.statusSeen)
	assert.Equal(t, 5, st.limitSeen)

	// exactly the fully paid orders are advanced
	assert.Len(t, st.updated, 3)
	for _, o := range st.updated {
		assert.Equal(t, order.StatusProcessing, o.Status)
		assert.False(t, o.UpdatedAt.IsZero())
	}

	_, unpaidTouched := st.updated[orders[1].ID]
	assert.False(t, unpaidTouched)
	_, unpaidTouched = st.updated[orders[3].ID]
	assert.False(t, unpaidTouched)

	assert.Len(t, pub.publishedKeys(), 3)
	for _, topic := range pub.topics {
		assert.Equal(t, event.TopicOrderStatusChanged, topic)
	}
}

func TestProcessBatch_PublishFailureDoesNotAffectSiblings(t *testing.T) {
	orders := []order.Order{
		pendingOrder(t, true),
		pendingOrder(t, true),
		pendingOrder(t, true),
	}
	st := newStoreWith(orders)
	pub := &mockPublisher{
		failKeys: map[string]error{
			orders[1].ID.String(): errors.New("broker unavailable"),
		},
	}

	w := NewWorker(Config{Store: st, Publisher: pub, BatchSize: 3})
	w.processBatch(context.Background())

	// all three persisted, including the one whose event was lost
	assert.Len(t, st.updated, 3)
	failed, ok := st.updated[orders[1].ID]
	require.True(t, ok, "persistence happens before publish")
	assert.Equal(t, order.StatusProcessing, failed.Status)

	assert.Len(t, pub.publishedKeys(), 2)
	assert.NotContains(t, pub.publishedKeys(), orders[1].ID.String())
}

func TestProcessBatch_UpdateFailureDoesNotAffectSiblings(t *testing.T) {
	orders := []order.Order{
		pendingOrder(t, true),
		pendingOrder(t, true),
	}
	st := newStoreWith(orders)
	st.updateErrs[orders[0].ID] = errors.New("connection reset")
	pub := &mockPublisher{}

	w := NewWorker(Config{Store: st, Publisher: pub, BatchSize: 2})
	w.processBatch(context.Background())

	assert.Len(t, st.updated, 1)
	// no event for the order whose write failed
	assert.Equal(t, []string{orders[1].ID.String()}, pub.publishedKeys())
}

func TestProcessBatch_StatusConflictSkipsQuietly(t *testing.T) {
	orders := []order.Order{pendingOrder(t, true)}
	st := newStoreWith(orders)
	st.updateErrs[orders[0].ID] = store.ErrStatusConflict
	pub := &mockPublisher{}

	w := NewWorker(Config{Store: st, Publisher: pub, BatchSize: 1})
	w.processBatch(context.Background())

	assert.Empty(t, st.updated)
	assert.Empty(t, pub.publishedKeys(), "losing the race emits nothing")
}

func TestProcessBatch_PollFailureSkipsCycle(t *testing.T) {
	st := newStoreWith(nil)
	st.batchErr = errors.New("store unreachable")
	pub := &mockPublisher{}

	w := NewWorker(Config{Store: st, Publisher: pub, BatchSize: 5})
	w.processBatch(context.Background())

	assert.Zero(t, st.updateCalls)
	assert.Empty(t, pub.publishedKeys())
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	st := newStoreWith(nil)
	w := NewWorker(Config{Store: st, Publisher: &mockPublisher{}, PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}

func TestStart_StopsOnStopSignal(t *testing.T) {
	st := newStoreWith(nil)
	w := NewWorker(Config{Store: st, Publisher: &mockPublisher{}, PollInterval: time.Hour})

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	// Stop must interrupt the sleep, not wait out the interval.
	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on stop signal")
	}
}

func TestNewWorker_Defaults(t *testing.T) {
	w := NewWorker(Config{Store: newStoreWith(nil), Publisher: &mockPublisher{}})

	assert.Equal(t, defaultPollInterval, w.pollInterval)
	assert.Equal(t, defaultBatchSize, w.batchSize)
	assert.Equal(t, defaultPerOrderTimeout, w.perOrderTimeout)
}
