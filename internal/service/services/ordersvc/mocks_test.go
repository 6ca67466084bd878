package ordersvc

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/quickcart/order-svc/internal/dal/cache"
	"github.com/quickcart/order-svc/internal/dal/store"
	"github.com/quickcart/order-svc/internal/service/models/order"
)

type mockStore struct {
	mu     sync.Mutex
	orders map[uuid.UUID]order.Order

	addErr    error
	getErr    error
	updateErr error

	addCalls    int
	getCalls    int
	updateCalls int
}

func newMockStore() *mockStore {
	return &mockStore{orders: map[uuid.UUID]order.Order{}}
}

func (m *mockStore) GetByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	return &o, nil
}

func (m *mockStore) GetBatchByStatus(context.Context, order.Status, int) ([]order.Order, error) {
	return nil, nil
}

func (m *mockStore) Add(_ context.Context, o order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls++
	if m.addErr != nil {
		return m.addErr
	}
	m.orders[o.ID] = o
	return nil
}

func (m *mockStore) Update(_ context.Context, o order.Order, _ order.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	m.orders[o.ID] = o
	return nil
}

func (m *mockStore) List(_ context.Context, _ *order.QueryOrdersModel) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]order.Order, 0, len(m.orders))
	for _, o := range m.orders {
		result = append(result, o)
	}
	return result, nil
}

type mockCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]order.Order

	getErr    error
	setErr    error
	deleteErr error

	getCalls    int
	setCalls    int
	deleteCalls int
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[uuid.UUID]order.Order{}}
}

func (m *mockCache) Get(_ context.Context, id uuid.UUID) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	o, ok := m.entries[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &o, nil
}

func (m *mockCache) Set(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[o.ID] = *o
	return nil
}

func (m *mockCache) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.entries, id)
	return nil
}

type publishedEvent struct {
	topic   string
	key     string
	payload []byte
}

type mockPublisher struct {
	mu     sync.Mutex
	err    error
	events []publishedEvent
}

func (m *mockPublisher) Publish(_ context.Context, topic string, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, publishedEvent{topic: topic, key: key, payload: payload})
	return nil
}

func (m *mockPublisher) published() []publishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishedEvent(nil), m.events...)
}
