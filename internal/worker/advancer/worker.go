package advancer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quickcart/order-svc/internal/dal/interfaces/iorderstore"
	"github.com/quickcart/order-svc/internal/dal/store"
	"github.com/quickcart/order-svc/internal/events"
	"github.com/quickcart/order-svc/internal/service/models/event"
	"github.com/quickcart/order-svc/internal/service/models/order"
)

const (
	defaultPollInterval    = time.Minute
	defaultBatchSize       = 20
	defaultPerOrderTimeout = 10 * time.Second
)

// Config holds the advancer's collaborators and settings explicitly; nothing
// is pulled from ambient globals.
type Config struct {
	Store     iorderstore.IOrderStore
	Publisher events.IEventPublisher

	PollInterval    time.Duration
	BatchSize       int
	PerOrderTimeout time.Duration
}

// Worker advances fully paid Pending orders to Processing on a fixed
// interval. Each cycle pulls a bounded batch oldest-first and transitions the
// eligible orders in parallel, each in its own failure domain.
type Worker struct {
	store           iorderstore.IOrderStore
	publisher       events.IEventPublisher
	pollInterval    time.Duration
	batchSize       int
	perOrderTimeout time.Duration
	stopCh          chan struct{}
}

// NewWorker creates a new lifecycle advancer.
func NewWorker(cfg Config) *Worker {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.PerOrderTimeout == 0 {
		cfg.PerOrderTimeout = defaultPerOrderTimeout
	}

	return &Worker{
		store:           cfg.Store,
		publisher:       cfg.Publisher,
		pollInterval:    cfg.PollInterval,
		batchSize:       cfg.BatchSize,
		perOrderTimeout: cfg.PerOrderTimeout,
		stopCh:          make(chan struct{}),
	}
}

// Start runs the polling loop until the context is cancelled or Stop is
// called. The stop signal is observed during the sleep interval, not only
// between cycles.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Lifecycle advancer started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Lifecycle advancer shutting down")

			return
		case <-w.stopCh:
			slog.Info("Lifecycle advancer stopped")

			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// processBatch runs one advancement cycle.
func (w *Worker) processBatch(ctx context.Context) {
	orders, err := w.store.GetBatchByStatus(ctx, order.StatusPending, w.batchSize)
	if err != nil {
		slog.Error("Failed to poll pending orders", "error", err)

		return
	}

	eligible := make([]order.Order, 0, len(orders))
	for _, o := range orders {
		if o.PaymentComplete() {
			eligible = append(eligible, o)
		}
	}

	if len(eligible) == 0 {
		return
	}

	slog.Info("Advancing orders", "pending", len(orders), "eligible", len(eligible))

	g := errgroup.Group{}
	g.SetLimit(w.batchSize)

	for i := range eligible {
		o := eligible[i]
		g.Go(func() error {
			// Each order is its own failure domain: log and move on, never
			// fail the group.
			w.advanceOrder(ctx, o)

			return nil
		})
	}

	_ = g.Wait()
}

// advanceOrder transitions one order to Processing, persists it and emits a
// status-changed event. A persistence failure leaves storage untouched (the
// in-memory copy is discarded); a publish failure leaves the order advanced
// with a missed event, which the at-least-once contract tolerates.
func (w *Worker) advanceOrder(ctx context.Context, o order.Order) {
	ctx, cancel := context.WithTimeout(ctx, w.perOrderTimeout)
	defer cancel()

	prev := o.Status
	if err := o.TransitionTo(order.StatusProcessing); err != nil {
		slog.Error("Order transition rejected", "order_id", o.ID, "status", prev, "error", err)

		return
	}

	if err := w.store.Update(ctx, o, prev); err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			// Lost the race with a client-side cancel; next poll sees ground truth.
			slog.Warn("Order changed concurrently, skipping", "order_id", o.ID)
		} else {
			slog.Error("Failed to persist advanced order", "order_id", o.ID, "error", err)
		}

		return
	}

	payload, err := json.Marshal(event.OrderStatusChanged{
		OrderID:        o.ID,
		PreviousStatus: prev.String(),
		NewStatus:      o.Status.String(),
		ChangedAt:      o.UpdatedAt,
	})
	if err != nil {
		slog.Error("Failed to marshal status event", "order_id", o.ID, "error", err)

		return
	}

	if err := w.publisher.Publish(ctx, event.TopicOrderStatusChanged, o.ID.String(), payload); err != nil {
		slog.Error("Failed to publish status event", "order_id", o.ID, "error", err)

		return
	}

	slog.Info("Order advanced", "order_id", o.ID, "from", prev.String(), "to", o.Status.String())
}
