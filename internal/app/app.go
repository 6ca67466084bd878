package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/quickcart/order-svc/internal/dal/cache"
	"github.com/quickcart/order-svc/internal/dal/postgres"
	"github.com/quickcart/order-svc/internal/dal/rabbitmq"
	"github.com/quickcart/order-svc/internal/dal/redis"
	"github.com/quickcart/order-svc/internal/dal/store"
	"github.com/quickcart/order-svc/internal/events"
	"github.com/quickcart/order-svc/internal/jaeger"
	"github.com/quickcart/order-svc/internal/service/services/ordersvc"
	httptransport "github.com/quickcart/order-svc/internal/transport/http"
	"github.com/quickcart/order-svc/internal/worker/advancer"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	advancer       *advancer.Worker
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
}

// MustNewApp creates a new application. All collaborators are constructed
// here and passed down explicitly; nothing is wired through globals.
func MustNewApp() *App {
	postgresClient := postgres.MustNewClient()
	redisClient := redis.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	orderStore := store.NewPostgresOrderStore(postgresClient)
	orderCache := cache.NewRedisCache(redisClient)
	publisher := events.MustNewRabbitPublisher(rabbitClient)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithStore(orderStore),
		ordersvc.WithCache(orderCache),
		ordersvc.WithPublisher(publisher),
	)

	worker := advancer.NewWorker(advancer.Config{
		Store:        orderStore,
		Publisher:    publisher,
		PollInterval: time.Duration(viper.GetInt("advancer.poll_interval_minutes")) * time.Minute,
		BatchSize:    viper.GetInt("advancer.batch_size"),
	})

	transport := httptransport.NewHTTPTransport(orderSvc)
	transport.RegisterRoutes()

	return &App{
		orderSvc:       orderSvc,
		advancer:       worker,
		transport:      transport,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	tp := jaeger.MustSetupTracing()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())

	go func() {
		slog.Info("Starting lifecycle advancer")
		a.advancer.Start(workerCtx)
	}()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := tp.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
