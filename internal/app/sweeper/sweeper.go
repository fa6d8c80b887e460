// Package sweeper собирает и запускает фоновое приложение, переводящее
// истёкшие подписки в статус expired и публикующее события об этом.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/skylink-telecom/backoffice/internal/cache"
	"github.com/skylink-telecom/backoffice/internal/config"
	"github.com/skylink-telecom/backoffice/internal/lib/clock"
	"github.com/skylink-telecom/backoffice/internal/lib/rabbitmq"
	subservice "github.com/skylink-telecom/backoffice/internal/services/subscription"
	sweeperservice "github.com/skylink-telecom/backoffice/internal/services/sweeper"
	"github.com/skylink-telecom/backoffice/internal/storage/repository"
)

// App представляет приложение фоновой проверки подписок.
type App struct {
	sweeperService *sweeperservice.SweeperService
	conn           *amqp.Connection
	ch             *amqp.Channel
	db             *repository.Storage
	metricsServer  *http.Server
	interval       time.Duration
	logger         *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения фоновой проверки.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetSubscriptionQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	subscriptionService := subservice.NewSubscriptionService(db, db, db, cacheRedis, clock.System(), logger)

	registry := prometheus.NewRegistry()
	sweeperService := sweeperservice.NewSweeperService(subscriptionService, registry, logger)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &App{
		sweeperService: sweeperService,
		conn:           conn,
		ch:             ch,
		db:             db,
		metricsServer: &http.Server{
			Addr:    cfg.MetricsAddress,
			Handler: metricsMux,
		},
		interval: cfg.SweepInterval,
		logger:   logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает фоновую проверку и сервер метрик.
func (a *App) Run(ctx context.Context) error {
	go func() {
		a.logger.Info("metrics server starting on", slog.String("address", a.metricsServer.Addr))
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server stopped", slog.Any("err", err))
		}
	}()

	a.sweeperService.Run(ctx, a.interval, a.ch)

	a.logger.Info("shutting down sweeper service")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.metricsServer.Shutdown(timeoutCtx); err != nil {
		a.logger.Error("failed to stop metrics server", slog.Any("err", err))
	}

	closeResources(a.ch, a.conn, a.logger)

	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", slog.Any("err", err))
	}

	return nil
}
