// Package backoffice собирает и запускает HTTP-приложение бэк-офиса:
// хранилище, миграции, кеш, сервисы и маршруты.
package backoffice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/skylink-telecom/backoffice/internal/cache"
	"github.com/skylink-telecom/backoffice/internal/config"
	"github.com/skylink-telecom/backoffice/internal/lib/clock"
	"github.com/skylink-telecom/backoffice/internal/lib/jwt"
	"github.com/skylink-telecom/backoffice/internal/migrations"
	authservice "github.com/skylink-telecom/backoffice/internal/services/auth"
	subservice "github.com/skylink-telecom/backoffice/internal/services/subscription"
	"github.com/skylink-telecom/backoffice/internal/storage/repository"
)

// App представляет HTTP-приложение бэк-офиса.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New создает новый экземпляр приложения бэк-офиса.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	maker := jwt.New(cfg.JWTSecretKey, cfg.TokenTTL, clock.System())
	authService := authservice.NewAuthService(db, maker)
	subscriptionService := subservice.NewSubscriptionService(db, db, db, cacheRedis, clock.System(), logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, subscriptionService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Error("failed to close database", slog.Any("err", cerr))
		}
		return err
	}
}
