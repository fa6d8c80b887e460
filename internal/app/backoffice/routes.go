// Package backoffice предоставляет маршруты для основного приложения.
package backoffice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/skylink-telecom/backoffice/internal/http/handlers/admin/setstatus"
	"github.com/skylink-telecom/backoffice/internal/http/handlers/admin/sweep"
	"github.com/skylink-telecom/backoffice/internal/http/handlers/auth/login"
	"github.com/skylink-telecom/backoffice/internal/http/handlers/auth/register"
	"github.com/skylink-telecom/backoffice/internal/http/handlers/subscription/active"
	"github.com/skylink-telecom/backoffice/internal/http/handlers/subscription/cancel"
	"github.com/skylink-telecom/backoffice/internal/http/handlers/subscription/create"
	"github.com/skylink-telecom/backoffice/internal/http/handlers/subscription/health"
	"github.com/skylink-telecom/backoffice/internal/http/handlers/plans"
	"github.com/skylink-telecom/backoffice/internal/http/handlers/subscription/list"
	"github.com/skylink-telecom/backoffice/internal/http/handlers/subscription/renew"
	"github.com/skylink-telecom/backoffice/internal/http/middlewarectx"
	authservice "github.com/skylink-telecom/backoffice/internal/services/auth"
	subservice "github.com/skylink-telecom/backoffice/internal/services/subscription"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *authservice.AuthService, subscriptionService *subservice.SubscriptionService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New())
		r.Get("/plans", plans.New(logger, subscriptionService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/subscriptions", create.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/active", active.New(logger, subscriptionService).ServeHTTP)
			r.Get("/subscriptions/list", list.New(logger, subscriptionService).ServeHTTP)
			r.Delete("/subscriptions/{id}", cancel.New(logger, subscriptionService).ServeHTTP)
			r.Post("/subscriptions/{id}/renew", renew.New(logger, subscriptionService).ServeHTTP)

			// Административные маршруты
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Get("/admin/subscriptions", list.New(logger, subscriptionService).ServeHTTP)
				r.Put("/admin/subscriptions/{id}/status", setstatus.New(logger, subscriptionService).ServeHTTP)
				r.Post("/admin/subscriptions/sweep", sweep.New(logger, subscriptionService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
