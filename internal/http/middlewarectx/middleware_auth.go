// Package middlewarectx содержит HTTP middleware: проверку токена в
// заголовке Authorization, ограничение административных маршрутов по роли
// и ограничение частоты запросов.
//
// При успешной проверке токена в контекст запроса добавляются
// идентификатор пользователя, email и роль для дальнейшего использования
// в обработчиках.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skylink-telecom/backoffice/internal/http/response"
	"github.com/skylink-telecom/backoffice/internal/lib/jwt"
	"github.com/skylink-telecom/backoffice/internal/lib/sl"
	"github.com/skylink-telecom/backoffice/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID — ключ для идентификатора пользователя в контексте
	UserUID Key = "user_uid"
	// Email — ключ для email пользователя в контексте
	Email Key = "email"
	// Role — ключ для роли пользователя в контексте
	Role Key = "role"
)

// Service описывает интерфейс сервиса для проверки токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.Principal, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет токен
// в заголовке Authorization.
//
// Истёкший токен и токен с неверной подписью дают разные сообщения
// об ошибке, чтобы клиент мог отличить "сессия истекла" от
// "недействительная сессия".
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			authHeader := r.Header.Get("Authorization")

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			principal, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("token validation failed", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				if errors.Is(err, jwt.ErrTokenExpired) {
					render.JSON(w, r, response.Error("session expired"))
				} else {
					render.JSON(w, r, response.Error("invalid session"))
				}
				return
			}
			ctx := context.WithValue(r.Context(), UserUID, principal.UserUID)
			ctx = context.WithValue(ctx, Email, principal.Email)
			ctx = context.WithValue(ctx, Role, principal.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnlyMiddleware пропускает запрос дальше только для роли admin.
func AdminOnlyMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminOnlyMiddleware"

			role, ok := r.Context().Value(Role).(string)
			if !ok || role != models.RoleAdmin {
				log.Error("access denied: admin role required",
					slog.String("op", op), slog.String("role", role))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
