// Package active реализует HTTP-обработчик запроса активной подписки
// текущего пользователя.
package active

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skylink-telecom/backoffice/internal/http/middlewarectx"
	"github.com/skylink-telecom/backoffice/internal/http/response"
	"github.com/skylink-telecom/backoffice/internal/lib/sl"
	"github.com/skylink-telecom/backoffice/internal/models"
	"github.com/skylink-telecom/backoffice/internal/storage/repository"
)

// Service описывает интерфейс запроса активной подписки.
type Service interface {
	ActiveFor(ctx context.Context, userUID string) (*models.Subscription, error)
}

// Handler обрабатывает HTTP-запросы активной подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Активная подписка
// @Description Возвращает активную подписку текущего пользователя, если она есть.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} map[string]any "Активная подписка"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Активной подписки нет"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions/active [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.active"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.service.ActiveFor(r.Context(), userUID)
	switch {
	case errors.Is(err, repository.ErrSubscriptionNotFound):
		log.Info("no active subscription", slog.String("user_uid", userUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no active subscription"))
		return
	case err != nil:
		log.Error("failed to find active subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not find active subscription"))
		return
	}

	render.JSON(w, r, response.OKWithData(sub))
}
