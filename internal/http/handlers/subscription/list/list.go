// Package list реализует HTTP-обработчик списка подписок.
//
// Обычный пользователь видит только свои подписки; администратор может
// запросить все подписки с заданным статусом через параметр status.
package list

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
	subservice "github.com/skylink-telecom/backoffice/internal/services/subscription"
)

// Service описывает интерфейс списков подписок.
type Service interface {
	ListForUser(ctx context.Context, userUID string) ([]*models.Subscription, error)
	ListByStatus(ctx context.Context, status string) ([]*models.Subscription, error)
}

// Handler обрабатывает HTTP-запросы списка подписок.
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
// @Summary Список подписок
// @Description Возвращает подписки текущего пользователя; администратору с параметром status — все подписки с этим статусом.
// @Tags Subscriptions
// @Produce  json
// @Param status query string false "Статус подписки (только для admin)"
// @Success 200 {object} map[string]any "Список подписок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Неизвестный статус"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"
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
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	var subs []*models.Subscription
	var err error
	status := r.URL.Query().Get("status")
	if role == models.RoleAdmin && status != "" {
		subs, err = h.service.ListByStatus(r.Context(), status)
	} else {
		subs, err = h.service.ListForUser(r.Context(), userUID)
	}
	switch {
	case errors.Is(err, subservice.ErrUnknownStatus):
		log.Error("unknown status", slog.String("status", status))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("unknown subscription status"))
		return
	case err != nil:
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list subscriptions"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":         len(subs),
		"subscriptions": subs,
	}))
}
