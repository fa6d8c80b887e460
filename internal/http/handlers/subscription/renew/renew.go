// Package renew реализует HTTP-обработчик возобновления подписки.
//
// Окно действия сбрасывается от текущего момента по исходному плану
// подписки; пока у пользователя активна другая подписка, возобновление
// возвращает конфликт. Обычный пользователь может возобновить только
// свою подписку, администратор — любую.
package renew

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skylink-telecom/backoffice/internal/http/middlewarectx"
	"github.com/skylink-telecom/backoffice/internal/http/response"
	"github.com/skylink-telecom/backoffice/internal/lib/sl"
	"github.com/skylink-telecom/backoffice/internal/models"
	"github.com/skylink-telecom/backoffice/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики возобновления подписки.
type Service interface {
	Get(ctx context.Context, id int) (*models.Subscription, error)
	Renew(ctx context.Context, id int) (*models.Subscription, error)
}

// Handler обрабатывает HTTP-запросы на возобновление подписки.
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
// @Summary Возобновить подписку
// @Description Сбрасывает окно действия подписки от текущего момента и делает её активной. Доступно владельцу подписки и администратору.
// @Tags Subscriptions
// @Produce  json
// @Param id path int true "ID подписки"
// @Success 200 {object} map[string]any "Возобновлённая подписка"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Подписка принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 409 {object} response.ErrorResponse "У пользователя уже активна другая подписка"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions/{id}/renew [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.renew"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	current, err := h.service.Get(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrSubscriptionNotFound):
		log.Error("subscription not found", slog.Int("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("subscription not found"))
		return
	case err != nil:
		log.Error("failed to get subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not renew subscription"))
		return
	}

	if role != models.RoleAdmin && current.UserUID != userUID {
		log.Error("subscription belongs to another user",
			slog.Int("id", id), slog.String("user_uid", userUID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("forbidden"))
		return
	}

	sub, err := h.service.Renew(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrSubscriptionNotFound):
		log.Error("subscription not found", slog.Int("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("subscription not found"))
		return
	case errors.Is(err, repository.ErrActiveSubscriptionExists):
		log.Error("another subscription is still active", slog.Int("id", id))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("user already has an active subscription"))
		return
	case err != nil:
		log.Error("failed to renew subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not renew subscription"))
		return
	}

	log.Info("subscription renewed", slog.Int("id", sub.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":         sub.ID,
		"start_date": sub.StartDate,
		"end_date":   sub.EndDate,
		"status":     sub.Status,
	}))
}
