// Package setstatus реализует административный HTTP-обработчик прямого
// перевода подписки в заданный статус.
package setstatus

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/skylink-telecom/backoffice/internal/http/response"
	"github.com/skylink-telecom/backoffice/internal/lib/sl"
	"github.com/skylink-telecom/backoffice/internal/models"
	subservice "github.com/skylink-telecom/backoffice/internal/services/subscription"
	"github.com/skylink-telecom/backoffice/internal/storage/repository"
)

// Request представляет структуру запроса на смену статуса.
type Request struct {
	Status string `json:"status" validate:"required,oneof=active expired cancelled suspended"`
}

// Service описывает интерфейс смены статуса подписки.
type Service interface {
	SetStatus(ctx context.Context, id int, status string) (*models.Subscription, error)
}

// Handler обрабатывает административные запросы на смену статуса.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сменить статус подписки
// @Description Переводит подписку в произвольный допустимый статус. Доступно только администратору.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path int true "ID подписки"
// @Param request body Request true "Новый статус"
// @Success 200 {object} map[string]any "Обновлённая подписка"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 409 {object} response.ErrorResponse "У пользователя уже активна другая подписка"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /admin/subscriptions/{id}/status [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.setstatus"
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

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			log.Error("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErrs))
			return
		}
		log.Error("failed to validate request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request"))
		return
	}

	sub, err := h.service.SetStatus(r.Context(), id, req.Status)
	switch {
	case errors.Is(err, subservice.ErrUnknownStatus):
		log.Error("unknown status", slog.String("status", req.Status))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown subscription status"))
		return
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
		log.Error("failed to set subscription status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not set subscription status"))
		return
	}

	log.Info("subscription status updated",
		slog.Int("id", sub.ID),
		slog.String("status", sub.Status))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":     sub.ID,
		"status": sub.Status,
	}))
}
