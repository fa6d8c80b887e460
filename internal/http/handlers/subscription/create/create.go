// Package create реализует HTTP-обработчик оформления подписки на план.
//
// Идентификатор пользователя берётся из контекста запроса, заполненного
// middleware аутентификации; попытка оформить вторую активную подписку
// возвращает конфликт.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/skylink-telecom/backoffice/internal/http/middlewarectx"
	"github.com/skylink-telecom/backoffice/internal/http/response"
	"github.com/skylink-telecom/backoffice/internal/lib/sl"
	"github.com/skylink-telecom/backoffice/internal/models"
	"github.com/skylink-telecom/backoffice/internal/storage/repository"
)

// Request — структура входных данных для оформления подписки.
type Request struct {
	PlanID int `json:"plan_id" validate:"required,gt=0"`
}

// Service описывает интерфейс бизнес-логики оформления подписки.
type Service interface {
	Create(ctx context.Context, userUID string, planID int) (*models.Subscription, error)
}

// Handler обрабатывает HTTP-запросы на оформление подписки.
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
// @Summary Оформить подписку
// @Description Оформляет текущему пользователю подписку на тарифный план.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body Request true "Идентификатор тарифного плана"
// @Success 200 {object} map[string]any "Созданная подписка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "План или пользователь не найден"
// @Failure 409 {object} response.ErrorResponse "Уже есть активная подписка"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.service.Create(r.Context(), userUID, req.PlanID)
	switch {
	case errors.Is(err, repository.ErrActiveSubscriptionExists):
		log.Error("user already has an active subscription", slog.String("user_uid", userUID))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("user already has an active subscription"))
		return
	case errors.Is(err, repository.ErrPlanNotFound):
		log.Error("plan not found", slog.Int("plan_id", req.PlanID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	case errors.Is(err, repository.ErrUserNotFound):
		log.Error("user not found", slog.String("user_uid", userUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case err != nil:
		log.Error("failed to create subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create subscription"))
		return
	}

	log.Info("subscription created", slog.Int("id", sub.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":         sub.ID,
		"plan_id":    sub.PlanID,
		"start_date": sub.StartDate,
		"end_date":   sub.EndDate,
		"status":     sub.Status,
	}))
}
