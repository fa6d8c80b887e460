// Package plans реализует HTTP-обработчик списка тарифных планов,
// доступных для оформления подписки.
package plans

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skylink-telecom/backoffice/internal/http/response"
	"github.com/skylink-telecom/backoffice/internal/lib/sl"
	"github.com/skylink-telecom/backoffice/internal/models"
)

// Service описывает интерфейс каталога тарифных планов.
type Service interface {
	ListActivePlans(ctx context.Context) ([]*models.Plan, error)
}

// Handler обрабатывает HTTP-запросы списка планов.
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
// @Summary Список тарифных планов
// @Description Возвращает планы, доступные для оформления подписки.
// @Tags Plans
// @Produce  json
// @Success 200 {object} map[string]any "Список планов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.service.ListActivePlans(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list plans"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"count": len(plans),
		"plans": plans,
	}))
}
