// Package sweep реализует административный HTTP-обработчик ручного запуска
// перевода просроченных подписок в статус expired.
package sweep

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

// Service описывает интерфейс массового перевода просроченных подписок.
type Service interface {
	SweepExpired(ctx context.Context) ([]models.ExpiredEntry, error)
}

// Handler обрабатывает административные запросы на запуск sweep.
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
// @Summary Перевести просроченные подписки
// @Description Переводит все активные подписки с истёкшим сроком в статус expired и возвращает их количество.
// @Tags Admin
// @Produce  json
// @Success 200 {object} map[string]any "Количество просроченных подписок"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /admin/subscriptions/sweep [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.sweep"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	expired, err := h.service.SweepExpired(r.Context())
	if err != nil {
		log.Error("failed to sweep expired subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not sweep expired subscriptions"))
		return
	}

	log.Info("sweep finished", slog.Int("expired", len(expired)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"expired": len(expired),
	}))
}
