// Package services реализует фоновую проверку истёкших подписок:
// периодический запуск перевода active -> expired и публикацию событий
// для контура уведомлений.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/skylink-telecom/backoffice/internal/lib/rabbitmq"
	"github.com/skylink-telecom/backoffice/internal/lib/sl"
	"github.com/skylink-telecom/backoffice/internal/models"
)

// SubscriptionLifecycle описывает операцию перевода истёкших подписок.
type SubscriptionLifecycle interface {
	SweepExpired(ctx context.Context) ([]models.ExpiredEntry, error)
}

// SweeperService периодически запускает проверку истёкших подписок.
type SweeperService struct {
	lifecycle SubscriptionLifecycle
	log       *slog.Logger
	expired   prometheus.Counter
}

// NewSweeperService создает новый экземпляр SweeperService и регистрирует
// счётчик обработанных подписок в переданном реестре метрик.
func NewSweeperService(lifecycle SubscriptionLifecycle, reg prometheus.Registerer, log *slog.Logger) *SweeperService {
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "expired_subscriptions_total",
		Help: "Number of subscriptions transitioned to expired by the sweeper.",
	})
	reg.MustRegister(expired)
	return &SweeperService{
		lifecycle: lifecycle,
		log:       log,
		expired:   expired,
	}
}

// Run запускает проверку сразу и затем по тикеру с заданным интервалом,
// пока не будет отменён контекст.
func (s *SweeperService) Run(ctx context.Context, interval time.Duration, channel *amqp.Channel) {
	s.runSweep(ctx, channel)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSweep(ctx, channel)
		}
	}
}

func (s *SweeperService) runSweep(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting sweep of expired subscriptions")
	expired, err := s.lifecycle.SweepExpired(ctx)
	if err != nil {
		s.log.Error("failed to sweep expired subscriptions", sl.Err(err))
		return
	}
	if len(expired) == 0 {
		s.log.Info("no expired subscriptions found")
		return
	}
	s.expired.Add(float64(len(expired)))
	s.log.Info("found expired subscriptions", "count", len(expired))

	// Ошибка публикации одного события не прерывает публикацию остальных.
	for _, entry := range expired {
		if err = rabbitmq.PublishMessage(channel, "subscriptions", "expired", entry); err != nil {
			s.log.Error("failed to publish expired event",
				slog.Int("subscription_id", entry.SubscriptionID), sl.Err(err))
		}
	}
}
