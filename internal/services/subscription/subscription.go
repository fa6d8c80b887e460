// Package services содержит бизнес-логику жизненного цикла подписок:
// оформление, отмену, возобновление, административную смену статуса
// и фоновый перевод истёкших подписок в статус expired.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/skylink-telecom/backoffice/internal/lib/clock"
	"github.com/skylink-telecom/backoffice/internal/lib/sl"
	"github.com/skylink-telecom/backoffice/internal/models"
	"github.com/skylink-telecom/backoffice/internal/storage/repository"
)

// ErrUnknownStatus — запрошен статус, не входящий в модель состояний.
var ErrUnknownStatus = errors.New("unknown subscription status")

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription атомарно вставляет новую активную подписку.
	CreateSubscription(ctx context.Context, userUID string, planID int, startDate, endDate time.Time) (*models.Subscription, error)
	// GetSubscription возвращает подписку по ID.
	GetSubscription(ctx context.Context, id int) (*models.Subscription, error)
	// FindActiveByUser возвращает активную подписку пользователя.
	FindActiveByUser(ctx context.Context, userUID string) (*models.Subscription, error)
	// UpdateSubscriptionStatus выставляет подписке произвольный статус.
	UpdateSubscriptionStatus(ctx context.Context, id int, status string, now time.Time) error
	// RenewSubscription сбрасывает окно действия и делает подписку активной.
	RenewSubscription(ctx context.Context, id int, now time.Time) (*models.Subscription, error)
	// MarkExpired переводит истёкшие активные подписки в expired.
	MarkExpired(ctx context.Context, now time.Time) ([]models.ExpiredEntry, error)
	// ListByStatus возвращает подписки с заданным статусом.
	ListByStatus(ctx context.Context, status string) ([]*models.Subscription, error)
	// ListByUser возвращает все подписки пользователя.
	ListByUser(ctx context.Context, userUID string) ([]*models.Subscription, error)
}

// UserDirectory описывает справочник пользователей.
type UserDirectory interface {
	UserExists(ctx context.Context, userUID string) (bool, error)
}

// PlanCatalog описывает каталог тарифных планов.
type PlanCatalog interface {
	GetPlan(ctx context.Context, planID int) (*models.Plan, error)
	ListActivePlans(ctx context.Context) ([]*models.Plan, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// SubscriptionService реализует машину состояний подписки и её инварианты.
type SubscriptionService struct {
	repo  SubscriptionRepository
	users UserDirectory
	plans PlanCatalog
	cache Cache
	clk   clock.Clock
	log   *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, users UserDirectory, plans PlanCatalog,
	cache Cache, clk clock.Clock, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		users: users,
		plans: plans,
		cache: cache,
		clk:   clk,
		log:   log,
	}
}

func activeCacheKey(userUID string) string {
	return fmt.Sprintf("subscription:active:%s", userUID)
}

// Create оформляет пользователю подписку на план.
//
// Пользователь и план должны существовать; если у пользователя уже есть
// активная подписка, хранилище вернёт ErrActiveSubscriptionExists —
// проверка и вставка выполняются одной атомарной операцией.
func (s *SubscriptionService) Create(ctx context.Context, userUID string, planID int) (*models.Subscription, error) {
	const op = "services.subscription.Create"

	exists, err := s.users.UserExists(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrUserNotFound)
	}

	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	startDate := s.clk.Now()
	endDate := startDate.AddDate(0, 0, plan.DurationInDays)

	sub, err := s.repo.CreateSubscription(ctx, userUID, planID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	s.log.Info("created new subscription",
		slog.Int("id", sub.ID), slog.String("user_uid", userUID), slog.Int("plan_id", planID))

	if err := s.cache.Set(activeCacheKey(userUID), sub, time.Hour); err != nil {
		s.log.Warn("failed to cache active subscription", slog.String("user_uid", userUID), sl.Err(err))
	}
	return sub, nil
}

// Get возвращает подписку по ID.
func (s *SubscriptionService) Get(ctx context.Context, id int) (*models.Subscription, error) {
	return s.repo.GetSubscription(ctx, id)
}

// Cancel безусловно переводит подписку в статус cancelled.
//
// Отмена уже отменённой или истёкшей подписки не является ошибкой.
func (s *SubscriptionService) Cancel(ctx context.Context, id int) error {
	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateSubscriptionStatus(ctx, id, models.StatusCancelled, s.clk.Now()); err != nil {
		return err
	}
	s.log.Info("cancelled subscription", slog.Int("id", id))

	if err := s.cache.Invalidate(activeCacheKey(sub.UserUID)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("user_uid", sub.UserUID), sl.Err(err))
	}
	return nil
}

// Renew возобновляет подписку: окно действия отсчитывается от текущего
// момента по исходному плану, статус принудительно становится active.
//
// Если у пользователя в этот момент активна другая подписка, хранилище
// вернёт ErrActiveSubscriptionExists — тот же инвариант, что и при создании.
func (s *SubscriptionService) Renew(ctx context.Context, id int) (*models.Subscription, error) {
	sub, err := s.repo.RenewSubscription(ctx, id, s.clk.Now())
	if err != nil {
		return nil, err
	}
	s.log.Info("renewed subscription",
		slog.Int("id", sub.ID), slog.Time("end_date", sub.EndDate))

	if err := s.cache.Set(activeCacheKey(sub.UserUID), sub, time.Hour); err != nil {
		s.log.Warn("failed to cache active subscription", slog.String("user_uid", sub.UserUID), sl.Err(err))
	}
	return sub, nil
}

// SweepExpired переводит все истёкшие активные подписки в статус expired
// и возвращает затронутые записи.
//
// Повторный запуск сразу после успешного — no-op. Ошибка инвалидации
// кеша одной записи не прерывает обработку остальных.
func (s *SubscriptionService) SweepExpired(ctx context.Context) ([]models.ExpiredEntry, error) {
	expired, err := s.repo.MarkExpired(ctx, s.clk.Now())
	if err != nil {
		return nil, err
	}
	for _, entry := range expired {
		if err := s.cache.Invalidate(activeCacheKey(entry.UserUID)); err != nil {
			s.log.Warn("failed to invalidate cache for expired subscription",
				slog.Int("id", entry.SubscriptionID), sl.Err(err))
		}
	}
	if len(expired) > 0 {
		s.log.Info("expired subscriptions swept", slog.Int("count", len(expired)))
	}
	return expired, nil
}

// SetStatus — административная смена статуса без проверки переходов.
//
// Эскейп-хэтч сохранён для операций вроде приостановки (suspended), но
// принудительно сделать активной вторую подписку пользователя всё равно
// не выйдет: уникальный индекс хранилища отклонит такую запись.
func (s *SubscriptionService) SetStatus(ctx context.Context, id int, status string) (*models.Subscription, error) {
	const op = "services.subscription.SetStatus"

	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownStatus, status)
	}

	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSubscriptionStatus(ctx, id, status, s.clk.Now()); err != nil {
		return nil, err
	}
	s.log.Info("subscription status overridden",
		slog.Int("id", id), slog.String("from", sub.Status), slog.String("to", status))

	if err := s.cache.Invalidate(activeCacheKey(sub.UserUID)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("user_uid", sub.UserUID), sl.Err(err))
	}
	sub.Status = status
	return sub, nil
}

// ActiveFor возвращает активную подписку пользователя, используя кеш
// или хранилище.
func (s *SubscriptionService) ActiveFor(ctx context.Context, userUID string) (*models.Subscription, error) {
	var cached models.Subscription
	key := activeCacheKey(userUID)
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("failed to read cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	sub, err := s.repo.FindActiveByUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(key, sub, time.Hour); err != nil {
		s.log.Warn("failed to cache active subscription", slog.String("key", key), sl.Err(err))
	}
	return sub, nil
}

// ListByStatus возвращает все подписки с заданным статусом.
func (s *SubscriptionService) ListByStatus(ctx context.Context, status string) ([]*models.Subscription, error) {
	const op = "services.subscription.ListByStatus"
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownStatus, status)
	}
	return s.repo.ListByStatus(ctx, status)
}

// ListForUser возвращает все подписки пользователя, новые первыми.
func (s *SubscriptionService) ListForUser(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	return s.repo.ListByUser(ctx, userUID)
}

// ListActivePlans возвращает планы, доступные для оформления подписки.
func (s *SubscriptionService) ListActivePlans(ctx context.Context) ([]*models.Plan, error) {
	return s.plans.ListActivePlans(ctx)
}
