package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/skylink-telecom/backoffice/internal/models"
)

const subscriptionColumns = `id, user_uid, plan_id, start_date, end_date, status, created_at, updated_at`

func scanSubscription(row interface{ Scan(dest ...any) error }) (*models.Subscription, error) {
	var sub models.Subscription
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.PlanID, &sub.StartDate, &sub.EndDate,
		&sub.Status, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscription вставляет новую активную подписку и возвращает запись.
//
// Частичный уникальный индекс по user_uid для активных строк превращает
// конкурентную пару "проверить и вставить" в атомарную операцию: из двух
// одновременных вставок для одного пользователя ровно одна завершится
// ошибкой ErrActiveSubscriptionExists.
func (s *Storage) CreateSubscription(ctx context.Context, userUID string, planID int,
	startDate, endDate time.Time) (*models.Subscription, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, plan_id, start_date, end_date, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, 'active', $3, $3)
			  RETURNING ` + subscriptionColumns
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userUID, planID, startDate, endDate))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrActiveSubscriptionExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetSubscription возвращает подписку по её ID.
func (s *Storage) GetSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// FindActiveByUser возвращает активную подписку пользователя.
//
// Запрос опирается на тот же частичный индекс, что и вставка, поэтому
// чтение сразу видит результат только что выполненного создания.
func (s *Storage) FindActiveByUser(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.FindActiveByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE user_uid = $1 AND status = 'active'`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// UpdateSubscriptionStatus выставляет подписке произвольный статус.
//
// Переходы состояний здесь не проверяются, но попытка сделать активной
// вторую подписку пользователя упрётся в уникальный индекс.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, id int, status string, now time.Time) error {
	const op = "storage.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id, status, now)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrActiveSubscriptionExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	return nil
}

// RenewSubscription сбрасывает окно действия подписки от текущего момента
// по исходному тарифному плану и делает её активной независимо от
// прежнего статуса.
//
// Длительность берётся из плана прямо в запросе, а уникальный индекс
// не даст возобновить подписку, пока у пользователя активна другая.
func (s *Storage) RenewSubscription(ctx context.Context, id int, now time.Time) (*models.Subscription, error) {
	const op = "storage.RenewSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions s
			  SET start_date = $2,
			      end_date = $2 + make_interval(days => p.duration_in_days),
			      status = 'active',
			      updated_at = $2
			  FROM plans p
			  WHERE s.id = $1 AND p.id = s.plan_id
			  RETURNING s.id, s.user_uid, s.plan_id, s.start_date, s.end_date, s.status, s.created_at, s.updated_at`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrActiveSubscriptionExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// MarkExpired переводит в статус expired все активные подписки, срок
// которых истёк к моменту now, и возвращает затронутые строки.
//
// Повторный вызов с тем же now ничего не меняет: условие отбирает только
// активные строки. Приостановленные подписки проверка не трогает.
func (s *Storage) MarkExpired(ctx context.Context, now time.Time) ([]models.ExpiredEntry, error) {
	const op = "storage.MarkExpired"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = 'expired', updated_at = $1
			  WHERE status = 'active' AND end_date < $1
			  RETURNING id, user_uid`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.ExpiredEntry
	for rows.Next() {
		var entry models.ExpiredEntry
		if err = rows.Scan(&entry.SubscriptionID, &entry.UserUID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListByStatus возвращает все подписки с заданным статусом.
func (s *Storage) ListByStatus(ctx context.Context, status string) ([]*models.Subscription, error) {
	const op = "storage.ListByStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE status = $1
			  ORDER BY id`
	return s.listSubscriptions(ctx, op, query, status)
}

// ListByUser возвращает все подписки пользователя, новые первыми.
func (s *Storage) ListByUser(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	const op = "storage.ListByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	return s.listSubscriptions(ctx, op, query, userUID)
}

func (s *Storage) listSubscriptions(ctx context.Context, op, query string, args ...any) ([]*models.Subscription, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
