package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/skylink-telecom/backoffice/internal/models"
)

// GetPlan возвращает тарифный план по его ID.
func (s *Storage) GetPlan(ctx context.Context, planID int) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, price, duration_in_days, data_limit_gb, speed_mbps,
			      active, created_at, updated_at
			  FROM plans
			  WHERE id = $1`
	p := &models.Plan{}
	row := s.DB.QueryRowContext(ctx, query, planID)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationInDays,
		&p.DataLimitGB, &p.SpeedMbps, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrPlanNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListActivePlans возвращает планы, доступные для оформления подписки.
func (s *Storage) ListActivePlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListActivePlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, price, duration_in_days, data_limit_gb, speed_mbps,
			      active, created_at, updated_at
			  FROM plans
			  WHERE active = TRUE
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		var p models.Plan
		if err = rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationInDays,
			&p.DataLimitGB, &p.SpeedMbps, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
