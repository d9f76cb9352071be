package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gw-invest-ledger/internal/storages"
)

// CreatePlan создает инвестиционный план (административная операция,
// ядро леджера планы никогда не изменяет)
func (s *PostgresStorage) CreatePlan(ctx context.Context, plan *storages.Plan) error {
	query := `
		INSERT INTO plans (name, return_rate, duration_days, min_amount, max_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		plan.Name,
		plan.ReturnRate,
		plan.DurationDays,
		plan.MinAmount,
		plan.MaxAmount,
		now,
	).Scan(&plan.ID)

	if err != nil {
		s.logger.Errorf("Failed to create plan: %v", err)
		return fmt.Errorf("failed to create plan: %w", err)
	}

	plan.CreatedAt = now

	s.logger.Infof("Created plan: %s (ID: %d)", plan.Name, plan.ID)
	return nil
}

// GetPlan возвращает план по id
func (s *PostgresStorage) GetPlan(ctx context.Context, planID int64) (*storages.Plan, error) {
	query := `
		SELECT id, name, return_rate, duration_days, min_amount, max_amount, created_at
		FROM plans
		WHERE id = $1
	`

	var plan storages.Plan
	err := s.db.QueryRowContext(ctx, query, planID).Scan(
		&plan.ID,
		&plan.Name,
		&plan.ReturnRate,
		&plan.DurationDays,
		&plan.MinAmount,
		&plan.MaxAmount,
		&plan.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("plan %d: %w", planID, storages.ErrNotFound)
	}

	if err != nil {
		s.logger.Errorf("Failed to get plan: %v", err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return &plan, nil
}

// GetAllPlans возвращает все планы
func (s *PostgresStorage) GetAllPlans(ctx context.Context) ([]storages.Plan, error) {
	query := `
		SELECT id, name, return_rate, duration_days, min_amount, max_amount, created_at
		FROM plans
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Errorf("Failed to query plans: %v", err)
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []storages.Plan
	for rows.Next() {
		var plan storages.Plan
		err := rows.Scan(
			&plan.ID,
			&plan.Name,
			&plan.ReturnRate,
			&plan.DurationDays,
			&plan.MinAmount,
			&plan.MaxAmount,
			&plan.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, plan)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}

	return plans, nil
}
