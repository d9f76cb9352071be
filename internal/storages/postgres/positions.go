package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gw-invest-ledger/internal/storages"
)

const positionColumns = `id, uid, plan_id, plan_name, principal, return_rate, duration_days, method, status, created_at, updated_at`

func scanPosition(scanner interface {
	Scan(dest ...interface{}) error
}) (*storages.Position, error) {
	var p storages.Position
	err := scanner.Scan(
		&p.ID,
		&p.UID,
		&p.PlanID,
		&p.PlanName,
		&p.Principal,
		&p.ReturnRate,
		&p.DurationDays,
		&p.Method,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePosition создает новую позицию в статусе pending
func (s *PostgresStorage) CreatePosition(ctx context.Context, position *storages.Position) error {
	query := `
		INSERT INTO positions (uid, plan_id, plan_name, principal, return_rate, duration_days, method, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	now := time.Now()
	if position.Status == "" {
		position.Status = storages.StatusPending
	}
	err := s.db.QueryRowContext(ctx, query,
		position.UID,
		position.PlanID,
		position.PlanName,
		position.Principal,
		position.ReturnRate,
		position.DurationDays,
		position.Method,
		position.Status,
		now,
		now,
	).Scan(&position.ID)

	if err != nil {
		s.logger.Errorf("Failed to create position: %v", err)
		return fmt.Errorf("failed to create position: %w", err)
	}

	position.CreatedAt = now
	position.UpdatedAt = now

	s.logger.Infof("Created position: ID=%d, UID=%s, plan=%d", position.ID, position.UID, position.PlanID)
	return nil
}

// GetPosition возвращает позицию по id
func (s *PostgresStorage) GetPosition(ctx context.Context, positionID int64) (*storages.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE id = $1`

	position, err := scanPosition(s.db.QueryRowContext(ctx, query, positionID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("position %d: %w", positionID, storages.ErrNotFound)
	}
	if err != nil {
		s.logger.Errorf("Failed to get position: %v", err)
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return position, nil
}

func (s *PostgresStorage) queryPositions(ctx context.Context, query string, args ...interface{}) ([]storages.Position, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("Failed to query positions: %v", err)
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []storages.Position
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, *position)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// GetPositionsByStatus возвращает позиции в заданном статусе
// (планировщик запрашивает approved)
func (s *PostgresStorage) GetPositionsByStatus(ctx context.Context, status string) ([]storages.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE status = $1 ORDER BY id`
	return s.queryPositions(ctx, query, status)
}

// GetUserPositions возвращает позиции пользователя
func (s *PostgresStorage) GetUserPositions(ctx context.Context, uid string) ([]storages.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE uid = $1 ORDER BY created_at DESC`
	return s.queryPositions(ctx, query, uid)
}

// GetAllPositions возвращает все позиции
func (s *PostgresStorage) GetAllPositions(ctx context.Context) ([]storages.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions ORDER BY created_at DESC`
	return s.queryPositions(ctx, query)
}

// ExecutePositionTransition атомарно переводит позицию в новый статус:
// переход проверяется под блокировкой строки, поэтому терминальная
// позиция не может покинуть свой статус при конкурирующих действиях
// администраторов. Транзакция позиции, если она уже создана,
// синхронизируется в той же единице работы.
func (s *PostgresStorage) ExecutePositionTransition(ctx context.Context, positionID int64, status string) (*storages.Position, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	position, err := scanPosition(tx.QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE id = $1 FOR UPDATE`, positionID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("position %d: %w", positionID, storages.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	if !storages.CanTransitionPosition(position.Status, status) {
		return nil, fmt.Errorf("position %d is %s: %w", positionID, position.Status, storages.ErrInvalidState)
	}

	now := time.Now()

	_, err = tx.ExecContext(ctx, `
		UPDATE positions
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, status, now, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to update position: %w", err)
	}

	// Синхронизируем транзакцию позиции, если она уже создана
	_, err = tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $1, updated_at = $2
		WHERE position_id = $3 AND kind = $4
	`, status, now, positionID, storages.TxKindInvestment)
	if err != nil {
		return nil, fmt.Errorf("failed to sync transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	position.Status = status
	position.UpdatedAt = now

	s.logger.Infof("Position %d transitioned to %s", positionID, status)
	return position, nil
}

// ExecutePositionApproval атомарно одобряет позицию: проверяет статус pending
// и достаточность основного баланса, при включенной политике списывает
// принципал из кошелька метода и основного баланса, создает транзакцию
// вида investment
func (s *PostgresStorage) ExecutePositionApproval(ctx context.Context, positionID int64, debitPrincipal bool) (*storages.Position, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Блокируем позицию
	position, err := scanPosition(tx.QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE id = $1 FOR UPDATE`, positionID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("position %d: %w", positionID, storages.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	if position.Status != storages.StatusPending {
		return nil, fmt.Errorf("position %d is %s: %w", positionID, position.Status, storages.ErrInvalidState)
	}

	// Блокируем основной баланс и проверяем достаточность средств
	var primary float64
	err = tx.QueryRowContext(ctx, `
		SELECT amount FROM wallets
		WHERE uid = $1 AND wallet = $2
		FOR UPDATE
	`, position.UID, storages.WalletPrimary).Scan(&primary)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if position.Principal > primary {
		return nil, fmt.Errorf("principal %.2f exceeds balance %.2f: %w",
			position.Principal, primary, storages.ErrInsufficientFunds)
	}

	now := time.Now()

	if debitPrincipal {
		// Политика резервирования: списываем принципал из кошелька метода
		// и основного баланса
		res, err := tx.ExecContext(ctx, `
			UPDATE wallets
			SET amount = amount - $1, updated_at = $2
			WHERE uid = $3 AND wallet = $4 AND amount >= $1
		`, position.Principal, now, position.UID, position.Method)
		if err != nil {
			return nil, fmt.Errorf("failed to debit method wallet: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, fmt.Errorf("wallet %s: %w", position.Method, storages.ErrInsufficientFunds)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE wallets
			SET amount = amount - $1, updated_at = $2
			WHERE uid = $3 AND wallet = $4
		`, position.Principal, now, position.UID, storages.WalletPrimary)
		if err != nil {
			return nil, fmt.Errorf("failed to debit primary wallet: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE positions
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, storages.StatusApproved, now, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to update position: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (uid, amount, from_party, to_party, kind, status, plan_id, position_id, method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, position.UID, position.Principal, position.UID, "admin",
		storages.TxKindInvestment, storages.StatusApproved,
		position.PlanID, position.ID, position.Method, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	position.Status = storages.StatusApproved
	position.UpdatedAt = now

	s.logger.Infof("Position approved: ID=%d, UID=%s, principal=%.2f, debit=%v",
		position.ID, position.UID, position.Principal, debitPrincipal)

	return position, nil
}

// ExecutePositionDecline атомарно отклоняет позицию: возвращает принципал
// в кошелек метода и основной баланс, переводит позицию в declined
func (s *PostgresStorage) ExecutePositionDecline(ctx context.Context, positionID int64) (*storages.Position, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	position, err := scanPosition(tx.QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE id = $1 FOR UPDATE`, positionID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("position %d: %w", positionID, storages.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	if !storages.CanTransitionPosition(position.Status, storages.StatusDeclined) {
		return nil, fmt.Errorf("position %d is %s: %w", positionID, position.Status, storages.ErrInvalidState)
	}

	now := time.Now()

	// Возвращаем принципал в кошелек метода и основной баланс
	for _, wallet := range []string{position.Method, storages.WalletPrimary} {
		_, err = tx.ExecContext(ctx, `
			UPDATE wallets
			SET amount = amount + $1, updated_at = $2
			WHERE uid = $3 AND wallet = $4
		`, position.Principal, now, position.UID, wallet)
		if err != nil {
			return nil, fmt.Errorf("failed to credit wallet %s: %w", wallet, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE positions
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, storages.StatusDeclined, now, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to update position: %w", err)
	}

	// Синхронизируем транзакцию позиции, если она уже создана
	_, err = tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $1, updated_at = $2
		WHERE position_id = $3 AND kind = $4
	`, storages.StatusDeclined, now, positionID, storages.TxKindInvestment)
	if err != nil {
		return nil, fmt.Errorf("failed to sync transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	position.Status = storages.StatusDeclined
	position.UpdatedAt = now

	s.logger.Infof("Position declined: ID=%d, UID=%s, refunded %.2f to %s",
		position.ID, position.UID, position.Principal, position.Method)

	return position, nil
}
