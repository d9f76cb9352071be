package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gw-invest-ledger/internal/storages"
)

const earningColumns = `id, uid, amount, plan_id, position_id, created_at, updated_at`

func scanEarnings(rows *sql.Rows) ([]storages.EarningsRecord, error) {
	var records []storages.EarningsRecord
	for rows.Next() {
		var rec storages.EarningsRecord
		err := rows.Scan(
			&rec.ID,
			&rec.UID,
			&rec.Amount,
			&rec.PlanID,
			&rec.PositionID,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan earning: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating earnings: %w", err)
	}
	return records, nil
}

// GetUserEarnings возвращает записи дохода пользователя в порядке списания
func (s *PostgresStorage) GetUserEarnings(ctx context.Context, uid string) ([]storages.EarningsRecord, error) {
	query := `SELECT ` + earningColumns + ` FROM earnings WHERE uid = $1 ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, uid)
	if err != nil {
		s.logger.Errorf("Failed to query earnings: %v", err)
		return nil, fmt.Errorf("failed to query earnings: %w", err)
	}
	defer rows.Close()

	return scanEarnings(rows)
}

// GetPositionEarnings возвращает записи дохода по позиции
func (s *PostgresStorage) GetPositionEarnings(ctx context.Context, positionID int64) ([]storages.EarningsRecord, error) {
	query := `SELECT ` + earningColumns + ` FROM earnings WHERE position_id = $1 ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query earnings: %w", err)
	}
	defer rows.Close()

	return scanEarnings(rows)
}

// GetAllEarnings возвращает все записи дохода
func (s *PostgresStorage) GetAllEarnings(ctx context.Context) ([]storages.EarningsRecord, error) {
	query := `SELECT ` + earningColumns + ` FROM earnings ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query earnings: %w", err)
	}
	defer rows.Close()

	return scanEarnings(rows)
}

// consumeEarningsTx списывает amount с записей дохода пользователя FIFO
// внутри открытой транзакции. Строки блокируются FOR UPDATE.
func (s *PostgresStorage) consumeEarningsTx(ctx context.Context, tx *sql.Tx, uid string, amount float64) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT `+earningColumns+` FROM earnings
		WHERE uid = $1
		ORDER BY created_at, id
		FOR UPDATE
	`, uid)
	if err != nil {
		return fmt.Errorf("failed to lock earnings: %w", err)
	}

	records, err := scanEarnings(rows)
	rows.Close()
	if err != nil {
		return err
	}

	touched, err := storages.ConsumeFIFO(records, amount)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, rec := range touched {
		_, err = tx.ExecContext(ctx, `
			UPDATE earnings
			SET amount = $1, updated_at = $2
			WHERE id = $3
		`, rec.Amount, now, rec.ID)
		if err != nil {
			return fmt.Errorf("failed to update earning %d: %w", rec.ID, err)
		}
	}

	return nil
}

// ExecuteEarningGrant атомарно начисляет доход вручную: запись дохода,
// кредит основного баланса, транзакция вида earn
func (s *PostgresStorage) ExecuteEarningGrant(ctx context.Context, uid string, amount float64, planID, positionID int64) (*storages.EarningsRecord, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET amount = amount + $1, updated_at = $2
		WHERE uid = $3 AND wallet = $4
	`, amount, now, uid, storages.WalletPrimary)
	if err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	record := &storages.EarningsRecord{
		UID:        uid,
		Amount:     amount,
		PlanID:     planID,
		PositionID: positionID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO earnings (uid, amount, plan_id, position_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, uid, amount, planID, positionID, now, now).Scan(&record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create earning: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (uid, amount, from_party, to_party, kind, status, plan_id, position_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, uid, amount, "admin", uid, storages.TxKindEarn, storages.StatusApproved, planID, positionID, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Earning granted: UID=%s, amount=%.2f, position=%d", uid, amount, positionID)
	return record, nil
}

// ExecuteEarningDeduction атомарно удерживает доход: дебет основного баланса
// и списание записей дохода FIFO, транзакция вида deduct.
// Записи дохода никогда не уходят в минус.
func (s *PostgresStorage) ExecuteEarningDeduction(ctx context.Context, uid string, amount float64, planID, positionID int64) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var primary float64
	err = tx.QueryRowContext(ctx, `
		SELECT amount FROM wallets
		WHERE uid = $1 AND wallet = $2
		FOR UPDATE
	`, uid, storages.WalletPrimary).Scan(&primary)
	if err == sql.ErrNoRows {
		return fmt.Errorf("wallet: %w", storages.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get wallet: %w", err)
	}

	if primary < amount {
		return fmt.Errorf("have %.2f, need %.2f: %w", primary, amount, storages.ErrInsufficientFunds)
	}

	if err := s.consumeEarningsTx(ctx, tx, uid, amount); err != nil {
		return err
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET amount = amount - $1, updated_at = $2
		WHERE uid = $3 AND wallet = $4
	`, amount, now, uid, storages.WalletPrimary)
	if err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (uid, amount, from_party, to_party, kind, status, plan_id, position_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, uid, amount, uid, "admin", storages.TxKindDeduct, storages.StatusApproved, planID, positionID, now, now)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Earning deducted: UID=%s, amount=%.2f", uid, amount)
	return nil
}

// ExecuteAccrual атомарно начисляет дневной доход по позиции.
// Журнал запусков (position_id, run_date) гарантирует не более одного
// начисления в день: при конфликте начисление молча пропускается.
func (s *PostgresStorage) ExecuteAccrual(ctx context.Context, position *storages.Position, amount float64, runDate time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO accrual_runs (position_id, run_date, amount, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (position_id, run_date) DO NOTHING
	`, position.ID, runDate.Format("2006-01-02"), amount, now)
	if err != nil {
		return false, fmt.Errorf("failed to record accrual run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Начисление за этот день уже выполнено
		return false, nil
	}

	// Блокируем основной баланс и кредитуем доход
	var primary float64
	err = tx.QueryRowContext(ctx, `
		SELECT amount FROM wallets
		WHERE uid = $1 AND wallet = $2
		FOR UPDATE
	`, position.UID, storages.WalletPrimary).Scan(&primary)
	if err == sql.ErrNoRows {
		return false, fmt.Errorf("wallet: %w", storages.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to get wallet: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET amount = amount + $1, updated_at = $2
		WHERE uid = $3 AND wallet = $4
	`, amount, now, position.UID, storages.WalletPrimary)
	if err != nil {
		return false, fmt.Errorf("failed to credit balance: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO earnings (uid, amount, plan_id, position_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, position.UID, amount, position.PlanID, position.ID, now, now)
	if err != nil {
		return false, fmt.Errorf("failed to create earning: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (uid, amount, from_party, to_party, kind, status, plan_id, position_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, position.UID, amount, "admin", position.UID, storages.TxKindEarn,
		storages.StatusApproved, position.PlanID, position.ID, now, now)
	if err != nil {
		return false, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Accrual credited: position=%d, UID=%s, amount=%.2f", position.ID, position.UID, amount)
	return true, nil
}
