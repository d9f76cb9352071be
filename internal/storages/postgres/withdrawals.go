package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gw-invest-ledger/internal/storages"
)

const withdrawalColumns = `id, uid, amount, destination, method, status, transaction_id, created_at, updated_at`

func scanWithdrawal(scanner interface {
	Scan(dest ...interface{}) error
}) (*storages.WithdrawalRequest, error) {
	var w storages.WithdrawalRequest
	err := scanner.Scan(
		&w.ID,
		&w.UID,
		&w.Amount,
		&w.Destination,
		&w.Method,
		&w.Status,
		&w.TransactionID,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWithdrawal создает заявку на вывод в статусе pending
func (s *PostgresStorage) CreateWithdrawal(ctx context.Context, withdrawal *storages.WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawals (uid, amount, destination, method, status, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now()
	if withdrawal.Status == "" {
		withdrawal.Status = storages.StatusPending
	}
	err := s.db.QueryRowContext(ctx, query,
		withdrawal.UID,
		withdrawal.Amount,
		withdrawal.Destination,
		withdrawal.Method,
		withdrawal.Status,
		withdrawal.TransactionID,
		now,
		now,
	).Scan(&withdrawal.ID)

	if err != nil {
		s.logger.Errorf("Failed to create withdrawal: %v", err)
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}

	withdrawal.CreatedAt = now
	withdrawal.UpdatedAt = now

	s.logger.Infof("Created withdrawal: ID=%d, UID=%s, amount=%.2f", withdrawal.ID, withdrawal.UID, withdrawal.Amount)
	return nil
}

// GetWithdrawal возвращает заявку на вывод по id
func (s *PostgresStorage) GetWithdrawal(ctx context.Context, withdrawalID int64) (*storages.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`

	withdrawal, err := scanWithdrawal(s.db.QueryRowContext(ctx, query, withdrawalID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("withdrawal %d: %w", withdrawalID, storages.ErrNotFound)
	}
	if err != nil {
		s.logger.Errorf("Failed to get withdrawal: %v", err)
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return withdrawal, nil
}

func (s *PostgresStorage) queryWithdrawals(ctx context.Context, query string, args ...interface{}) ([]storages.WithdrawalRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("Failed to query withdrawals: %v", err)
		return nil, fmt.Errorf("failed to query withdrawals: %w", err)
	}
	defer rows.Close()

	var withdrawals []storages.WithdrawalRequest
	for rows.Next() {
		withdrawal, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		withdrawals = append(withdrawals, *withdrawal)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdrawals: %w", err)
	}

	return withdrawals, nil
}

// GetUserWithdrawals возвращает заявки пользователя на вывод
func (s *PostgresStorage) GetUserWithdrawals(ctx context.Context, uid string) ([]storages.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE uid = $1 ORDER BY created_at DESC`
	return s.queryWithdrawals(ctx, query, uid)
}

// GetAllWithdrawals возвращает все заявки на вывод
func (s *PostgresStorage) GetAllWithdrawals(ctx context.Context) ([]storages.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals ORDER BY created_at DESC`
	return s.queryWithdrawals(ctx, query)
}

// ExecuteWithdrawalTransition атомарно переводит заявку на вывод в новый
// статус: переход проверяется под блокировкой строки, поэтому отклоненная
// заявка не может быть переведена в processing конкурирующим действием.
// Статус транзакции заявки синхронизируется в той же единице работы.
func (s *PostgresStorage) ExecuteWithdrawalTransition(ctx context.Context, withdrawalID int64, status string) (*storages.WithdrawalRequest, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	withdrawal, err := scanWithdrawal(tx.QueryRowContext(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, withdrawalID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("withdrawal %d: %w", withdrawalID, storages.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}

	if !storages.CanTransitionRequest(withdrawal.Status, status) {
		return nil, fmt.Errorf("withdrawal %d is %s: %w", withdrawalID, withdrawal.Status, storages.ErrInvalidState)
	}

	now := time.Now()

	_, err = tx.ExecContext(ctx, `
		UPDATE withdrawals
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, status, now, withdrawalID)
	if err != nil {
		return nil, fmt.Errorf("failed to update withdrawal: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, status, now, withdrawal.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to sync transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	withdrawal.Status = status
	withdrawal.UpdatedAt = now

	s.logger.Infof("Withdrawal %d transitioned to %s", withdrawalID, status)
	return withdrawal, nil
}

// ExecuteWithdrawalApproval атомарно одобряет вывод средств: проверяет
// статус и достаточность баланса и дохода, списывает основной баланс,
// потребляет записи дохода FIFO и синхронизирует статусы заявки
// и ее транзакции
func (s *PostgresStorage) ExecuteWithdrawalApproval(ctx context.Context, withdrawalID int64) (*storages.WithdrawalRequest, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Блокируем заявку
	withdrawal, err := scanWithdrawal(tx.QueryRowContext(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, withdrawalID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("withdrawal %d: %w", withdrawalID, storages.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}

	if !storages.CanTransitionRequest(withdrawal.Status, storages.StatusApproved) {
		return nil, fmt.Errorf("withdrawal %d is %s: %w", withdrawalID, withdrawal.Status, storages.ErrInvalidState)
	}

	// Блокируем основной баланс
	var primary float64
	err = tx.QueryRowContext(ctx, `
		SELECT amount FROM wallets
		WHERE uid = $1 AND wallet = $2
		FOR UPDATE
	`, withdrawal.UID, storages.WalletPrimary).Scan(&primary)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("wallet: %w", storages.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if primary < withdrawal.Amount {
		return nil, fmt.Errorf("have %.2f, need %.2f: %w", primary, withdrawal.Amount, storages.ErrInsufficientFunds)
	}

	// Списание дохода FIFO; при нехватке — ошибка без каких-либо изменений
	if err := s.consumeEarningsTx(ctx, tx, withdrawal.UID, withdrawal.Amount); err != nil {
		return nil, err
	}

	now := time.Now()

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET amount = amount - $1, updated_at = $2
		WHERE uid = $3 AND wallet = $4
	`, withdrawal.Amount, now, withdrawal.UID, storages.WalletPrimary)
	if err != nil {
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE withdrawals
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, storages.StatusApproved, now, withdrawalID)
	if err != nil {
		return nil, fmt.Errorf("failed to update withdrawal: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, storages.StatusApproved, now, withdrawal.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to sync transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	withdrawal.Status = storages.StatusApproved
	withdrawal.UpdatedAt = now

	s.logger.Infof("Withdrawal approved: ID=%d, UID=%s, amount=%.2f",
		withdrawal.ID, withdrawal.UID, withdrawal.Amount)

	return withdrawal, nil
}
