package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gw-invest-ledger/internal/storages"
)

const depositColumns = `id, uid, amount, from_party, method, status, transaction_id, created_at, updated_at`

func scanDeposit(scanner interface {
	Scan(dest ...interface{}) error
}) (*storages.DepositRequest, error) {
	var d storages.DepositRequest
	err := scanner.Scan(
		&d.ID,
		&d.UID,
		&d.Amount,
		&d.FromParty,
		&d.Method,
		&d.Status,
		&d.TransactionID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDeposit создает заявку на пополнение в статусе pending
func (s *PostgresStorage) CreateDeposit(ctx context.Context, deposit *storages.DepositRequest) error {
	query := `
		INSERT INTO deposits (uid, amount, from_party, method, status, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now()
	if deposit.Status == "" {
		deposit.Status = storages.StatusPending
	}
	err := s.db.QueryRowContext(ctx, query,
		deposit.UID,
		deposit.Amount,
		deposit.FromParty,
		deposit.Method,
		deposit.Status,
		deposit.TransactionID,
		now,
		now,
	).Scan(&deposit.ID)

	if err != nil {
		s.logger.Errorf("Failed to create deposit: %v", err)
		return fmt.Errorf("failed to create deposit: %w", err)
	}

	deposit.CreatedAt = now
	deposit.UpdatedAt = now

	s.logger.Infof("Created deposit: ID=%d, UID=%s, amount=%.2f", deposit.ID, deposit.UID, deposit.Amount)
	return nil
}

// GetDeposit возвращает заявку на пополнение по id
func (s *PostgresStorage) GetDeposit(ctx context.Context, depositID int64) (*storages.DepositRequest, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE id = $1`

	deposit, err := scanDeposit(s.db.QueryRowContext(ctx, query, depositID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("deposit %d: %w", depositID, storages.ErrNotFound)
	}
	if err != nil {
		s.logger.Errorf("Failed to get deposit: %v", err)
		return nil, fmt.Errorf("failed to get deposit: %w", err)
	}
	return deposit, nil
}

func (s *PostgresStorage) queryDeposits(ctx context.Context, query string, args ...interface{}) ([]storages.DepositRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("Failed to query deposits: %v", err)
		return nil, fmt.Errorf("failed to query deposits: %w", err)
	}
	defer rows.Close()

	var deposits []storages.DepositRequest
	for rows.Next() {
		deposit, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, *deposit)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deposits: %w", err)
	}

	return deposits, nil
}

// GetUserDeposits возвращает заявки пользователя на пополнение
func (s *PostgresStorage) GetUserDeposits(ctx context.Context, uid string) ([]storages.DepositRequest, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE uid = $1 ORDER BY created_at DESC`
	return s.queryDeposits(ctx, query, uid)
}

// GetAllDeposits возвращает все заявки на пополнение
func (s *PostgresStorage) GetAllDeposits(ctx context.Context) ([]storages.DepositRequest, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits ORDER BY created_at DESC`
	return s.queryDeposits(ctx, query)
}

// ExecuteDepositTransition атомарно переводит заявку на пополнение в новый
// статус: переход проверяется под блокировкой строки, статус транзакции
// заявки синхронизируется в той же единице работы
func (s *PostgresStorage) ExecuteDepositTransition(ctx context.Context, depositID int64, status string) (*storages.DepositRequest, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deposit, err := scanDeposit(tx.QueryRowContext(ctx,
		`SELECT `+depositColumns+` FROM deposits WHERE id = $1 FOR UPDATE`, depositID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("deposit %d: %w", depositID, storages.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit: %w", err)
	}

	if !storages.CanTransitionRequest(deposit.Status, status) {
		return nil, fmt.Errorf("deposit %d is %s: %w", depositID, deposit.Status, storages.ErrInvalidState)
	}

	now := time.Now()

	_, err = tx.ExecContext(ctx, `
		UPDATE deposits
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, status, now, depositID)
	if err != nil {
		return nil, fmt.Errorf("failed to update deposit: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, status, now, deposit.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to sync transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	deposit.Status = status
	deposit.UpdatedAt = now

	s.logger.Infof("Deposit %d transitioned to %s", depositID, status)
	return deposit, nil
}

// ExecuteDepositApproval атомарно одобряет пополнение: кредитует кошелек
// метода и основной баланс, синхронизирует статусы заявки и транзакции
func (s *PostgresStorage) ExecuteDepositApproval(ctx context.Context, depositID int64) (*storages.DepositRequest, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deposit, err := scanDeposit(tx.QueryRowContext(ctx,
		`SELECT `+depositColumns+` FROM deposits WHERE id = $1 FOR UPDATE`, depositID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("deposit %d: %w", depositID, storages.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit: %w", err)
	}

	if !storages.CanTransitionRequest(deposit.Status, storages.StatusApproved) {
		return nil, fmt.Errorf("deposit %d is %s: %w", depositID, deposit.Status, storages.ErrInvalidState)
	}

	now := time.Now()

	// Кредитуем кошелек метода и основной баланс
	for _, wallet := range []string{deposit.Method, storages.WalletPrimary} {
		_, err = tx.ExecContext(ctx, `
			UPDATE wallets
			SET amount = amount + $1, updated_at = $2
			WHERE uid = $3 AND wallet = $4
		`, deposit.Amount, now, deposit.UID, wallet)
		if err != nil {
			return nil, fmt.Errorf("failed to credit wallet %s: %w", wallet, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE deposits
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, storages.StatusApproved, now, depositID)
	if err != nil {
		return nil, fmt.Errorf("failed to update deposit: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, storages.StatusApproved, now, deposit.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to sync transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	deposit.Status = storages.StatusApproved
	deposit.UpdatedAt = now

	s.logger.Infof("Deposit approved: ID=%d, UID=%s, amount=%.2f",
		deposit.ID, deposit.UID, deposit.Amount)

	return deposit, nil
}
