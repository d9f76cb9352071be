package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gw-invest-ledger/internal/storages"
)

// CreateAccount создает новую учетную запись и нулевые кошельки
func (s *PostgresStorage) CreateAccount(ctx context.Context, account *storages.Account) error {
	query := `
		INSERT INTO accounts (uid, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		account.UID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Role,
		now,
		now,
	).Scan(&account.ID)

	if err != nil {
		s.logger.Errorf("Failed to create account: %v", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	account.CreatedAt = now
	account.UpdatedAt = now

	// Создаем начальные кошельки для всех ячеек (0.0)
	for _, wallet := range storages.AllWallets {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO wallets (uid, wallet, amount, created_at, updated_at)
			VALUES ($1, $2, 0, $3, $4)
		`, account.UID, wallet, now, now)
		if err != nil {
			s.logger.Errorf("Failed to create initial wallet %s: %v", wallet, err)
			return fmt.Errorf("failed to create initial wallet: %w", err)
		}
	}

	s.logger.Infof("Created account: %s (ID: %d)", account.UID, account.ID)
	return nil
}

func scanAccount(row *sql.Row) (*storages.Account, error) {
	var account storages.Account
	err := row.Scan(
		&account.ID,
		&account.UID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account: %w", storages.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetAccountByUID возвращает учетную запись по uid
func (s *PostgresStorage) GetAccountByUID(ctx context.Context, uid string) (*storages.Account, error) {
	query := `
		SELECT id, uid, name, email, password_hash, role, created_at, updated_at
		FROM accounts
		WHERE uid = $1
	`
	return scanAccount(s.db.QueryRowContext(ctx, query, uid))
}

// GetAccountByEmail возвращает учетную запись по email
func (s *PostgresStorage) GetAccountByEmail(ctx context.Context, email string) (*storages.Account, error) {
	query := `
		SELECT id, uid, name, email, password_hash, role, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`
	return scanAccount(s.db.QueryRowContext(ctx, query, email))
}

// GetWallet возвращает одну денежную ячейку пользователя
func (s *PostgresStorage) GetWallet(ctx context.Context, uid, wallet string) (*storages.Wallet, error) {
	query := `
		SELECT id, uid, wallet, amount, updated_at, created_at
		FROM wallets
		WHERE uid = $1 AND wallet = $2
	`

	var w storages.Wallet
	err := s.db.QueryRowContext(ctx, query, uid, wallet).Scan(
		&w.ID,
		&w.UID,
		&w.Wallet,
		&w.Amount,
		&w.UpdatedAt,
		&w.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("wallet: %w", storages.ErrNotFound)
	}

	if err != nil {
		s.logger.Errorf("Failed to get wallet: %v", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &w, nil
}

// GetAllWallets возвращает все ячейки пользователя
func (s *PostgresStorage) GetAllWallets(ctx context.Context, uid string) ([]storages.Wallet, error) {
	query := `
		SELECT id, uid, wallet, amount, updated_at, created_at
		FROM wallets
		WHERE uid = $1
		ORDER BY wallet
	`

	rows, err := s.db.QueryContext(ctx, query, uid)
	if err != nil {
		s.logger.Errorf("Failed to query wallets: %v", err)
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []storages.Wallet
	for rows.Next() {
		var w storages.Wallet
		err := rows.Scan(
			&w.ID,
			&w.UID,
			&w.Wallet,
			&w.Amount,
			&w.UpdatedAt,
			&w.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}

	return wallets, nil
}

// ExecuteAdjustment атомарно корректирует одну ячейку кошелька.
// Дебет требует достаточного остатка. Возвращает новое значение ячейки.
func (s *PostgresStorage) ExecuteAdjustment(ctx context.Context, uid, wallet string, amount float64, action string) (float64, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Блокируем строку кошелька
	var current float64
	err = tx.QueryRowContext(ctx, `
		SELECT amount FROM wallets
		WHERE uid = $1 AND wallet = $2
		FOR UPDATE
	`, uid, wallet).Scan(&current)

	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("wallet: %w", storages.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet: %w", err)
	}

	var next float64
	switch action {
	case storages.AdjustCredit:
		next = current + amount
	case storages.AdjustDebit:
		if current < amount {
			return 0, fmt.Errorf("wallet %s: have %.2f, need %.2f: %w",
				wallet, current, amount, storages.ErrInsufficientFunds)
		}
		next = current - amount
	default:
		return 0, fmt.Errorf("action %q: %w", action, storages.ErrValidation)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets
		SET amount = $1, updated_at = $2
		WHERE uid = $3 AND wallet = $4
	`, next, time.Now(), uid, wallet)
	if err != nil {
		return 0, fmt.Errorf("failed to update wallet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Adjustment completed: UID=%s, wallet=%s, %s %.2f -> %.2f",
		uid, wallet, action, amount, next)

	return next, nil
}
