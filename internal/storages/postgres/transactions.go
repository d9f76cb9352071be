package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"gw-invest-ledger/internal/storages"
)

const transactionColumns = `id, uid, amount, from_party, to_party, kind, status, plan_id, position_id, method, created_at, updated_at`

func scanTransaction(scanner interface {
	Scan(dest ...interface{}) error
}) (*storages.Transaction, error) {
	var tx storages.Transaction
	err := scanner.Scan(
		&tx.ID,
		&tx.UID,
		&tx.Amount,
		&tx.FromParty,
		&tx.ToParty,
		&tx.Kind,
		&tx.Status,
		&tx.PlanID,
		&tx.PositionID,
		&tx.Method,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// CreateTransaction добавляет запись в журнал транзакций.
// Вид транзакции валидируется против закрытого набора.
func (s *PostgresStorage) CreateTransaction(ctx context.Context, tx *storages.Transaction) error {
	if !storages.ValidTxKind(tx.Kind) {
		return fmt.Errorf("transaction kind %q: %w", tx.Kind, storages.ErrValidation)
	}

	query := `
		INSERT INTO transactions (uid, amount, from_party, to_party, kind, status, plan_id, position_id, method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	now := time.Now()
	if tx.Status == "" {
		tx.Status = storages.StatusPending
	}
	err := s.db.QueryRowContext(ctx, query,
		tx.UID,
		tx.Amount,
		tx.FromParty,
		tx.ToParty,
		tx.Kind,
		tx.Status,
		tx.PlanID,
		tx.PositionID,
		tx.Method,
		now,
		now,
	).Scan(&tx.ID)

	if err != nil {
		s.logger.Errorf("Failed to create transaction: %v", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	tx.CreatedAt = now
	tx.UpdatedAt = now

	s.logger.Infof("Created transaction: ID=%d, Kind=%s, UID=%s", tx.ID, tx.Kind, tx.UID)
	return nil
}

// GetTransaction возвращает транзакцию по ID
func (s *PostgresStorage) GetTransaction(ctx context.Context, txID int64) (*storages.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, txID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %d: %w", txID, storages.ErrNotFound)
	}
	if err != nil {
		s.logger.Errorf("Failed to get transaction: %v", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// GetUserTransactions возвращает транзакции пользователя
func (s *PostgresStorage) GetUserTransactions(ctx context.Context, uid string, limit int) ([]storages.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE uid = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, uid, limit)
	if err != nil {
		s.logger.Errorf("Failed to query transactions: %v", err)
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []storages.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// GetAuditTrail объединяет позиции, транзакции и заявки на вывод
// в одно представление, отсортированное по времени обновления
// (последние изменения первыми)
func (s *PostgresStorage) GetAuditTrail(ctx context.Context) ([]storages.AuditEntry, error) {
	var entries []storages.AuditEntry

	positions, err := s.GetAllPositions(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range positions {
		entries = append(entries, storages.AuditEntry{
			ID:        p.ID,
			UID:       p.UID,
			Amount:    p.Principal,
			Kind:      storages.TxKindInvestment,
			Status:    p.Status,
			CreatedAt: p.CreatedAt.UnixMilli(),
			UpdatedAt: p.UpdatedAt.UnixMilli(),
			Source:    "Position",
		})
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		entries = append(entries, storages.AuditEntry{
			ID:        tx.ID,
			UID:       tx.UID,
			Amount:    tx.Amount,
			Kind:      tx.Kind,
			Status:    tx.Status,
			CreatedAt: tx.CreatedAt.UnixMilli(),
			UpdatedAt: tx.UpdatedAt.UnixMilli(),
			Source:    "Transaction",
		})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	withdrawals, err := s.GetAllWithdrawals(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range withdrawals {
		entries = append(entries, storages.AuditEntry{
			ID:        w.ID,
			UID:       w.UID,
			Amount:    w.Amount,
			Kind:      storages.TxKindWithdrawal,
			Status:    w.Status,
			CreatedAt: w.CreatedAt.UnixMilli(),
			UpdatedAt: w.UpdatedAt.UnixMilli(),
			Source:    "Withdrawal",
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt > entries[j].UpdatedAt
	})

	return entries, nil
}
