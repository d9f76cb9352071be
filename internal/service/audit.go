package service

import (
	"context"

	"gw-invest-ledger/internal/storages"
)

// UserTransactions возвращает журнал транзакций пользователя
func (s *LedgerService) UserTransactions(ctx context.Context, uid string, limit int) ([]storages.Transaction, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return s.storage.GetUserTransactions(ctx, uid, limit)
}

// AuditTrail возвращает объединенное аудиторское представление:
// позиции, транзакции и заявки на вывод, последние изменения первыми
func (s *LedgerService) AuditTrail(ctx context.Context) ([]storages.AuditEntry, error) {
	return s.storage.GetAuditTrail(ctx)
}
