package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"gw-invest-ledger/internal/plans"
	"gw-invest-ledger/internal/storages"
)

// Notifier отправляет квитанции о событиях учета.
// Отправка выполняется по принципу best-effort и никогда
// не откатывает учетную операцию.
type Notifier interface {
	SendReceipt(ctx context.Context, recipientEmail, subject, content string) error
}

// LedgerService сервисный слой для бизнес-логики учета
type LedgerService struct {
	storage        storages.Storage
	catalog        plans.Catalog
	notifier       Notifier
	debitOnApprove bool
	logger         *logrus.Logger
}

// NewLedgerService создает новый экземпляр сервиса
func NewLedgerService(
	storage storages.Storage,
	catalog plans.Catalog,
	notifier Notifier,
	debitOnApprove bool,
	logger *logrus.Logger,
) *LedgerService {
	return &LedgerService{
		storage:        storage,
		catalog:        catalog,
		notifier:       notifier,
		debitOnApprove: debitOnApprove,
		logger:         logger,
	}
}

// notify отправляет квитанцию пользователю best-effort:
// сбой поиска адреса или отправки только логируется
func (s *LedgerService) notify(ctx context.Context, uid, subject, content string) {
	if s.notifier == nil {
		return
	}

	account, err := s.storage.GetAccountByUID(ctx, uid)
	if err != nil {
		s.logger.Warnf("Failed to resolve receipt recipient %s: %v", uid, err)
		return
	}

	if err := s.notifier.SendReceipt(ctx, account.Email, subject, content); err != nil {
		s.logger.Warnf("Failed to send receipt: %v", err)
	}
}
