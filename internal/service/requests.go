package service

import (
	"context"
	"fmt"

	"gw-invest-ledger/internal/storages"
	"gw-invest-ledger/pkg"
)

// RequestWithdrawal создает заявку на вывод средств вместе со связанной
// транзакцией журнала в статусе pending. Средства не двигаются до одобрения.
func (s *LedgerService) RequestWithdrawal(ctx context.Context, uid string, amount float64, destination, method string) (*storages.WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", storages.ErrValidation)
	}

	method = pkg.NormalizeMethod(method)
	if !storages.ValidMethod(method) {
		return nil, fmt.Errorf("unknown method %q: %w", method, storages.ErrValidation)
	}

	tx := &storages.Transaction{
		UID:       uid,
		Amount:    amount,
		FromParty: uid,
		ToParty:   destination,
		Kind:      storages.TxKindWithdrawal,
		Status:    storages.StatusPending,
		Method:    method,
	}
	if err := s.storage.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	withdrawal := &storages.WithdrawalRequest{
		UID:           uid,
		Amount:        amount,
		Destination:   destination,
		Method:        method,
		Status:        storages.StatusPending,
		TransactionID: tx.ID,
	}
	if err := s.storage.CreateWithdrawal(ctx, withdrawal); err != nil {
		return nil, err
	}

	s.notify(ctx, uid, "Withdrawal request received",
		fmt.Sprintf("Your withdrawal of %.2f is pending review.", amount))

	return withdrawal, nil
}

// ApproveWithdrawal одобряет вывод средств: списание баланса
// и потребление записей дохода выполняются атомарно в хранилище
func (s *LedgerService) ApproveWithdrawal(ctx context.Context, withdrawalID int64) (*storages.WithdrawalRequest, error) {
	withdrawal, err := s.storage.ExecuteWithdrawalApproval(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, withdrawal.UID, "Withdrawal approved",
		fmt.Sprintf("Your withdrawal of %.2f was approved and sent to %s.", withdrawal.Amount, withdrawal.Destination))

	return withdrawal, nil
}

// ProcessWithdrawal переводит заявку на вывод в статус processing.
// Переход проверяется атомарно в хранилище, поэтому конкурирующее
// отклонение не может быть перезаписано.
func (s *LedgerService) ProcessWithdrawal(ctx context.Context, withdrawalID int64) (*storages.WithdrawalRequest, error) {
	withdrawal, err := s.storage.ExecuteWithdrawalTransition(ctx, withdrawalID, storages.StatusProcessing)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, withdrawal.UID, "Withdrawal processing",
		fmt.Sprintf("Your withdrawal of %.2f is being processed.", withdrawal.Amount))

	return withdrawal, nil
}

// DeclineWithdrawal отклоняет заявку на вывод. Средства не двигались,
// поэтому возврат не требуется.
func (s *LedgerService) DeclineWithdrawal(ctx context.Context, withdrawalID int64) (*storages.WithdrawalRequest, error) {
	withdrawal, err := s.storage.ExecuteWithdrawalTransition(ctx, withdrawalID, storages.StatusDeclined)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, withdrawal.UID, "Withdrawal declined",
		fmt.Sprintf("Your withdrawal of %.2f was declined.", withdrawal.Amount))

	return withdrawal, nil
}

// UserWithdrawals возвращает заявки пользователя на вывод
func (s *LedgerService) UserWithdrawals(ctx context.Context, uid string) ([]storages.WithdrawalRequest, error) {
	return s.storage.GetUserWithdrawals(ctx, uid)
}

// AllWithdrawals возвращает все заявки на вывод
func (s *LedgerService) AllWithdrawals(ctx context.Context) ([]storages.WithdrawalRequest, error) {
	return s.storage.GetAllWithdrawals(ctx)
}

// RequestDeposit создает заявку на пополнение вместе со связанной
// транзакцией журнала в статусе pending
func (s *LedgerService) RequestDeposit(ctx context.Context, uid string, amount float64, fromParty, method string) (*storages.DepositRequest, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", storages.ErrValidation)
	}

	method = pkg.NormalizeMethod(method)
	if !storages.ValidMethod(method) {
		return nil, fmt.Errorf("unknown method %q: %w", method, storages.ErrValidation)
	}

	tx := &storages.Transaction{
		UID:       uid,
		Amount:    amount,
		FromParty: fromParty,
		ToParty:   uid,
		Kind:      storages.TxKindDeposit,
		Status:    storages.StatusPending,
		Method:    method,
	}
	if err := s.storage.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	deposit := &storages.DepositRequest{
		UID:           uid,
		Amount:        amount,
		FromParty:     fromParty,
		Method:        method,
		Status:        storages.StatusPending,
		TransactionID: tx.ID,
	}
	if err := s.storage.CreateDeposit(ctx, deposit); err != nil {
		return nil, err
	}

	s.notify(ctx, uid, "Deposit request received",
		fmt.Sprintf("Your deposit of %.2f is pending review.", amount))

	return deposit, nil
}

// ApproveDeposit одобряет пополнение: кредит кошелька метода
// и основного баланса выполняется атомарно в хранилище
func (s *LedgerService) ApproveDeposit(ctx context.Context, depositID int64) (*storages.DepositRequest, error) {
	deposit, err := s.storage.ExecuteDepositApproval(ctx, depositID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, deposit.UID, "Deposit approved",
		fmt.Sprintf("Your deposit of %.2f was approved and credited.", deposit.Amount))

	return deposit, nil
}

// ProcessDeposit переводит заявку на пополнение в статус processing
func (s *LedgerService) ProcessDeposit(ctx context.Context, depositID int64) (*storages.DepositRequest, error) {
	deposit, err := s.storage.ExecuteDepositTransition(ctx, depositID, storages.StatusProcessing)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, deposit.UID, "Deposit processing",
		fmt.Sprintf("Your deposit of %.2f is being processed.", deposit.Amount))

	return deposit, nil
}

// DeclineDeposit отклоняет заявку на пополнение
func (s *LedgerService) DeclineDeposit(ctx context.Context, depositID int64) (*storages.DepositRequest, error) {
	deposit, err := s.storage.ExecuteDepositTransition(ctx, depositID, storages.StatusDeclined)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, deposit.UID, "Deposit declined",
		fmt.Sprintf("Your deposit of %.2f was declined.", deposit.Amount))

	return deposit, nil
}

// UserDeposits возвращает заявки пользователя на пополнение
func (s *LedgerService) UserDeposits(ctx context.Context, uid string) ([]storages.DepositRequest, error) {
	return s.storage.GetUserDeposits(ctx, uid)
}

// AllDeposits возвращает все заявки на пополнение
func (s *LedgerService) AllDeposits(ctx context.Context) ([]storages.DepositRequest, error) {
	return s.storage.GetAllDeposits(ctx)
}
