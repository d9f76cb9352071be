package service

import (
	"context"
	"fmt"

	"gw-invest-ledger/internal/storages"
)

// GrantEarning начисляет доход вручную: запись дохода, кредит основного
// баланса и транзакция вида earn создаются атомарно
func (s *LedgerService) GrantEarning(ctx context.Context, uid string, amount float64, planID, positionID int64) (*storages.EarningsRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", storages.ErrValidation)
	}

	record, err := s.storage.ExecuteEarningGrant(ctx, uid, amount, planID, positionID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, uid, "Earning credited",
		fmt.Sprintf("An earning of %.2f was credited to your balance.", amount))

	return record, nil
}

// DeductEarning удерживает доход вручную: дебет основного баланса
// и списание записей дохода FIFO. Записи дохода не уходят в минус.
func (s *LedgerService) DeductEarning(ctx context.Context, uid string, amount float64, planID, positionID int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive: %w", storages.ErrValidation)
	}

	if err := s.storage.ExecuteEarningDeduction(ctx, uid, amount, planID, positionID); err != nil {
		return err
	}

	s.notify(ctx, uid, "Earning deducted",
		fmt.Sprintf("An earning deduction of %.2f was applied to your balance.", amount))

	return nil
}

// Earnings возвращает записи дохода пользователя в порядке списания
func (s *LedgerService) Earnings(ctx context.Context, uid string) ([]storages.EarningsRecord, error) {
	return s.storage.GetUserEarnings(ctx, uid)
}

// AllEarnings возвращает все записи дохода
func (s *LedgerService) AllEarnings(ctx context.Context) ([]storages.EarningsRecord, error) {
	return s.storage.GetAllEarnings(ctx)
}

// TotalEarnings возвращает суммарный доступный доход пользователя
func (s *LedgerService) TotalEarnings(ctx context.Context, uid string) (float64, error) {
	records, err := s.storage.GetUserEarnings(ctx, uid)
	if err != nil {
		return 0, err
	}
	return storages.TotalEarnings(records), nil
}
