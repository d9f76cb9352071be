package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gw-invest-ledger/internal/storages"
	"gw-invest-ledger/pkg"
)

// RegisterAccount регистрирует нового инвестора и создает его кошельки
func (s *LedgerService) RegisterAccount(ctx context.Context, name, email, password string) (*storages.Account, error) {
	if err := pkg.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%v: %w", err, storages.ErrValidation)
	}

	// Проверяем, не занята ли почта
	existing, _ := s.storage.GetAccountByEmail(ctx, email)
	if existing != nil {
		return nil, fmt.Errorf("email already exists: %w", storages.ErrAlreadyExists)
	}

	// Хешируем пароль
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Errorf("Failed to hash password: %v", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &storages.Account{
		UID:          uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         "user",
	}

	if err := s.storage.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Infof("Account registered successfully: %s", account.UID)
	return account, nil
}

// Authenticate аутентифицирует пользователя по почте и паролю
func (s *LedgerService) Authenticate(ctx context.Context, email, password string) (*storages.Account, error) {
	account, err := s.storage.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	// Проверяем пароль
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.logger.Warnf("Failed authentication attempt for: %s", email)
		return nil, fmt.Errorf("invalid email or password")
	}

	s.logger.Infof("Account authenticated successfully: %s", account.UID)
	return account, nil
}

// Balances возвращает все кошельки пользователя
func (s *LedgerService) Balances(ctx context.Context, uid string) (*storages.Balances, error) {
	wallets, err := s.storage.GetAllWallets(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallets: %w", err)
	}

	balances := &storages.Balances{}
	for _, w := range wallets {
		switch w.Wallet {
		case storages.WalletPrimary:
			balances.Primary = w.Amount
		case storages.WalletBTC:
			balances.BTC = w.Amount
		case storages.WalletETH:
			balances.ETH = w.Amount
		case storages.WalletSOL:
			balances.SOL = w.Amount
		}
	}

	return balances, nil
}

// AdjustWallet выполняет ручную корректировку кошелька администратором.
// Запись в журнал транзакций не создается.
func (s *LedgerService) AdjustWallet(ctx context.Context, uid, wallet string, amount float64, action string) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive: %w", storages.ErrValidation)
	}

	if !storages.ValidWallet(wallet) {
		return 0, fmt.Errorf("unknown wallet %q: %w", wallet, storages.ErrValidation)
	}

	if action != storages.AdjustCredit && action != storages.AdjustDebit {
		return 0, fmt.Errorf("unknown action %q: %w", action, storages.ErrValidation)
	}

	newBalance, err := s.storage.ExecuteAdjustment(ctx, uid, wallet, amount, action)
	if err != nil {
		return 0, err
	}

	s.logger.Infof("Wallet adjusted: UID=%s, wallet=%s, action=%s, amount=%.2f",
		uid, wallet, action, amount)

	return newBalance, nil
}
