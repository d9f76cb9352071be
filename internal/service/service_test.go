package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"gw-invest-ledger/internal/cache"
	"gw-invest-ledger/internal/plans"
	"gw-invest-ledger/internal/storages"
)

func newTestService(storage *MockStorage, debitOnApprove bool) *LedgerService {
	logger := logrus.New()
	catalog := plans.NewStoreCatalog(storage, cache.NewPlansCache(5*time.Minute), logger)
	return NewLedgerService(storage, catalog, nil, debitOnApprove, logger)
}

func registerAccount(t *testing.T, svc *LedgerService) *storages.Account {
	t.Helper()
	account, err := svc.RegisterAccount(context.Background(), "Test Investor", "test@example.com", "password123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return account
}

func TestRegisterAccount(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	if account.UID == "" {
		t.Fatal("Expected a generated uid")
	}
	if account.Role != "user" {
		t.Fatalf("Expected role 'user', got %q", account.Role)
	}

	// Все кошельки создаются с нулевым балансом
	balances, err := svc.Balances(ctx, account.UID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if balances.Primary != 0 || balances.BTC != 0 || balances.ETH != 0 || balances.SOL != 0 {
		t.Fatalf("Expected zero balances, got %+v", balances)
	}

	// Повторная регистрация на ту же почту
	_, err = svc.RegisterAccount(ctx, "Other", "test@example.com", "password456")
	if !errors.Is(err, storages.ErrAlreadyExists) {
		t.Fatalf("Expected ErrAlreadyExists, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	registerAccount(t, svc)

	account, err := svc.Authenticate(ctx, "test@example.com", "password123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if account.Email != "test@example.com" {
		t.Fatalf("Expected email test@example.com, got %s", account.Email)
	}

	if _, err := svc.Authenticate(ctx, "test@example.com", "wrongpassword"); err == nil {
		t.Fatal("Expected error for wrong password")
	}
	if _, err := svc.Authenticate(ctx, "missing@example.com", "password123"); err == nil {
		t.Fatal("Expected error for unknown email")
	}
}

func TestAdjustWallet(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)

	newBalance, err := svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 500, storages.AdjustCredit)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if newBalance != 500 {
		t.Fatalf("Expected balance 500, got %.2f", newBalance)
	}

	newBalance, err = svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 200, storages.AdjustDebit)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if newBalance != 300 {
		t.Fatalf("Expected balance 300, got %.2f", newBalance)
	}

	// Дебет сверх баланса
	if _, err := svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 1000, storages.AdjustDebit); !errors.Is(err, storages.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	// Валидация входа
	if _, err := svc.AdjustWallet(ctx, account.UID, "USD", 10, storages.AdjustCredit); !errors.Is(err, storages.ErrValidation) {
		t.Fatalf("Expected ErrValidation for unknown wallet, got %v", err)
	}
	if _, err := svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, -10, storages.AdjustCredit); !errors.Is(err, storages.ErrValidation) {
		t.Fatalf("Expected ErrValidation for negative amount, got %v", err)
	}
	if _, err := svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 10, "transfer"); !errors.Is(err, storages.ErrValidation) {
		t.Fatalf("Expected ErrValidation for unknown action, got %v", err)
	}

	// Корректировки не попадают в журнал транзакций
	txs, _ := svc.UserTransactions(ctx, account.UID, 100)
	if len(txs) != 0 {
		t.Fatalf("Expected no transactions after adjustments, got %d", len(txs))
	}
}

func TestRequestInvestment(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	plan := &storages.Plan{Name: "Gold", ReturnRate: 30, DurationDays: 30, MinAmount: 100, MaxAmount: 5000}
	storage.CreatePlan(ctx, plan)

	position, err := svc.RequestInvestment(ctx, account.UID, plan.ID, 1000, storages.WalletBTC)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if position.Status != storages.StatusPending {
		t.Fatalf("Expected pending status, got %s", position.Status)
	}
	if position.ReturnRate != 30 || position.DurationDays != 30 {
		t.Fatalf("Expected plan terms copied onto position, got %+v", position)
	}

	// Принципал вне границ плана
	if _, err := svc.RequestInvestment(ctx, account.UID, plan.ID, 50, storages.WalletBTC); !errors.Is(err, storages.ErrValidation) {
		t.Fatalf("Expected ErrValidation below min, got %v", err)
	}
	if _, err := svc.RequestInvestment(ctx, account.UID, plan.ID, 10000, storages.WalletBTC); !errors.Is(err, storages.ErrValidation) {
		t.Fatalf("Expected ErrValidation above max, got %v", err)
	}

	// Неизвестный метод и несуществующий план
	if _, err := svc.RequestInvestment(ctx, account.UID, plan.ID, 1000, "primary"); !errors.Is(err, storages.ErrValidation) {
		t.Fatalf("Expected ErrValidation for method, got %v", err)
	}
	if _, err := svc.RequestInvestment(ctx, account.UID, 999, 1000, storages.WalletBTC); !errors.Is(err, storages.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unknown plan, got %v", err)
	}
}

func TestApprovePosition(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	plan := &storages.Plan{Name: "Gold", ReturnRate: 30, DurationDays: 30, MinAmount: 100, MaxAmount: 5000}
	storage.CreatePlan(ctx, plan)
	svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 2000, storages.AdjustCredit)

	position, err := svc.RequestInvestment(ctx, account.UID, plan.ID, 1000, storages.WalletBTC)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	approval, err := svc.ApprovePosition(ctx, position.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// 1000 по ставке 30% на 30 дней: 10 в день
	if approval.DailyReturn != 10 {
		t.Fatalf("Expected daily return 10, got %.2f", approval.DailyReturn)
	}
	if approval.DurationDays != 30 {
		t.Fatalf("Expected duration 30, got %d", approval.DurationDays)
	}
	if approval.Position.Status != storages.StatusApproved {
		t.Fatalf("Expected approved status, got %s", approval.Position.Status)
	}

	// Политика выключена: баланс не списывается
	balances, _ := svc.Balances(ctx, account.UID)
	if balances.Primary != 2000 {
		t.Fatalf("Expected primary 2000 untouched, got %.2f", balances.Primary)
	}

	// Повторное одобрение
	if _, err := svc.ApprovePosition(ctx, position.ID); !errors.Is(err, storages.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState, got %v", err)
	}
}

func TestApprovePositionInsufficientBalance(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	plan := &storages.Plan{Name: "Gold", ReturnRate: 30, DurationDays: 30, MinAmount: 100, MaxAmount: 5000}
	storage.CreatePlan(ctx, plan)
	svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 500, storages.AdjustCredit)

	position, _ := svc.RequestInvestment(ctx, account.UID, plan.ID, 1000, storages.WalletBTC)

	if _, err := svc.ApprovePosition(ctx, position.ID); !errors.Is(err, storages.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	// Отказ не меняет состояние
	got, _ := storage.GetPosition(ctx, position.ID)
	if got.Status != storages.StatusPending {
		t.Fatalf("Expected position left pending, got %s", got.Status)
	}
}

func TestApprovePositionDebitPolicy(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, true)
	ctx := context.Background()

	account := registerAccount(t, svc)
	plan := &storages.Plan{Name: "Gold", ReturnRate: 30, DurationDays: 30, MinAmount: 100, MaxAmount: 5000}
	storage.CreatePlan(ctx, plan)
	svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 2000, storages.AdjustCredit)
	svc.AdjustWallet(ctx, account.UID, storages.WalletBTC, 1500, storages.AdjustCredit)

	position, _ := svc.RequestInvestment(ctx, account.UID, plan.ID, 1000, storages.WalletBTC)
	if _, err := svc.ApprovePosition(ctx, position.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Политика включена: принципал списан из кошелька метода и основного
	balances, _ := svc.Balances(ctx, account.UID)
	if balances.Primary != 1000 {
		t.Fatalf("Expected primary 1000, got %.2f", balances.Primary)
	}
	if balances.BTC != 500 {
		t.Fatalf("Expected BTC 500, got %.2f", balances.BTC)
	}
}

func TestDeclinePositionRefunds(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	plan := &storages.Plan{Name: "Gold", ReturnRate: 30, DurationDays: 30, MinAmount: 100, MaxAmount: 5000}
	storage.CreatePlan(ctx, plan)

	position, _ := svc.RequestInvestment(ctx, account.UID, plan.ID, 1000, storages.WalletETH)

	declined, err := svc.DeclinePosition(ctx, position.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if declined.Status != storages.StatusDeclined {
		t.Fatalf("Expected declined status, got %s", declined.Status)
	}

	// Принципал возвращается в кошелек метода и основной баланс
	balances, _ := svc.Balances(ctx, account.UID)
	if balances.ETH != 1000 || balances.Primary != 1000 {
		t.Fatalf("Expected refund to ETH and primary, got %+v", balances)
	}

	// Терминальный статус не покидается
	if _, err := svc.DeclinePosition(ctx, position.ID); !errors.Is(err, storages.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState, got %v", err)
	}
	if _, err := svc.EndPosition(ctx, position.ID); !errors.Is(err, storages.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState, got %v", err)
	}
}

func TestEndPosition(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	plan := &storages.Plan{Name: "Gold", ReturnRate: 30, DurationDays: 30, MinAmount: 100, MaxAmount: 5000}
	storage.CreatePlan(ctx, plan)
	svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 2000, storages.AdjustCredit)

	position, _ := svc.RequestInvestment(ctx, account.UID, plan.ID, 1000, storages.WalletBTC)

	// Завершать можно только одобренную позицию
	if _, err := svc.EndPosition(ctx, position.ID); !errors.Is(err, storages.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState for pending position, got %v", err)
	}

	svc.ApprovePosition(ctx, position.ID)

	ended, err := svc.EndPosition(ctx, position.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ended.Status != storages.StatusEnded {
		t.Fatalf("Expected ended status, got %s", ended.Status)
	}
}

func TestWithdrawalApproval(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 100, storages.AdjustCredit)
	svc.GrantEarning(ctx, account.UID, 10, 0, 0)
	svc.GrantEarning(ctx, account.UID, 5, 0, 0)
	svc.GrantEarning(ctx, account.UID, 8, 0, 0)
	// Баланс: 100 + 23 начисленных = 123, доход = 23

	withdrawal, err := svc.RequestWithdrawal(ctx, account.UID, 12, "bc1qaddr", storages.WalletBTC)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if withdrawal.Status != storages.StatusPending {
		t.Fatalf("Expected pending status, got %s", withdrawal.Status)
	}
	if withdrawal.TransactionID == 0 {
		t.Fatal("Expected a linked transaction")
	}

	approved, err := svc.ApproveWithdrawal(ctx, withdrawal.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if approved.Status != storages.StatusApproved {
		t.Fatalf("Expected approved status, got %s", approved.Status)
	}

	// Баланс списан
	balances, _ := svc.Balances(ctx, account.UID)
	if balances.Primary != 111 {
		t.Fatalf("Expected primary 111, got %.2f", balances.Primary)
	}

	// Доход списан FIFO: [10, 5, 8] - 12 = [0, 3, 8]
	records, _ := svc.Earnings(ctx, account.UID)
	if len(records) != 3 {
		t.Fatalf("Expected 3 earnings records, got %d", len(records))
	}
	if records[0].Amount != 0 || records[1].Amount != 3 || records[2].Amount != 8 {
		t.Fatalf("Expected FIFO drawdown [0, 3, 8], got [%.2f, %.2f, %.2f]",
			records[0].Amount, records[1].Amount, records[2].Amount)
	}

	// Связанная транзакция синхронизирована
	tx, _ := storage.GetTransaction(ctx, withdrawal.TransactionID)
	if tx.Status != storages.StatusApproved {
		t.Fatalf("Expected transaction approved, got %s", tx.Status)
	}

	// Повторное одобрение терминальной заявки
	if _, err := svc.ApproveWithdrawal(ctx, withdrawal.ID); !errors.Is(err, storages.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState, got %v", err)
	}
}

func TestWithdrawalApprovalInsufficientEarnings(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 1000, storages.AdjustCredit)
	svc.GrantEarning(ctx, account.UID, 5, 0, 0)

	withdrawal, _ := svc.RequestWithdrawal(ctx, account.UID, 50, "bc1qaddr", storages.WalletBTC)

	// Баланса хватает, дохода нет
	if _, err := svc.ApproveWithdrawal(ctx, withdrawal.ID); !errors.Is(err, storages.ErrInsufficientEarnings) {
		t.Fatalf("Expected ErrInsufficientEarnings, got %v", err)
	}

	// Отказ ничего не меняет
	balances, _ := svc.Balances(ctx, account.UID)
	if balances.Primary != 1005 {
		t.Fatalf("Expected primary 1005 untouched, got %.2f", balances.Primary)
	}
	records, _ := svc.Earnings(ctx, account.UID)
	if records[0].Amount != 5 {
		t.Fatalf("Expected earnings untouched, got %.2f", records[0].Amount)
	}
	got, _ := storage.GetWithdrawal(ctx, withdrawal.ID)
	if got.Status != storages.StatusPending {
		t.Fatalf("Expected withdrawal left pending, got %s", got.Status)
	}
}

func TestWithdrawalApprovalInsufficientBalance(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	svc.GrantEarning(ctx, account.UID, 50, 0, 0)
	svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 40, storages.AdjustDebit)
	// Доход 50, но баланс только 10

	withdrawal, _ := svc.RequestWithdrawal(ctx, account.UID, 30, "bc1qaddr", storages.WalletBTC)

	if _, err := svc.ApproveWithdrawal(ctx, withdrawal.ID); !errors.Is(err, storages.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}
}

func TestWithdrawalDeclineAndProcess(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 100, storages.AdjustCredit)

	withdrawal, _ := svc.RequestWithdrawal(ctx, account.UID, 50, "bc1qaddr", storages.WalletBTC)

	processed, err := svc.ProcessWithdrawal(ctx, withdrawal.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if processed.Status != storages.StatusProcessing {
		t.Fatalf("Expected processing status, got %s", processed.Status)
	}

	declined, err := svc.DeclineWithdrawal(ctx, withdrawal.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if declined.Status != storages.StatusDeclined {
		t.Fatalf("Expected declined status, got %s", declined.Status)
	}

	// Отклонение не двигает средства
	balances, _ := svc.Balances(ctx, account.UID)
	if balances.Primary != 100 {
		t.Fatalf("Expected primary 100 untouched, got %.2f", balances.Primary)
	}

	// Из терминального статуса пути нет
	if _, err := svc.ProcessWithdrawal(ctx, withdrawal.ID); !errors.Is(err, storages.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState, got %v", err)
	}
}

func TestDepositFlow(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)

	deposit, err := svc.RequestDeposit(ctx, account.UID, 250, "external-exchange", storages.WalletSOL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if deposit.Status != storages.StatusPending {
		t.Fatalf("Expected pending status, got %s", deposit.Status)
	}

	approved, err := svc.ApproveDeposit(ctx, deposit.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if approved.Status != storages.StatusApproved {
		t.Fatalf("Expected approved status, got %s", approved.Status)
	}

	// Кредитуются кошелек метода и основной баланс
	balances, _ := svc.Balances(ctx, account.UID)
	if balances.SOL != 250 || balances.Primary != 250 {
		t.Fatalf("Expected SOL and primary credited 250, got %+v", balances)
	}

	tx, _ := storage.GetTransaction(ctx, deposit.TransactionID)
	if tx.Status != storages.StatusApproved {
		t.Fatalf("Expected transaction approved, got %s", tx.Status)
	}
}

func TestGrantAndDeductEarning(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)

	record, err := svc.GrantEarning(ctx, account.UID, 100, 1, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if record.Amount != 100 {
		t.Fatalf("Expected earning amount 100, got %.2f", record.Amount)
	}

	total, _ := svc.TotalEarnings(ctx, account.UID)
	if total != 100 {
		t.Fatalf("Expected total earnings 100, got %.2f", total)
	}

	if err := svc.DeductEarning(ctx, account.UID, 40, 1, 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	balances, _ := svc.Balances(ctx, account.UID)
	if balances.Primary != 60 {
		t.Fatalf("Expected primary 60, got %.2f", balances.Primary)
	}
	total, _ = svc.TotalEarnings(ctx, account.UID)
	if total != 60 {
		t.Fatalf("Expected total earnings 60, got %.2f", total)
	}

	// Удержание сверх дохода
	if err := svc.DeductEarning(ctx, account.UID, 500, 1, 1); !errors.Is(err, storages.ErrInsufficientFunds) && !errors.Is(err, storages.ErrInsufficientEarnings) {
		t.Fatalf("Expected insufficiency error, got %v", err)
	}

	// Валидация суммы
	if _, err := svc.GrantEarning(ctx, account.UID, -5, 0, 0); !errors.Is(err, storages.ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}
	if err := svc.DeductEarning(ctx, account.UID, 0, 0, 0); !errors.Is(err, storages.ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}
}

func TestUserPositionsViews(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	plan := &storages.Plan{Name: "Gold", ReturnRate: 30, DurationDays: 30, MinAmount: 100, MaxAmount: 5000}
	storage.CreatePlan(ctx, plan)
	svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 2000, storages.AdjustCredit)

	position, _ := svc.RequestInvestment(ctx, account.UID, plan.ID, 1000, storages.WalletBTC)
	svc.ApprovePosition(ctx, position.ID)
	svc.GrantEarning(ctx, account.UID, 10, plan.ID, position.ID)
	svc.GrantEarning(ctx, account.UID, 10, plan.ID, position.ID)

	views, err := svc.UserPositions(ctx, account.UID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("Expected 1 position view, got %d", len(views))
	}
	if views[0].TotalEarnings != 20 {
		t.Fatalf("Expected total earnings 20, got %.2f", views[0].TotalEarnings)
	}
	if views[0].DailyReturn != 10 {
		t.Fatalf("Expected daily return 10, got %.2f", views[0].DailyReturn)
	}
}

func TestDeclinedWithdrawalStaysDeclined(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 100, storages.AdjustCredit)
	svc.GrantEarning(ctx, account.UID, 50, 0, 0)
	// Баланс: 100 + 50 = 150

	withdrawal, _ := svc.RequestWithdrawal(ctx, account.UID, 30, "bc1qaddr", storages.WalletBTC)

	if _, err := svc.DeclineWithdrawal(ctx, withdrawal.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Запоздавший перевод в processing упирается в проверку перехода
	// под блокировкой в хранилище
	if _, err := storage.ExecuteWithdrawalTransition(ctx, withdrawal.ID, storages.StatusProcessing); !errors.Is(err, storages.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState, got %v", err)
	}

	got, _ := storage.GetWithdrawal(ctx, withdrawal.ID)
	if got.Status != storages.StatusDeclined {
		t.Fatalf("Expected withdrawal to stay declined, got %s", got.Status)
	}

	// Из declined нет пути к approved, средства не двигаются
	if _, err := svc.ApproveWithdrawal(ctx, withdrawal.ID); !errors.Is(err, storages.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState, got %v", err)
	}
	balances, _ := svc.Balances(ctx, account.UID)
	if balances.Primary != 150 {
		t.Fatalf("Expected primary 150 untouched, got %.2f", balances.Primary)
	}

	// Транзакция заявки синхронизирована с отклонением
	tx, _ := storage.GetTransaction(ctx, withdrawal.TransactionID)
	if tx.Status != storages.StatusDeclined {
		t.Fatalf("Expected transaction declined, got %s", tx.Status)
	}
}

func TestTerminalPositionStaysTerminal(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	plan := &storages.Plan{Name: "Gold", ReturnRate: 30, DurationDays: 30, MinAmount: 100, MaxAmount: 5000}
	storage.CreatePlan(ctx, plan)
	svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 2000, storages.AdjustCredit)

	position, _ := svc.RequestInvestment(ctx, account.UID, plan.ID, 1000, storages.WalletBTC)
	svc.ApprovePosition(ctx, position.ID)
	svc.EndPosition(ctx, position.ID)

	// Завершенная позиция не покидает свой статус даже при прямом
	// переводе на уровне хранилища
	if _, err := storage.ExecutePositionTransition(ctx, position.ID, storages.StatusProcessing); !errors.Is(err, storages.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState, got %v", err)
	}
	got, _ := storage.GetPosition(ctx, position.ID)
	if got.Status != storages.StatusEnded {
		t.Fatalf("Expected position to stay ended, got %s", got.Status)
	}
}

func TestProcessPositionSyncsTransaction(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, false)
	ctx := context.Background()

	account := registerAccount(t, svc)
	plan := &storages.Plan{Name: "Gold", ReturnRate: 30, DurationDays: 30, MinAmount: 100, MaxAmount: 5000}
	storage.CreatePlan(ctx, plan)
	svc.AdjustWallet(ctx, account.UID, storages.WalletPrimary, 2000, storages.AdjustCredit)

	position, _ := svc.RequestInvestment(ctx, account.UID, plan.ID, 1000, storages.WalletBTC)
	svc.ApprovePosition(ctx, position.ID)

	processed, err := svc.ProcessPosition(ctx, position.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if processed.Status != storages.StatusProcessing {
		t.Fatalf("Expected processing status, got %s", processed.Status)
	}

	// Транзакция позиции переведена вместе с ней
	txs, _ := storage.GetUserTransactions(ctx, account.UID, 100)
	var found bool
	for _, tx := range txs {
		if tx.PositionID == position.ID && tx.Kind == storages.TxKindInvestment {
			found = true
			if tx.Status != storages.StatusProcessing {
				t.Fatalf("Expected transaction processing, got %s", tx.Status)
			}
		}
	}
	if !found {
		t.Fatal("Expected an investment transaction for the position")
	}
}
