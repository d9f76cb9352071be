package storages

import (
	"context"
	"time"
)

// Storage определяет интерфейс для работы с хранилищем данных.
// Все методы Execute* выполняются как одна атомарная единица
// чтения-изменения-записи (см. postgres реализацию).
type Storage interface {
	// Accounts
	CreateAccount(ctx context.Context, account *Account) error
	GetAccountByUID(ctx context.Context, uid string) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)

	// Wallets
	GetWallet(ctx context.Context, uid, wallet string) (*Wallet, error)
	GetAllWallets(ctx context.Context, uid string) ([]Wallet, error)
	ExecuteAdjustment(ctx context.Context, uid, wallet string, amount float64, action string) (float64, error)

	// Plans
	CreatePlan(ctx context.Context, plan *Plan) error
	GetPlan(ctx context.Context, planID int64) (*Plan, error)
	GetAllPlans(ctx context.Context) ([]Plan, error)

	// Positions
	CreatePosition(ctx context.Context, position *Position) error
	GetPosition(ctx context.Context, positionID int64) (*Position, error)
	GetPositionsByStatus(ctx context.Context, status string) ([]Position, error)
	GetUserPositions(ctx context.Context, uid string) ([]Position, error)
	GetAllPositions(ctx context.Context) ([]Position, error)
	ExecutePositionApproval(ctx context.Context, positionID int64, debitPrincipal bool) (*Position, error)
	ExecutePositionDecline(ctx context.Context, positionID int64) (*Position, error)
	ExecutePositionTransition(ctx context.Context, positionID int64, status string) (*Position, error)

	// Earnings
	GetUserEarnings(ctx context.Context, uid string) ([]EarningsRecord, error)
	GetPositionEarnings(ctx context.Context, positionID int64) ([]EarningsRecord, error)
	GetAllEarnings(ctx context.Context) ([]EarningsRecord, error)
	ExecuteEarningGrant(ctx context.Context, uid string, amount float64, planID, positionID int64) (*EarningsRecord, error)
	ExecuteEarningDeduction(ctx context.Context, uid string, amount float64, planID, positionID int64) error

	// Accrual (планировщик): атомарное начисление дневного дохода.
	// Возвращает false без изменений, если за runDate начисление по позиции
	// уже было выполнено.
	ExecuteAccrual(ctx context.Context, position *Position, amount float64, runDate time.Time) (bool, error)

	// Withdrawals
	CreateWithdrawal(ctx context.Context, withdrawal *WithdrawalRequest) error
	GetWithdrawal(ctx context.Context, withdrawalID int64) (*WithdrawalRequest, error)
	GetUserWithdrawals(ctx context.Context, uid string) ([]WithdrawalRequest, error)
	GetAllWithdrawals(ctx context.Context) ([]WithdrawalRequest, error)
	ExecuteWithdrawalApproval(ctx context.Context, withdrawalID int64) (*WithdrawalRequest, error)
	ExecuteWithdrawalTransition(ctx context.Context, withdrawalID int64, status string) (*WithdrawalRequest, error)

	// Deposits
	CreateDeposit(ctx context.Context, deposit *DepositRequest) error
	GetDeposit(ctx context.Context, depositID int64) (*DepositRequest, error)
	GetUserDeposits(ctx context.Context, uid string) ([]DepositRequest, error)
	GetAllDeposits(ctx context.Context) ([]DepositRequest, error)
	ExecuteDepositApproval(ctx context.Context, depositID int64) (*DepositRequest, error)
	ExecuteDepositTransition(ctx context.Context, depositID int64, status string) (*DepositRequest, error)

	// Transactions. Статус транзакции меняется только вместе
	// со своей заявкой или позицией внутри Execute* операций.
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, txID int64) (*Transaction, error)
	GetUserTransactions(ctx context.Context, uid string, limit int) ([]Transaction, error)
	GetAuditTrail(ctx context.Context) ([]AuditEntry, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}
