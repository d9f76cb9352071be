package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gw-invest-ledger/internal/storages"
)

// MockStorage мок хранилища в памяти, повторяющий семантику
// postgres реализации
type MockStorage struct {
	accounts    map[string]*storages.Account
	wallets     map[string]map[string]float64
	plans       map[int64]*storages.Plan
	positions   map[int64]*storages.Position
	earnings    []*storages.EarningsRecord
	withdrawals map[int64]*storages.WithdrawalRequest
	deposits    map[int64]*storages.DepositRequest
	txs         map[int64]*storages.Transaction
	accrualRuns map[string]bool
	nextID      int64
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		accounts:    make(map[string]*storages.Account),
		wallets:     make(map[string]map[string]float64),
		plans:       make(map[int64]*storages.Plan),
		positions:   make(map[int64]*storages.Position),
		withdrawals: make(map[int64]*storages.WithdrawalRequest),
		deposits:    make(map[int64]*storages.DepositRequest),
		txs:         make(map[int64]*storages.Transaction),
		accrualRuns: make(map[string]bool),
	}
}

func (m *MockStorage) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MockStorage) CreateAccount(ctx context.Context, account *storages.Account) error {
	account.ID = m.id()
	m.accounts[account.UID] = account

	m.wallets[account.UID] = make(map[string]float64)
	for _, w := range storages.AllWallets {
		m.wallets[account.UID][w] = 0
	}
	return nil
}

func (m *MockStorage) GetAccountByUID(ctx context.Context, uid string) (*storages.Account, error) {
	if account, exists := m.accounts[uid]; exists {
		return account, nil
	}
	return nil, fmt.Errorf("account %s: %w", uid, storages.ErrNotFound)
}

func (m *MockStorage) GetAccountByEmail(ctx context.Context, email string) (*storages.Account, error) {
	for _, account := range m.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, fmt.Errorf("account %s: %w", email, storages.ErrNotFound)
}

func (m *MockStorage) GetWallet(ctx context.Context, uid, wallet string) (*storages.Wallet, error) {
	cells, exists := m.wallets[uid]
	if !exists {
		return nil, storages.ErrNotFound
	}
	amount, exists := cells[wallet]
	if !exists {
		return nil, storages.ErrNotFound
	}
	return &storages.Wallet{UID: uid, Wallet: wallet, Amount: amount}, nil
}

func (m *MockStorage) GetAllWallets(ctx context.Context, uid string) ([]storages.Wallet, error) {
	cells, exists := m.wallets[uid]
	if !exists {
		return nil, storages.ErrNotFound
	}
	var result []storages.Wallet
	for wallet, amount := range cells {
		result = append(result, storages.Wallet{UID: uid, Wallet: wallet, Amount: amount})
	}
	return result, nil
}

func (m *MockStorage) ExecuteAdjustment(ctx context.Context, uid, wallet string, amount float64, action string) (float64, error) {
	cells, exists := m.wallets[uid]
	if !exists {
		return 0, storages.ErrNotFound
	}
	if _, exists := cells[wallet]; !exists {
		return 0, storages.ErrNotFound
	}

	if action == storages.AdjustDebit {
		if cells[wallet] < amount {
			return 0, storages.ErrInsufficientFunds
		}
		cells[wallet] -= amount
	} else {
		cells[wallet] += amount
	}
	return cells[wallet], nil
}

func (m *MockStorage) CreatePlan(ctx context.Context, plan *storages.Plan) error {
	plan.ID = m.id()
	m.plans[plan.ID] = plan
	return nil
}

func (m *MockStorage) GetPlan(ctx context.Context, planID int64) (*storages.Plan, error) {
	if plan, exists := m.plans[planID]; exists {
		return plan, nil
	}
	return nil, fmt.Errorf("plan %d: %w", planID, storages.ErrNotFound)
}

func (m *MockStorage) GetAllPlans(ctx context.Context) ([]storages.Plan, error) {
	var result []storages.Plan
	for _, plan := range m.plans {
		result = append(result, *plan)
	}
	return result, nil
}

func (m *MockStorage) CreatePosition(ctx context.Context, position *storages.Position) error {
	position.ID = m.id()
	if position.Status == "" {
		position.Status = storages.StatusPending
	}
	now := time.Now()
	position.CreatedAt = now
	position.UpdatedAt = now
	m.positions[position.ID] = position
	return nil
}

func (m *MockStorage) GetPosition(ctx context.Context, positionID int64) (*storages.Position, error) {
	if position, exists := m.positions[positionID]; exists {
		copied := *position
		return &copied, nil
	}
	return nil, fmt.Errorf("position %d: %w", positionID, storages.ErrNotFound)
}

func (m *MockStorage) GetPositionsByStatus(ctx context.Context, status string) ([]storages.Position, error) {
	var result []storages.Position
	for _, position := range m.positions {
		if position.Status == status {
			result = append(result, *position)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockStorage) GetUserPositions(ctx context.Context, uid string) ([]storages.Position, error) {
	var result []storages.Position
	for _, position := range m.positions {
		if position.UID == uid {
			result = append(result, *position)
		}
	}
	return result, nil
}

func (m *MockStorage) GetAllPositions(ctx context.Context) ([]storages.Position, error) {
	var result []storages.Position
	for _, position := range m.positions {
		result = append(result, *position)
	}
	return result, nil
}

func (m *MockStorage) ExecutePositionTransition(ctx context.Context, positionID int64, status string) (*storages.Position, error) {
	position, exists := m.positions[positionID]
	if !exists {
		return nil, fmt.Errorf("position %d: %w", positionID, storages.ErrNotFound)
	}
	if !storages.CanTransitionPosition(position.Status, status) {
		return nil, fmt.Errorf("position %d is %s: %w", positionID, position.Status, storages.ErrInvalidState)
	}
	position.Status = status
	position.UpdatedAt = time.Now()
	m.syncPositionTransaction(positionID, status)

	copied := *position
	return &copied, nil
}

func (m *MockStorage) ExecutePositionApproval(ctx context.Context, positionID int64, debitPrincipal bool) (*storages.Position, error) {
	position, exists := m.positions[positionID]
	if !exists {
		return nil, fmt.Errorf("position %d: %w", positionID, storages.ErrNotFound)
	}
	if position.Status != storages.StatusPending {
		return nil, fmt.Errorf("position %d is %s: %w", positionID, position.Status, storages.ErrInvalidState)
	}

	primary := m.wallets[position.UID][storages.WalletPrimary]
	if position.Principal > primary {
		return nil, storages.ErrInsufficientFunds
	}

	if debitPrincipal {
		if m.wallets[position.UID][position.Method] < position.Principal {
			return nil, storages.ErrInsufficientFunds
		}
		m.wallets[position.UID][position.Method] -= position.Principal
		m.wallets[position.UID][storages.WalletPrimary] -= position.Principal
	}

	position.Status = storages.StatusApproved
	position.UpdatedAt = time.Now()

	tx := &storages.Transaction{
		UID:        position.UID,
		Amount:     position.Principal,
		Kind:       storages.TxKindInvestment,
		Status:     storages.StatusApproved,
		PlanID:     position.PlanID,
		PositionID: position.ID,
		Method:     position.Method,
	}
	m.CreateTransaction(ctx, tx)

	copied := *position
	return &copied, nil
}

func (m *MockStorage) ExecutePositionDecline(ctx context.Context, positionID int64) (*storages.Position, error) {
	position, exists := m.positions[positionID]
	if !exists {
		return nil, fmt.Errorf("position %d: %w", positionID, storages.ErrNotFound)
	}
	if !storages.CanTransitionPosition(position.Status, storages.StatusDeclined) {
		return nil, fmt.Errorf("position %d is %s: %w", positionID, position.Status, storages.ErrInvalidState)
	}

	m.wallets[position.UID][position.Method] += position.Principal
	m.wallets[position.UID][storages.WalletPrimary] += position.Principal

	position.Status = storages.StatusDeclined
	position.UpdatedAt = time.Now()

	m.syncPositionTransaction(positionID, storages.StatusDeclined)

	copied := *position
	return &copied, nil
}

func (m *MockStorage) syncPositionTransaction(positionID int64, status string) {
	for _, tx := range m.txs {
		if tx.PositionID == positionID && tx.Kind == storages.TxKindInvestment {
			tx.Status = status
			tx.UpdatedAt = time.Now()
		}
	}
}

func (m *MockStorage) GetUserEarnings(ctx context.Context, uid string) ([]storages.EarningsRecord, error) {
	var result []storages.EarningsRecord
	for _, rec := range m.earnings {
		if rec.UID == uid {
			result = append(result, *rec)
		}
	}
	return result, nil
}

func (m *MockStorage) GetPositionEarnings(ctx context.Context, positionID int64) ([]storages.EarningsRecord, error) {
	var result []storages.EarningsRecord
	for _, rec := range m.earnings {
		if rec.PositionID == positionID {
			result = append(result, *rec)
		}
	}
	return result, nil
}

func (m *MockStorage) GetAllEarnings(ctx context.Context) ([]storages.EarningsRecord, error) {
	var result []storages.EarningsRecord
	for _, rec := range m.earnings {
		result = append(result, *rec)
	}
	return result, nil
}

func (m *MockStorage) consumeEarnings(uid string, amount float64) error {
	var records []storages.EarningsRecord
	for _, rec := range m.earnings {
		if rec.UID == uid {
			records = append(records, *rec)
		}
	}

	touched, err := storages.ConsumeFIFO(records, amount)
	if err != nil {
		return err
	}

	for _, t := range touched {
		for _, rec := range m.earnings {
			if rec.ID == t.ID {
				rec.Amount = t.Amount
			}
		}
	}
	return nil
}

func (m *MockStorage) ExecuteEarningGrant(ctx context.Context, uid string, amount float64, planID, positionID int64) (*storages.EarningsRecord, error) {
	if _, exists := m.wallets[uid]; !exists {
		return nil, storages.ErrNotFound
	}
	m.wallets[uid][storages.WalletPrimary] += amount

	record := &storages.EarningsRecord{
		ID:         m.id(),
		UID:        uid,
		Amount:     amount,
		PlanID:     planID,
		PositionID: positionID,
		CreatedAt:  time.Now(),
	}
	m.earnings = append(m.earnings, record)

	m.CreateTransaction(ctx, &storages.Transaction{
		UID: uid, Amount: amount, Kind: storages.TxKindEarn,
		Status: storages.StatusApproved, PlanID: planID, PositionID: positionID,
	})

	copied := *record
	return &copied, nil
}

func (m *MockStorage) ExecuteEarningDeduction(ctx context.Context, uid string, amount float64, planID, positionID int64) error {
	if _, exists := m.wallets[uid]; !exists {
		return storages.ErrNotFound
	}
	if m.wallets[uid][storages.WalletPrimary] < amount {
		return storages.ErrInsufficientFunds
	}
	if err := m.consumeEarnings(uid, amount); err != nil {
		return err
	}
	m.wallets[uid][storages.WalletPrimary] -= amount

	m.CreateTransaction(ctx, &storages.Transaction{
		UID: uid, Amount: amount, Kind: storages.TxKindDeduct,
		Status: storages.StatusApproved, PlanID: planID, PositionID: positionID,
	})
	return nil
}

func (m *MockStorage) ExecuteAccrual(ctx context.Context, position *storages.Position, amount float64, runDate time.Time) (bool, error) {
	key := fmt.Sprintf("%d/%s", position.ID, runDate.Format("2006-01-02"))
	if m.accrualRuns[key] {
		return false, nil
	}
	m.accrualRuns[key] = true

	m.wallets[position.UID][storages.WalletPrimary] += amount
	m.earnings = append(m.earnings, &storages.EarningsRecord{
		ID:         m.id(),
		UID:        position.UID,
		Amount:     amount,
		PlanID:     position.PlanID,
		PositionID: position.ID,
		CreatedAt:  time.Now(),
	})

	m.CreateTransaction(ctx, &storages.Transaction{
		UID: position.UID, Amount: amount, Kind: storages.TxKindEarn,
		Status: storages.StatusApproved, PlanID: position.PlanID, PositionID: position.ID,
	})
	return true, nil
}

func (m *MockStorage) CreateWithdrawal(ctx context.Context, withdrawal *storages.WithdrawalRequest) error {
	withdrawal.ID = m.id()
	if withdrawal.Status == "" {
		withdrawal.Status = storages.StatusPending
	}
	m.withdrawals[withdrawal.ID] = withdrawal
	return nil
}

func (m *MockStorage) GetWithdrawal(ctx context.Context, withdrawalID int64) (*storages.WithdrawalRequest, error) {
	if withdrawal, exists := m.withdrawals[withdrawalID]; exists {
		copied := *withdrawal
		return &copied, nil
	}
	return nil, fmt.Errorf("withdrawal %d: %w", withdrawalID, storages.ErrNotFound)
}

func (m *MockStorage) GetUserWithdrawals(ctx context.Context, uid string) ([]storages.WithdrawalRequest, error) {
	var result []storages.WithdrawalRequest
	for _, w := range m.withdrawals {
		if w.UID == uid {
			result = append(result, *w)
		}
	}
	return result, nil
}

func (m *MockStorage) GetAllWithdrawals(ctx context.Context) ([]storages.WithdrawalRequest, error) {
	var result []storages.WithdrawalRequest
	for _, w := range m.withdrawals {
		result = append(result, *w)
	}
	return result, nil
}

func (m *MockStorage) ExecuteWithdrawalTransition(ctx context.Context, withdrawalID int64, status string) (*storages.WithdrawalRequest, error) {
	withdrawal, exists := m.withdrawals[withdrawalID]
	if !exists {
		return nil, fmt.Errorf("withdrawal %d: %w", withdrawalID, storages.ErrNotFound)
	}
	if !storages.CanTransitionRequest(withdrawal.Status, status) {
		return nil, fmt.Errorf("withdrawal %d is %s: %w", withdrawalID, withdrawal.Status, storages.ErrInvalidState)
	}
	withdrawal.Status = status
	withdrawal.UpdatedAt = time.Now()
	m.setTransactionStatus(withdrawal.TransactionID, status)

	copied := *withdrawal
	return &copied, nil
}

func (m *MockStorage) ExecuteWithdrawalApproval(ctx context.Context, withdrawalID int64) (*storages.WithdrawalRequest, error) {
	withdrawal, exists := m.withdrawals[withdrawalID]
	if !exists {
		return nil, fmt.Errorf("withdrawal %d: %w", withdrawalID, storages.ErrNotFound)
	}
	if !storages.CanTransitionRequest(withdrawal.Status, storages.StatusApproved) {
		return nil, fmt.Errorf("withdrawal %d is %s: %w", withdrawalID, withdrawal.Status, storages.ErrInvalidState)
	}

	if m.wallets[withdrawal.UID][storages.WalletPrimary] < withdrawal.Amount {
		return nil, storages.ErrInsufficientFunds
	}
	if err := m.consumeEarnings(withdrawal.UID, withdrawal.Amount); err != nil {
		return nil, err
	}
	m.wallets[withdrawal.UID][storages.WalletPrimary] -= withdrawal.Amount

	withdrawal.Status = storages.StatusApproved
	withdrawal.UpdatedAt = time.Now()
	m.setTransactionStatus(withdrawal.TransactionID, storages.StatusApproved)

	copied := *withdrawal
	return &copied, nil
}

func (m *MockStorage) CreateDeposit(ctx context.Context, deposit *storages.DepositRequest) error {
	deposit.ID = m.id()
	if deposit.Status == "" {
		deposit.Status = storages.StatusPending
	}
	m.deposits[deposit.ID] = deposit
	return nil
}

func (m *MockStorage) GetDeposit(ctx context.Context, depositID int64) (*storages.DepositRequest, error) {
	if deposit, exists := m.deposits[depositID]; exists {
		copied := *deposit
		return &copied, nil
	}
	return nil, fmt.Errorf("deposit %d: %w", depositID, storages.ErrNotFound)
}

func (m *MockStorage) GetUserDeposits(ctx context.Context, uid string) ([]storages.DepositRequest, error) {
	var result []storages.DepositRequest
	for _, d := range m.deposits {
		if d.UID == uid {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (m *MockStorage) GetAllDeposits(ctx context.Context) ([]storages.DepositRequest, error) {
	var result []storages.DepositRequest
	for _, d := range m.deposits {
		result = append(result, *d)
	}
	return result, nil
}

func (m *MockStorage) ExecuteDepositTransition(ctx context.Context, depositID int64, status string) (*storages.DepositRequest, error) {
	deposit, exists := m.deposits[depositID]
	if !exists {
		return nil, fmt.Errorf("deposit %d: %w", depositID, storages.ErrNotFound)
	}
	if !storages.CanTransitionRequest(deposit.Status, status) {
		return nil, fmt.Errorf("deposit %d is %s: %w", depositID, deposit.Status, storages.ErrInvalidState)
	}
	deposit.Status = status
	deposit.UpdatedAt = time.Now()
	m.setTransactionStatus(deposit.TransactionID, status)

	copied := *deposit
	return &copied, nil
}

func (m *MockStorage) ExecuteDepositApproval(ctx context.Context, depositID int64) (*storages.DepositRequest, error) {
	deposit, exists := m.deposits[depositID]
	if !exists {
		return nil, fmt.Errorf("deposit %d: %w", depositID, storages.ErrNotFound)
	}
	if !storages.CanTransitionRequest(deposit.Status, storages.StatusApproved) {
		return nil, fmt.Errorf("deposit %d is %s: %w", depositID, deposit.Status, storages.ErrInvalidState)
	}

	m.wallets[deposit.UID][deposit.Method] += deposit.Amount
	m.wallets[deposit.UID][storages.WalletPrimary] += deposit.Amount

	deposit.Status = storages.StatusApproved
	deposit.UpdatedAt = time.Now()
	m.setTransactionStatus(deposit.TransactionID, storages.StatusApproved)

	copied := *deposit
	return &copied, nil
}

func (m *MockStorage) CreateTransaction(ctx context.Context, tx *storages.Transaction) error {
	if !storages.ValidTxKind(tx.Kind) {
		return fmt.Errorf("transaction kind %q: %w", tx.Kind, storages.ErrValidation)
	}
	tx.ID = m.id()
	if tx.Status == "" {
		tx.Status = storages.StatusPending
	}
	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	m.txs[tx.ID] = tx
	return nil
}

func (m *MockStorage) GetTransaction(ctx context.Context, txID int64) (*storages.Transaction, error) {
	if tx, exists := m.txs[txID]; exists {
		copied := *tx
		return &copied, nil
	}
	return nil, fmt.Errorf("transaction %d: %w", txID, storages.ErrNotFound)
}

func (m *MockStorage) GetUserTransactions(ctx context.Context, uid string, limit int) ([]storages.Transaction, error) {
	var result []storages.Transaction
	for _, tx := range m.txs {
		if tx.UID == uid {
			result = append(result, *tx)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockStorage) setTransactionStatus(txID int64, status string) {
	if tx, exists := m.txs[txID]; exists {
		tx.Status = status
		tx.UpdatedAt = time.Now()
	}
}

func (m *MockStorage) GetAuditTrail(ctx context.Context) ([]storages.AuditEntry, error) {
	var entries []storages.AuditEntry
	for _, p := range m.positions {
		entries = append(entries, storages.AuditEntry{
			ID: p.ID, UID: p.UID, Amount: p.Principal,
			Kind: storages.TxKindInvestment, Status: p.Status,
			UpdatedAt: p.UpdatedAt.UnixMilli(), Source: "Position",
		})
	}
	for _, tx := range m.txs {
		entries = append(entries, storages.AuditEntry{
			ID: tx.ID, UID: tx.UID, Amount: tx.Amount,
			Kind: tx.Kind, Status: tx.Status,
			UpdatedAt: tx.UpdatedAt.UnixMilli(), Source: "Transaction",
		})
	}
	for _, w := range m.withdrawals {
		entries = append(entries, storages.AuditEntry{
			ID: w.ID, UID: w.UID, Amount: w.Amount,
			Kind: storages.TxKindWithdrawal, Status: w.Status,
			UpdatedAt: w.UpdatedAt.UnixMilli(), Source: "Withdrawal",
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UpdatedAt > entries[j].UpdatedAt })
	return entries, nil
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }

func (m *MockStorage) Close() error { return nil }
