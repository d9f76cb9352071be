package storages

import "time"

// Account представляет учетную запись инвестора
type Account struct {
	ID           int64     `db:"id"`
	UID          string    `db:"uid"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"` // admin, user
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Wallet представляет одну денежную ячейку пользователя
type Wallet struct {
	ID        int64     `db:"id"`
	UID       string    `db:"uid"`
	Wallet    string    `db:"wallet"`
	Amount    float64   `db:"amount"`
	UpdatedAt time.Time `db:"updated_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Plan представляет инвестиционный план (справочные данные, только чтение)
type Plan struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	ReturnRate   float64   `db:"return_rate"` // процент доходности за весь срок
	DurationDays int       `db:"duration_days"`
	MinAmount    float64   `db:"min_amount"`
	MaxAmount    float64   `db:"max_amount"`
	CreatedAt    time.Time `db:"created_at"`
}

// Position представляет вложение пользователя в план
type Position struct {
	ID           int64     `db:"id"`
	UID          string    `db:"uid"`
	PlanID       int64     `db:"plan_id"`
	PlanName     string    `db:"plan_name"`
	Principal    float64   `db:"principal"`
	ReturnRate   float64   `db:"return_rate"`
	DurationDays int       `db:"duration_days"`
	Method       string    `db:"method"` // BTC, ETH, SOL
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// EarningsRecord представляет одно событие начисления дохода.
// Amount уменьшается при списании и никогда не становится отрицательным.
// Порядок (created_at, id) задает очередность списания (FIFO).
type EarningsRecord struct {
	ID         int64     `db:"id"`
	UID        string    `db:"uid"`
	Amount     float64   `db:"amount"`
	PlanID     int64     `db:"plan_id"`
	PositionID int64     `db:"position_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// WithdrawalRequest представляет заявку на вывод средств
type WithdrawalRequest struct {
	ID            int64     `db:"id"`
	UID           string    `db:"uid"`
	Amount        float64   `db:"amount"`
	Destination   string    `db:"destination"`
	Method        string    `db:"method"`
	Status        string    `db:"status"`
	TransactionID int64     `db:"transaction_id"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// DepositRequest представляет заявку на пополнение
type DepositRequest struct {
	ID            int64     `db:"id"`
	UID           string    `db:"uid"`
	Amount        float64   `db:"amount"`
	FromParty     string    `db:"from_party"`
	Method        string    `db:"method"`
	Status        string    `db:"status"`
	TransactionID int64     `db:"transaction_id"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Transaction представляет запись журнала движения средств.
// Журнал append-only: изменяется только статус, и только пока
// владеющая сущность не достигла терминального состояния.
type Transaction struct {
	ID         int64     `db:"id"`
	UID        string    `db:"uid"`
	Amount     float64   `db:"amount"`
	FromParty  string    `db:"from_party"`
	ToParty    string    `db:"to_party"`
	Kind       string    `db:"kind"`
	Status     string    `db:"status"`
	PlanID     int64     `db:"plan_id"`
	PositionID int64     `db:"position_id"`
	Method     string    `db:"method"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// AuditEntry строка объединенного аудиторского представления
type AuditEntry struct {
	ID        int64   `json:"id"`
	UID       string  `json:"uid"`
	Amount    float64 `json:"amount"`
	Kind      string  `json:"type"`
	Status    string  `json:"status"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
	Source    string  `json:"source"` // Position, Transaction, Withdrawal
}

// Balances представляет все кошельки пользователя
type Balances struct {
	Primary float64 `json:"primary"`
	BTC     float64 `json:"BTC"`
	ETH     float64 `json:"ETH"`
	SOL     float64 `json:"SOL"`
}

// Кошельки
const (
	WalletPrimary = "primary"
	WalletBTC     = "BTC"
	WalletETH     = "ETH"
	WalletSOL     = "SOL"
)

// AssetWallets кошельки, доступные как метод вложения или вывода
var AssetWallets = []string{WalletBTC, WalletETH, WalletSOL}

// AllWallets все денежные ячейки пользователя
var AllWallets = []string{WalletPrimary, WalletBTC, WalletETH, WalletSOL}

// ValidWallet проверяет, что имя кошелька входит в закрытый набор
func ValidWallet(wallet string) bool {
	for _, w := range AllWallets {
		if w == wallet {
			return true
		}
	}
	return false
}

// ValidMethod проверяет метод вложения/вывода
func ValidMethod(method string) bool {
	for _, w := range AssetWallets {
		if w == method {
			return true
		}
	}
	return false
}

// Статусы позиций и заявок
const (
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusProcessing = "processing"
	StatusDeclined   = "declined"
	StatusEnded      = "ended"
)

// Виды транзакций (закрытый набор)
const (
	TxKindDeposit    = "deposit"
	TxKindWithdrawal = "withdrawal"
	TxKindInvestment = "investment"
	TxKindEarn       = "earn"
	TxKindDeduct     = "deduct"
	TxKindAdmin      = "admin"
)

// ValidTxKind проверяет вид транзакции
func ValidTxKind(kind string) bool {
	switch kind {
	case TxKindDeposit, TxKindWithdrawal, TxKindInvestment, TxKindEarn, TxKindDeduct, TxKindAdmin:
		return true
	}
	return false
}

// Действия ручной корректировки кошелька
const (
	AdjustCredit = "credit"
	AdjustDebit  = "debit"
)

// positionTransitions допустимые переходы статуса позиции.
// Терминальные статусы: declined, ended.
var positionTransitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusProcessing, StatusDeclined},
	StatusApproved: {StatusProcessing, StatusEnded},
}

// requestTransitions допустимые переходы статуса заявки (вывод и пополнение).
// Терминальные статусы: approved, declined.
var requestTransitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusApproved, StatusDeclined},
	StatusProcessing: {StatusApproved, StatusDeclined},
}

func canTransition(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionPosition проверяет допустимость перехода статуса позиции
func CanTransitionPosition(from, to string) bool {
	return canTransition(positionTransitions, from, to)
}

// CanTransitionRequest проверяет допустимость перехода статуса заявки
func CanTransitionRequest(from, to string) bool {
	return canTransition(requestTransitions, from, to)
}

// TerminalRequestStatus проверяет, терминален ли статус заявки
func TerminalRequestStatus(status string) bool {
	return status == StatusApproved || status == StatusDeclined
}

// TerminalPositionStatus проверяет, терминален ли статус позиции
func TerminalPositionStatus(status string) bool {
	return status == StatusDeclined || status == StatusEnded
}

// DailyReturn вычисляет дневной доход позиции:
// principal * rate / (100 * durationDays)
func DailyReturn(principal, returnRate float64, durationDays int) float64 {
	if durationDays <= 0 {
		return 0
	}
	return principal * returnRate / (100 * float64(durationDays))
}
