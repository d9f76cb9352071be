package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"gw-invest-ledger/internal/logger"
	"gw-invest-ledger/internal/plans"
	"gw-invest-ledger/internal/storages"
)

// Notifier отправляет квитанции о начислениях (best-effort)
type Notifier interface {
	SendReceipt(ctx context.Context, recipientEmail, subject, content string) error
}

// Store часть хранилища, нужная планировщику
type Store interface {
	GetPositionsByStatus(ctx context.Context, status string) ([]storages.Position, error)
	GetAccountByUID(ctx context.Context, uid string) (*storages.Account, error)
	ExecuteAccrual(ctx context.Context, position *storages.Position, amount float64, runDate time.Time) (bool, error)
}

// Accrual фоновый планировщик ежедневных начислений дохода.
// Планировщик никогда не завершает позиции: это делает администратор.
type Accrual struct {
	storage  Store
	catalog  plans.Catalog
	notifier Notifier
	interval time.Duration
	logger   *logrus.Entry

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// New создает планировщик начислений
func New(storage Store, catalog plans.Catalog, notifier Notifier, interval time.Duration, log *logrus.Logger) *Accrual {
	return &Accrual{
		storage:  storage,
		catalog:  catalog,
		notifier: notifier,
		interval: interval,
		logger:   logger.ForComponent(log, "accrual"),
		stop:     make(chan struct{}),
	}
}

// Start запускает фоновый цикл начислений
func (a *Accrual) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()

		a.logger.Infof("Accrual scheduler started, interval %s", a.interval)

		for {
			select {
			case <-ticker.C:
				if _, err := a.RunOnce(ctx, time.Now()); err != nil {
					a.logger.Errorf("Accrual run failed: %v", err)
				}
			case <-a.stop:
				a.logger.Info("Accrual scheduler stopped")
				return
			case <-ctx.Done():
				a.logger.Info("Accrual scheduler context canceled")
				return
			}
		}
	}()
}

// Stop останавливает планировщик и дожидается завершения цикла
func (a *Accrual) Stop() {
	a.once.Do(func() { close(a.stop) })
	a.wg.Wait()
}

// RunOnce выполняет один проход начислений по всем одобренным позициям.
// Ошибка по одной позиции не прерывает проход. Возвращает число
// выполненных начислений.
func (a *Accrual) RunOnce(ctx context.Context, now time.Time) (int, error) {
	positions, err := a.storage.GetPositionsByStatus(ctx, storages.StatusApproved)
	if err != nil {
		return 0, fmt.Errorf("failed to load approved positions: %w", err)
	}

	credited := 0
	for i := range positions {
		position := &positions[i]

		ok, err := a.accruePosition(ctx, position, now)
		if err != nil {
			a.logger.Errorf("Accrual failed for position %d: %v", position.ID, err)
			continue
		}
		if ok {
			credited++
		}
	}

	a.logger.Infof("Accrual run complete: %d of %d positions credited", credited, len(positions))
	return credited, nil
}

func (a *Accrual) accruePosition(ctx context.Context, position *storages.Position, now time.Time) (bool, error) {
	// Позиция без плана пропускается, проход продолжается
	plan, err := a.catalog.Plan(ctx, position.PlanID)
	if err != nil {
		a.logger.Warnf("Skipping position %d: plan %d not found", position.ID, position.PlanID)
		return false, nil
	}

	// Начисления идут только внутри срока плана
	elapsedDays := int(now.Sub(position.CreatedAt).Hours() / 24)
	if elapsedDays >= plan.DurationDays {
		a.logger.Debugf("Position %d has run its term (%d days), skipping", position.ID, plan.DurationDays)
		return false, nil
	}

	amount := storages.DailyReturn(position.Principal, plan.ReturnRate, plan.DurationDays)
	if amount <= 0 {
		return false, nil
	}

	credited, err := a.storage.ExecuteAccrual(ctx, position, amount, now)
	if err != nil {
		return false, err
	}
	if !credited {
		// Начисление за этот день уже выполнено
		return false, nil
	}

	a.notify(ctx, position, amount)
	return true, nil
}

func (a *Accrual) notify(ctx context.Context, position *storages.Position, amount float64) {
	if a.notifier == nil {
		return
	}

	account, err := a.storage.GetAccountByUID(ctx, position.UID)
	if err != nil {
		a.logger.Warnf("Failed to resolve receipt recipient %s: %v", position.UID, err)
		return
	}

	content := fmt.Sprintf("A daily return of %.2f was credited for your investment in plan %s.",
		amount, position.PlanName)
	if err := a.notifier.SendReceipt(ctx, account.Email, "Daily return credited", content); err != nil {
		a.logger.Warnf("Failed to send receipt: %v", err)
	}
}
