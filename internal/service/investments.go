package service

import (
	"context"
	"fmt"

	"gw-invest-ledger/internal/storages"
	"gw-invest-ledger/pkg"
)

// PositionView позиция вместе с накопленным доходом
type PositionView struct {
	storages.Position
	TotalEarnings float64 `json:"totalEarnings"`
	DailyReturn   float64 `json:"dailyReturn"`
}

// PositionApproval результат одобрения позиции
type PositionApproval struct {
	Position     *storages.Position `json:"position"`
	DailyReturn  float64            `json:"dailyReturn"`
	DurationDays int                `json:"durationDays"`
}

// RequestInvestment создает заявку на вложение в план.
// Позиция создается в статусе pending; транзакция журнала
// появляется при одобрении.
func (s *LedgerService) RequestInvestment(ctx context.Context, uid string, planID int64, principal float64, method string) (*storages.Position, error) {
	if principal <= 0 {
		return nil, fmt.Errorf("principal must be positive: %w", storages.ErrValidation)
	}

	method = pkg.NormalizeMethod(method)
	if !storages.ValidMethod(method) {
		return nil, fmt.Errorf("unknown method %q: %w", method, storages.ErrValidation)
	}

	plan, err := s.catalog.Plan(ctx, planID)
	if err != nil {
		return nil, err
	}

	// Принципал должен укладываться в границы плана
	if principal < plan.MinAmount || (plan.MaxAmount > 0 && principal > plan.MaxAmount) {
		return nil, fmt.Errorf("principal %.2f is outside plan bounds [%.2f, %.2f]: %w",
			principal, plan.MinAmount, plan.MaxAmount, storages.ErrValidation)
	}

	position := &storages.Position{
		UID:          uid,
		PlanID:       plan.ID,
		PlanName:     plan.Name,
		Principal:    principal,
		ReturnRate:   plan.ReturnRate,
		DurationDays: plan.DurationDays,
		Method:       method,
		Status:       storages.StatusPending,
	}

	if err := s.storage.CreatePosition(ctx, position); err != nil {
		return nil, err
	}

	s.notify(ctx, uid, "Investment request received",
		fmt.Sprintf("Your investment of %.2f in plan %s is pending review.", principal, plan.Name))

	return position, nil
}

// ApprovePosition одобряет позицию и возвращает параметры начисления
func (s *LedgerService) ApprovePosition(ctx context.Context, positionID int64) (*PositionApproval, error) {
	position, err := s.storage.ExecutePositionApproval(ctx, positionID, s.debitOnApprove)
	if err != nil {
		return nil, err
	}

	dailyReturn := storages.DailyReturn(position.Principal, position.ReturnRate, position.DurationDays)

	s.notify(ctx, position.UID, "Investment approved",
		fmt.Sprintf("Your investment of %.2f in plan %s was approved. Daily return: %.2f for %d days.",
			position.Principal, position.PlanName, dailyReturn, position.DurationDays))

	return &PositionApproval{
		Position:     position,
		DailyReturn:  dailyReturn,
		DurationDays: position.DurationDays,
	}, nil
}

// ProcessPosition переводит позицию в статус processing.
// Переход проверяется атомарно в хранилище, поэтому терминальная
// позиция не может быть перезаписана конкурирующим действием.
func (s *LedgerService) ProcessPosition(ctx context.Context, positionID int64) (*storages.Position, error) {
	position, err := s.storage.ExecutePositionTransition(ctx, positionID, storages.StatusProcessing)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, position.UID, "Investment processing",
		fmt.Sprintf("Your investment of %.2f in plan %s is being processed.", position.Principal, position.PlanName))

	return position, nil
}

// DeclinePosition отклоняет позицию и возвращает принципал
func (s *LedgerService) DeclinePosition(ctx context.Context, positionID int64) (*storages.Position, error) {
	position, err := s.storage.ExecutePositionDecline(ctx, positionID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, position.UID, "Investment declined",
		fmt.Sprintf("Your investment of %.2f in plan %s was declined. The principal was returned to your wallet.",
			position.Principal, position.PlanName))

	return position, nil
}

// EndPosition завершает одобренную позицию.
// Завершение выполняется только явным действием администратора.
func (s *LedgerService) EndPosition(ctx context.Context, positionID int64) (*storages.Position, error) {
	position, err := s.storage.ExecutePositionTransition(ctx, positionID, storages.StatusEnded)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, position.UID, "Investment ended",
		fmt.Sprintf("Your investment of %.2f in plan %s has ended.", position.Principal, position.PlanName))

	return position, nil
}

// UserPositions возвращает позиции пользователя с накопленным доходом
func (s *LedgerService) UserPositions(ctx context.Context, uid string) ([]PositionView, error) {
	positions, err := s.storage.GetUserPositions(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.positionViews(ctx, positions)
}

// AllPositions возвращает все позиции с накопленным доходом
func (s *LedgerService) AllPositions(ctx context.Context) ([]PositionView, error) {
	positions, err := s.storage.GetAllPositions(ctx)
	if err != nil {
		return nil, err
	}
	return s.positionViews(ctx, positions)
}

func (s *LedgerService) positionViews(ctx context.Context, positions []storages.Position) ([]PositionView, error) {
	views := make([]PositionView, 0, len(positions))
	for _, p := range positions {
		records, err := s.storage.GetPositionEarnings(ctx, p.ID)
		if err != nil {
			return nil, err
		}

		views = append(views, PositionView{
			Position:      p,
			TotalEarnings: storages.TotalEarnings(records),
			DailyReturn:   storages.DailyReturn(p.Principal, p.ReturnRate, p.DurationDays),
		})
	}
	return views, nil
}
