package plans

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"gw-invest-ledger/internal/cache"
	"gw-invest-ledger/internal/storages"
)

// Catalog справочник инвестиционных планов, только чтение
type Catalog interface {
	Plan(ctx context.Context, planID int64) (*storages.Plan, error)
	List(ctx context.Context) ([]storages.Plan, error)
}

// StoreCatalog реализация справочника поверх хранилища с TTL кешем
type StoreCatalog struct {
	storage storages.Storage
	cache   *cache.PlansCache
	logger  *logrus.Logger
}

// NewStoreCatalog создает справочник планов
func NewStoreCatalog(storage storages.Storage, plansCache *cache.PlansCache, logger *logrus.Logger) *StoreCatalog {
	return &StoreCatalog{
		storage: storage,
		cache:   plansCache,
		logger:  logger,
	}
}

// Plan возвращает план по идентификатору (из кеша или хранилища)
func (c *StoreCatalog) Plan(ctx context.Context, planID int64) (*storages.Plan, error) {
	if plan, ok := c.cache.GetPlan(planID); ok {
		c.logger.Debugf("Returning plan %d from cache", planID)
		return &plan, nil
	}

	if _, err := c.refresh(ctx); err != nil {
		return nil, err
	}

	if plan, ok := c.cache.GetPlan(planID); ok {
		return &plan, nil
	}

	return nil, fmt.Errorf("plan %d: %w", planID, storages.ErrNotFound)
}

// List возвращает все планы (из кеша или хранилища)
func (c *StoreCatalog) List(ctx context.Context) ([]storages.Plan, error) {
	if plans, ok := c.cache.Get(); ok {
		c.logger.Debug("Returning plans from cache")
		return plans, nil
	}

	return c.refresh(ctx)
}

func (c *StoreCatalog) refresh(ctx context.Context) ([]storages.Plan, error) {
	plans, err := c.storage.GetAllPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load plans: %w", err)
	}

	c.cache.Set(plans)
	return plans, nil
}
