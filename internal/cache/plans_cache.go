package cache

import (
	"sync"
	"time"

	"gw-invest-ledger/internal/storages"
)

// PlansCache кеш справочника инвестиционных планов
type PlansCache struct {
	plans  map[int64]storages.Plan
	mu     sync.RWMutex
	ttl    time.Duration
	lastUp time.Time
}

// NewPlansCache создает новый кеш
func NewPlansCache(ttl time.Duration) *PlansCache {
	return &PlansCache{
		plans: make(map[int64]storages.Plan),
		ttl:   ttl,
	}
}

// Set сохраняет планы в кеш
func (c *PlansCache) Set(plans []storages.Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.plans = make(map[int64]storages.Plan, len(plans))
	for _, p := range plans {
		c.plans[p.ID] = p
	}
	c.lastUp = time.Now()
}

// Get возвращает планы из кеша, если они актуальны
func (c *PlansCache) Get() ([]storages.Plan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Проверяем, не истек ли TTL
	if time.Since(c.lastUp) > c.ttl {
		return nil, false
	}

	// Возвращаем копию, чтобы избежать race condition
	plansCopy := make([]storages.Plan, 0, len(c.plans))
	for _, p := range c.plans {
		plansCopy = append(plansCopy, p)
	}

	return plansCopy, true
}

// GetPlan возвращает конкретный план из кеша
func (c *PlansCache) GetPlan(planID int64) (storages.Plan, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Проверяем, не истек ли TTL
	if time.Since(c.lastUp) > c.ttl {
		return storages.Plan{}, false
	}

	plan, exists := c.plans[planID]
	return plan, exists
}

// Clear очищает кеш
func (c *PlansCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.plans = make(map[int64]storages.Plan)
	c.lastUp = time.Time{}
}

// IsValid проверяет, актуален ли кеш
func (c *PlansCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return time.Since(c.lastUp) <= c.ttl && len(c.plans) > 0
}
