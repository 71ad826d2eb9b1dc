package discounts

import (
	"context"
	"fmt"
	"time"

	"github.com/eyabmansour/pfe-licence-api/internal/logger"
	"github.com/eyabmansour/pfe-licence-api/internal/models"
)

const versionKey = "discounts:version"

// Store is the subset of the redis wrapper the cached reader needs.
type Store interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}) error
	Incr(ctx context.Context, key string) (int64, error)
}

// CachedReader serves pricing reads through redis, falling back to the
// repository on a miss. Every cached key is namespaced under a version
// counter; invalidation is a single atomic INCR, so a write can never
// race a concurrent first-load into leaving a stale entry reachable.
// Orphaned old-version entries simply age out with the TTL. Cache
// failures degrade to direct reads; pricing never fails because redis
// is down.
type CachedReader struct {
	repo   Repository
	store  Store
	logger *logger.Logger
}

// NewCachedReader wraps the repository's pricing reads with a cache.
func NewCachedReader(repo Repository, store Store, log *logger.Logger) *CachedReader {
	return &CachedReader{repo: repo, store: store, logger: log}
}

// RulesForMenuItem returns the cached rules for one item, loading and
// caching them on a miss.
func (c *CachedReader) RulesForMenuItem(ctx context.Context, menuItemID int64, now time.Time) ([]models.ItemDiscount, error) {
	key := fmt.Sprintf("discounts:v%d:item:%d", c.version(ctx), menuItemID)

	var cached []models.ItemDiscount
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	rules, err := c.repo.RulesForMenuItem(ctx, menuItemID, now)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, key, rules)
	return rules, nil
}

// ActiveOrderDiscounts returns the cached subtotal-level discounts,
// loading and caching them on a miss.
func (c *CachedReader) ActiveOrderDiscounts(ctx context.Context, now time.Time) ([]models.Discount, error) {
	key := fmt.Sprintf("discounts:v%d:order", c.version(ctx))

	var cached []models.Discount
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	discounts, err := c.repo.ActiveOrderDiscounts(ctx, now)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, key, discounts)
	return discounts, nil
}

// InvalidateDiscounts bumps the version counter, moving every reader to
// fresh keys. Called by the discount service after each write.
func (c *CachedReader) InvalidateDiscounts(ctx context.Context) error {
	_, err := c.store.Incr(ctx, versionKey)
	return err
}

// version reads the current cache generation. A missing counter means
// nothing was ever invalidated; errors count as generation 0 so reads
// still work, just against keys the next bump abandons.
func (c *CachedReader) version(ctx context.Context) int64 {
	var v int64
	if _, err := c.store.GetJSON(ctx, versionKey, &v); err != nil {
		c.logger.Error("cache_read_failed", "Discount cache version read failed", "", err, nil)
		return 0
	}
	return v
}

func (c *CachedReader) lookup(ctx context.Context, key string, dest interface{}) bool {
	hit, err := c.store.GetJSON(ctx, key, dest)
	if err != nil {
		c.logger.Error("cache_read_failed", "Discount cache read failed", "", err,
			map[string]interface{}{"key": key})
		return false
	}
	return hit
}

func (c *CachedReader) fill(ctx context.Context, key string, v interface{}) {
	if err := c.store.SetJSON(ctx, key, v); err != nil {
		c.logger.Error("cache_write_failed", "Discount cache write failed", "", err,
			map[string]interface{}{"key": key})
	}
}
