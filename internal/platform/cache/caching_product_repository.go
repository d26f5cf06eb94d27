// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/feature/catalog/domain/entity"
	"storefront/internal/feature/catalog/usecase"
)

// ProductStore is the catalog repository plus the bulk lookup used by carts and checkout.
type ProductStore interface {
	usecase.ProductRepository
	FindByIDs(ctx context.Context, ids []uint) ([]entity.Product, error)
}

// CachingProductRepository decorates a ProductStore with Redis caching.
// Single products and shop pages are cached; every write invalidates what it touches.
type CachingProductRepository struct {
	inner     ProductStore
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ ProductStore = (*CachingProductRepository)(nil)

// NewCachingProductRepository decorates inner with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "products".
// A nil rdb disables caching entirely.
func NewCachingProductRepository(rdb *redis.Client, ttl time.Duration, inner ProductStore, namespace string) *CachingProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "products"
	}
	return &CachingProductRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

func (c *CachingProductRepository) Create(ctx context.Context, p *entity.Product) error {
	if err := c.inner.Create(ctx, p); err != nil {
		return err
	}
	c.invalidatePages(ctx)
	return nil
}

// FindByID checks the cache first and falls back to the database.
func (c *CachingProductRepository) FindByID(ctx context.Context, id uint) (*entity.Product, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.productKey(id)
	var cached entity.Product
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, p)
	return p, nil
}

func (c *CachingProductRepository) FindByIDs(ctx context.Context, ids []uint) ([]entity.Product, error) {
	return c.inner.FindByIDs(ctx, ids)
}

func (c *CachingProductRepository) Update(ctx context.Context, p *entity.Product) error {
	if err := c.inner.Update(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, p.ID)
	return nil
}

func (c *CachingProductRepository) Delete(ctx context.Context, id uint) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachingProductRepository) Count(ctx context.Context) (int64, error) {
	return c.inner.Count(ctx)
}

// List caches each page under its offset and limit.
func (c *CachingProductRepository) List(ctx context.Context, offset, limit int) ([]entity.Product, error) {
	if c.rdb == nil {
		return c.inner.List(ctx, offset, limit)
	}

	key := c.pageKey(offset, limit)
	var cached []entity.Product
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	out, err := c.inner.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

func (c *CachingProductRepository) ListByOwner(ctx context.Context, userID uint) ([]entity.Product, error) {
	return c.inner.ListByOwner(ctx, userID)
}

// load reports whether key held a decodable value. Corrupted entries are dropped.
func (c *CachingProductRepository) load(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// store writes v best effort.
func (c *CachingProductRepository) store(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

func (c *CachingProductRepository) invalidate(ctx context.Context, id uint) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, c.productKey(id)).Err()
	c.invalidatePages(ctx)
}

func (c *CachingProductRepository) invalidatePages(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	_ = c.deleteByPattern(ctx, c.namespace+":page:*")
}

func (c *CachingProductRepository) productKey(id uint) string {
	return fmt.Sprintf("%s:%d", c.namespace, id)
}

func (c *CachingProductRepository) pageKey(offset, limit int) string {
	return fmt.Sprintf("%s:page:%d:%d", c.namespace, offset, limit)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingProductRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
