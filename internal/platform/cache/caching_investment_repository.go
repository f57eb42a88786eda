// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"investhorizon_backend/internal/feature/investments/domain/entity"
	"investhorizon_backend/internal/feature/investments/usecase"
)

const (
	defaultTTL       = 30 * time.Second
	defaultNamespace = "investments"
)

// CachingInvestmentRepository decorates an InvestmentRepository with a Redis
// read-through cache keyed by user id.
type CachingInvestmentRepository struct {
	inner     usecase.InvestmentRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.InvestmentRepository = (*CachingInvestmentRepository)(nil)

// NewCachingInvestmentRepository decorates an InvestmentRepository with Redis caching.
// If ttl is 0, it defaults to 30 seconds. If namespace is empty, it uses "investments".
// A nil rdb disables caching.
func NewCachingInvestmentRepository(rdb *redis.Client, ttl time.Duration, inner usecase.InvestmentRepository, namespace string) *CachingInvestmentRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &CachingInvestmentRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// ListByUser returns the user's investments, checking the cache first then falling back to the database.
func (c *CachingInvestmentRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Investment, error) {
	if c.rdb == nil {
		return c.inner.ListByUser(ctx, userID)
	}

	key := c.cacheKey(userID)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		if out, err := decode(b); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

func (c *CachingInvestmentRepository) cacheKey(userID uint) string {
	return fmt.Sprintf("%s:%d", c.namespace, userID)
}

// decode keeps numbers as json.Number so cached rows re-encode exactly as stored.
func decode(b []byte) ([]entity.Investment, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out []entity.Investment
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []entity.Investment{}
	}
	return out, nil
}
