package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/ledazaf/ms-order-api/internal/domain"
	"github.com/ledazaf/ms-order-api/internal/observability"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
	"github.com/ledazaf/ms-order-api/internal/platform/envutil"
)

// ProductCache is a read-through cache over product rows. A cache failure is
// never fatal: callers treat every error path as a miss and hit the database.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*types.Product, bool)
	Set(ctx context.Context, p *types.Product)
	Invalidate(ctx context.Context, ids ...int64)
	Close() error
}

type productCache struct {
	log     *logger.Logger
	rdb     *goredis.Client
	metrics *observability.Metrics
	ttl     time.Duration
}

// NewProductCache connects to REDIS_ADDR. When the variable is unset the
// returned cache is a no-op, so the service runs without redis.
func NewProductCache(log *logger.Logger, metrics *observability.Metrics) (ProductCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		log.Info("REDIS_ADDR not set; product cache disabled")
		return noopProductCache{}, nil
	}

	secs := envutil.Int("REDIS_PRODUCT_CACHE_TTL_SECONDS", 300)
	if secs <= 0 {
		return nil, fmt.Errorf("bad REDIS_PRODUCT_CACHE_TTL_SECONDS %d", secs)
	}
	ttl := time.Duration(secs) * time.Second

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &productCache{
		log:     log.With("service", "RedisProductCache"),
		rdb:     rdb,
		metrics: metrics,
		ttl:     ttl,
	}, nil
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *productCache) Get(ctx context.Context, id int64) (*types.Product, bool) {
	if c == nil || c.rdb == nil || id <= 0 {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("product cache get failed", "id", id, "error", err)
		}
		c.metrics.IncCacheMiss("product")
		return nil, false
	}
	var p types.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		c.log.Warn("bad product cache payload", "id", id, "error", err)
		c.metrics.IncCacheMiss("product")
		return nil, false
	}
	c.metrics.IncCacheHit("product")
	return &p, true
}

func (c *productCache) Set(ctx context.Context, p *types.Product) {
	if c == nil || c.rdb == nil || p == nil || p.ID <= 0 {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		c.log.Warn("product cache marshal failed", "id", p.ID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, productKey(p.ID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("product cache set failed", "id", p.ID, "error", err)
	}
}

func (c *productCache) Invalidate(ctx context.Context, ids ...int64) {
	if c == nil || c.rdb == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			keys = append(keys, productKey(id))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("product cache invalidate failed", "keys", keys, "error", err)
	}
}

func (c *productCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

type noopProductCache struct{}

func (noopProductCache) Get(context.Context, int64) (*types.Product, bool) { return nil, false }
func (noopProductCache) Set(context.Context, *types.Product)              {}
func (noopProductCache) Invalidate(context.Context, ...int64)             {}
func (noopProductCache) Close() error                                     { return nil }
