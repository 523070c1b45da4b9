package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var cacheGetDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "geoip_ledger_get_duration_ms",
	Help:    "Latency of last-IP ledger reads in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

// RedisCache stores ledger entries in Valkey or Redis.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache wraps a go-redis client. The client lifecycle stays with the caller.
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	defer func() {
		cacheGetDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set writes value with SET EX semantics.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}
