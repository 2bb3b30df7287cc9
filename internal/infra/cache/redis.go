package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch bounds each SCAN iteration so namespace invalidation never
// blocks other cache operations behind one long keyspace walk.
const scanBatch = 512

// RedisCache implements the cache port on a redis client. Keys are the
// namespace joined with the member part; namespace invalidation is a
// bounded SCAN+DEL over "ns*".
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, ns, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, compose(ns, key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, ns, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, compose(ns, key), value, ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, namespaces ...string) error {
	for _, ns := range namespaces {
		// The bare namespace key first, then its members. Matching "ns:*"
		// instead of "ns*" keeps "task:4" from sweeping "task:42".
		if err := c.rdb.Del(ctx, ns).Err(); err != nil {
			return err
		}
		var cursor uint64
		for {
			keys, next, err := c.rdb.Scan(ctx, cursor, ns+":*", scanBatch).Result()
			if err != nil {
				return err
			}
			if len(keys) > 0 {
				if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
					return err
				}
			}
			cursor = next
			if cursor == 0 {
				break
			}
		}
	}
	return nil
}

func compose(ns, key string) string {
	if key == "" {
		return ns
	}
	return ns + ":" + key
}
