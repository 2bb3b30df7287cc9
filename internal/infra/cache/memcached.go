package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcachedCache implements the cache port on memcached. Memcached cannot
// scan the keyspace, so each namespace carries a version counter stored
// under "ver!<ns>"; real keys embed the version and invalidation is a
// single increment that orphans the old generation to expire by TTL.
type MemcachedCache struct {
	mc *memcache.Client
}

func NewMemcachedCache(mc *memcache.Client) *MemcachedCache {
	return &MemcachedCache{mc: mc}
}

func (c *MemcachedCache) Get(ctx context.Context, ns, key string) ([]byte, bool, error) {
	full, err := c.versionedKey(ns, key)
	if err != nil {
		return nil, false, err
	}
	item, err := c.mc.Get(full)
	if err == memcache.ErrCacheMiss {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item.Value, true, nil
}

func (c *MemcachedCache) Set(ctx context.Context, ns, key string, value []byte, ttl time.Duration) error {
	full, err := c.versionedKey(ns, key)
	if err != nil {
		return err
	}
	return c.mc.Set(&memcache.Item{
		Key:        full,
		Value:      value,
		Expiration: int32(ttl / time.Second),
	})
}

func (c *MemcachedCache) Invalidate(ctx context.Context, namespaces ...string) error {
	for _, ns := range namespaces {
		_, err := c.mc.Increment(verKey(ns), 1)
		if err == memcache.ErrCacheMiss {
			// Namespace was never populated; nothing to invalidate.
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *MemcachedCache) versionedKey(ns, key string) (string, error) {
	ver, err := c.version(ns)
	if err != nil {
		return "", err
	}
	if key == "" {
		return fmt.Sprintf("%d!%s", ver, ns), nil
	}
	return fmt.Sprintf("%d!%s:%s", ver, ns, key), nil
}

func (c *MemcachedCache) version(ns string) (uint64, error) {
	item, err := c.mc.Get(verKey(ns))
	if err == memcache.ErrCacheMiss {
		seed := uint64(time.Now().UnixNano())
		err = c.mc.Add(&memcache.Item{
			Key:   verKey(ns),
			Value: []byte(fmt.Sprintf("%d", seed)),
		})
		if err != nil && err != memcache.ErrNotStored {
			return 0, err
		}
		return c.version(ns)
	}
	if err != nil {
		return 0, err
	}
	var ver uint64
	_, err = fmt.Sscanf(string(item.Value), "%d", &ver)
	return ver, err
}

func verKey(ns string) string { return "ver!" + ns }
