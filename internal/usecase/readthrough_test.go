package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockCache struct {
	data        map[string][]byte
	invalidated []string
	getErr      error
	loads       int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, ns, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[ns+"|"+key]
	return v, ok, nil
}

func (m *mockCache) Set(ctx context.Context, ns, key string, value []byte, ttl time.Duration) error {
	m.data[ns+"|"+key] = value
	return nil
}

func (m *mockCache) Invalidate(ctx context.Context, namespaces ...string) error {
	m.invalidated = append(m.invalidated, namespaces...)
	return nil
}

func (m *mockCache) wasInvalidated(ns string) bool {
	for _, got := range m.invalidated {
		if got == ns {
			return true
		}
	}
	return false
}

func TestReadThroughMissLoadsAndStores(t *testing.T) {
	cache := newMockCache()
	loads := 0

	got, err := readThrough(context.Background(), cache, "task:1", "", time.Minute,
		func(ctx context.Context) (string, error) {
			loads++
			return "loaded", nil
		})
	if err != nil {
		t.Fatalf("readThrough failed: %v", err)
	}
	if got != "loaded" || loads != 1 {
		t.Fatalf("expected one load, got %q after %d loads", got, loads)
	}

	// The second read must be served from the cache.
	got, err = readThrough(context.Background(), cache, "task:1", "", time.Minute,
		func(ctx context.Context) (string, error) {
			loads++
			return "loaded again", nil
		})
	if err != nil {
		t.Fatalf("readThrough failed: %v", err)
	}
	if got != "loaded" || loads != 1 {
		t.Fatalf("expected cache hit, got %q after %d loads", got, loads)
	}
}

func TestReadThroughDegradesOnCacheError(t *testing.T) {
	cache := newMockCache()
	cache.getErr = errors.New("connection refused")

	got, err := readThrough(context.Background(), cache, "task:1", "", time.Minute,
		func(ctx context.Context) (string, error) {
			return "loaded", nil
		})
	if err != nil {
		t.Fatalf("cache failure must not surface: %v", err)
	}
	if got != "loaded" {
		t.Fatalf("expected loader result, got %q", got)
	}
}

func TestReadThroughPropagatesLoaderError(t *testing.T) {
	cache := newMockCache()
	boom := errors.New("db down")

	_, err := readThrough(context.Background(), cache, "task:1", "", time.Minute,
		func(ctx context.Context) (string, error) {
			return "", boom
		})
	if !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if len(cache.data) != 0 {
		t.Fatalf("failed load must not be cached")
	}
}
