package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// readThrough serves a view from the cache, falling back to the loader and
// repopulating on miss. Cache failures degrade to the authoritative store:
// a broken cache must never fail a read, only slow it down. Concurrent
// misses may both load and both store; the last write wins and either
// result is a valid snapshot.
func readThrough[T any](ctx context.Context, c Cache, ns, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, hit, err := c.Get(ctx, ns, key)
	if err != nil {
		slog.WarnContext(ctx, "cache read failed",
			slog.String("namespace", ns),
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
	} else if hit {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		// Undecodable entry: treat as a miss and overwrite below.
	}

	loaded, err := load(ctx)
	if err != nil {
		return zero, err
	}

	if raw, err := json.Marshal(loaded); err == nil {
		if err := c.Set(ctx, ns, key, raw, ttl); err != nil {
			slog.WarnContext(ctx, "cache write failed",
				slog.String("namespace", ns),
				slog.String("error", err.Error()),
				slog.String("module", "cache"),
			)
		}
	}

	return loaded, nil
}

// invalidate sweeps the given namespaces after a committed mutation.
// Failure here never rolls the mutation back: the entry expires by TTL,
// but the widened staleness window is worth a warning.
func invalidate(ctx context.Context, c Cache, namespaces ...string) {
	if err := c.Invalidate(ctx, namespaces...); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed, stale reads possible until TTL expiry",
			slog.Any("namespaces", namespaces),
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
	}
}
