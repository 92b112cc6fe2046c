package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jcmexdev/food-storefront/internal/pkg/cache"
)

const cacheOperation = "catalog"

// CachedSource serves the menu from cache when present and populates the
// cache from Next otherwise. Cache failures fall through to Next: a broken
// cache must never keep the storefront from starting.
type CachedSource struct {
	Next  Source
	Cache cache.Cache
	Key   string
	TTL   time.Duration
}

func NewCachedSource(next Source, c cache.Cache, key string, ttl time.Duration) *CachedSource {
	return &CachedSource{Next: next, Cache: c, Key: key, TTL: ttl}
}

func (s *CachedSource) Fetch(ctx context.Context) ([]MenuItem, error) {
	key := s.Cache.GenerateKey(cacheOperation, s.Key)

	raw, err := s.Cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "catalog cache read failed", "key", key, "error", err)
	} else if raw != "" {
		items, err := decode([]byte(raw))
		if err == nil {
			slog.DebugContext(ctx, "catalog served from cache", "key", key, "items", len(items))
			return items, nil
		}
		slog.WarnContext(ctx, "discarding corrupt catalog cache entry", "key", key, "error", err)
	}

	items, err := s.Next.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(items)
	if err != nil {
		slog.WarnContext(ctx, "catalog cache encode failed", "error", err)
		return items, nil
	}
	if err := s.Cache.Set(ctx, key, b, s.TTL); err != nil {
		slog.WarnContext(ctx, "catalog cache write failed", "key", key, "error", err)
	}
	return items, nil
}
