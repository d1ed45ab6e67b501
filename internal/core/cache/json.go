package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// GetOrLoadJSON is GetOrLoad for JSON-encodable values. An entry that no longer
// decodes into T is evicted and the loader result returned.
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var out T
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		c.log.Warn("cache entry undecodable, evicting", zap.String("key", key), zap.Error(err))
		_ = c.RDB.Del(ctx, key).Err()
		return load(ctx)
	}
	return out, nil
}
