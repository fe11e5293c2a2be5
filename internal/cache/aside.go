package cache

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/middleware"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Aside loads key into dest from Redis, or calls fetch to populate dest and
// stores the result for ttl. Without Redis, or when Redis fails, it just fetches.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() error) error {
	rdb := client
	if rdb == nil {
		return fetch()
	}

	raw, err := rdb.Get(ctx, key).Bytes()
	if err == nil {
		if err := json.Unmarshal(raw, dest); err == nil {
			return nil
		}
		middleware.Logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	if err := fetch(); err != nil {
		return err
	}

	if encoded, err := json.Marshal(dest); err == nil {
		if err := rdb.Set(ctx, key, encoded, ttl).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	return nil
}
