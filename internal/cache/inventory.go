package cache

import (
	"context"
	"strconv"
	"time"

	"inkwell/internal/middleware"
)

// Key namespaces. Every key this package writes starts with one of these.
const (
	userKeyPrefix = "user"
	// IndexPagePrefix namespaces rendered global feed pages.
	IndexPagePrefix = "index_page"
)

const (
	// UserTTL bounds how stale a cached identity lookup may be.
	UserTTL = 5 * time.Minute
	// IndexPageTTL is how long a rendered index page is served before re-rendering.
	IndexPageTTL = 20 * time.Second
)

// UserKey is the cache-aside key of a user record.
func UserKey(userID uint) string {
	return userKeyPrefix + ":" + strconv.FormatUint(uint64(userID), 10)
}

// IndexPageKey is the page cache key of the given global feed page request.
// The raw page parameter is used so that each distinct request is cached apart.
func IndexPageKey(rawPage string) string {
	return IndexPagePrefix + ":" + rawPage
}

// Invalidate drops key from Redis. Failures are logged; the entry then
// expires on its own.
func Invalidate(ctx context.Context, key string) {
	if client == nil {
		return
	}
	if err := client.Del(ctx, key).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", "key", key, "error", err)
	}
}

// InvalidateUser drops the cached record of userID, e.g. after a role change.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
