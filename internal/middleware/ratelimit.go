package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// ErrNoLimiterStore is returned when limits are enforced without Redis.
var ErrNoLimiterStore = errors.New("rate limit store not configured")

// RateLimiter counts requests per resource and requester in fixed Redis
// windows. A disabled limiter admits everything.
type RateLimiter struct {
	rdb     *redis.Client
	enabled bool
	// FailClosed rejects requests with 503 when the store cannot be reached.
	FailClosed bool
}

// NewRateLimiter returns a limiter backed by rdb. Limits are only enforced
// when enabled is set.
func NewRateLimiter(rdb *redis.Client, enabled bool) *RateLimiter {
	return &RateLimiter{rdb: rdb, enabled: enabled}
}

// Allow records one request by id against resource and reports whether it is
// within limit for the current window, along with the time left in it.
func (rl *RateLimiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, time.Duration, error) {
	if !rl.enabled {
		return true, 0, nil
	}
	if rl.rdb == nil {
		return false, 0, ErrNoLimiterStore
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)
	cnt, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if cnt == 1 {
		rl.rdb.Expire(ctx, key, window)
		return true, window, nil
	}

	ttl, err := rl.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return cnt <= int64(limit), ttl, nil
}

// Limit returns a handler admitting limit requests per window for the named
// resource, keyed by the authenticated user or else the remote IP.
func (rl *RateLimiter) Limit(resource string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if identity := CurrentIdentity(c); identity.Authenticated {
			id = fmt.Sprintf("user:%d", identity.UserID)
		}

		allowed, retryAfter, err := rl.Allow(c.UserContext(), resource, id, limit, window)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable", "resource", resource, "error", err)
			if rl.FailClosed {
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Error: "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			observability.RateLimited.WithLabelValues(resource).Inc()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(retryAfter.Round(time.Second)/time.Second)))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
