package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRateLimiter_DisabledAdmitsEverything(t *testing.T) {
	rl := NewRateLimiter(nil, false)
	for i := 0; i < 5; i++ {
		allowed, _, err := rl.Allow(context.Background(), "create_post", "user:1", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestRateLimiter_NilRedis(t *testing.T) {
	rl := NewRateLimiter(nil, true)
	allowed, _, err := rl.Allow(context.Background(), "create_post", "user:1", 1, time.Minute)
	assert.ErrorIs(t, err, ErrNoLimiterStore)
	assert.False(t, allowed)
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	rl := NewRateLimiter(rdb, true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := rl.Allow(ctx, "comment", "user:3", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, retryAfter, err := rl.Allow(ctx, "comment", "user:3", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Minute)

	mr.FastForward(time.Minute + time.Second)

	allowed, _, err = rl.Allow(ctx, "comment", "user:3", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_SeparateRequesters(t *testing.T) {
	_, rdb := newMiniRedis(t)
	rl := NewRateLimiter(rdb, true)
	ctx := context.Background()

	allowed, _, err := rl.Allow(ctx, "signup", "ip:1.1.1.1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = rl.Allow(ctx, "signup", "ip:2.2.2.2", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_Limit(t *testing.T) {
	t.Run("enforced with redis", func(t *testing.T) {
		_, rdb := newMiniRedis(t)
		app := fiber.New()
		app.Post("/create/", NewRateLimiter(rdb, true).Limit("create_post", 1, time.Minute), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/create/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/create/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	})

	t.Run("fails open without redis", func(t *testing.T) {
		app := fiber.New()
		app.Get("/test", NewRateLimiter(nil, true).Limit("test", 1, time.Minute), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("fails closed when asked", func(t *testing.T) {
		rl := NewRateLimiter(nil, true)
		rl.FailClosed = true
		app := fiber.New()
		app.Get("/sensitive", rl.Limit("sensitive", 1, time.Minute), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sensitive", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
