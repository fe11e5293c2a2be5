package cache

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"

	"github.com/dgraph-io/ristretto"
	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/redis/go-redis/v9"
)

// RenderFunc produces the bytes of a page on a cache miss.
type RenderFunc func(ctx context.Context) ([]byte, error)

// PageCache stores fully rendered pages for a fixed time. Entries are never
// invalidated by writes; readers may see a page up to ttl old.
type PageCache interface {
	GetOrRender(ctx context.Context, key string, ttl time.Duration, render RenderFunc) ([]byte, error)
}

type pageBackend interface {
	name() string
	get(ctx context.Context, key string) ([]byte, bool, error)
	set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type pageCache struct {
	backend pageBackend
}

// NewPageCache returns a Redis-backed page cache when rdb is non-nil and an
// in-process one otherwise.
func NewPageCache(rdb *redis.Client) (PageCache, error) {
	if rdb != nil {
		return &pageCache{backend: &redisPages{rdb: rdb}}, nil
	}
	mem, err := newMemoryPages()
	if err != nil {
		return nil, err
	}
	return &pageCache{backend: mem}, nil
}

// GetOrRender returns the cached page for key, or renders and stores it.
// Backend failures are logged and the page is rendered fresh. Render errors
// are returned and nothing is stored.
func (p *pageCache) GetOrRender(ctx context.Context, key string, ttl time.Duration, render RenderFunc) ([]byte, error) {
	backend := p.backend.name()

	if ttl <= 0 {
		observability.PageCacheEvents.WithLabelValues(backend, "bypass").Inc()
		return render(ctx)
	}

	cached, ok, err := p.backend.get(ctx, key)
	switch {
	case err != nil:
		observability.PageCacheEvents.WithLabelValues(backend, "error").Inc()
		middleware.Logger.WarnContext(ctx, "page cache read failed", "key", key, "backend", backend, "error", err)
	case ok:
		observability.PageCacheEvents.WithLabelValues(backend, "hit").Inc()
		return cached, nil
	default:
		observability.PageCacheEvents.WithLabelValues(backend, "miss").Inc()
	}

	page, err := render(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.backend.set(ctx, key, page, ttl); err != nil {
		observability.PageCacheEvents.WithLabelValues(backend, "error").Inc()
		middleware.Logger.WarnContext(ctx, "page cache write failed", "key", key, "backend", backend, "error", err)
	}
	return page, nil
}

type redisPages struct {
	rdb *redis.Client
}

func (r *redisPages) name() string { return "redis" }

func (r *redisPages) get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *redisPages) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

// memoryPages keeps pages in a process-local ristretto cache behind gocache.
type memoryPages struct {
	local   *ristretto.Cache
	manager *gocache.Cache[[]byte]
}

func newMemoryPages() (*memoryPages, error) {
	local, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     64 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &memoryPages{
		local:   local,
		manager: gocache.New[[]byte](ristretto_store.NewRistretto(local)),
	}, nil
}

func (m *memoryPages) name() string { return "memory" }

func (m *memoryPages) get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := m.manager.Get(ctx, key)
	if err != nil {
		// The ristretto store reports every miss as an error.
		return nil, false, nil
	}
	return b, true, nil
}

func (m *memoryPages) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := m.manager.Set(ctx, key, value,
		store.WithExpiration(ttl),
		store.WithCost(int64(len(value))),
	)
	// Ristretto applies writes asynchronously.
	m.local.Wait()
	return err
}
