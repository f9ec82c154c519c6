package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"
)

// Cache defines a read-through cache with TTL support and invalidation
type Cache interface {
	Get(ctx context.Context, key string) (any, bool)
	GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error)
	Invalidate(ctx context.Context, key string)
}

// RistrettoCache caches loaded values with Ristretto. Concurrent loads of the
// same key share one call, and an invalidation that happens while a load is
// in flight keeps that load's result out of the cache.
type RistrettoCache struct {
	store       *ristretto.Cache
	singleGroup singleflight.Group
	config      *CacheConfig

	mu          sync.Mutex
	generations map[string]uint64
}

// CacheConfig holds configuration for the cache
type CacheConfig struct {
	// TTL is how long a loaded value stays fresh. Zero disables caching but
	// keeps load de-duplication.
	TTL time.Duration
	// MaxCost is the maximum number of entries kept
	MaxCost int64
	// NumCounters is the number of counters for the cache
	NumCounters int64
	// BufferItems is the number of items to buffer
	BufferItems int64
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() *CacheConfig {
	return &CacheConfig{
		TTL:         30 * time.Second,
		MaxCost:     1 << 10,
		NumCounters: 1e4,
		BufferItems: 64,
	}
}

var _ Cache = (*RistrettoCache)(nil)

// New creates a new RistrettoCache instance
func New(config *CacheConfig) (*RistrettoCache, error) {
	if config == nil {
		config = DefaultConfig()
	}

	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: config.NumCounters,
		MaxCost:     config.MaxCost,
		BufferItems: config.BufferItems,
	})
	if err != nil {
		return nil, err
	}

	return &RistrettoCache{
		store:       store,
		config:      config,
		generations: make(map[string]uint64),
	}, nil
}

// Get retrieves a value from the cache
func (c *RistrettoCache) Get(ctx context.Context, key string) (any, bool) {
	select {
	case <-ctx.Done():
		return nil, false
	default:
	}
	return c.store.Get(key)
}

// GetOrLoad returns the cached value or loads it, sharing the load between
// concurrent callers to prevent a stampede.
func (c *RistrettoCache) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if value, found := c.Get(ctx, key); found {
		return value, nil
	}

	value, err, _ := c.singleGroup.Do(key, func() (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if value, found := c.Get(ctx, key); found {
			return value, nil
		}

		generation := c.generation(key)
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		if c.config.TTL > 0 && generation == c.generation(key) {
			c.store.SetWithTTL(key, value, 1, c.config.TTL)
			c.store.Wait()
		}
		return value, nil
	})

	return value, err
}

// Invalidate drops the cached value and discards any load already in flight.
func (c *RistrettoCache) Invalidate(ctx context.Context, key string) {
	c.mu.Lock()
	c.generations[key]++
	c.mu.Unlock()

	c.singleGroup.Forget(key)
	c.store.Del(key)
	c.store.Wait()
}

func (c *RistrettoCache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key]
}

func (c *RistrettoCache) Close() {
	c.store.Close()
}
