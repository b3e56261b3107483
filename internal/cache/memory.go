package cache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	destinationURL string
	cachedAt       time.Time
}

// MemoryCache реализует ResolutionCache в памяти процесса.
// Используется в тестах и как запасной вариант при отключенном Redis.
type MemoryCache struct {
	store sync.Map // map[shortCode]*memEntry
	ttl   time.Duration
}

// NewMemoryCache создает новый in-memory кэш с TTL
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl}
}

func (c *MemoryCache) Get(_ context.Context, shortCode string) (string, bool) {
	val, ok := c.store.Load(shortCode)
	if !ok {
		return "", false
	}

	entry := val.(*memEntry)
	if time.Since(entry.cachedAt) > c.ttl {
		c.store.Delete(shortCode)
		return "", false
	}

	return entry.destinationURL, true
}

func (c *MemoryCache) Set(_ context.Context, shortCode, destinationURL string) {
	c.store.Store(shortCode, &memEntry{
		destinationURL: destinationURL,
		cachedAt:       time.Now(),
	})
}

func (c *MemoryCache) Invalidate(_ context.Context, shortCode string) {
	c.store.Delete(shortCode)
}
