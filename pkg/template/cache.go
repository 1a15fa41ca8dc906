package template

import (
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

// Cache expiry defaults.
const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Cache memoises template lookups. Every entry is registered under the
// names of the components its lookup touched, and a content change of any
// of them drops the entry.
type Cache struct {
	cache  *gocache.Cache
	logger *slog.Logger

	mu         sync.Mutex
	dependents map[string]map[string]struct{}
}

// NewCache returns an empty cache. A nil logger uses slog.Default.
func NewCache(defaultExpiration, cleanupInterval time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		cache:      gocache.New(defaultExpiration, cleanupInterval),
		logger:     logger,
		dependents: make(map[string]map[string]struct{}),
	}
}

type lookup[T any] struct {
	value T
	found bool
}

func cacheGet[T any](c *Cache, key string) (T, bool, bool) {
	var zero T
	if c == nil {
		return zero, false, false
	}
	raw, ok := c.cache.Get(key)
	if !ok {
		return zero, false, false
	}
	l, ok := raw.(lookup[T])
	if !ok {
		c.logger.Error("wrong type in template cache", "key", key)
		return zero, false, false
	}
	return l.value, l.found, true
}

func cacheSet[T any](c *Cache, key string, value T, found bool, touched []string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Set(key, lookup[T]{value: value, found: found}, gocache.DefaultExpiration)
	for _, name := range touched {
		keys, ok := c.dependents[name]
		if !ok {
			keys = make(map[string]struct{})
			c.dependents[name] = keys
		}
		keys[key] = struct{}{}
	}
}

// Invalidate drops every entry that depends on the component called name.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := c.dependents[name]
	delete(c.dependents, name)
	for key := range keys {
		c.cache.Delete(key)
	}
	if len(keys) > 0 {
		c.logger.Debug("template cache invalidated", "product_cmpt", name, "entries", len(keys))
	}
}

// ContentChanged invalidates on a content change event. Register it with
// ProductCmpt.AddListener.
func (c *Cache) ContentChanged(ev types.ContentChangeEvent) {
	c.Invalidate(ev.ProductCmpt.Name())
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Flush()
	c.dependents = make(map[string]map[string]struct{})
}

// Len returns the number of cached lookups.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}
