package texture

import (
	"image"
	"sync"
)

// Resolver resolves a texture key to a decoded image, or nil.
type Resolver interface {
	Resolve(key string) *image.NRGBA
}

// LoadFunc produces the image for a key.
type LoadFunc func(key string) (*image.NRGBA, error)

// Cache is a concurrency-safe texture cache. Failed loads are cached as nil
// so a broken image is decoded once.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	load  LoadFunc
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache creates a cache that fills misses with load.
func NewCache(load LoadFunc) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		load:  load,
	}
}

// Resolve loads and caches a texture by key. Returns nil if it cannot be loaded.
func (c *Cache) Resolve(key string) *image.NRGBA {
	img, _ := c.Get(key)
	return img
}

// Get is Resolve with the load error.
func (c *Cache) Get(key string) (*image.NRGBA, error) {
	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[key]; exists {
		c.mu.RUnlock()
		return entry.img, entry.err
	}
	c.mu.RUnlock()

	// Slow path: decode outside the lock
	img, err := c.load(key)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[key]; exists {
		return entry.img, entry.err
	}
	c.items[key] = &cacheEntry{img: img, err: err}
	return img, err
}

// Len returns the number of cached keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
