package index

import (
	"path/filepath"
	"sync"
)

// Cache keeps loaded indices per path for the lifetime of the process.
// Failed loads are not remembered, so an index ingested later is picked up.
type Cache struct {
	mu     sync.RWMutex
	loaded map[string]*Index
	load   func(string) (*Index, error)
}

func NewCache() *Cache {
	return &Cache{
		loaded: make(map[string]*Index),
		load:   Load,
	}
}

// Get returns the index at path, loading it on first use
func (c *Cache) Get(path string) (*Index, error) {
	key := cacheKey(path)

	c.mu.RLock()
	ix, ok := c.loaded[key]
	c.mu.RUnlock()
	if ok {
		return ix, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ix, ok := c.loaded[key]; ok {
		return ix, nil
	}

	ix, err := c.load(path)
	if err != nil {
		return nil, err
	}
	c.loaded[key] = ix
	return ix, nil
}

// Invalidate drops the cached index for path
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.loaded, cacheKey(path))
	c.mu.Unlock()
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
