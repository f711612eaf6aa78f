package cache

import (
	"context"
	"sync"

	"storefront-checkout/internal/models"
)

// MemoryCache is an in-process SnapshotCache for tests and local runs.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]models.CartItem
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]models.CartItem)}
}

func (c *MemoryCache) Get(_ context.Context, sessionID string) ([]models.CartItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items, ok := c.entries[sessionID]
	if !ok {
		return nil, ErrCacheMiss
	}
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out, nil
}

func (c *MemoryCache) Set(_ context.Context, sessionID string, items []models.CartItem) error {
	stored := make([]models.CartItem, len(items))
	copy(stored, items)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sessionID] = stored
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID)
	return nil
}
