// Package cache keeps an in-memory snapshot of persisted territories so the
// collision poller never touches storage on its 10-second cadence. Latency
// here matters: polls run while the player is walking.
package cache

import (
	"sync"

	"github.com/stridelands/engine/pkg/core"
)

// TerritoryCache holds the territories loaded from storage, keyed by ID.
type TerritoryCache struct {
	mu          sync.RWMutex
	territories map[uint]core.Territory
}

// NewTerritoryCache creates an empty cache.
func NewTerritoryCache() *TerritoryCache {
	return &TerritoryCache{
		territories: make(map[uint]core.Territory),
	}
}

// ReplaceAll swaps the cache contents for a fresh snapshot from storage.
func (c *TerritoryCache) ReplaceAll(territories []core.Territory) {
	next := make(map[uint]core.Territory, len(territories))
	for _, t := range territories {
		next[t.ID] = t
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.territories = next
}

// Add inserts or updates a single territory (used right after a successful
// claim so the player's new land is visible without a storage round-trip).
func (c *TerritoryCache) Add(t core.Territory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.territories[t.ID] = t
}

// Get returns a territory by ID.
func (c *TerritoryCache) Get(id uint) (core.Territory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.territories[id]
	return t, ok
}

// Snapshot returns all cached territories.
func (c *TerritoryCache) Snapshot() []core.Territory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.Territory, 0, len(c.territories))
	for _, t := range c.territories {
		out = append(out, t)
	}
	return out
}

// Foreign returns the territories not owned by ownerID, the set collision
// checks run against.
func (c *TerritoryCache) Foreign(ownerID string) []core.Territory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.Territory, 0, len(c.territories))
	for _, t := range c.territories {
		if t.OwnerID != ownerID {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of cached territories.
func (c *TerritoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.territories)
}

// Reset empties the cache.
func (c *TerritoryCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.territories = make(map[uint]core.Territory)
}
