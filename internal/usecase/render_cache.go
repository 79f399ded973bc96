package usecase

import (
	"sync"
	"time"

	"github.com/3-lines-studio/studio/internal/vdom"
)

type cacheEntry struct {
	tree      *vdom.Node
	expiresAt time.Time
	addedAt   uint64
}

// renderCache keeps rendered trees keyed by core.RenderKey. Entries expire
// after ttl and the oldest entry is evicted once capacity is reached.
type renderCache struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	ttl      time.Duration
	capacity int
	seq      uint64
	now      func() time.Time
}

func newRenderCache(ttl time.Duration, capacity int) *renderCache {
	return &renderCache{
		entries:  make(map[string]cacheEntry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// get returns a clone so callers can mark or mutate the tree freely.
func (c *renderCache) get(key string) (*vdom.Node, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	return entry.tree.Clone(), true
}

func (c *renderCache) set(key string, tree *vdom.Node) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.seq++
	c.entries[key] = cacheEntry{
		tree:      tree.Clone(),
		expiresAt: c.now().Add(c.ttl),
		addedAt:   c.seq,
	}
}

func (c *renderCache) evictLocked() {
	now := c.now()
	oldestKey := ""
	var oldest uint64
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			continue
		}
		if oldestKey == "" || e.addedAt < oldest {
			oldestKey, oldest = k, e.addedAt
		}
	}
	if len(c.entries) >= c.capacity && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *renderCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *renderCache) clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}
