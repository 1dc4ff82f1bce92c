package capability

import (
	"sort"
	"sync"
	"time"
)

// Cache is the set of model identifiers available to the current credential.
// It starts unpopulated and stays populated until Invalidate is called, or
// until maxAge elapses when one is configured.
type Cache struct {
	mu        sync.RWMutex
	models    map[string]struct{}
	populated bool
	filledAt  time.Time
	gen       uint64
	maxAge    time.Duration
	now       func() time.Time
}

// NewCache creates an empty cache. A zero maxAge means entries never expire.
func NewCache(maxAge time.Duration) *Cache {
	return &Cache{maxAge: maxAge, now: time.Now}
}

// Populate replaces the cache contents with ids.
func (c *Cache) Populate(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fill(ids)
}

// Generation returns a counter that Invalidate increments.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// PopulateIf fills the cache only if no Invalidate happened since gen was read.
func (c *Cache) PopulateIf(gen uint64, ids []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.fill(ids)
	return true
}

func (c *Cache) fill(ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	c.models = set
	c.populated = true
	c.filledAt = c.now()
}

// Invalidate clears the cache so the next resolution lists models again.
// A listing started before the call can no longer populate it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.models = nil
	c.populated = false
	c.filledAt = time.Time{}
}

// Populated reports whether the cache holds a usable listing.
func (c *Cache) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fresh()
}

func (c *Cache) fresh() bool {
	if !c.populated {
		return false
	}
	return c.maxAge <= 0 || c.now().Sub(c.filledAt) < c.maxAge
}

// Has reports whether id is cached. The second result is false when the cache is not populated.
func (c *Cache) Has(id string) (found bool, populated bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.fresh() {
		return false, false
	}
	_, found = c.models[id]
	return found, true
}

// Models returns the cached identifiers in sorted order.
func (c *Cache) Models() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.fresh() {
		return nil
	}
	out := make([]string, 0, len(c.models))
	for id := range c.models {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
