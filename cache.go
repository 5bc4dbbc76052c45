package pathtoolkit

import (
	"sync"
	"sync/atomic"

	"github.com/tevino/abool/v2"
)

// tokenCache memoises compiled programs keyed by the raw path text. The
// whole cache is wiped whenever the syntax table mutates or caching is
// re-enabled. The cache is bounded by capacity: once full, each new key
// evicts the oldest inserted key, so entries are also dropped one at a time.
type tokenCache struct {
	capacity int
	items    map[string]*Program
	order    []string
	mutex    sync.RWMutex

	enabled *abool.AtomicBool

	hits   atomic.Int64
	misses atomic.Int64
}

const defaultCacheCapacity = 512

func newTokenCache() *tokenCache {
	return &tokenCache{
		capacity: defaultCacheCapacity,
		items:    make(map[string]*Program),
		order:    make([]string, 0, defaultCacheCapacity),
		enabled:  abool.NewBool(true),
	}
}

func (c *tokenCache) get(key string) (*Program, bool) {
	if !c.enabled.IsSet() {
		return nil, false
	}
	c.mutex.RLock()
	p, ok := c.items[key]
	c.mutex.RUnlock()
	if ok {
		c.hits.Add(1)
		return p, true
	}
	c.misses.Add(1)
	return nil, false
}

func (c *tokenCache) put(key string, p *Program) {
	if !c.enabled.IsSet() {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, exists := c.items[key]; !exists {
		if len(c.items) >= c.capacity {
			// Evict oldest entry
			delete(c.items, c.order[0])
			c.order = c.order[1:]
		}
		c.order = append(c.order, key)
	}
	c.items[key] = p
}

// wipe discards every entry. Compiled programs already handed out stay
// valid; only the memo is dropped.
func (c *tokenCache) wipe() {
	c.mutex.Lock()
	c.items = make(map[string]*Program)
	c.order = c.order[:0]
	c.mutex.Unlock()
}

// setEnabled toggles caching. Re-enabling starts from an empty cache.
func (c *tokenCache) setEnabled(on bool) {
	if on && !c.enabled.IsSet() {
		c.wipe()
	}
	c.enabled.SetTo(on)
}

func (c *tokenCache) stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *tokenCache) len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.items)
}
