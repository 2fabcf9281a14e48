package pico

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// StatCache memoizes the compiled stats of live instances by instance id.
// Entries unused for longer than the grace period are dropped by a
// background cleanup loop. Safe for concurrent use.
type StatCache struct {
	registry *Registry

	// entries maps uuid.UUID -> *statCacheEntry
	entries sync.Map

	// grace is how long an entry survives without being read
	grace time.Duration

	// cleanupInterval is how often to run cache cleanup
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// statCacheEntry holds the compiled stats of a single instance.
type statCacheEntry struct {
	stats *CompiledStatMap

	// usedAt is when the entry was last read (unix millis)
	usedAt atomic.Int64
}

// newStatCache creates a stat cache. A non-positive interval disables the
// cleanup loop.
func newStatCache(r *Registry, grace, interval time.Duration) *StatCache {
	c := &StatCache{
		registry:        r,
		grace:           grace,
		cleanupInterval: interval,
		stopCleanup:     make(chan struct{}),
	}
	if interval > 0 {
		go c.cleanupLoop()
	}
	return c
}

// Cache returns the registry's stat cache.
func (r *Registry) Cache() *StatCache {
	return r.cache
}

// Get returns the compiled stats of inst, evaluating its tree on a miss.
func (c *StatCache) Get(inst *Instance) (*CompiledStatMap, error) {
	now := time.Now().UnixMilli()
	if v, ok := c.entries.Load(inst.ID); ok {
		entry := v.(*statCacheEntry)
		entry.usedAt.Store(now)
		return entry.stats, nil
	}

	stats, err := c.registry.Evaluate(inst.Tree)
	if err != nil {
		return nil, err
	}

	entry := &statCacheEntry{stats: stats}
	entry.usedAt.Store(now)
	if actual, loaded := c.entries.LoadOrStore(inst.ID, entry); loaded {
		return actual.(*statCacheEntry).stats, nil
	}
	statCacheEntries.Inc()
	return stats, nil
}

// Invalidate drops the entry for id. Call it whenever the instance's tree changes.
func (c *StatCache) Invalidate(id uuid.UUID) {
	if _, ok := c.entries.LoadAndDelete(id); ok {
		statCacheEntries.Dec()
	}
}

// Len returns the number of cached entries.
func (c *StatCache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// cleanupLoop periodically drops expired entries.
func (c *StatCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCleanup:
			return
		case now := <-ticker.C:
			c.cleanup(now)
		}
	}
}

// cleanup removes entries not read within the grace period before now and
// returns how many were removed.
func (c *StatCache) cleanup(now time.Time) int {
	deadline := now.Add(-c.grace).UnixMilli()
	removed := 0

	c.entries.Range(func(key, value any) bool {
		entry := value.(*statCacheEntry)
		if entry.usedAt.Load() < deadline {
			if _, ok := c.entries.LoadAndDelete(key); ok {
				statCacheEntries.Dec()
				removed++
			}
		}
		return true
	})

	if removed > 0 {
		c.registry.log.Debug("pico: evicted compiled stats", "count", removed)
	}
	return removed
}

// stop shuts down the cleanup loop and clears the cache.
func (c *StatCache) stop() {
	c.stopOnce.Do(func() {
		close(c.stopCleanup)
	})

	c.entries.Range(func(key, _ any) bool {
		if _, ok := c.entries.LoadAndDelete(key); ok {
			statCacheEntries.Dec()
		}
		return true
	})
}
