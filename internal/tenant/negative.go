// internal/tenant/negative.go
//
// Negative cache: hostnames recently confirmed to have no active tenant.
//
// Context
// -------
// Bots and misconfigured DNS hammer the server with hostnames that will
// never resolve.  Each miss would otherwise cost a KV round-trip plus a
// remote config fetch.  The negative cache absorbs those: a hit returns
// NotFound with zero I/O.
//
// The map is bounded.  When full, the entry with the earliest deadline is
// evicted, so hostname-scanning traffic cannot grow it without bound.
// Deadlines come from time.Now(), whose monotonic reading makes the expiry
// immune to wall-clock steps.

package tenant

import (
	"sync"
	"time"
)

// NegativeCache is safe for concurrent use.  Construct with
// NewNegativeCache; the zero value is unusable.
type NegativeCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]time.Time // hostname → expiry deadline
	now     func() time.Time     // test hook
}

// NewNegativeCache returns a cache holding at most max entries for ttl
// each.  Panics on max < 1, matching the route cache's constructor.
func NewNegativeCache(ttl time.Duration, max int) *NegativeCache {
	if max < 1 {
		panic("tenant: negative cache max must be ≥1")
	}
	return &NegativeCache{
		ttl:     ttl,
		max:     max,
		entries: make(map[string]time.Time, 64),
		now:     time.Now,
	}
}

// Contains reports whether hostname is cached as not-found and unexpired.
// An expired entry is removed on read.
func (c *NegativeCache) Contains(hostname string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, ok := c.entries[hostname]
	if !ok {
		return false
	}
	if c.now().After(deadline) {
		delete(c.entries, hostname)
		return false
	}
	return true
}

// Add records hostname as not-found for the cache TTL, evicting the
// oldest entry first when at capacity.
func (c *NegativeCache) Add(hostname string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[hostname]; !exists && len(c.entries) >= c.max {
		var oldestKey string
		var oldestAt time.Time
		for k, at := range c.entries {
			if oldestKey == "" || at.Before(oldestAt) {
				oldestKey, oldestAt = k, at
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[hostname] = c.now().Add(c.ttl)
}

// Remove clears one hostname, making it resolvable again immediately.
// Called by the webhook fan-out after a provisioning change.
func (c *NegativeCache) Remove(hostname string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, hostname)
}

// Len reports current entry count.
func (c *NegativeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
