// internal/routecache/cache.go
//
// Bounded LRU in front of the URL → entity resolver.
//
// Context
// -------
// Resolving a storefront path is the most expensive per-request operation
// we have: multiple backend calls behind one lookup.  The cache keys on
// (hostname, normalized path) and differentiates TTL by result: misses are
// cheap to re-check and route topology changes fast, so they expire in
// seconds; resolved entities live for minutes.
//
// Eviction is least-recently-used once capacity is reached, independent of
// TTL, so hostname/path enumeration cannot grow memory without bound.
//
// This is the one cache layer the webhook fan-out does NOT touch.  Its
// invalidation trigger is route topology, not tenant config, and staleness
// is bounded by its own TTL.
//
// Notes
// -----
// • container/list plus a map, the classic shape.  Expired entries are
//   dropped on read; LRU pressure handles the rest.
// • Oxford commas, two spaces after periods.

package routecache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/yanizio/storefront/internal/metrics"
)

// Resolution is the outcome for one (hostname, path).  A zero Type means
// the path resolves to nothing; that result is cached too, on the short
// TTL.
type Resolution struct {
	Type      string // "product", "category", "page", or "" for not found
	EntityID  string
	Canonical string
}

// NotFound reports whether the resolution carries no entity.
func (r Resolution) NotFound() bool { return r.Type == "" }

// ResolveFunc is the slow underlying resolver the cache fronts.
type ResolveFunc func(ctx context.Context, hostname, path string) (Resolution, error)

type cacheKey struct {
	host string
	path string
}

type cacheEntry struct {
	key       cacheKey
	res       Resolution
	expiresAt time.Time
}

// Cache is safe for concurrent use.  Zero value is unusable; construct
// with New.
type Cache struct {
	mu      sync.Mutex
	cap     int
	hitTTL  time.Duration
	missTTL time.Duration
	ll      *list.List
	dict    map[cacheKey]*list.Element
	now     func() time.Time // test hook
}

// New returns a Cache with the given capacity and TTL split.  Panics on
// capacity < 1.
func New(capacity int, hitTTL, missTTL time.Duration) *Cache {
	if capacity < 1 {
		panic("routecache: capacity must be ≥1")
	}
	return &Cache{
		cap:     capacity,
		hitTTL:  hitTTL,
		missTTL: missTTL,
		ll:      list.New(),
		dict:    make(map[cacheKey]*list.Element, capacity),
		now:     time.Now,
	}
}

// Resolve returns the cached resolution for (hostname, rawPath) or
// delegates to fn and caches its result.  Resolver errors are returned
// uncached so a transient backend failure does not poison the entry.
func (c *Cache) Resolve(ctx context.Context, hostname, rawPath string, fn ResolveFunc) (Resolution, error) {
	path := NormalizePath(rawPath)
	key := cacheKey{host: hostname, path: path}

	if res, ok := c.get(key); ok {
		metrics.RouteCacheHits.Inc()
		return res, nil
	}
	metrics.RouteCacheMisses.Inc()

	res, err := fn(ctx, hostname, path)
	if err != nil {
		return Resolution{}, err
	}
	c.add(key, res)
	return res, nil
}

// Len reports current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *Cache) get(key cacheKey) (Resolution, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, ok := c.dict[key]
	if !ok {
		return Resolution{}, false
	}
	ent := ele.Value.(*cacheEntry)
	if c.now().After(ent.expiresAt) {
		c.ll.Remove(ele)
		delete(c.dict, key)
		return Resolution{}, false
	}
	c.ll.MoveToFront(ele)
	return ent.res, true
}

func (c *Cache) add(key cacheKey, res Resolution) {
	ttl := c.hitTTL
	if res.NotFound() {
		ttl = c.missTTL
	}
	ent := &cacheEntry{key: key, res: res, expiresAt: c.now().Add(ttl)}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.dict[key]; ok {
		ele.Value = ent
		c.ll.MoveToFront(ele)
		return
	}
	c.dict[key] = c.ll.PushFront(ent)
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		delete(c.dict, last.Value.(*cacheEntry).key)
		metrics.RouteCacheEvictions.Inc()
	}
}
