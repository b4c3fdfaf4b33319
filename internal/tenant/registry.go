// internal/tenant/registry.go
//
// Per-process cache registry.
//
// Context
// -------
// The negative cache, client cache, route cache, and asset cache are all
// process-local mutable state.  Rather than ambient package-level
// singletons, they live together on one CacheRegistry constructed once in
// main and passed explicitly into the resolver and the webhook processor.
// Tests build an isolated registry per case and never touch shared state.
//
// Across replicas each registry is independent; only the KV store is
// globally consistent.  The webhook fan-out therefore clears this
// registry's caches directly — the negative and client caches have no TTL
// and would otherwise stay stale forever.

package tenant

import (
	"time"

	"github.com/yanizio/storefront/internal/routecache"
)

// RegistryOptions sizes the caches.  Zero values are replaced with the
// production defaults.
type RegistryOptions struct {
	NegativeTTL        time.Duration
	NegativeMaxEntries int
	RouteCapacity      int
	RouteHitTTL        time.Duration
	RouteMissTTL       time.Duration
}

// CacheRegistry aggregates every process-local cache layer.
type CacheRegistry struct {
	Negative *NegativeCache
	Clients  *ClientCache
	Routes   *routecache.Cache
	Assets   *AssetCache
}

// NewRegistry builds all caches.  Constructed once per server process and
// never serialized.
func NewRegistry(opts RegistryOptions) *CacheRegistry {
	if opts.NegativeTTL <= 0 {
		opts.NegativeTTL = 5 * time.Minute
	}
	if opts.NegativeMaxEntries <= 0 {
		opts.NegativeMaxEntries = 10_000
	}
	if opts.RouteCapacity <= 0 {
		opts.RouteCapacity = 1024
	}
	if opts.RouteHitTTL <= 0 {
		opts.RouteHitTTL = 10 * time.Minute
	}
	if opts.RouteMissTTL <= 0 {
		opts.RouteMissTTL = 30 * time.Second
	}
	return &CacheRegistry{
		Negative: NewNegativeCache(opts.NegativeTTL, opts.NegativeMaxEntries),
		Clients:  NewClientCache(),
		Routes:   routecache.New(opts.RouteCapacity, opts.RouteHitTTL, opts.RouteMissTTL),
		Assets:   NewAssetCache(),
	}
}
