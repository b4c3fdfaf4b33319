// internal/tenant/clients.go
//
// Tenant client cache.
//
// Context
// -------
// Backend client handles are expensive enough to build that every request
// must not construct one, and safe enough to share that every request for
// the same tenant can receive the same instance.  The cache keys handles
// by tenantID and, transiently, by whichever hostname first looked them
// up, so a second alias converges onto the existing handle without a
// second construction.
//
// Handles never expire by TTL.  Only webhook invalidation or process exit
// retires one, which is why the webhook fan-out must clear this cache
// explicitly — nothing else ever will.

package tenant

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/commerce"
	"github.com/yanizio/storefront/internal/metrics"
)

// ClientCache is safe for concurrent use.
type ClientCache struct {
	mu sync.Mutex
	m  map[string]*commerce.Client
}

// NewClientCache returns an empty cache.
func NewClientCache() *ClientCache {
	return &ClientCache{m: make(map[string]*commerce.Client)}
}

// Get returns the handle under key (tenantID or hostname), if present.
func (c *ClientCache) Get(key string) (*commerce.Client, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cl, ok := c.m[key]
	return cl, ok
}

// For returns the shared handle for cfg, constructing it on first use.
// The handle is stored under the tenantID and under lookupKey, so aliases
// converge.  Construction happens under the lock, which is what guarantees
// reference equality for concurrent first requests.
func (c *ClientCache) For(cfg *Config, lookupKey string) *commerce.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cl, ok := c.m[cfg.TenantID]; ok {
		if lookupKey != "" && lookupKey != cfg.TenantID {
			c.m[lookupKey] = cl
		}
		return cl
	}

	cl := commerce.New(cfg.TenantID, json.RawMessage(cfg.BackendSettings))
	c.m[cfg.TenantID] = cl
	if lookupKey != "" && lookupKey != cfg.TenantID {
		c.m[lookupKey] = cl
	}
	metrics.ActiveClients.Inc()
	zap.S().Debugw("backend client constructed", "tenant", cfg.TenantID)
	return cl
}

// Invalidate drops the handle for tenantID under every key that maps to
// it — tenantID and all hostname aliases.  Removing only the primary key
// would leak stale handles that keep serving pre-invalidation credentials
// through alias lookups.
func (c *ClientCache) Invalidate(tenantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target, ok := c.m[tenantID]
	if !ok {
		return
	}
	for key, cl := range c.m {
		if cl == target {
			delete(c.m, key)
		}
	}
	metrics.ActiveClients.Dec()
	metrics.ClientEvictTotal.Inc()
	zap.S().Infow("backend client invalidated", "tenant", tenantID)
}

// Len reports how many keys are populated; test helper.
func (c *ClientCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
