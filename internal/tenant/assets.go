// internal/tenant/assets.go
//
// Generated-asset cache: derived theme CSS, keyed by the tenant's config
// key and themeHash.
//
// Context
// -------
// CSS derivation itself is a collaborator (CSSRenderer); this cache only
// decides whether the stored text is still current.  A themeHash mismatch
// is a miss, so a config update with a new hash regenerates on the next
// request even before the webhook lands.  The webhook fan-out clears the
// entry outright — it is the "response-level cache keyed by the tenant's
// config key" layer.

package tenant

import (
	"context"
	"sync"
)

// CSSRenderer derives the full stylesheet for one tenant.  The real
// implementation lives with the theming layer; tests and development use a
// stub.
type CSSRenderer interface {
	Render(ctx context.Context, cfg *Config) ([]byte, error)
}

type asset struct {
	themeHash string
	body      []byte
}

// AssetCache is safe for concurrent use.
type AssetCache struct {
	mu sync.RWMutex
	m  map[string]asset // config key → asset
}

// NewAssetCache returns an empty cache.
func NewAssetCache() *AssetCache {
	return &AssetCache{m: make(map[string]asset)}
}

// Get returns the cached body when the stored themeHash matches.
func (c *AssetCache) Get(configKey, themeHash string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.m[configKey]
	if !ok || a.themeHash != themeHash {
		return nil, false
	}
	return a.body, true
}

// Set stores body for configKey under themeHash.
func (c *AssetCache) Set(configKey, themeHash string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[configKey] = asset{themeHash: themeHash, body: body}
}

// Delete drops the entry for configKey; webhook fan-out path.
func (c *AssetCache) Delete(configKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, configKey)
}
