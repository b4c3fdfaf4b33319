// internal/tenant/model.go
//
// Tenant configuration record.
//
// Context
// -------
// Config is the authoritative record for one store: its identity, the
// hostnames that reach it, the opaque credentials blob for the commerce
// backend, and the theme hash that keys derived CSS.  It is persisted as
// JSON in the KV store under `tenant:cfg:<id>` and mirrored into one
// `tenant:host:<h>` mapping per owned hostname.
//
// The operational rule that matters everywhere: only an active config may
// satisfy a resolution.  Inactive and missing collapse into the same
// NotFound from the caller's point of view, so error surfaces never reveal
// whether a tenant exists.
//
// Notes
// -----
//   • BackendSettings stays raw bytes here; only commerce.New parses it.
//   • Oxford commas, two spaces after periods.

package tenant

import (
	"encoding/json"
	"time"
)

// Config is one tenant's authoritative record.
type Config struct {
	TenantID        string          `json:"tenant_id"`
	Hostname        string          `json:"hostname"`
	Aliases         []string        `json:"aliases,omitempty"`
	BackendSettings json.RawMessage `json:"backend_settings,omitempty"`
	IsActive        bool            `json:"is_active"`
	ThemeHash       string          `json:"theme_hash,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Hostnames returns {Hostname} ∪ Aliases, deduplicated, primary first.
func (c *Config) Hostnames() []string {
	out := make([]string, 0, 1+len(c.Aliases))
	seen := make(map[string]struct{}, 1+len(c.Aliases))
	for _, h := range append([]string{c.Hostname}, c.Aliases...) {
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
