// internal/tenant/store.go
//
// Persistence helpers over the KV store.
//
// Context
// -------
// Free functions in the style of a repository: each takes a context, the
// kv.Store, and its arguments.  Serialization is plain JSON.  The
// backendSettings blob is schema-checked here, at the KV boundary, and
// nowhere else — resolver and client cache never branch on its shape.
//
// Writes are last-write-wins by design; concurrent cold resolutions of the
// same hostname may both persist, and either result is correct because
// fetches for one tenant are idempotent.

package tenant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/storefront/internal/kv"
)

var validate = validator.New()

// settingsSchema is the boundary check for the opaque blob.  It validates
// shape and field syntax without giving the rest of the package any reason
// to look inside.
type settingsSchema struct {
	Version  int    `json:"version"   validate:"gte=0"`
	APIURL   string `json:"api_url"   validate:"omitempty,url"`
	APIToken string `json:"api_token"`
	Locale   string `json:"locale"    validate:"omitempty,bcp47_language_tag"`
	Market   string `json:"market"`
}

// validateSettings rejects blobs that would produce a useless client.
func validateSettings(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	var s settingsSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("tenant: backend settings not JSON: %w", err)
	}
	if err := validate.Struct(&s); err != nil {
		return fmt.Errorf("tenant: backend settings invalid: %w", err)
	}
	return nil
}

// SaveConfig validates and writes cfg under its config key.
func SaveConfig(ctx context.Context, store kv.Store, cfg *Config) error {
	if cfg.TenantID == "" {
		return fmt.Errorf("tenant: config missing tenant_id")
	}
	if err := validateSettings(cfg.BackendSettings); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("tenant: marshal config %s: %w", cfg.TenantID, err)
	}
	return store.Set(ctx, kv.TenantConfigKey(cfg.TenantID), string(raw))
}

// SaveMappings writes one hostname mapping per owned hostname.
func SaveMappings(ctx context.Context, store kv.Store, cfg *Config) error {
	for _, h := range cfg.Hostnames() {
		if err := store.Set(ctx, kv.HostMappingKey(h), cfg.TenantID); err != nil {
			return err
		}
	}
	return nil
}

// LookupTenantID resolves a hostname mapping.  ok == false means no
// mapping exists; err means the store itself failed.
func LookupTenantID(ctx context.Context, store kv.Store, hostname string) (string, bool, error) {
	return store.Get(ctx, kv.HostMappingKey(hostname))
}

// LoadConfig fetches and decodes the config for one tenantID.
func LoadConfig(ctx context.Context, store kv.Store, tenantID string) (*Config, bool, error) {
	return loadByKey(ctx, store, kv.TenantConfigKey(tenantID))
}

// LoadLegacyConfig reads the pre-mapping scheme, where the config was
// stored directly under the bare hostname.
func LoadLegacyConfig(ctx context.Context, store kv.Store, hostname string) (*Config, bool, error) {
	return loadByKey(ctx, store, kv.LegacyHostKey(hostname))
}

func loadByKey(ctx context.Context, store kv.Store, key string) (*Config, bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, false, fmt.Errorf("tenant: decode config at %q: %w", key, err)
	}
	return &cfg, true, nil
}

// DeleteTenant removes the config, its legacy-keyed duplicate, and every
// hostname mapping the config owns.  The extra hostnames argument lets the
// webhook path clear the triggering hostname even when the stored config
// no longer lists it.
func DeleteTenant(ctx context.Context, store kv.Store, tenantID string, hostnames []string) error {
	for _, h := range hostnames {
		if err := store.Delete(ctx, kv.HostMappingKey(h)); err != nil {
			return err
		}
		if err := store.Delete(ctx, kv.LegacyHostKey(h)); err != nil {
			return err
		}
	}
	return store.Delete(ctx, kv.TenantConfigKey(tenantID))
}
