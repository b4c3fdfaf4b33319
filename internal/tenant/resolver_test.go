// internal/tenant/resolver_test.go
//
// Unit-tests for hostname → tenant resolution.
//
// Context
// -------
// The resolver's contract has four consultation steps and one collapse
// rule (inactive == missing).  These tests verify the behaviours that
// matter operationally:
//
//   • Unknown host        → NotFound, negative-cached, no second fetch
//   • Alias resolution    → same tenantId, zero additional fetches
//   • Legacy key          → served, migrated to mapping + config keys
//   • Inactive fetch      → NotFound, indistinguishable from missing
//   • Auto-provisioning   → synthesized active tenant, never persisted
//
// Every case builds an isolated memory store, negative cache, and fake
// fetcher; nothing is shared between tests.
//
// Run: go test ./internal/tenant -v

package tenant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yanizio/storefront/internal/kv"
)

// fakeFetcher serves canned configs and counts calls.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	configs map[string]*Config // hostname → result; absent hosts error
}

func (f *fakeFetcher) FetchTenant(_ context.Context, hostname string) (*Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if cfg, ok := f.configs[hostname]; ok {
		cp := *cfg
		return &cp, nil
	}
	return nil, errors.New("config source unavailable")
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestResolver(fetch *fakeFetcher, autoProvision bool) (*Resolver, *kv.MemoryStore, *NegativeCache) {
	store := kv.NewMemory()
	neg := NewNegativeCache(5*time.Minute, 100)
	return NewResolver(store, fetch, neg, autoProvision), store, neg
}

func activeConfig(id, host string, aliases ...string) *Config {
	return &Config{
		TenantID:  id,
		Hostname:  host,
		Aliases:   aliases,
		IsActive:  true,
		ThemeHash: "abc123",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestResolve_UnknownHostIsNegativeCached(t *testing.T) {
	fetch := &fakeFetcher{}
	r, _, neg := newTestResolver(fetch, false)
	ctx := context.Background()

	if _, ok := r.Resolve(ctx, "nope.example.com"); ok {
		t.Fatal("unknown host resolved")
	}
	if !neg.Contains("nope.example.com") {
		t.Fatal("miss was not negative-cached")
	}

	// Second call must short-circuit with zero I/O.
	if _, ok := r.Resolve(ctx, "nope.example.com"); ok {
		t.Fatal("unknown host resolved on second call")
	}
	if got := fetch.callCount(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1", got)
	}
}

func TestResolve_AliasSharesTenantWithoutRefetch(t *testing.T) {
	fetch := &fakeFetcher{configs: map[string]*Config{
		"acme.example.com": activeConfig("acme", "acme.example.com", "acme.alias.com"),
	}}
	r, store, _ := newTestResolver(fetch, false)
	ctx := context.Background()

	cfg, ok := r.Resolve(ctx, "acme.example.com")
	if !ok {
		t.Fatal("primary hostname did not resolve")
	}
	if cfg.TenantID != "acme" {
		t.Fatalf("tenantID = %q, want acme", cfg.TenantID)
	}

	// The alias must resolve from the persisted mapping, not a new fetch.
	aliasCfg, ok := r.Resolve(ctx, "acme.alias.com")
	if !ok {
		t.Fatal("alias hostname did not resolve")
	}
	if aliasCfg.TenantID != "acme" {
		t.Fatalf("alias tenantID = %q, want acme", aliasCfg.TenantID)
	}
	if got := fetch.callCount(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1", got)
	}

	if id, ok, _ := LookupTenantID(ctx, store, "acme.alias.com"); !ok || id != "acme" {
		t.Fatalf("alias mapping = (%q, %v), want (acme, true)", id, ok)
	}
}

func TestResolve_LegacyKeyIsServedAndMigrated(t *testing.T) {
	fetch := &fakeFetcher{}
	r, store, _ := newTestResolver(fetch, false)
	ctx := context.Background()

	// Seed the old single-level scheme: config stored under the bare host.
	legacy := activeConfig("oldco", "oldco.example.com", "oldco.alias.com")
	if err := SaveConfig(ctx, store, legacy); err != nil {
		t.Fatalf("seed: %v", err)
	}
	raw, _, _ := store.Get(ctx, kv.TenantConfigKey("oldco"))
	_ = store.Delete(ctx, kv.TenantConfigKey("oldco"))
	_ = store.Set(ctx, kv.LegacyHostKey("oldco.example.com"), raw)

	cfg, ok := r.Resolve(ctx, "oldco.example.com")
	if !ok || cfg.TenantID != "oldco" {
		t.Fatalf("legacy resolve = (%v, %v)", cfg, ok)
	}
	if got := fetch.callCount(); got != 0 {
		t.Fatalf("fetch calls = %d, want 0", got)
	}

	// Migration: proper mapping and config keys now exist, for the alias too.
	if id, ok, _ := LookupTenantID(ctx, store, "oldco.alias.com"); !ok || id != "oldco" {
		t.Fatalf("alias mapping after migration = (%q, %v)", id, ok)
	}
	if _, found, _ := LoadConfig(ctx, store, "oldco"); !found {
		t.Fatal("config not migrated to proper key")
	}
}

func TestResolve_InactiveCollapsesToNotFound(t *testing.T) {
	inactive := activeConfig("dormant", "dormant.example.com")
	inactive.IsActive = false
	fetch := &fakeFetcher{configs: map[string]*Config{
		"dormant.example.com": inactive,
	}}
	r, _, neg := newTestResolver(fetch, false)
	ctx := context.Background()

	if _, ok := r.Resolve(ctx, "dormant.example.com"); ok {
		t.Fatal("inactive tenant resolved")
	}
	if !neg.Contains("dormant.example.com") {
		t.Fatal("inactive result was not negative-cached")
	}
}

func TestResolve_AutoProvisionSynthesizesWithoutPersisting(t *testing.T) {
	fetch := &fakeFetcher{}
	r, store, _ := newTestResolver(fetch, true)
	ctx := context.Background()

	cfg, ok := r.Resolve(ctx, "dev.localhost")
	if !ok {
		t.Fatal("auto-provision did not resolve")
	}
	if !cfg.IsActive || cfg.Hostname != "dev.localhost" {
		t.Fatalf("provisional config = %+v", cfg)
	}
	if store.Len() != 0 {
		t.Fatalf("provisional config was persisted: %d keys", store.Len())
	}
}

func TestResolve_MappingHit(t *testing.T) {
	fetch := &fakeFetcher{}
	r, store, _ := newTestResolver(fetch, false)
	ctx := context.Background()

	seeded := activeConfig("seeded", "seeded.example.com")
	if err := SaveConfig(ctx, store, seeded); err != nil {
		t.Fatalf("seed config: %v", err)
	}
	if err := SaveMappings(ctx, store, seeded); err != nil {
		t.Fatalf("seed mappings: %v", err)
	}

	cfg, ok := r.Resolve(ctx, "seeded.example.com")
	if !ok || cfg.TenantID != "seeded" {
		t.Fatalf("resolve = (%v, %v)", cfg, ok)
	}
	if got := fetch.callCount(); got != 0 {
		t.Fatalf("fetch calls = %d, want 0", got)
	}
}
