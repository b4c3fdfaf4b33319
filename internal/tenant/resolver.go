// internal/tenant/resolver.go
//
// Hostname → tenant resolution.
//
// Context
// -------
// Every inbound request passes through Resolve before anything else runs.
// The order of consultation is fixed:
//
//  1. Negative cache — unexpired hit returns NotFound with no I/O.
//  2. Hostname mapping → config by tenantID, if active.
//  3. Legacy single-level key (config stored under the bare hostname);
//     a hit backfills the proper mapping and config keys.
//  4. Remote config source — persist and return on active success, cache
//     the miss otherwise, or synthesize an unpersisted tenant when
//     auto-provisioning is on.
//
// Missing and inactive configs are the same NotFound.  The distinction is
// logged here, at debug level, and goes no further: an error surface that
// told the two apart would let anyone enumerate tenants.
//
// Concurrency
// -----------
// Resolve does not serialize concurrent cold resolutions of one hostname.
// Duplicate remote fetches are tolerated; the KV writes are idempotent for
// a given tenant, and last write wins.  Persisting uses a context detached
// from the request so an aborted request still finishes populating the
// store for the next caller.
//
// Notes
// -----
//   • Hostnames arrive pre-normalized (port stripped, lowercased) from the
//     resolve middleware; this component does not re-normalize.
//   • Oxford commas, two spaces after periods.

package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/kv"
	"github.com/yanizio/storefront/internal/metrics"
)

// Resolver maps hostnames to active tenant configs.  Construct once per
// process and share; all fields are read-only after New.
type Resolver struct {
	store         kv.Store
	fetch         Fetcher
	negative      *NegativeCache
	autoProvision bool
}

// NewResolver wires the resolver to its collaborators.  The negative cache
// comes from the process CacheRegistry so tests can inject an isolated one.
func NewResolver(store kv.Store, fetch Fetcher, negative *NegativeCache, autoProvision bool) *Resolver {
	return &Resolver{
		store:         store,
		fetch:         fetch,
		negative:      negative,
		autoProvision: autoProvision,
	}
}

// Resolve returns the active config for hostname, or ok == false when the
// hostname has no active tenant.  It never returns an error: config-source
// outages degrade to NotFound so the request pipeline stays up.
func (r *Resolver) Resolve(ctx context.Context, hostname string) (*Config, bool) {
	// 1. Negative cache, zero I/O.
	if r.negative.Contains(hostname) {
		metrics.ResolveTotal.WithLabelValues("negative").Inc()
		return nil, false
	}

	// 2. Hostname mapping → config.
	if tenantID, ok, err := LookupTenantID(ctx, r.store, hostname); err == nil && ok {
		cfg, found, err := LoadConfig(ctx, r.store, tenantID)
		if err == nil && found && cfg.IsActive {
			metrics.ResolveTotal.WithLabelValues("hit").Inc()
			return cfg, true
		}
		if err == nil && found {
			zap.S().Debugw("tenant inactive", "host", hostname, "tenant", tenantID)
		}
	} else if err != nil {
		zap.S().Warnw("kv mapping lookup failed", "host", hostname, "err", err)
	}

	// 3. Legacy key.  A hit migrates forward: proper config key plus one
	// mapping per owned hostname, so step 2 serves the next request.
	if cfg, found, err := LoadLegacyConfig(ctx, r.store, hostname); err == nil && found && cfg.IsActive {
		pctx := persistCtx(ctx)
		if err := SaveConfig(pctx, r.store, cfg); err != nil {
			zap.S().Warnw("legacy config migration failed", "host", hostname, "err", err)
		}
		if err := SaveMappings(pctx, r.store, cfg); err != nil {
			zap.S().Warnw("legacy mapping backfill failed", "host", hostname, "err", err)
		}
		metrics.ResolveTotal.WithLabelValues("legacy").Inc()
		return cfg, true
	}

	// 4. Remote config source.
	cfg, err := r.fetch.FetchTenant(ctx, hostname)
	switch {
	case err == nil && cfg.IsActive:
		pctx := persistCtx(ctx)
		if err := SaveConfig(pctx, r.store, cfg); err != nil {
			zap.S().Warnw("config persist failed", "host", hostname, "err", err)
		}
		if err := SaveMappings(pctx, r.store, cfg); err != nil {
			zap.S().Warnw("mapping persist failed", "host", hostname, "err", err)
		}
		metrics.ResolveTotal.WithLabelValues("fetched").Inc()
		zap.S().Infow("tenant fetched", "host", hostname, "tenant", cfg.TenantID)
		return cfg, true

	case err == nil:
		// Fetched but inactive.  Same NotFound as missing, by contract.
		zap.S().Debugw("fetched tenant inactive", "host", hostname, "tenant", cfg.TenantID)
		r.negative.Add(hostname)
		metrics.ResolveTotal.WithLabelValues("not_found").Inc()
		return nil, false

	case r.autoProvision:
		// Development convenience: synthesize, do not persist.
		provisional := &Config{
			TenantID:  "dev-" + uuid.NewString(),
			Hostname:  hostname,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		metrics.ResolveTotal.WithLabelValues("provisioned").Inc()
		zap.S().Infow("tenant auto-provisioned", "host", hostname, "tenant", provisional.TenantID)
		return provisional, true

	default:
		zap.S().Debugw("tenant unavailable", "host", hostname, "err", err)
		r.negative.Add(hostname)
		metrics.ResolveTotal.WithLabelValues("not_found").Inc()
		return nil, false
	}
}

// persistCtx detaches cache writes from request cancellation: a resolution
// that was nearly done should finish populating the store for the next
// caller instead of being torn down.  Backend-level timeouts still bound
// the writes.
func persistCtx(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
