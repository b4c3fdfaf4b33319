// cmd/web/main.go
//
// Storefront server – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load config (conf/.env → conf/global.yaml → STOREFRONT_* env).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Optional Vault client; resolve `vault:` config references (webhook
//     secrets, KV credentials).
//
//  4. Connect the persistent KV store (redis, mysql, or memory).
//
//  5. Build the per-process CacheRegistry, the tenant resolver, and the
//     webhook processor.
//
//  6. Mount routes:
//
//     • POST /webhooks/tenant  – invalidation endpoint (no tenant resolution)
//     • GET  /healthz          – KV reachability
//     • GET  /assets/site.css  – derived theme CSS, cached by themeHash
//     • everything else        – tenant-resolved storefront catch-all
//
//  7. Run the app listener and the /metrics listener under one errgroup;
//     SIGINT/SIGTERM drains both.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/storefront/internal/config"
	"github.com/yanizio/storefront/internal/kv"
	"github.com/yanizio/storefront/internal/logger"
	"github.com/yanizio/storefront/internal/middleware"
	"github.com/yanizio/storefront/internal/routecache"
	"github.com/yanizio/storefront/internal/server"
	"github.com/yanizio/storefront/internal/tenant"
	"github.com/yanizio/storefront/internal/vault"
	"github.com/yanizio/storefront/internal/webhook"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, cfg.Log.Level, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Vault (optional) and secret resolution ─────────────────────
	//
	if vault.Enabled() {
		vc, err := vault.New(ctx)
		if err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
		if err := config.ResolveSecrets(ctx, cfg, vc); err != nil {
			logOut.Fatalf("resolve vault references: %v", err)
		}
		logOut.Infow("vault online")
	}

	//
	// ── 2.  Persistent KV store ────────────────────────────────────────
	//
	store, err := openKV(ctx, cfg)
	if err != nil {
		logOut.Fatalf("connect kv store: %v", err)
	}
	logOut.Infow("kv store online", "backend", cfg.KV.Backend)

	//
	// ── 3.  Caches, resolver, webhook processor ────────────────────────
	//
	registry := tenant.NewRegistry(tenant.RegistryOptions{
		NegativeTTL:        cfg.Resolver.NegativeTTL,
		NegativeMaxEntries: cfg.Resolver.NegativeMaxEntries,
		RouteCapacity:      cfg.RouteCache.Capacity,
		RouteHitTTL:        cfg.RouteCache.HitTTL,
		RouteMissTTL:       cfg.RouteCache.MissTTL,
	})

	fetcher := tenant.NewHTTPFetcher(cfg.ConfigSource.URL, cfg.ConfigSource.Timeout)
	resolver := tenant.NewResolver(store, fetcher, registry.Negative, cfg.Resolver.AutoProvision)

	processor := webhook.NewProcessor(store, registry, cfg.Webhook.Secrets,
		cfg.Webhook.Tolerance, cfg.Webhook.MaxBodyBytes,
		cfg.Webhook.RatePerSec, cfg.Webhook.Burst)

	if len(cfg.Webhook.Secrets) == 0 {
		logOut.Warnw("no webhook secrets configured; invalidation endpoint will return 500")
	}

	//
	// ── 4.  Routes ─────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(middleware.Security)

	r.Post("/webhooks/tenant", webhook.NewHandler(processor).ServeHTTP)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		pingCtx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			http.Error(w, "kv unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.ResolveTenant(resolver))
		r.Get("/assets/site.css", assetsHandler(registry, baseCSS{}))
		r.NotFound(storefrontHandler(registry))
	})

	//
	// ── 5.  Listeners under one errgroup ───────────────────────────────
	//
	app := server.New(cfg.HTTP.ListenAddr, r)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := server.New(cfg.HTTP.MetricsAddr, metricsMux)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := app.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logOut.Infow("metrics listening", "addr", cfg.HTTP.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(drainCtx)
		return app.Shutdown(drainCtx)
	})

	if err := g.Wait(); err != nil {
		logOut.Fatalf("server: %v", err)
	}
	logOut.Infow("shutdown complete")
}

// openKV selects the configured backend.
func openKV(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	switch cfg.KV.Backend {
	case "redis":
		return kv.NewRedis(ctx, cfg.KV.RedisAddr, cfg.KV.RedisPassword, cfg.KV.RedisDB)
	case "mysql":
		return kv.NewSQL(ctx, cfg.KV.MySQLDSN)
	case "memory":
		return kv.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown kv backend %q", cfg.KV.Backend)
	}
}

// storefrontHandler is the tenant-resolved catch-all: route resolution via
// the route cache, then a minimal placeholder render.  The real page
// pipeline (templates, GraphQL data, SEO) hangs off the Resolution.
func storefrontHandler(registry *tenant.CacheRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := tenant.FromContext(r.Context())
		host := middleware.NormalizeHost(r.Host)
		client := registry.Clients.For(cfg, host)

		res, err := registry.Routes.Resolve(r.Context(), host, r.URL.Path,
			func(ctx context.Context, _, path string) (routecache.Resolution, error) {
				rt, err := client.ResolveRoute(ctx, path)
				if err != nil {
					return routecache.Resolution{}, err
				}
				return routecache.Resolution{
					Type:      rt.Type,
					EntityID:  rt.EntityID,
					Canonical: rt.Canonical,
				}, nil
			})
		if err != nil {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		if res.NotFound() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!doctype html><html><body><h1>%s %s</h1></body></html>\n",
			res.Type, res.EntityID)
	}
}

// assetsHandler serves derived theme CSS, cached per tenant by themeHash.
func assetsHandler(registry *tenant.CacheRegistry, renderer tenant.CSSRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := tenant.FromContext(r.Context())
		key := kv.TenantConfigKey(cfg.TenantID)

		body, ok := registry.Assets.Get(key, cfg.ThemeHash)
		if !ok {
			var err error
			body, err = renderer.Render(r.Context(), cfg)
			if err != nil {
				http.Error(w, "stylesheet unavailable", http.StatusServiceUnavailable)
				return
			}
			registry.Assets.Set(key, cfg.ThemeHash, body)
		}

		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=300")
		_, _ = w.Write(body)
	}
}

// baseCSS is the in-tree renderer: the base stylesheet stamped with the
// theme fingerprint.  The full color-derivation pipeline is an external
// collaborator and plugs in behind tenant.CSSRenderer.
type baseCSS struct{}

func (baseCSS) Render(_ context.Context, cfg *tenant.Config) ([]byte, error) {
	css := fmt.Sprintf("/* theme %s */\n:root{--sf-font:system-ui,sans-serif;}\nbody{font-family:var(--sf-font);margin:0;}\n",
		cfg.ThemeHash)
	return []byte(css), nil
}
