// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file — `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `STOREFRONT_`, where `__` maps to “.”
     (e.g., `STOREFRONT_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
defaulted, validated, enriched with the runtime root path, and cached in
an `atomic.Pointer` for lock-free reads.  `Reload()` simply calls `Load()`
again and swaps the pointer.  `vault:` references are resolved separately
by `ResolveSecrets` once a Vault client exists, because Vault itself may
need values from this tree.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay.
  • ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves STOREFRONT_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to executable heuristic for the
// production layout.
func rootDir() string {
	if r := os.Getenv("STOREFRONT_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, defaults, validates, and caches
// Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: STOREFRONT_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("STOREFRONT_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"kv_backend", cfg.KV.Backend,
		"auto_provision", cfg.Resolver.AutoProvision,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// applyDefaults fills zero values with the operational defaults.  Webhook
// secrets deliberately have no default; an empty list is a server-side
// misconfiguration the webhook handler reports as 500.
func applyDefaults(c *Config) {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.KV.Backend == "" {
		c.KV.Backend = "redis"
	}
	if c.Resolver.NegativeTTL <= 0 {
		c.Resolver.NegativeTTL = 5 * time.Minute
	}
	if c.Resolver.NegativeMaxEntries <= 0 {
		c.Resolver.NegativeMaxEntries = 10_000
	}
	if c.RouteCache.Capacity <= 0 {
		c.RouteCache.Capacity = 1024
	}
	if c.RouteCache.HitTTL <= 0 {
		c.RouteCache.HitTTL = 10 * time.Minute
	}
	if c.RouteCache.MissTTL <= 0 {
		c.RouteCache.MissTTL = 30 * time.Second
	}
	if c.Webhook.Tolerance <= 0 {
		c.Webhook.Tolerance = 5 * time.Minute
	}
	if c.Webhook.MaxBodyBytes <= 0 {
		c.Webhook.MaxBodyBytes = 64 << 10
	}
	if c.Webhook.RatePerSec <= 0 {
		c.Webhook.RatePerSec = 5
	}
	if c.Webhook.Burst <= 0 {
		c.Webhook.Burst = 10
	}
	if c.ConfigSource.Timeout <= 0 {
		c.ConfigSource.Timeout = 5 * time.Second
	}
}

/*──────────────────────────── vault references ────────────────────────────*/

// SecretGetter is the slice of the Vault client the loader needs.  Declared
// here so config does not import internal/vault.
type SecretGetter interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// ResolveSecrets replaces every `vault:<path>#<key>` value in cfg with the
// secret it names.  Called once during boot, after the Vault client is up.
func ResolveSecrets(ctx context.Context, cfg *Config, v SecretGetter) error {
	resolve := func(val string) (string, error) {
		const pfx = "vault:"
		if !strings.HasPrefix(val, pfx) {
			return val, nil
		}
		ref := strings.TrimPrefix(val, pfx)
		path, key, ok := strings.Cut(ref, "#")
		if !ok {
			return "", fmt.Errorf("config: malformed vault reference %q", val)
		}
		return v.GetKV(ctx, path, key, time.Hour)
	}

	var err error
	if cfg.KV.RedisPassword, err = resolve(cfg.KV.RedisPassword); err != nil {
		return err
	}
	if cfg.KV.MySQLDSN, err = resolve(cfg.KV.MySQLDSN); err != nil {
		return err
	}
	for i, s := range cfg.Webhook.Secrets {
		if cfg.Webhook.Secrets[i], err = resolve(s); err != nil {
			return fmt.Errorf("config: webhook secret %d: %w", i, err)
		}
	}
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
