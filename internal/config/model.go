// internal/config/model.go
//
// Typed configuration model for the storefront server.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                        – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `STOREFRONT_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling, so flat files and git
// history never hold real secrets — only Vault paths.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr  string `koanf:"listen_addr"  validate:"required,hostname_port"`
	MetricsAddr string `koanf:"metrics_addr" validate:"required,hostname_port"`
}

//
// Log section
//

// Log selects the zap level for both the file and console cores.
type Log struct {
	Level string `koanf:"level"`
}

//
// KV section
//

// KV selects and parameterizes the persistent key-value backend.  Exactly
// one backend is active per process; `redis` is the default.  Password and
// DSN values may be `vault:` references.
type KV struct {
	Backend       string `koanf:"backend" validate:"required,oneof=redis mysql memory"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	MySQLDSN      string `koanf:"mysql_dsn"`
}

//
// Resolver section
//

// Resolver tunes the hostname → tenant resolution path.  AutoProvision is
// a non-production convenience: unknown hostnames get a synthesized,
// unpersisted tenant instead of the negative cache.
type Resolver struct {
	NegativeTTL        time.Duration `koanf:"negative_ttl"`
	NegativeMaxEntries int           `koanf:"negative_max_entries"`
	AutoProvision      bool          `koanf:"auto_provision"`
}

//
// RouteCache section
//

// RouteCache bounds the per-process (host, path) → route entry cache.
type RouteCache struct {
	Capacity int           `koanf:"capacity"`
	HitTTL   time.Duration `koanf:"hit_ttl"`
	MissTTL  time.Duration `koanf:"miss_ttl"`
}

//
// Webhook section
//

// Webhook configures the invalidation endpoint.  Secrets is the rotation
// list; any one of them verifying a signature is sufficient.  Each element
// may be a `vault:` reference.
type Webhook struct {
	Secrets      []string      `koanf:"secrets"`
	Tolerance    time.Duration `koanf:"tolerance"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"`
	RatePerSec   float64       `koanf:"rate_per_sec"`
	Burst        int           `koanf:"burst"`
}

//
// ConfigSource section
//

// ConfigSource points at the upstream tenant-settings service consulted on
// a full cache miss.
type ConfigSource struct {
	URL     string        `koanf:"url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or STOREFRONT_ROOT override) so later code
// can build absolute file paths.
type Paths struct {
	Root string // STOREFRONT_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP         HTTP         `koanf:"http"`
	Log          Log          `koanf:"log"`
	KV           KV           `koanf:"kv"`
	Resolver     Resolver     `koanf:"resolver"`
	RouteCache   RouteCache   `koanf:"route_cache"`
	Webhook      Webhook      `koanf:"webhook"`
	ConfigSource ConfigSource `koanf:"config_source"`
	Paths        Paths        `koanf:"-"` // not loaded from config files
}
