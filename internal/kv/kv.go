// internal/kv/kv.go
//
// Persistent key-value store contract.
//
// Context
// -------
// The KV store is the only cross-process source of truth for the tenant
// subsystem: hostname mappings, tenant configs, and webhook dedup records
// all live here under stable key prefixes (see keys.go).  Every process
// replica talks to the same store; all other caches are per-process.
//
// Two production backends exist — Redis (kv/redis.go) and MySQL
// (kv/sql.go) — selected by `kv.backend` in the config tree.  The in-memory
// store (kv/memory.go) backs tests and single-node development.
//
// Notes
// -----
// • Get reports absence via the bool, not an error; an error means the
//   backend itself failed.
// • Callers pass a context so round-trips respect request deadlines.
// • Oxford commas, two spaces after periods.

package kv

import "context"

// Store is the minimal durable mapping contract the tenant subsystem needs.
type Store interface {
	// Get returns the value for key, or ok == false when absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set writes key unconditionally.  Last write wins.
	Set(ctx context.Context, key, value string) error

	// Delete removes key.  Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies backend reachability; used by /healthz.
	Ping(ctx context.Context) error
}
