// internal/tenant/context.go
//
// Request-context carriage of the resolved tenant.  The resolve middleware
// stores the Config; downstream handlers read it.  The config is the only
// tenant identity a handler may trust — never a client-supplied hint.

package tenant

import "context"

type ctxKey struct{}

// WithConfig returns a child context carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the resolved config, or nil when the request did not
// pass through the resolve middleware.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(ctxKey{}).(*Config)
	return cfg
}
