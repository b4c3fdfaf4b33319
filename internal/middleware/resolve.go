// internal/middleware/resolve.go
//
// Tenant resolution middleware.
//
// Context
// -------
// Every storefront request passes through here before any handler runs.
// The Host header is the ONLY tenant identity input: it is normalized
// (port stripped, lowercased) and handed to the resolver.  No cookie,
// header, or query hint is ever consulted — trusting a client-supplied
// hint for authorization-adjacent routing would let a visitor steer
// themselves into another tenant.
//
// On NotFound the response is one uniform "site not available" page with
// status 404.  Whether the tenant is missing, disabled, or merely
// unfetchable is invisible from outside; the distinction lives only in
// the resolver's debug logs.

package middleware

import (
	"net/http"
	"strings"

	"github.com/yanizio/storefront/internal/tenant"
)

const unavailablePage = `<!doctype html>
<html><head><title>Not Available</title></head>
<body><h1>This site is not available.</h1></body></html>
`

// ResolveTenant wraps next with hostname → tenant resolution.  The
// resolved config rides the request context; handlers read it with
// tenant.FromContext.
func ResolveTenant(resolver *tenant.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := NormalizeHost(r.Host)

			cfg, ok := resolver.Resolve(r.Context(), host)
			if !ok {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(unavailablePage))
				return
			}

			next.ServeHTTP(w, r.WithContext(tenant.WithConfig(r.Context(), cfg)))
		})
	}
}

// NormalizeHost strips any :port suffix from a Host header and lowercases
// the remainder.  Case rules live here, at the caller, not in the
// resolver.
func NormalizeHost(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		h = h[:i]
	}
	return strings.ToLower(h)
}
