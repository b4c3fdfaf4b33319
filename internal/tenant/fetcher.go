// internal/tenant/fetcher.go
//
// Remote config source client.
//
// Context
// -------
// When neither the KV store nor the legacy key knows a hostname, the
// resolver asks the upstream configuration service.  That service returns
// a full tenant settings document for `GET ?hostname=<h>`, or a non-2xx.
// Per the consistency contract, any non-2xx and any transport error are
// the same outcome: unavailable.  The resolver recovers that locally into
// NotFound; it is never surfaced to a request.

package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/yanizio/storefront/internal/metrics"
)

// Fetcher is the remote config source collaborator.  Implementations must
// return a non-nil error for every unavailable outcome; the resolver does
// not distinguish error kinds.
type Fetcher interface {
	FetchTenant(ctx context.Context, hostname string) (*Config, error)
}

// HTTPFetcher talks to the real upstream service.
type HTTPFetcher struct {
	baseURL string
	http    *http.Client
}

// NewHTTPFetcher builds a fetcher with a caller-enforced timeout so a slow
// upstream cannot stall resolution indefinitely.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (f *HTTPFetcher) FetchTenant(ctx context.Context, hostname string) (*Config, error) {
	metrics.RemoteFetchTotal.Inc()

	u := f.baseURL + "?hostname=" + url.QueryEscape(hostname)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		metrics.RemoteFetchErrors.Inc()
		return nil, err
	}

	resp, err := f.http.Do(req)
	if err != nil {
		metrics.RemoteFetchErrors.Inc()
		return nil, fmt.Errorf("tenant: config source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RemoteFetchErrors.Inc()
		return nil, fmt.Errorf("tenant: config source status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.RemoteFetchErrors.Inc()
		return nil, fmt.Errorf("tenant: config source read: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(body, &cfg); err != nil {
		metrics.RemoteFetchErrors.Inc()
		return nil, fmt.Errorf("tenant: config source decode: %w", err)
	}
	if cfg.Hostname == "" {
		cfg.Hostname = hostname
	}
	return &cfg, nil
}
