// internal/commerce/client.go
//
// Commerce-backend client handle.
//
// Context
// -------
// Each tenant talks to the commerce backend with its own credentials,
// locale, and market.  A Client is built once per tenant per process from
// the tenant's opaque backendSettings blob, held in the client cache, and
// shared across concurrent requests — every call is per-operation and
// stateless, so no request-scoped state lives on the handle.
//
// The settings blob is parsed here and nowhere else.  The resolver and the
// client cache treat it as bytes; only construction knows the shape.
//
// Notes
// -----
// • Handles are never closed by TTL; only webhook invalidation or process
//   exit retires one.
// • Oxford commas, two spaces after periods.

package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// settings is the internal shape of the backendSettings blob.  Versioned so
// upstream can evolve the document without breaking older servers.
type settings struct {
	Version  int    `json:"version"`
	APIURL   string `json:"api_url"`
	APIToken string `json:"api_token"`
	Locale   string `json:"locale"`
	Market   string `json:"market"`
}

// Client is a process-local handle to the commerce backend for one tenant.
// Safe for concurrent use.
type Client struct {
	tenantID string
	cfg      settings
	http     *http.Client
}

// New builds a Client from the tenant's raw backendSettings.  Unknown or
// missing fields degrade to zero values; the handle is still constructed so
// a half-provisioned tenant renders its "unavailable" page instead of
// crashing request handling.
func New(tenantID string, raw json.RawMessage) *Client {
	var s settings
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s); err != nil {
			zap.S().Warnw("backend settings unparseable, using defaults",
				"tenant", tenantID, "err", err)
		}
	}
	return &Client{
		tenantID: tenantID,
		cfg:      s,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// TenantID reports which tenant this handle was built for.
func (c *Client) TenantID() string { return c.tenantID }

// Locale reports the tenant's storefront locale, or "" when unset.
func (c *Client) Locale() string { return c.cfg.Locale }

// Query runs one GraphQL operation against the backend and returns the raw
// `data` document.  Errors from the backend are flattened into one error.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": vars,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}
	if c.cfg.Market != "" {
		req.Header.Set("X-Market", c.cfg.Market)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("commerce: query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("commerce: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("commerce: backend status %d", resp.StatusCode)
	}

	var out struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("commerce: decode response: %w", err)
	}
	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("commerce: backend error: %s", out.Errors[0].Message)
	}
	return out.Data, nil
}
