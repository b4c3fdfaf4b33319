// internal/commerce/routes.go
//
// URL → entity resolution against the commerce backend.  This is the slow,
// multi-call operation the route cache fronts; callers should never hit it
// directly on the request path.

package commerce

import (
	"context"
	"encoding/json"
)

// Route is the entity a storefront path resolves to.  A zero Type means the
// backend knows no entity at that path.
type Route struct {
	Type      string `json:"type"`      // "product", "category", "page", or ""
	EntityID  string `json:"entity_id"` // backend identifier
	Canonical string `json:"canonical"` // canonical path, may differ from input
}

const routeQuery = `query RouteByPath($path: String!) {
  route(path: $path) { type entityId canonical }
}`

// ResolveRoute asks the backend what lives at path.  A backend "no route"
// answer is not an error; it comes back as a zero-Type Route so the caller
// can cache the miss.
func (c *Client) ResolveRoute(ctx context.Context, path string) (Route, error) {
	data, err := c.Query(ctx, routeQuery, map[string]any{"path": path})
	if err != nil {
		return Route{}, err
	}

	var out struct {
		Route *struct {
			Type      string `json:"type"`
			EntityID  string `json:"entityId"`
			Canonical string `json:"canonical"`
		} `json:"route"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return Route{}, err
	}
	if out.Route == nil {
		return Route{}, nil
	}
	return Route{
		Type:      out.Route.Type,
		EntityID:  out.Route.EntityID,
		Canonical: out.Route.Canonical,
	}, nil
}
