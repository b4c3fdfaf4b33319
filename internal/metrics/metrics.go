// Package metrics holds Prometheus instruments that are used across the
// server.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_resolve_total",
			Help: "Tenant resolutions by outcome (hit, legacy, fetched, provisioned, negative, not_found).",
		},
		[]string{"outcome"},
	)

	RemoteFetchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_remote_fetch_total",
			Help: "Calls made to the remote config source.",
		})

	RemoteFetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_remote_fetch_errors_total",
			Help: "Remote config source calls that failed or returned non-2xx.",
		})

	ActiveClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tenant_active_clients",
			Help: "Backend client handles currently held in the client cache.",
		})

	ClientEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_client_evict_total",
			Help: "Client handles removed by webhook invalidation.",
		})

	RouteCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "route_cache_hits_total",
			Help: "Route resolutions served from the route cache.",
		})

	RouteCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "route_cache_misses_total",
			Help: "Route resolutions delegated to the underlying resolver.",
		})

	RouteCacheEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "route_cache_evictions_total",
			Help: "Route cache entries evicted by LRU pressure.",
		})

	WebhookTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Webhook deliveries by terminal result (ok, rate_limited, misconfigured, too_large, unauthorized, invalid, conflict, error).",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		ResolveTotal,
		RemoteFetchTotal,
		RemoteFetchErrors,
		ActiveClients,
		ClientEvictTotal,
		RouteCacheHits,
		RouteCacheMisses,
		RouteCacheEvictions,
		WebhookTotal,
	)
}
