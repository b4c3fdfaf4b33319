// internal/kv/keys.go
//
// Namespaced key scheme shared by every backend.
//
// Three prefixes partition the store:
//
//   tenant:cfg:<tenantID>   – serialized tenant.Config
//   tenant:host:<hostname>  – hostname → tenantID mapping
//   webhook:seen:<id>       – write-once webhook dedup marker
//
// A bare hostname with no prefix is the legacy single-level scheme from
// before hostname mappings existed; the resolver still reads it and
// migrates hits forward.

package kv

const (
	tenantConfigPrefix = "tenant:cfg:"
	hostMappingPrefix  = "tenant:host:"
	webhookSeenPrefix  = "webhook:seen:"
)

// TenantConfigKey returns the key holding the config for one tenant.
func TenantConfigKey(tenantID string) string { return tenantConfigPrefix + tenantID }

// HostMappingKey returns the key mapping one hostname to its tenantID.
func HostMappingKey(hostname string) string { return hostMappingPrefix + hostname }

// WebhookSeenKey returns the dedup key for one webhook delivery.
func WebhookSeenKey(webhookID string) string { return webhookSeenPrefix + webhookID }

// LegacyHostKey is the pre-mapping scheme: the bare hostname itself.
func LegacyHostKey(hostname string) string { return hostname }
