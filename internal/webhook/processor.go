// internal/webhook/processor.go
//
// Invalidation webhook processor.
//
// Context
// -------
// The upstream config system pushes a signed notification when a tenant's
// configuration changes.  Processing is a strict stage machine, terminal
// on first failure:
//
//	RateLimit → SecretsConfigured → SizeCheck(declared) → BodyPresent →
//	SizeCheck(actual) → SignatureHeaderPresent → SignatureParsed →
//	SignatureVerified → TimestampFresh → BodyIsValidJSON →
//	HostnamePresent → WebhookIdPresent → NotAlreadyProcessed →
//	Invalidate → RecordProcessed
//
// The dedup record is written only AFTER the fan-out succeeds.  A delivery
// that failed part-way stays unrecorded, so the sender's at-least-once
// retry can complete the remaining invalidations.
//
// Fan-out order: resolve the tenantID from the target hostname (or fall
// back to the hostname itself when unmapped), enumerate every owned
// hostname from the stored config, then remove mappings, config, legacy
// duplicates, negative-cache entries, the client handle, and the derived
// asset entry.  The route cache is deliberately untouched; its staleness
// is bounded by its own TTL.
//
// Notes
// -----
//   • Each replica runs its own processor instance, so per-process caches
//     on every replica get cleared as the sender fans the delivery out.
//   • Oxford commas, two spaces after periods.

package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/yanizio/storefront/internal/kv"
	"github.com/yanizio/storefront/internal/tenant"
)

// Delivery is one inbound webhook call, already read off the wire.
type Delivery struct {
	WebhookID       string // delivery-identifying header
	SignatureHeader string // raw Storefront-Signature value
	Body            []byte
	DeclaredLength  int64 // Content-Length as declared, -1 when absent
}

// payload is the expected body shape.
type payload struct {
	Hostname string `json:"hostname"`
}

// Processor validates and executes invalidation deliveries.  Construct
// once per process with NewProcessor.
type Processor struct {
	store     kv.Store
	registry  *tenant.CacheRegistry
	secrets   []string
	tolerance time.Duration
	maxBody   int64
	limiter   *rate.Limiter
	now       func() time.Time // test hook
}

// NewProcessor wires the processor to the KV store and the process cache
// registry.
func NewProcessor(store kv.Store, registry *tenant.CacheRegistry, secrets []string,
	tolerance time.Duration, maxBody int64, perSec float64, burst int) *Processor {
	return &Processor{
		store:     store,
		registry:  registry,
		secrets:   secrets,
		tolerance: tolerance,
		maxBody:   maxBody,
		limiter:   rate.NewLimiter(rate.Limit(perSec), burst),
		now:       time.Now,
	}
}

// Process runs the full stage machine for one delivery.  A nil return
// means every cache layer was invalidated and the delivery is recorded.
func (p *Processor) Process(ctx context.Context, d Delivery) error {
	if !p.limiter.Allow() {
		return ErrRateLimited
	}
	if len(p.secrets) == 0 {
		return ErrMisconfigured
	}
	if d.DeclaredLength > p.maxBody {
		return ErrPayloadTooLarge
	}
	if len(d.Body) == 0 {
		return fmt.Errorf("%w: empty body", ErrInvalid)
	}
	if int64(len(d.Body)) > p.maxBody {
		return ErrPayloadTooLarge
	}
	if d.SignatureHeader == "" {
		return fmt.Errorf("%w: missing %s header", ErrUnauthorized, SignatureHeader)
	}

	sig, err := parseSignature(d.SignatureHeader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !verifySignature(p.secrets, sig, d.Body) {
		return fmt.Errorf("%w: no secret matched", ErrUnauthorized)
	}

	// Replay window.  Stale and future-skewed timestamps are both
	// rejected even with a valid signature.
	age := p.now().Sub(time.Unix(sig.timestamp, 0))
	if age > p.tolerance || age < -p.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrUnauthorized)
	}

	var body payload
	if err := json.Unmarshal(d.Body, &body); err != nil {
		return fmt.Errorf("%w: body is not JSON", ErrInvalid)
	}
	if body.Hostname == "" {
		return fmt.Errorf("%w: hostname missing", ErrInvalid)
	}
	if d.WebhookID == "" {
		return fmt.Errorf("%w: webhook id missing", ErrInvalid)
	}

	// Dedup BEFORE side effects, so redelivery is safe.
	seenKey := kv.WebhookSeenKey(d.WebhookID)
	if _, seen, err := p.store.Get(ctx, seenKey); err != nil {
		return fmt.Errorf("webhook: dedup lookup: %w", err)
	} else if seen {
		return ErrConflict
	}

	if err := p.invalidate(ctx, normalizeHost(body.Hostname)); err != nil {
		return fmt.Errorf("webhook: invalidate %s: %w", body.Hostname, err)
	}

	// Only a fully invalidated delivery is recorded.
	if err := p.store.Set(ctx, seenKey, "1"); err != nil {
		return fmt.Errorf("webhook: record delivery: %w", err)
	}

	zap.S().Infow("tenant invalidated", "host", body.Hostname, "webhook_id", d.WebhookID)
	return nil
}

// invalidate fans one hostname's change out across every cache layer.
func (p *Processor) invalidate(ctx context.Context, hostname string) error {
	tenantID, mapped, err := tenant.LookupTenantID(ctx, p.store, hostname)
	if err != nil {
		return err
	}
	if !mapped {
		// Unmapped host: the hostname doubles as the identity, which also
		// covers legacy-keyed tenants.
		tenantID = hostname
	}

	hostnames := []string{hostname}
	if cfg, found, err := tenant.LoadConfig(ctx, p.store, tenantID); err != nil {
		return err
	} else if found {
		hostnames = cfg.Hostnames()
		if !containsHost(hostnames, hostname) {
			hostnames = append(hostnames, hostname)
		}
	}

	if err := tenant.DeleteTenant(ctx, p.store, tenantID, hostnames); err != nil {
		return err
	}

	for _, h := range hostnames {
		p.registry.Negative.Remove(h)
	}
	p.registry.Clients.Invalidate(tenantID)
	p.registry.Assets.Delete(kv.TenantConfigKey(tenantID))
	return nil
}

func containsHost(hs []string, h string) bool {
	for _, x := range hs {
		if x == h {
			return true
		}
	}
	return false
}

// normalizeHost strips any :port suffix and lowercases, matching the
// resolve middleware's canonical form.
func normalizeHost(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		h = h[:i]
	}
	return strings.ToLower(h)
}
