// internal/webhook/errors.go
//
// Typed failure taxonomy for the invalidation endpoint.
//
// Each stage of the processor fails with a distinct sentinel because the
// failures are operationally distinguishable: a flood of ErrUnauthorized
// is an attack signal, a flood of ErrConflict is a retry storm from the
// sender.  The HTTP handler maps each one to its own status code so the
// upstream config system can tell retryable from non-retryable outcomes.

package webhook

import "errors"

var (
	// ErrRateLimited: token bucket exhausted; retryable (429).
	ErrRateLimited = errors.New("webhook: rate limited")

	// ErrMisconfigured: no signing secrets on this server; operator error,
	// not a sender error (500).
	ErrMisconfigured = errors.New("webhook: no signing secrets configured")

	// ErrPayloadTooLarge: declared or actual body exceeds the limit (413).
	ErrPayloadTooLarge = errors.New("webhook: payload too large")

	// ErrUnauthorized: signature header missing, unparseable, signed by an
	// unknown secret, or carrying a stale timestamp (401).
	ErrUnauthorized = errors.New("webhook: signature verification failed")

	// ErrInvalid: body absent, not JSON, or missing required fields (422).
	ErrInvalid = errors.New("webhook: invalid payload")

	// ErrConflict: this webhookId has already been processed (409).
	ErrConflict = errors.New("webhook: duplicate delivery")
)
