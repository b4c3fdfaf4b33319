// internal/webhook/handler.go
//
// HTTP surface of the invalidation endpoint.
//
// Context
// -------
// Mounted on the main chi router at POST /webhooks/tenant, outside the
// tenant-resolution middleware: the caller is the upstream config system,
// not a storefront visitor.  Each typed processor error maps to its own
// status so the sender can distinguish retryable (429, 500) from
// non-retryable (401, 409, 413, 422) outcomes.

package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/metrics"
)

// WebhookIDHeader identifies one delivery for at-most-once processing.
const WebhookIDHeader = "Storefront-Webhook-Id"

// Handler adapts a Processor to net/http.
type Handler struct {
	proc *Processor
}

// NewHandler wraps proc.
func NewHandler(proc *Processor) *Handler {
	return &Handler{proc: proc}
}

// ServeHTTP reads the delivery off the wire and runs the processor.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Read one byte past the limit so the actual-size stage can tell
	// "exactly at the limit" from "over it".
	body, err := io.ReadAll(io.LimitReader(r.Body, h.proc.maxBody+1))
	if err != nil {
		writeResult(w, http.StatusUnprocessableEntity, "invalid", "body read failed")
		return
	}

	d := Delivery{
		WebhookID:       r.Header.Get(WebhookIDHeader),
		SignatureHeader: r.Header.Get(SignatureHeader),
		Body:            body,
		DeclaredLength:  r.ContentLength,
	}

	switch err := h.proc.Process(r.Context(), d); {
	case err == nil:
		metrics.WebhookTotal.WithLabelValues("ok").Inc()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]bool{"invalidated": true})

	case errors.Is(err, ErrRateLimited):
		writeResult(w, http.StatusTooManyRequests, "rate_limited", "rate limited")

	case errors.Is(err, ErrMisconfigured):
		writeResult(w, http.StatusInternalServerError, "misconfigured", "webhook secrets not configured")

	case errors.Is(err, ErrPayloadTooLarge):
		writeResult(w, http.StatusRequestEntityTooLarge, "too_large", "payload too large")

	case errors.Is(err, ErrUnauthorized):
		zap.S().Warnw("webhook rejected", "reason", err.Error(), "remote", r.RemoteAddr)
		writeResult(w, http.StatusUnauthorized, "unauthorized", "signature verification failed")

	case errors.Is(err, ErrInvalid):
		writeResult(w, http.StatusUnprocessableEntity, "invalid", "invalid payload")

	case errors.Is(err, ErrConflict):
		writeResult(w, http.StatusConflict, "conflict", "delivery already processed")

	default:
		zap.S().Errorw("webhook processing failed", "err", err)
		writeResult(w, http.StatusInternalServerError, "error", "internal error")
	}
}

func writeResult(w http.ResponseWriter, status int, metric, msg string) {
	metrics.WebhookTotal.WithLabelValues(metric).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
