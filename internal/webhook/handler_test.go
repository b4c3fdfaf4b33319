// internal/webhook/handler_test.go
//
// HTTP-level tests for the invalidation endpoint: status-code mapping and
// the success body.

package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func postDelivery(t *testing.T, h http.Handler, d Delivery) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/tenant", bytes.NewReader(d.Body))
	if d.WebhookID != "" {
		req.Header.Set(WebhookIDHeader, d.WebhookID)
	}
	if d.SignatureHeader != "" {
		req.Header.Set(SignatureHeader, d.SignatureHeader)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandler_SuccessThenConflict(t *testing.T) {
	f := newFixture(t, testSecret)
	f.seedTenant(t, "acme", "acme.example.com")
	h := NewHandler(f.proc)

	d := f.delivery("evt_http_1", "acme.example.com")

	rr := postDelivery(t, h, d)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}
	var out map[string]bool
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil || !out["invalidated"] {
		t.Fatalf("body = %s", rr.Body.String())
	}

	if rr := postDelivery(t, h, d); rr.Code != http.StatusConflict {
		t.Fatalf("replay status = %d, want 409", rr.Code)
	}
}

func TestHandler_BadSignatureIs401(t *testing.T) {
	f := newFixture(t, testSecret)
	h := NewHandler(f.proc)

	d := f.delivery("evt_http_2", "acme.example.com")
	d.SignatureHeader = "t=1700000000,v1=" + "00"
	if rr := postDelivery(t, h, d); rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestHandler_MalformedBodyIs422(t *testing.T) {
	f := newFixture(t, testSecret)
	h := NewHandler(f.proc)

	body := []byte("{broken")
	d := Delivery{
		WebhookID:       "evt_http_3",
		SignatureHeader: signHeader(testSecret, f.now.Unix(), body),
		Body:            body,
	}
	if rr := postDelivery(t, h, d); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestHandler_NoSecretsIs500(t *testing.T) {
	f := newFixture(t) // no secrets
	h := NewHandler(f.proc)

	if rr := postDelivery(t, h, f.delivery("evt_http_4", "x.example.com")); rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}
