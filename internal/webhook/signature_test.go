// internal/webhook/signature_test.go
//
// Unit-tests for signature parsing and multi-secret verification.

package webhook

import (
	"encoding/hex"
	"fmt"
	"testing"
)

// signHeader builds the header the sender would emit.
func signHeader(secret string, ts int64, body []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(computeMAC(secret, ts, body)))
}

func TestVerify_AnyConfiguredSecretSuffices(t *testing.T) {
	body := []byte(`{"hostname":"acme.example.com"}`)
	header := signHeader("new-secret", 1700000000, body)

	sig, err := parseSignature(header)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	// Rotation list: old secret first, the signing one second.
	if !verifySignature([]string{"old-secret", "new-secret"}, sig, body) {
		t.Fatal("valid signature rejected")
	}
}

func TestVerify_UnknownSecretRejected(t *testing.T) {
	body := []byte(`{"hostname":"acme.example.com"}`)
	sig, err := parseSignature(signHeader("rogue", 1700000000, body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if verifySignature([]string{"old-secret", "new-secret"}, sig, body) {
		t.Fatal("signature from unconfigured secret accepted")
	}
}

func TestVerify_TamperedBodyRejected(t *testing.T) {
	body := []byte(`{"hostname":"acme.example.com"}`)
	sig, _ := parseSignature(signHeader("secret", 1700000000, body))
	if verifySignature([]string{"secret"}, sig, []byte(`{"hostname":"evil.example.com"}`)) {
		t.Fatal("tampered body accepted")
	}
}

func TestParseSignature_MultipleV1Values(t *testing.T) {
	body := []byte("x")
	h := fmt.Sprintf("t=100,v1=%s,v1=%s",
		hex.EncodeToString(computeMAC("a", 100, body)),
		hex.EncodeToString(computeMAC("b", 100, body)))

	sig, err := parseSignature(h)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(sig.macs) != 2 || sig.timestamp != 100 {
		t.Fatalf("parsed = %+v", sig)
	}
	if !verifySignature([]string{"b"}, sig, body) {
		t.Fatal("second v1 value not tried")
	}
}

func TestParseSignature_Malformed(t *testing.T) {
	for _, h := range []string{
		"",
		"t=abc,v1=00",
		"t=100",
		"v1=00",
		"t=100,v1=zz",
		"t=100,v1=00ff", // wrong MAC length
	} {
		if _, err := parseSignature(h); err == nil {
			t.Fatalf("header %q parsed without error", h)
		}
	}
}
