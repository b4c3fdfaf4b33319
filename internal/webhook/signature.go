// internal/webhook/signature.go
//
// Signature header parsing and constant-time verification.
//
// Context
//   The sender signs `"{timestamp}.{rawBody}"` with HMAC-SHA256 and ships
//   the result in one header:
//
//      Storefront-Signature: t=<unix-seconds>,v1=<hex>[,v1=<hex>...]
//
//   Multiple v1 values appear during key rotation, when the sender signs
//   with old and new secrets at once.  Verification succeeds when ANY
//   configured secret reproduces ANY presented v1 value.  Comparison uses
//   hmac.Equal so a byte-by-byte mismatch cannot leak timing.
//
//   Timestamp freshness is checked separately by the processor; this file
//   only parses and verifies.
//
//------------------------------------------------------------------------------

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// SignatureHeader is the inbound header carrying timestamp and HMACs.
const SignatureHeader = "Storefront-Signature"

// parsedSignature is the decoded header.
type parsedSignature struct {
	timestamp int64    // unix seconds
	macs      [][]byte // decoded v1 values
}

// parseSignature decodes "t=...,v1=...[,v1=...]".  Unknown elements are
// ignored so the sender can add schemes without breaking older servers.
func parseSignature(header string) (parsedSignature, error) {
	var out parsedSignature
	sawT := false

	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return parsedSignature{}, fmt.Errorf("webhook: bad timestamp %q", v)
			}
			out.timestamp = ts
			sawT = true
		case "v1":
			mac, err := hex.DecodeString(v)
			if err != nil || len(mac) != sha256.Size {
				return parsedSignature{}, fmt.Errorf("webhook: bad v1 value")
			}
			out.macs = append(out.macs, mac)
		}
	}

	if !sawT || len(out.macs) == 0 {
		return parsedSignature{}, fmt.Errorf("webhook: signature header incomplete")
	}
	return out, nil
}

// computeMAC signs "{timestamp}.{body}" with one secret.
func computeMAC(secret string, timestamp int64, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return mac.Sum(nil)
}

// verifySignature reports whether any configured secret reproduces any
// presented MAC.  Constant-time per comparison.
func verifySignature(secrets []string, sig parsedSignature, body []byte) bool {
	for _, secret := range secrets {
		want := computeMAC(secret, sig.timestamp, body)
		for _, got := range sig.macs {
			if hmac.Equal(want, got) {
				return true
			}
		}
	}
	return false
}
