// internal/routecache/normalize_test.go
//
// Unit-tests for path normalization.  The load-bearing behaviours:
// trailing-slash stripping (so "/a/b/" and "/a/b" share one cache entry)
// and the per-segment decode fallback (so a malformed escape degrades to
// raw text instead of an error).

package routecache

import "testing"

func TestNormalizePath_TrailingSlash(t *testing.T) {
	if got := NormalizePath("/a/b/"); got != "/a/b" {
		t.Fatalf("NormalizePath(/a/b/) = %q, want /a/b", got)
	}
	if got := NormalizePath("/a/b///"); got != "/a/b" {
		t.Fatalf("NormalizePath(/a/b///) = %q, want /a/b", got)
	}
	if got := NormalizePath("/"); got != "/" {
		t.Fatalf("root collapsed to %q", got)
	}
}

func TestNormalizePath_Defaults(t *testing.T) {
	if got := NormalizePath(""); got != "/" {
		t.Fatalf("empty input = %q, want /", got)
	}
	if got := NormalizePath("products/sale"); got != "/products/sale" {
		t.Fatalf("missing leading slash = %q", got)
	}
}

func TestNormalizePath_PercentDecodePerSegment(t *testing.T) {
	if got := NormalizePath("/caf%C3%A9/menu"); got != "/café/menu" {
		t.Fatalf("decoded = %q, want /café/menu", got)
	}

	// A malformed escape must not abort the lookup: the bad segment stays
	// raw while good segments still decode.
	if got := NormalizePath("/p/%zz%/x%20y"); got != "/p/%zz%/x y" {
		t.Fatalf("fallback = %q, want /p/%%zz%%/x y", got)
	}
}
