// internal/routecache/normalize.go
//
// Path normalization for route-cache keys.
//
// Rules
// -----
// 1. Missing or invalid input defaults to "/".
// 2. Force exactly one leading slash.
// 3. Strip trailing slashes, except the root itself.
// 4. Percent-decode each segment independently; a malformed escape leaves
//    that segment's raw text in place rather than aborting the lookup.
//
// Rule 4 matters under adversarial traffic: bots send paths like
// "/p/%zz%" and a strict decoder would turn every such request into an
// error instead of a cheap cached miss.

package routecache

import (
	"net/url"
	"strings"
)

// NormalizePath canonicalizes raw into the form used as a cache key.
func NormalizePath(raw string) string {
	if raw == "" {
		return "/"
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	for len(raw) > 1 && strings.HasSuffix(raw, "/") {
		raw = raw[:len(raw)-1]
	}
	if raw == "/" {
		return raw
	}

	segs := strings.Split(raw[1:], "/")
	for i, seg := range segs {
		if dec, err := url.PathUnescape(seg); err == nil {
			segs[i] = dec
		}
		// decode failure: keep the raw segment
	}
	return "/" + strings.Join(segs, "/")
}
