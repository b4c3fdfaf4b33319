// internal/routecache/cache_test.go
//
// Unit-tests for the bounded route cache: normalized-key sharing,
// differentiated TTL, and LRU eviction independent of TTL.

package routecache

import (
	"context"
	"testing"
	"time"
)

// countingResolver fabricates a miss for "/missing" and a product hit for
// everything else, counting every delegation.
func countingResolver(calls *int) ResolveFunc {
	return func(_ context.Context, _, path string) (Resolution, error) {
		*calls++
		if path == "/missing" {
			return Resolution{}, nil
		}
		return Resolution{Type: "product", EntityID: "42", Canonical: path}, nil
	}
}

func TestCache_NormalizedVariantsShareOneEntry(t *testing.T) {
	c := New(16, time.Hour, time.Minute)
	calls := 0
	fn := countingResolver(&calls)
	ctx := context.Background()

	if _, err := c.Resolve(ctx, "shop.example.com", "/a/b/", fn); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := c.Resolve(ctx, "shop.example.com", "/a/b", fn); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if calls != 1 {
		t.Fatalf("delegations = %d, want 1 (trailing slash must share the entry)", calls)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
}

func TestCache_HostsDoNotShareEntries(t *testing.T) {
	c := New(16, time.Hour, time.Minute)
	calls := 0
	fn := countingResolver(&calls)
	ctx := context.Background()

	_, _ = c.Resolve(ctx, "a.example.com", "/p", fn)
	_, _ = c.Resolve(ctx, "b.example.com", "/p", fn)

	if calls != 2 {
		t.Fatalf("delegations = %d, want 2 (same path, different hosts)", calls)
	}
}

func TestCache_MissTTLShorterThanHitTTL(t *testing.T) {
	c := New(16, time.Hour, time.Minute)
	calls := 0
	fn := countingResolver(&calls)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }

	_, _ = c.Resolve(ctx, "shop.example.com", "/missing", fn) // cached miss
	_, _ = c.Resolve(ctx, "shop.example.com", "/product", fn) // cached hit

	// Two minutes later the miss has expired, the hit has not.
	c.now = func() time.Time { return base.Add(2 * time.Minute) }

	_, _ = c.Resolve(ctx, "shop.example.com", "/missing", fn)
	_, _ = c.Resolve(ctx, "shop.example.com", "/product", fn)

	if calls != 3 {
		t.Fatalf("delegations = %d, want 3 (miss re-checked, hit still cached)", calls)
	}
}

func TestCache_LRUEvictionAtCapacity(t *testing.T) {
	c := New(2, time.Hour, time.Minute)
	calls := 0
	fn := countingResolver(&calls)
	ctx := context.Background()

	_, _ = c.Resolve(ctx, "shop.example.com", "/one", fn)
	_, _ = c.Resolve(ctx, "shop.example.com", "/two", fn)
	_, _ = c.Resolve(ctx, "shop.example.com", "/one", fn)   // touch /one
	_, _ = c.Resolve(ctx, "shop.example.com", "/three", fn) // evicts /two

	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}

	calls = 0
	_, _ = c.Resolve(ctx, "shop.example.com", "/one", fn)
	if calls != 0 {
		t.Fatal("recently used entry was evicted")
	}
	_, _ = c.Resolve(ctx, "shop.example.com", "/two", fn)
	if calls != 1 {
		t.Fatal("least recently used entry survived eviction")
	}
}

func TestCache_ResolverErrorIsNotCached(t *testing.T) {
	c := New(16, time.Hour, time.Minute)
	ctx := context.Background()

	boom := func(context.Context, string, string) (Resolution, error) {
		return Resolution{}, context.DeadlineExceeded
	}
	if _, err := c.Resolve(ctx, "shop.example.com", "/p", boom); err == nil {
		t.Fatal("error swallowed")
	}
	if c.Len() != 0 {
		t.Fatal("failed resolution was cached")
	}
}
