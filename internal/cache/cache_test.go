package cache

import (
	"errors"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := t.Context()

	if err := c.Set(ctx, "gallery:cakes", []byte(`["a","b"]`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, "gallery:cakes")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `["a","b"]` {
		t.Fatalf("Get = %q", got)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := newTestCache(t)

	if _, err := c.Get(t.Context(), "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get absent = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := newTestCache(t)
	ctx := t.Context()

	if err := c.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expired Get = %v, want ErrCacheMiss", err)
	}
	if ok, _ := c.Has(ctx, "k"); ok {
		t.Fatal("Has reports expired key")
	}
}

func TestMemoryCache_GetReturnsCopy(t *testing.T) {
	c := newTestCache(t)
	ctx := t.Context()

	_ = c.Set(ctx, "k", []byte("original"), 0)
	got, _ := c.Get(ctx, "k")
	got[0] = 'X'

	again, _ := c.Get(ctx, "k")
	if string(again) != "original" {
		t.Fatalf("stored value mutated: %q", again)
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	c := newTestCache(t)
	ctx := t.Context()

	_ = c.Set(ctx, "gallery:cakes", []byte("1"), 0)
	_ = c.Set(ctx, "gallery:cookies", []byte("2"), 0)
	_ = c.Set(ctx, "page:home", []byte("3"), 0)

	if err := c.DeleteByPrefix(ctx, "gallery:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}

	if ok, _ := c.Has(ctx, "gallery:cakes"); ok {
		t.Fatal("gallery:cakes survived prefix delete")
	}
	if ok, _ := c.Has(ctx, "page:home"); !ok {
		t.Fatal("page:home removed by unrelated prefix delete")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := newTestCache(t)
	ctx := t.Context()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := c.Stats().Items; got != 0 {
		t.Fatalf("Items after Clear = %d", got)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	c := newTestCache(t)
	ctx := t.Context()

	_ = c.Set(ctx, "k", []byte("v"), 0)
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "absent")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Sets != 1 {
		t.Fatalf("Stats = %+v", s)
	}

	c.ResetStats()
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Fatalf("Stats after reset = %+v", s)
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	_ = c.Close()

	if err := c.Set(t.Context(), "k", []byte("v"), 0); !errors.Is(err, ErrCacheClosed) {
		t.Fatalf("Set on closed = %v", err)
	}
	if _, err := c.Get(t.Context(), "k"); !errors.Is(err, ErrCacheClosed) {
		t.Fatalf("Get on closed = %v", err)
	}
	// Second close is a no-op.
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	c := newTestCache(t)
	ctx := t.Context()

	type listing struct {
		IDs []string `json:"ids"`
	}

	if err := SetJSON(ctx, c, "gallery:treats", listing{IDs: []string{"x", "y"}}, 0); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	got, err := GetJSON[listing](ctx, c, "gallery:treats")
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if len(got.IDs) != 2 || got.IDs[0] != "x" {
		t.Fatalf("GetJSON = %+v", got)
	}

	if _, err := GetJSON[listing](ctx, c, "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("GetJSON absent = %v", err)
	}

	// Corrupt entries read as misses and are evicted.
	_ = c.Set(ctx, "bad", []byte("{not json"), 0)
	if _, err := GetJSON[listing](ctx, c, "bad"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("GetJSON corrupt = %v", err)
	}
	if ok, _ := c.Has(ctx, "bad"); ok {
		t.Fatal("corrupt entry not evicted")
	}
}
