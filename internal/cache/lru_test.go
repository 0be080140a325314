package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(maxSize int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](maxSize, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	if _, ok := c.Get("snapshot"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Set("snapshot", "v1")
	got, ok := c.Get("snapshot")
	if !ok || got != "v1" {
		t.Fatalf("Get() = %q, %v; want v1, true", got, ok)
	}

	c.Set("snapshot", "v2")
	if got, _ := c.Get("snapshot"); got != "v2" {
		t.Errorf("overwrite: got %q, want v2", got)
	}

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("Stats() = %+v, want 2 hits, 1 miss, size 1", stats)
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(4, 30*time.Second)
	c.Set("a", "1")
	c.Set("b", "2")

	clock.t = clock.t.Add(31 * time.Second)
	c.Set("c", "3")

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should miss")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1 (only b left to expire)", n)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a was used recently and should remain")
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", c.Stats().Evictions)
	}
}

func TestLRUCache_DeleteAndInvalidate(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key should miss")
	}
	c.Invalidate()
	if c.Size() != 0 {
		t.Errorf("Size() after Invalidate = %d, want 0", c.Size())
	}
}

func TestManager_Sweep(t *testing.T) {
	c, clock := newTestCache(4, time.Second)
	c.Set("a", "1")
	clock.t = clock.t.Add(2 * time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
