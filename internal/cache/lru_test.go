package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing before eviction")
	}

	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("a = %d, %v, want 1, true", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("c = %d, %v, want 3, true", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache[string](4, 10*time.Millisecond)
	c.Set("k", "v")

	if _, ok := c.Get("k"); !ok {
		t.Fatal("fresh entry missing")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry still served")
	}
	if c.Size() != 0 {
		t.Errorf("size after expired read = %d, want 0", c.Size())
	}
}

func TestLRUCacheSetRefreshesValue(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("k", 1)
	c.Set("k", 2)

	if v, _ := c.Get("k"); v != 2 {
		t.Errorf("value = %d, want 2", v)
	}
	if c.Size() != 1 {
		t.Errorf("size = %d, want 1", c.Size())
	}
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[int](8, 10*time.Millisecond)
	c.Set("old1", 1)
	c.Set("old2", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("fresh", 3)

	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired() = %d, want 2", n)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry removed by cleanup")
	}
}

func TestManagerStopIsIdempotent(t *testing.T) {
	m := NewManager()
	m.Register(NewLRUCache[int](2, time.Minute))
	m.StartCleanup(time.Hour)

	m.Stop()
	m.Stop()
}
