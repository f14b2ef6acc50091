package cache

import (
	"testing"
	"time"
)

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCache_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.Set("k2", "v2")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected fresh entry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to be dropped")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestLRUCache_Delete(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("missing")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be deleted")
	}
}

func TestManager_CleanAllAndStop(t *testing.T) {
	now := time.Now()
	c := NewLRUCache[int](10, time.Second)
	c.now = func() time.Time { return now }
	c.Set("a", 1)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(time.Hour)
	m.StartCleanup(time.Hour)

	now = now.Add(time.Minute)
	if n := m.CleanAll(); n != 1 {
		t.Errorf("CleanAll() = %d, want 1", n)
	}
	m.Stop()
	m.Stop()
}
