// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package cache

import (
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	t.Parallel()

	c := NewLRU[int, string](3, 0)

	c.Add(1, "a")
	if v, ok := c.Get(1); !ok || v != "a" {
		t.Fatalf("Expected (a, true), got (%q, %v)", v, ok)
	}
	if _, ok := c.Get(2); ok {
		t.Error("Expected miss for absent key")
	}

	c.Add(1, "b")
	if v, _ := c.Get(1); v != "b" {
		t.Errorf("Expected updated value b, got %q", v)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}

	if !c.Remove(1) {
		t.Error("Expected Remove to report presence")
	}
	if c.Remove(1) {
		t.Error("Expected second Remove to report absence")
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := NewLRU[int, int](2, 0)
	c.Add(1, 1)
	c.Add(2, 2)
	c.Get(1) // 2 is now least recently used
	c.Add(3, 3)

	if _, ok := c.Get(2); ok {
		t.Error("Expected key 2 to be evicted")
	}
	if _, ok := c.Get(1); !ok {
		t.Error("Expected key 1 to survive")
	}
	if _, ok := c.Get(3); !ok {
		t.Error("Expected key 3 to be present")
	}
	if evicted, _ := c.Evictions(); evicted != 1 {
		t.Errorf("Expected 1 capacity eviction, got %d", evicted)
	}
}

func TestLRU_TTLExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[int, int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Add(1, 1)
	c.Add(2, 2)

	now = now.Add(30 * time.Second)
	if _, ok := c.Get(1); !ok {
		t.Error("Expected entry to be live before TTL")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(1); ok {
		t.Error("Expected entry to expire after TTL")
	}
	if removed := c.CleanupExpired(); removed != 1 {
		t.Errorf("Expected sweep to remove 1 entry, got %d", removed)
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d", c.Len())
	}
	if _, expired := c.Evictions(); expired != 2 {
		t.Errorf("Expected 2 expirations, got %d", expired)
	}
}

func TestLRU_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	c := NewLRU[int, int](10, 0)
	c.now = func() time.Time { return time.Now().Add(100 * 365 * 24 * time.Hour) }
	c.Add(1, 1)
	if _, ok := c.Get(1); !ok {
		t.Error("Expected entry without TTL to stay live")
	}
	if removed := c.CleanupExpired(); removed != 0 {
		t.Errorf("Expected nothing swept, got %d", removed)
	}
}

func TestLRU_Clear(t *testing.T) {
	t.Parallel()

	c := NewLRU[int, int](10, 0)
	for i := 0; i < 5; i++ {
		c.Add(i, i)
	}
	if n := c.Clear(); n != 5 {
		t.Errorf("Expected Clear to report 5, got %d", n)
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d", c.Len())
	}
	c.Add(7, 7)
	if _, ok := c.Get(7); !ok {
		t.Error("Expected cache usable after Clear")
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := NewLRU[int, int](100, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := (g*31 + i) % 250
				c.Add(k, i)
				c.Get(k)
				if i%50 == 0 {
					c.CleanupExpired()
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Expected at most 100 entries, got %d", c.Len())
	}
}
