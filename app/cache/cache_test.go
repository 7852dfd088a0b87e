package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New[string](time.Minute, 10, Hooks{})

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss for unknown key")
	}

	c.Set("a", "alpha")
	v, ok := c.Get("a")
	if !ok || v != "alpha" {
		t.Errorf("Expected 'alpha', got '%s' (ok=%v)", v, ok)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d hits and %d misses", stats.Hits, stats.Misses)
	}
}

func TestTTLExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New[int](10*time.Second, 10, Hooks{})
	c.now = func() time.Time { return now }

	c.Set("k", 42)

	now = now.Add(9 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Error("Expected hit before TTL")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss once entry age reaches TTL")
	}
	if c.Len() != 0 {
		t.Errorf("Expected stale entry to be removed, got %d entries", c.Len())
	}
}

func TestInsertionOrderEviction(t *testing.T) {
	var evicted []string
	c := New[int](time.Minute, 3, Hooks{OnEvict: func(key string) { evicted = append(evicted, key) }})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Reading does not change eviction order.
	c.Get("a")
	c.Set("d", 4)

	if _, ok := c.Get("a"); ok {
		t.Error("Expected oldest inserted key 'a' to be evicted")
	}
	for _, key := range []string{"b", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("Expected key '%s' to remain", key)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Expected 3 entries, got %d", c.Len())
	}
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("Expected eviction of 'a', got %v", evicted)
	}
}

func TestUpdateKeepsPosition(t *testing.T) {
	c := New[int](time.Minute, 2, Hooks{})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10)
	c.Set("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Error("Expected 'a' to be evicted despite its update")
	}
	if v, _ := c.Get("b"); v != 2 {
		t.Errorf("Expected 'b' to remain with 2, got %d", v)
	}
}

func TestGetOrFetch(t *testing.T) {
	c := New[string](time.Minute, 10, Hooks{})
	calls := 0
	producer := func(ctx context.Context) (string, error) {
		calls++
		return "fetched", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrFetch(context.Background(), "k", producer)
		if err != nil || v != "fetched" {
			t.Fatalf("Expected 'fetched', got '%s' (err=%v)", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("Expected producer to run once, ran %d times", calls)
	}
}

func TestGetOrFetchDoesNotCacheErrors(t *testing.T) {
	c := New[string](time.Minute, 10, Hooks{})
	boom := errors.New("boom")

	if _, err := c.GetOrFetch(context.Background(), "k", func(ctx context.Context) (string, error) {
		return "", boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Expected producer error, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Expected nothing cached after error, got %d entries", c.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int](time.Minute, 50, Hooks{})
	var fetches atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%26))
			c.GetOrFetch(context.Background(), key, func(ctx context.Context) (int, error) {
				fetches.Add(1)
				return i, nil
			})
		}(i)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Expected at most 50 entries, got %d", c.Len())
	}
	if fetches.Load() < 26 {
		t.Errorf("Expected at least one fetch per key, got %d", fetches.Load())
	}
}

func TestDeleteFreesSlot(t *testing.T) {
	var evicted []string
	c := New[int](time.Minute, 3, Hooks{OnEvict: func(key string) { evicted = append(evicted, key) }})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Delete("b")
	c.Delete("missing")

	if _, ok := c.Get("b"); ok {
		t.Error("Expected deleted key to miss")
	}

	c.Set("d", 4)
	if len(evicted) != 0 {
		t.Errorf("Expected no eviction after a delete freed a slot, got %v", evicted)
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("Expected oldest entry to survive")
	}

	c.Set("e", 5)
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("Expected 'a' evicted once full again, got %v", evicted)
	}
}

func TestClear(t *testing.T) {
	c := New[string](time.Minute, 10, Hooks{})
	c.Set("a", "alpha")
	c.Set("b", "beta")
	c.Get("a")

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d entries", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Expected miss after Clear")
	}

	c.Set("c", "gamma")
	if v, ok := c.Get("c"); !ok || v != "gamma" {
		t.Errorf("Expected cache usable after Clear, got '%s' (ok=%v)", v, ok)
	}
	if stats := c.Stats(); stats.Hits != 2 {
		t.Errorf("Expected hit counters to survive Clear, got %d hits", stats.Hits)
	}
}
