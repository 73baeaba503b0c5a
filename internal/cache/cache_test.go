package cache

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New[string]()

	c.Set("key1", "value1")

	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected to find key1")
	}
	if val != "value1" {
		t.Errorf("expected value1, got %v", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := New[string]()

	val, ok := c.Get("nonexistent")
	if ok {
		t.Error("expected cache miss")
	}
	if val != "" {
		t.Errorf("expected zero value, got %q", val)
	}
	if stats := c.Stats(); stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
}

func TestCache_TTL(t *testing.T) {
	c := New[int](WithTTL(50 * time.Millisecond))

	c.Set("key1", 1)
	if _, ok := c.Get("key1"); !ok {
		t.Error("expected to find key1 immediately")
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("key1"); ok {
		t.Error("expected key1 to be expired")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be dropped, got %d entries", c.Len())
	}
}

func TestCache_MaxSizeEvictsOldest(t *testing.T) {
	c := New[int](WithMaxSize(3))

	for i := 0; i < 3; i++ {
		c.Set(strconv.Itoa(i), i)
		time.Sleep(time.Millisecond)
	}
	c.Set("3", 3)

	if c.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", c.Len())
	}
	if _, ok := c.Get("0"); ok {
		t.Error("expected oldest entry to be evicted")
	}
	if _, ok := c.Get("3"); !ok {
		t.Error("expected newest entry to be present")
	}
	if stats := c.Stats(); stats.Evictions != 1 {
		t.Errorf("expected 1 eviction, got %d", stats.Evictions)
	}
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	c := New[int](WithMaxSize(1))

	c.Set("a", 1)
	c.Set("a", 2)

	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("expected overwritten value 2, got %d", v)
	}
	if stats := c.Stats(); stats.Evictions != 0 {
		t.Errorf("expected no evictions, got %d", stats.Evictions)
	}
}

func TestCache_GetOrCompute(t *testing.T) {
	c := New[string]()
	calls := 0
	compute := func() (string, error) {
		calls++
		return "rendered", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrCompute("k", compute)
		if err != nil || v != "rendered" {
			t.Fatalf("unexpected result %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("expected compute once, got %d", calls)
	}
}

func TestCache_GetOrComputeErrorNotCached(t *testing.T) {
	c := New[string]()
	boom := errors.New("boom")

	if _, err := c.GetOrCompute("k", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("errors must not be cached")
	}
}

func TestCache_Clear(t *testing.T) {
	c := New[int]()
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int]()

	var wg sync.WaitGroup
	n := 100
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.Set(string(rune('a'+i%26)), i)
		}(i)
		go func(i int) {
			defer wg.Done()
			c.Get(string(rune('a' + i%26)))
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	if stats.Hits+stats.Misses != int64(n) {
		t.Errorf("expected %d lookups, got %d", n, stats.Hits+stats.Misses)
	}
}

func TestCache_HitRate(t *testing.T) {
	c := New[string]()
	c.Set("key1", "value1")

	c.Get("key1")
	c.Get("key1")
	c.Get("missing")

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %+v", stats)
	}
	if stats.HitRate < 0.66 || stats.HitRate > 0.67 {
		t.Errorf("expected hit rate ~0.667, got %f", stats.HitRate)
	}
}

func TestKey(t *testing.T) {
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("component boundaries must affect the key")
	}
	if Key("x") != Key("x") {
		t.Error("expected deterministic keys")
	}
	if len(Key("x")) != 64 {
		t.Errorf("expected hex sha256, got %d chars", len(Key("x")))
	}
}

func TestRenderKey(t *testing.T) {
	base := RenderKey("markdown", "", 80, "# hi")
	if base == RenderKey("markdown", "", 100, "# hi") {
		t.Error("width must affect the key")
	}
	if base == RenderKey("code", "", 80, "# hi") {
		t.Error("kind must affect the key")
	}
}
