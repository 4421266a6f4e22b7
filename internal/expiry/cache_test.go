package expiry

import (
	"testing"
	"time"
)

func TestCachePutGet(t *testing.T) {
	c := New[string, int](time.Minute, nil)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("a", 1)
	c.Put("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected 1, got %v ok=%v", v, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("expected len 2 got %d", c.Len())
	}
}

func TestCacheSweepEvictsWithCallback(t *testing.T) {
	evicted := map[string]int{}
	c := New(time.Minute, func(k string, v int) {
		evicted[k] = v
	})

	c.Put("a", 1)

	c.Sweep(time.Now().Add(30 * time.Second))
	if len(evicted) != 0 {
		t.Fatal("entry evicted before TTL elapsed")
	}

	c.Sweep(time.Now().Add(2 * time.Minute))
	if evicted["a"] != 1 {
		t.Fatal("expected eviction callback for expired entry")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry removed")
	}
}

func TestCacheInvalidateSkipsCallback(t *testing.T) {
	calls := 0
	c := New(time.Minute, func(string, int) { calls++ })

	c.Put("a", 1)
	c.Invalidate("a")

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected entry removed")
	}
	if calls != 0 {
		t.Fatal("Invalidate must not run the eviction callback")
	}
}

func TestCacheEach(t *testing.T) {
	c := New[string, int](time.Minute, nil)
	c.Put("a", 1)
	c.Put("b", 2)

	sum := 0
	c.Each(func(_ string, v int) { sum += v })
	if sum != 3 {
		t.Fatalf("expected sum 3 got %d", sum)
	}
}
