package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)}
}

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatal("unexpected hit")
	}
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("overwrite: got %d", v)
	}
	c.Delete("a")
	if c.Size() != 0 {
		t.Errorf("size after delete = %d", c.Size())
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "A")
	c.Set("b", "B")
	c.Get("a")
	c.Set("c", "C")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should remain", k)
		}
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	clk := newClock()
	c := NewLRUCache[struct{}](10, time.Minute, WithClock(clk.Now))
	c.Set("a", struct{}{})
	c.Set("b", struct{}{})

	clk.Advance(30 * time.Second)
	c.Set("b", struct{}{})
	clk.Advance(31 * time.Second)

	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Errorf("CleanExpired = %d, b was refreshed", n)
	}
	clk.Advance(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("size = %d", c.Size())
	}
}

func TestLRUCacheAdd(t *testing.T) {
	clk := newClock()
	c := NewLRUCache[struct{}](10, time.Minute, WithClock(clk.Now))

	if !c.Add("evt-1", struct{}{}) {
		t.Fatal("first Add should store")
	}
	clk.Advance(50 * time.Second)
	if c.Add("evt-1", struct{}{}) {
		t.Fatal("second Add within TTL should report a duplicate")
	}
	// the duplicate did not extend the original expiry
	clk.Advance(11 * time.Second)
	if !c.Add("evt-1", struct{}{}) {
		t.Fatal("Add after expiry should store again")
	}
}

func TestLRUCacheMinimumSize(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if c.Size() != 1 {
		t.Errorf("size = %d, want 1", c.Size())
	}
}

func TestManagerCleanAll(t *testing.T) {
	clk := newClock()
	a := NewLRUCache[int](10, time.Second, WithClock(clk.Now))
	b := NewLRUCache[int](10, time.Hour, WithClock(clk.Now))
	a.Set("x", 1)
	a.Set("y", 2)
	b.Set("z", 3)

	m := NewManager(nil)
	m.Register(a)
	m.Register(b)
	clk.Advance(2 * time.Second)

	if n := m.CleanAll(); n != 2 {
		t.Errorf("CleanAll = %d, want 2", n)
	}
	if b.Size() != 1 {
		t.Errorf("long TTL cache lost items")
	}
}

func TestManagerStartStop(t *testing.T) {
	m := NewManager(nil)
	m.Stop() // not started

	m.Register(NewLRUCache[int](1, time.Millisecond))
	m.StartCleanup(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m.Stop()
	m.Stop()
}
