package cache

import (
	"context"
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	c := New[[]string](time.Minute)
	defer c.Close()

	if _, ok := c.Get("lines"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("lines", []string{"Line 1", "Line 2"})
	got, ok := c.Get("lines")
	if !ok || len(got) != 2 {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New[int](20 * time.Millisecond)
	defer c.Close()

	c.Set("k", 1)
	time.Sleep(50 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestCacheCloseTwice(t *testing.T) {
	c := New[int](time.Minute)
	c.Close()
	c.Close()
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	defer m.Close()

	var s Store = m
	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get missing = %v, %v", ok, err)
	}
	if err := s.Set(ctx, "drive:1", []byte(`{"distanceMeters":5000}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get(ctx, "drive:1")
	if err != nil || !ok || string(v) != `{"distanceMeters":5000}` {
		t.Errorf("Get = %q, %v, %v", v, ok, err)
	}
}
