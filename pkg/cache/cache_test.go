package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New(time.Minute)
	c.Set("key", "value")

	got, ok := c.Get("key")
	if !ok {
		t.Fatal("expected a hit")
	}
	if got != "value" {
		t.Errorf("got %v", got)
	}
}

func TestMissingKey(t *testing.T) {
	c := New(time.Minute)
	if _, ok := c.Get("absent"); ok {
		t.Error("expected a miss")
	}
}

func TestExpiration(t *testing.T) {
	c := New(time.Minute)
	c.SetWithTTL("key", "value", 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("key"); ok {
		t.Error("expected the entry to expire")
	}
}

func TestOverwrite(t *testing.T) {
	c := New(time.Minute)
	c.Set("key", "first")
	c.Set("key", "second")

	got, _ := c.Get("key")
	if got != "second" {
		t.Errorf("got %v", got)
	}
}

func TestDelete(t *testing.T) {
	c := New(time.Minute)
	c.Set("key", "value")
	c.Delete("key")

	if _, ok := c.Get("key"); ok {
		t.Error("expected the entry to be gone")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(time.Minute)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				c.Set("shared", j)
				c.Get("shared")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
