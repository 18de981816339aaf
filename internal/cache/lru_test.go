package cache

import (
	"testing"
)

func TestLimiterCache_SameKeySameLimiter(t *testing.T) {
	c, err := New(10, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if c.Get("1.1.1.1") != c.Get("1.1.1.1") {
		t.Error("expected the same limiter for the same key")
	}
	if c.Get("1.1.1.1") == c.Get("2.2.2.2") {
		t.Error("expected distinct limiters for distinct keys")
	}
}

func TestLimiterCache_BurstThenReject(t *testing.T) {
	c, err := New(10, 0.001, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 3 {
		if !c.Allow("1.1.1.1") {
			t.Fatalf("request %d rejected within burst", i+1)
		}
	}
	if c.Allow("1.1.1.1") {
		t.Error("expected rejection after burst")
	}
	if !c.Allow("2.2.2.2") {
		t.Error("other clients must have their own bucket")
	}
}

func TestLimiterCache_Eviction(t *testing.T) {
	c, err := New(2, 0.001, 1)
	if err != nil {
		t.Fatal(err)
	}

	if !c.Allow("a") {
		t.Fatal("first request rejected")
	}
	c.Get("b")
	c.Get("c") // evicts "a"

	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}
	if !c.Allow("a") {
		t.Error("evicted client should start with a fresh bucket")
	}
}

func TestNew_InvalidSize(t *testing.T) {
	if _, err := New(0, 1, 1); err == nil {
		t.Error("expected error for zero size")
	}
}
