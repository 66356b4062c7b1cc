package cache

import (
	"testing"
	"time"
)

func TestTTLValueStartsExpired(t *testing.T) {
	c := NewTTL[[]string](time.Minute)
	if v, ok := c.Get(); ok {
		t.Errorf("empty cache returned %v", v)
	}
}

func TestTTLValueRoundTrip(t *testing.T) {
	c := NewTTL[[]string](time.Minute)
	c.Set([]string{"kjv", "web"})

	v, ok := c.Get()
	if !ok || len(v) != 2 || v[0] != "kjv" {
		t.Errorf("Get() = %v, %v", v, ok)
	}
}

func TestTTLValueExpires(t *testing.T) {
	c := NewTTL[int](10 * time.Millisecond)
	c.Set(42)
	time.Sleep(20 * time.Millisecond)
	if v, ok := c.Get(); ok {
		t.Errorf("expired cache returned %d", v)
	}
}

func TestTTLValueInvalidate(t *testing.T) {
	c := NewTTL[int](time.Minute)
	c.Set(42)
	c.Invalidate()
	if v, ok := c.Get(); ok {
		t.Errorf("invalidated cache returned %d", v)
	}
}
