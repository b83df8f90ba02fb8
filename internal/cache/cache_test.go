package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestRedisCacheLifecycle(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	c, err := New(ctx, Config{Enabled: true, Addr: mr.Addr(), TTL: time.Minute})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if _, ok, err := c.Get(ctx, "abc"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "abc", []byte(`{"diagnosis":"Melanoma"}`)); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if !mr.Exists("dermascan:prediction:abc") {
		t.Fatal("expected key to be stored with default prefix")
	}

	got, ok, err := c.Get(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(got) != `{"diagnosis":"Melanoma"}` {
		t.Errorf("unexpected value %s", got)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "abc"); ok {
		t.Error("expected entry to expire after TTL")
	}
}

func TestNewDisabledReturnsNoop(t *testing.T) {
	c, err := New(context.Background(), Config{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, ok := c.(Noop); !ok {
		t.Fatalf("expected Noop cache, got %T", c)
	}
	if err := c.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Noop Set error: %v", err)
	}
	if _, ok, _ := c.Get(context.Background(), "k"); ok {
		t.Error("Noop cache must never hit")
	}
}

func TestNewRedisRequiresAddr(t *testing.T) {
	if _, err := NewRedis(context.Background(), Config{Enabled: true}); err == nil {
		t.Fatal("expected error without address")
	}
}
