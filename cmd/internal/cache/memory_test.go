package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("t")

	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if err := m.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("Get = (%q, %v)", got, err)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete err = %v, want ErrNotFound", err)
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("")

	if err := m.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := m.Get(ctx, "k"); err != nil {
		t.Fatalf("fresh Get: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired Get err = %v, want ErrNotFound", err)
	}
}

func TestNew_DriverSelection(t *testing.T) {
	c, err := New(Config{})
	if err != nil {
		t.Fatalf("New memory: %v", err)
	}
	if _, ok := c.(*Memory); !ok {
		t.Fatalf("default driver is not memory")
	}

	if _, err := New(Config{Driver: "bolt"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
