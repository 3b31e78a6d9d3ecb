package cache

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

// newTestBadger opens a Badger cache in a temp dir.
func newTestBadger(t *testing.T) *Badger {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	b, err := OpenBadger(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("open badger cache: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

// caches returns every Cache implementation under test.
func caches(t *testing.T) map[string]Cache {
	return map[string]Cache{
		"memory": NewMemory(),
		"badger": newTestBadger(t),
	}
}

func TestCache_SetAndGet(t *testing.T) {
	ctx := context.Background()

	for name, c := range caches(t) {
		t.Run(name, func(t *testing.T) {
			if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
				t.Fatalf("Set: %v", err)
			}

			got, ok, err := c.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !ok {
				t.Fatal("expected hit")
			}
			if string(got) != "v" {
				t.Errorf("got %q, want %q", got, "v")
			}
		})
	}
}

func TestCache_MissingKey(t *testing.T) {
	ctx := context.Background()

	for name, c := range caches(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := c.Get(ctx, "absent")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if ok {
				t.Error("expected miss for absent key")
			}
		})
	}
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()

	for name, c := range caches(t) {
		t.Run(name, func(t *testing.T) {
			if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := c.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete: %v", err)
			}

			_, ok, err := c.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if ok {
				t.Error("expected miss after delete")
			}

			// Deleting again is not an error.
			if err := c.Delete(ctx, "k"); err != nil {
				t.Errorf("second Delete: %v", err)
			}
		})
	}
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	now := time.Now()
	m.SetClock(func() time.Time { return now })

	if err := m.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Still fresh just inside the TTL window.
	now = now.Add(59 * time.Minute)
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Fatal("expected hit inside TTL window")
	}

	// Expired after the window.
	now = now.Add(2 * time.Minute)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestBadger_NonPositiveTTLRejected(t *testing.T) {
	b := newTestBadger(t)
	if err := b.Set(context.Background(), "k", []byte("v"), 0); err == nil {
		t.Error("expected error for zero ttl")
	}
}

func TestCache_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	if err := m.Set(ctx, "k", []byte("v"), time.Minute); err == nil {
		t.Error("expected context error from Set")
	}
	if _, _, err := m.Get(ctx, "k"); err == nil {
		t.Error("expected context error from Get")
	}
}
