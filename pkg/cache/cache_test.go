package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/casefile/pkg/cache"
	"github.com/yeisme/casefile/pkg/internal/storage/kv"
)

type profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newCache(t *testing.T, prefix string) (*cache.Cache, kv.KVStore) {
	t.Helper()

	store, err := kv.NewMemoryKV(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewMemoryKV: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return cache.NewCache(store, prefix), store
}

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, store := newCache(t, "profile")

	want := profile{ID: "u1", Name: "Ana"}
	if err := cache.Set(ctx, c, "u1", want, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := cache.Get[profile](ctx, c, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got != want {
		t.Errorf("Get = %+v, want %+v", got, want)
	}

	if ok, _ := store.Exists(ctx, "profile:u1"); !ok {
		t.Error("expected key to be stored under prefix")
	}
}

func TestCache_Miss(t *testing.T) {
	c, _ := newCache(t, "p")

	_, err := cache.Get[string](context.Background(), c, "nope")
	if !cache.IsMiss(err) {
		t.Fatalf("expected miss, got %v", err)
	}
}

func TestCache_GetMany(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, "names")

	_ = cache.Set(ctx, c, "a", "Alice", 0)
	_ = cache.Set(ctx, c, "b", "Bob", 0)

	hits, missing := cache.GetMany[string](ctx, c, []string{"a", "b", "c"})
	if len(hits) != 2 || hits["a"] != "Alice" || hits["b"] != "Bob" {
		t.Errorf("hits = %v", hits)
	}

	if len(missing) != 1 || missing[0] != "c" {
		t.Errorf("missing = %v", missing)
	}
}

func TestGetOrSet(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, "g")

	var calls int32

	getter := func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "value", nil
	}

	for range 3 {
		v, err := cache.GetOrSet(ctx, c, "k", getter, time.Minute)
		if err != nil || v != "value" {
			t.Fatalf("GetOrSet = %q, %v", v, err)
		}
	}

	if calls != 1 {
		t.Errorf("getter called %d times, want 1", calls)
	}
}

func TestGetOrSet_Concurrent(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, "g")

	var calls int32

	release := make(chan struct{})
	getter := func() (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release

		return 42, nil
	}

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if v, err := cache.GetOrSet(ctx, c, "shared", getter, time.Minute); err != nil || v != 42 {
				t.Errorf("GetOrSet = %d, %v", v, err)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n < 1 || n > 8 {
		t.Errorf("unexpected getter calls: %d", n)
	}
}

func TestGetOrSet_GetterError(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, "g")

	boom := errors.New("boom")

	_, err := cache.GetOrSet(ctx, c, "k", func() (string, error) { return "", boom }, time.Minute)
	if !errors.Is(err, boom) {
		t.Fatalf("expected getter error, got %v", err)
	}

	if ok, _ := c.Exists(ctx, "k"); ok {
		t.Error("failed getter must not populate cache")
	}
}

func TestCache_ClearOnlyPrefix(t *testing.T) {
	ctx := context.Background()
	c, store := newCache(t, "names")

	_ = cache.Set(ctx, c, "a", "A", 0)
	_ = store.Set(ctx, "other:a", []byte(`"x"`), 0)

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if ok, _ := c.Exists(ctx, "a"); ok {
		t.Error("prefixed key should be cleared")
	}

	if ok, _ := store.Exists(ctx, "other:a"); !ok {
		t.Error("foreign key must survive Clear")
	}
}
