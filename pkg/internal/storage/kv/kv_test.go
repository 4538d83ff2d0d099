package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/yeisme/casefile/pkg/configs"
)

// TestMemoryKVTTL 过期后读取返回 ErrNotFound.
func TestMemoryKVTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m := &MemoryKV{now: func() time.Time { return now }}

	if err := m.Set(ctx, "user:u1", []byte("Ana"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := m.Get(ctx, "user:u1")
	if err != nil || string(got) != "Ana" {
		t.Fatalf("Get() = %q, %v", got, err)
	}

	now = now.Add(2 * time.Minute)

	if _, err := m.Get(ctx, "user:u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrNotFound", err)
	}

	if ok, _ := m.Exists(ctx, "user:u1"); ok {
		t.Error("Exists() = true after expiry")
	}
}

func TestMemoryKVKeysPattern(t *testing.T) {
	ctx := context.Background()
	store, err := NewKVStore(ctx, KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("NewKVStore() error = %v", err)
	}

	for _, k := range []string{"user:a", "user:b", "doc:1"} {
		if err := store.Set(ctx, k, []byte("x"), 0); err != nil {
			t.Fatalf("Set(%s) error = %v", k, err)
		}
	}

	keys, err := store.Keys(ctx, "user:*")
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}

	sort.Strings(keys)

	if len(keys) != 2 || keys[0] != "user:a" || keys[1] != "user:b" {
		t.Errorf("Keys(user:*) = %v", keys)
	}

	all, _ := store.Keys(ctx, "")
	if len(all) != 3 {
		t.Errorf("Keys(\"\") = %v, want 3 keys", all)
	}
}

// TestGroupcacheKVLocal 单节点模式下的读写删除.
func TestGroupcacheKVLocal(t *testing.T) {
	ctx := context.Background()
	cfg := &configs.GroupcacheKVConfig{Name: "test-groupcache-local", CacheBytes: 1 << 20}

	store, err := NewKVStore(ctx, KVTypeGroupcache, cfg)
	if err != nil {
		t.Fatalf("NewKVStore() error = %v", err)
	}

	if err := store.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := store.Set(ctx, "k", []byte("v2"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil || string(got) != "v2" {
		t.Errorf("Get() = %q, %v; want v2", got, err)
	}

	_ = store.Delete(ctx, "k")

	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}

	again, err := NewKVStore(ctx, KVTypeGroupcache, cfg)
	if err != nil || again != store {
		t.Errorf("same group name should reuse instance, err = %v", err)
	}
}

func TestTTLEncoding(t *testing.T) {
	now := time.Unix(1700000000, 0)

	raw, err := encodeWithTTL([]byte("plain"), 0, now)
	if err != nil || string(raw) != "plain" {
		t.Fatalf("encodeWithTTL(ttl=0) = %q, %v", raw, err)
	}

	wrapped, err := encodeWithTTL([]byte("v"), time.Second, now)
	if err != nil {
		t.Fatalf("encodeWithTTL() error = %v", err)
	}

	if v, expired, err := decodeWithTTL(wrapped, now); err != nil || expired || string(v) != "v" {
		t.Errorf("decode before expiry = %q, %v, %v", v, expired, err)
	}

	if _, expired, _ := decodeWithTTL(wrapped, now.Add(time.Second)); !expired {
		t.Error("decode at expiry should report expired")
	}
}

func TestNewKVClientUnsupported(t *testing.T) {
	_, err := NewKVClient(context.Background(), &configs.KVConfig{Type: "etcd"})
	if err == nil {
		t.Error("expected error for unsupported type")
	}
}

// Optional: ENABLE_REDIS_BENCH=1 REDIS_ADDR=127.0.0.1:6379.
func BenchmarkRedisKV(b *testing.B) {
	if os.Getenv("ENABLE_REDIS_BENCH") == "" {
		b.Skip("set ENABLE_REDIS_BENCH=1 to enable")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	store, err := NewKVStore(context.Background(), KVTypeRedis, &configs.RedisKVConfig{Addr: addr})
	if err != nil {
		b.Skipf("redis not available: %v", err)
	}

	benchKV(b, store)
	_ = store.Close()
}

func BenchmarkMemoryKV(b *testing.B) {
	store, _ := NewKVStore(context.Background(), KVTypeMemory, nil)
	benchKV(b, store)
}

func benchKV(b *testing.B, store KVStore) {
	ctx := context.Background()
	payload := []byte("Maria da Silva")

	b.ReportAllocs()

	for i := 0; b.Loop(); i++ {
		key := fmt.Sprintf("user-name-%d", i)
		if err := store.Set(ctx, key, payload, time.Minute); err != nil {
			b.Fatalf("set failed: %v", err)
		}

		if _, err := store.Get(ctx, key); err != nil {
			b.Fatalf("get failed: %v", err)
		}
	}
}
