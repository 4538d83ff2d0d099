package kv

import (
	"context"
	"sync"
	"time"
)

// MemoryKV 进程内 KV，单实例部署或测试时使用.
type MemoryKV struct {
	data sync.Map
	now  func() time.Time
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(_ context.Context, _ any) (KVStore, error) {
	return &MemoryKV{now: time.Now}, nil
}

// Get 获取键的值.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data.Load(key)
	if !ok {
		return nil, ErrNotFound
	}

	val, expired, err := decodeWithTTL(v.([]byte), m.now())
	if err != nil {
		return nil, err
	}

	if expired {
		m.data.Delete(key)
		return nil, ErrNotFound
	}

	out := make([]byte, len(val))
	copy(out, val)

	return out, nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	enc, err := encodeWithTTL(append([]byte(nil), value...), ttl, m.now())
	if err != nil {
		return err
	}

	m.data.Store(key, enc)

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

// Exists 检查键是否存在.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := m.Get(ctx, key); err != nil {
		if err == ErrNotFound {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// Keys 按模式列出未过期的键.
func (m *MemoryKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)

	m.data.Range(func(k, _ any) bool {
		key := k.(string)
		if !matchKey(pattern, key) {
			return true
		}

		if ok, _ := m.Exists(ctx, key); ok {
			keys = append(keys, key)
		}

		return true
	})

	return keys, nil
}

// Close 内存实现无需释放资源.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}
