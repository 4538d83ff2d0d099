// Package cache 在 KV 存储之上提供带命名空间的泛型缓存.
//
// 值以 sonic 编码，未命中返回 kv.ErrNotFound；GetOrSet 对同一键的并发回源只执行一次.
//
//	names := cache.NewCache(kvClient, "display_name")
//	name, err := cache.GetOrSet(ctx, names, userID, func() (string, error) {
//		return lookup(ctx, userID)
//	}, 10*time.Minute)
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/casefile/pkg/internal/storage/kv"
)

// Cache 基于 KV 存储的缓存，所有键加上 prefix 前缀.
type Cache struct {
	store  kv.KVStore
	prefix string
	group  singleflight.Group
}

// NewCache 创建缓存，prefix 为空时不加前缀.
func NewCache(store kv.KVStore, prefix string) *Cache {
	return &Cache{store: store, prefix: prefix}
}

func (c *Cache) key(k string) string {
	if c.prefix == "" {
		return k
	}

	return c.prefix + ":" + k
}

// IsMiss 判断错误是否为缓存未命中.
func IsMiss(err error) bool {
	return errors.Is(err, kv.ErrNotFound)
}

// Get 读取并解码缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var value T

	data, err := c.store.Get(ctx, c.key(key))
	if err != nil {
		return value, err
	}

	if err := sonic.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 编码并写入缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.store.Set(ctx, c.key(key), data, ttl)
}

// GetMany 批量读取，返回命中的值与未命中的键.
// 存储错误按未命中处理.
func GetMany[T any](ctx context.Context, c *Cache, keys []string) (map[string]T, []string) {
	hits := make(map[string]T, len(keys))
	missing := make([]string, 0)

	for _, k := range keys {
		v, err := Get[T](ctx, c, k)
		if err != nil {
			missing = append(missing, k)
			continue
		}

		hits[k] = v
	}

	return hits, missing
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, c.key(key))
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.store.Exists(ctx, c.key(key))
}

// GetOrSet 命中直接返回，否则调用 getter 并写回缓存.
// 写回失败不影响返回值.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := getter()
		if err != nil {
			return value, err
		}

		_ = Set(ctx, c, key, value, ttl)

		return value, nil
	})

	value, _ := v.(T)

	return value, err
}

// Clear 删除当前前缀下的全部键.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.store.Keys(ctx, c.key("*"))
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			return err
		}
	}

	return nil
}
