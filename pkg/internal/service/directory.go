package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yeisme/casefile/pkg/cache"
)

// CachedDirectory 在 KV 缓存之上包装用户目录.
type CachedDirectory struct {
	source UserDirectory
	cache  *cache.Cache
	ttl    time.Duration
	group  singleflight.Group
}

// NewCachedDirectory 创建带缓存的用户目录.
func NewCachedDirectory(source UserDirectory, c *cache.Cache, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{source: source, cache: c, ttl: ttl}
}

// DisplayNames 先查缓存，未命中的 ID 合并为一次回源查询.
func (d *CachedDirectory) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	ids = uniqueNonEmpty(ids)

	names, missing := cache.GetMany[string](ctx, d.cache, ids)
	if len(missing) == 0 {
		return names, nil
	}

	slices.Sort(missing)

	v, err, _ := d.group.Do(strings.Join(missing, ","), func() (any, error) {
		return d.source.DisplayNames(ctx, missing)
	})
	if err != nil {
		return names, err
	}

	fetched, _ := v.(map[string]string)
	for id, name := range fetched {
		names[id] = name
		_ = cache.Set(ctx, d.cache, id, name, d.ttl)
	}

	return names, nil
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if id == "" {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
