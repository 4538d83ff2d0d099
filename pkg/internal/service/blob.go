package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/sony/gobreaker"

	"github.com/yeisme/casefile/pkg/configs"
	"github.com/yeisme/casefile/pkg/internal/storage/s3"
)

// MinioBlobStore 基于 MinIO 的 BlobStore，可选熔断.
type MinioBlobStore struct {
	client  *s3.Client
	breaker *gobreaker.CircuitBreaker
}

// NewMinioBlobStore 创建对象存储适配器，cb.BlobEnabled 为 false 时不熔断.
func NewMinioBlobStore(client *s3.Client, cb configs.CircuitBreakerConfig) *MinioBlobStore {
	store := &MinioBlobStore{client: client}
	if cb.BlobEnabled {
		store.breaker = gobreaker.NewCircuitBreaker(cb.Settings("blob-store"))
	}

	return store
}

func (m *MinioBlobStore) call(fn func() error) error {
	if m.breaker == nil {
		return fn()
	}

	_, err := m.breaker.Execute(func() (any, error) { return nil, fn() })

	return err
}

// Put 上传对象，size 未知时传 -1.
func (m *MinioBlobStore) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	return m.call(func() error {
		_, err := m.client.PutObject(ctx, m.client.Bucket, path, r, size, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return fmt.Errorf("put object %s: %w", path, err)
		}

		return nil
	})
}

// Delete 删除对象.
func (m *MinioBlobStore) Delete(ctx context.Context, path string) error {
	return m.call(func() error {
		return m.client.RemoveObject(ctx, m.client.Bucket, path, minio.RemoveObjectOptions{})
	})
}

// SignedURL 签发预签名 GET 链接.
func (m *MinioBlobStore) SignedURL(ctx context.Context, path string, ttl time.Duration, downloadName string) (string, error) {
	params := make(url.Values)
	if downloadName != "" {
		params.Set("response-content-disposition", mime.FormatMediaType("attachment", map[string]string{"filename": downloadName}))
	}

	var link string

	err := m.call(func() error {
		u, err := m.client.PresignedGetObject(ctx, m.client.Bucket, path, ttl, params)
		if err != nil {
			return fmt.Errorf("presign get %s: %w", path, err)
		}

		link = u.String()

		return nil
	})

	return link, err
}
