package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrBlobUnavailable 模拟对象存储故障.
var ErrBlobUnavailable = errors.New("blob store unavailable")

// MemoryBlobStore 内存对象存储，可注入故障.
type MemoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string

	FailPut  bool
	FailLink bool
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Put(_ context.Context, path string, r io.Reader, _ int64, _ string) error {
	if s.FailPut {
		return ErrBlobUnavailable
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[path] = buf.Bytes()

	return nil
}

func (s *MemoryBlobStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, path)
	s.deleted = append(s.deleted, path)

	return nil
}

func (s *MemoryBlobStore) SignedURL(_ context.Context, path string, ttl time.Duration, downloadName string) (string, error) {
	if s.FailLink {
		return "", ErrBlobUnavailable
	}

	u := fmt.Sprintf("https://blob.test/%s?ttl=%d", path, int(ttl.Seconds()))
	if downloadName != "" {
		u += "&download=" + downloadName
	}

	return u, nil
}

// Object 返回已存储的内容.
func (s *MemoryBlobStore) Object(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.objects[path]

	return b, ok
}

// Deleted 返回被删除过的路径.
func (s *MemoryBlobStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.deleted...)
}
