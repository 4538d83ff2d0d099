package testutil

import (
	"context"
	"sync"
)

// StubDirectory 固定的用户目录，Err 非空时所有查询失败.
type StubDirectory struct {
	mu    sync.Mutex
	Names map[string]string
	Err   error
	Calls int
}

func NewStubDirectory(names map[string]string) *StubDirectory {
	return &StubDirectory{Names: names}
}

func (d *StubDirectory) DisplayNames(_ context.Context, ids []string) (map[string]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Calls++

	if d.Err != nil {
		return nil, d.Err
	}

	out := make(map[string]string, len(ids))

	for _, id := range ids {
		if name, ok := d.Names[id]; ok {
			out[id] = name
		}
	}

	return out, nil
}
