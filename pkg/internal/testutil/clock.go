// Package testutil 测试用的桩实现与内存数据库.
package testutil

import (
	"fmt"
	"sync"
	"time"
)

// StubClock 返回固定时间，可并发使用.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewStubClock 以给定时间创建时钟.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock 返回 2024-01-15 10:30:00 UTC 的时钟.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance 将时钟向前拨 d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// StubIDGenerator 生成顺序 ID：prefix-1、prefix-2 …
type StubIDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter int
}

func NewStubIDGenerator(prefix string) *StubIDGenerator {
	return &StubIDGenerator{prefix: prefix}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++

	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}
