package service

import (
	crand "crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid"
)

// SystemClock 返回 UTC 当前时间.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator 生成文档 ID.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.NewString() }

// ULIDGenerator 生成按时间排序的 ID，用于事件与存储键.
// 单调熵源本身不是并发安全的，由 mu 保护.
type ULIDGenerator struct {
	mu      sync.Mutex
	clock   Clock
	entropy io.Reader
}

// NewULIDGenerator 创建 ULID 生成器，clock 为 nil 时使用系统时钟.
func NewULIDGenerator(clock Clock) *ULIDGenerator {
	if clock == nil {
		clock = SystemClock{}
	}

	return &ULIDGenerator{clock: clock, entropy: ulid.Monotonic(crand.Reader, 0)}
}

func (g *ULIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.clock.Now()), g.entropy).String()
}
