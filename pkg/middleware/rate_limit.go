package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/casefile/pkg/configs"
	cfctx "github.com/yeisme/casefile/pkg/context"
)

const limiterIdleTTL = 10 * time.Minute

// RateLimitMiddleware 令牌桶限流.
// key 取 global、ip、user（调用者 ID，缺失时回退 IP）或 header:<name>.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Key))
	if mode == "global" || mode == "" {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if !limiter.Allow() {
				tooManyRequests(c)
				return
			}

			c.Next()
		}
	}

	pool := newLimiterPool(rate.Limit(cfg.RPS), cfg.Burst)

	return func(c *gin.Context) {
		if !pool.get(limitKey(c, mode)).Allow() {
			tooManyRequests(c)
			return
		}

		c.Next()
	}
}

func tooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "rate limit exceeded"})
}

func limitKey(c *gin.Context, mode string) string {
	var key string

	switch {
	case strings.HasPrefix(mode, "header:"):
		key = c.GetHeader(strings.TrimPrefix(mode, "header:"))
	case mode == "user":
		key = cfctx.GetUserID(c.Request.Context())
	}

	if key == "" {
		key = c.ClientIP()
	}

	if key == "" {
		key = "unknown"
	}

	return key
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool 按键持有限流器，取用时顺带淘汰长时间未访问的条目.
type limiterPool struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	entries   map[string]*limiterEntry
	lastSweep time.Time
}

func newLimiterPool(limit rate.Limit, burst int) *limiterPool {
	return &limiterPool{limit: limit, burst: burst, entries: map[string]*limiterEntry{}, lastSweep: time.Now()}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()

	if now.Sub(p.lastSweep) > limiterIdleTTL {
		for k, e := range p.entries {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(p.entries, k)
			}
		}

		p.lastSweep = now
	}

	e, ok := p.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.entries[key] = e
	}

	e.lastSeen = now

	return e.limiter
}
