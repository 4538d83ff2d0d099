// Package middleware 提供 HTTP 中间件：日志、指标、追踪、身份、限流、熔断与 ETag.
package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/casefile/pkg/configs"
)

// Global 按固定顺序返回全局中间件.
// 追踪先于日志执行，使日志带上 trace_id；身份先于限流，使 user 维度可用.
func Global(cfg *configs.AppConfig) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{
		gin.Recovery(),
		TracingMiddleware(),
		GinLoggerMiddleware(),
		PrometheusMiddleware(),
		CORSMiddleware(),
	}

	if cfg.Server.Gzip {
		chain = append(chain, gzip.Gzip(gzip.DefaultCompression))
	}

	return append(chain,
		AuthMiddleware(cfg.Auth),
		RateLimitMiddleware(cfg.RateLimit),
		CircuitBreakerMiddleware(cfg.CircuitBreaker),
	)
}
