package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/yeisme/casefile/pkg/configs"
)

var errServerFailure = errors.New("handler returned 5xx")

// CircuitBreakerMiddleware 业务接口连续 5xx 时熔断，熔断期间返回 503.
// 健康检查不经过熔断器，探针始终能看到真实状态.
func CircuitBreakerMiddleware(cfg configs.CircuitBreakerConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	cb := gobreaker.NewCircuitBreaker(cfg.Settings("http"))

	return func(c *gin.Context) {
		if strings.Contains(c.Request.URL.Path, "/health/") {
			c.Next()
			return
		}

		_, err := cb.Execute(func() (any, error) {
			c.Next()

			if c.Writer.Status() >= http.StatusInternalServerError {
				return nil, errServerFailure
			}

			return nil, nil
		})

		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"kind":    "unavailable",
				"error":   "circuit " + cb.State().String(),
			})
		}
	}
}
