package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/casefile/pkg/configs"
	cfctx "github.com/yeisme/casefile/pkg/context"
)

// 认证代理（oauth2-proxy）注入的身份头，user_header 缺失时依次回退.
var proxyUserHeaders = []string{"X-Auth-Request-User", "X-Auth-Request-Email", "X-Forwarded-Email"}

// AuthMiddleware 识别调用者并写入请求上下文.
//   - 依次读取 user_header 与认证代理头
//   - skip_paths 前缀匹配的路径不要求身份
//   - dev_allow_query 打开时允许 ?user= 兜底
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := requestUser(c, conf)
		role := strings.TrimSpace(c.GetHeader(conf.RoleHeader))

		if user != "" {
			c.Request = c.Request.WithContext(cfctx.WithUser(c.Request.Context(), user, role))
			c.Set("user", user)
		}

		if user == "" && conf.Enabled && !isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}

		c.Next()
	}
}

func requestUser(c *gin.Context, conf configs.AuthConfig) string {
	headers := proxyUserHeaders
	if conf.UserHeader != "" {
		headers = append([]string{conf.UserHeader}, proxyUserHeaders...)
	}

	for _, h := range headers {
		if v := strings.TrimSpace(c.GetHeader(h)); v != "" {
			return v
		}
	}

	if conf.DevAllowQuery {
		return strings.TrimSpace(c.Query("user"))
	}

	return ""
}

func isSkippedPath(path string, skips []string) bool {
	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
