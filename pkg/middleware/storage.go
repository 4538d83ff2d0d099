package middleware

import (
	"github.com/gin-gonic/gin"

	cfctx "github.com/yeisme/casefile/pkg/context"
	"github.com/yeisme/casefile/pkg/internal/storage"
)

// StorageMiddleware 将存储管理器放入请求上下文，供健康检查使用.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(cfctx.WithStorageManager(c.Request.Context(), manager))
		c.Next()
	}
}
