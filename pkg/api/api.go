// Package api 汇总 HTTP 路由，所有业务接口挂在 /api/v1 下.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/casefile/pkg/internal/handle"
	"github.com/yeisme/casefile/pkg/internal/router"
)

// Handlers 路由依赖的处理器，Scheduler 为 nil 时不注册任务接口.
type Handlers struct {
	Documents *handle.DocumentHandlers
	Scheduler *handle.SchedulerHandlers
}

// RegisterGroup 在传入的 gin 引擎上注册 /api/v1 路由组.
func RegisterGroup(e *gin.Engine, h Handlers) *gin.Engine {
	v1 := e.Group("/api/v1")

	router.RegisterHealthCheckRoute(v1)
	router.RegisterDocumentRoutes(v1, h.Documents)

	if h.Scheduler != nil {
		router.RegisterSchedulerRoutes(v1, h.Scheduler)
	}

	return e
}
