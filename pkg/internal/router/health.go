package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/casefile/pkg/internal/handle"
)

// RegisterHealthCheckRoute 注册依赖健康检查，默认位于 auth.skip_paths 中无需身份.
func RegisterHealthCheckRoute(g *gin.RouterGroup) {
	health := g.Group("/health")
	{
		health.GET("/db", handle.HealthDB)
		health.GET("/s3", handle.HealthS3)
		health.GET("/mq", handle.HealthMQ)
	}
}
