// Package router 负责把路径绑定到处理器，处理器实现由 pkg/internal/handle 注入.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/casefile/pkg/internal/model"
	"github.com/yeisme/casefile/pkg/middleware"
)

// DocumentHandlers 文档路由所需的处理器.
type DocumentHandlers interface {
	Upload() gin.HandlerFunc
	List() gin.HandlerFunc
	Details() gin.HandlerFunc
	UploadVersion() gin.HandlerFunc
	Patch() gin.HandlerFunc
	Archive() gin.HandlerFunc
	Versions() gin.HandlerFunc
	Events() gin.HandlerFunc
	IssueLink() gin.HandlerFunc
}

// SchedulerHandlers 后台任务路由所需的处理器.
type SchedulerHandlers interface {
	Jobs() gin.HandlerFunc
	Run() gin.HandlerFunc
}

// RegisterDocumentRoutes 绑定文档路由，只读列表与历史接口带 ETag.
// 详情接口每次访问都要记录查看事件，不走 ETag 协商.
//
//	POST   /patients/:patientId/documents -> Upload
//	GET    /patients/:patientId/documents -> List
//	POST   /documents/links               -> IssueLink
//	GET    /documents/:id                 -> Details
//	PATCH  /documents/:id                 -> Patch
//	DELETE /documents/:id                 -> Archive
//	POST   /documents/:id/versions        -> UploadVersion
//	GET    /documents/:id/versions        -> Versions
//	GET    /documents/:id/events          -> Events
func RegisterDocumentRoutes(g *gin.RouterGroup, h DocumentHandlers) {
	etag := middleware.ETagMiddleware(middleware.DefaultETagMaxBytes)

	patients := g.Group("/patients/:patientId/documents")
	{
		patients.POST("", h.Upload())
		patients.GET("", etag, h.List())
	}

	docs := g.Group("/documents")
	{
		docs.POST("/links", h.IssueLink())
		docs.GET("/:id", h.Details())
		docs.PATCH("/:id", h.Patch())
		docs.DELETE("/:id", h.Archive())
		docs.POST("/:id/versions", h.UploadVersion())
		docs.GET("/:id/versions", etag, h.Versions())
		docs.GET("/:id/events", etag, h.Events())
	}
}

// RegisterSchedulerRoutes 注册调度器路由，手动触发需要 admin.
func RegisterSchedulerRoutes(g *gin.RouterGroup, h SchedulerHandlers) {
	jobs := g.Group("/scheduler/jobs")
	{
		jobs.GET("", h.Jobs())
		jobs.POST("/:name/run", middleware.RequireMinRole(model.RoleAdmin), h.Run())
	}
}
