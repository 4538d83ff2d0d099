// Package handle 提供 HTTP 请求处理器，负责参数绑定、调用服务层并映射错误状态码.
package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	cfctx "github.com/yeisme/casefile/pkg/context"
	"github.com/yeisme/casefile/pkg/internal/service"
	"github.com/yeisme/casefile/pkg/internal/types"
	"github.com/yeisme/casefile/pkg/log"
	"github.com/yeisme/casefile/pkg/rule"
)

// DefaultHandler 未实现的路由占位.
func DefaultHandler(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, types.ErrorResponse{Success: false, Error: "not implemented"})
}

var kindStatus = map[service.Kind]int{
	service.KindValidation:  http.StatusBadRequest,
	service.KindNotFound:    http.StatusNotFound,
	service.KindOwnership:   http.StatusForbidden,
	service.KindStorage:     http.StatusBadGateway,
	service.KindPersistence: http.StatusInternalServerError,
	service.KindConflict:    http.StatusConflict,
}

// StatusOf 返回服务层错误对应的 HTTP 状态码.
func StatusOf(err error) int {
	if status, ok := kindStatus[service.KindOf(err)]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// writeError 按错误种类输出响应，并挂到 gin 上下文供追踪中间件记录.
func writeError(c *gin.Context, op string, err error) {
	status := StatusOf(err)
	_ = c.Error(err)

	ev := log.Ctx(c.Request.Context()).Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Ctx(c.Request.Context()).Error()
	}

	ev.Err(err).Str("op", op).Int("status", status).Msg("request failed")

	c.JSON(status, types.ErrorResponse{
		Success: false,
		Kind:    string(service.KindOf(err)),
		Error:   err.Error(),
	})
}

// badRequest 输出参数错误，校验失败时附带字段明细.
func badRequest(c *gin.Context, err error) {
	log.Ctx(c.Request.Context()).Warn().Err(err).Str("path", c.FullPath()).Msg("invalid request")

	c.JSON(http.StatusBadRequest, types.ErrorResponse{
		Success: false,
		Kind:    string(service.KindValidation),
		Error:   err.Error(),
		Details: rule.Messages(err),
	})
}

// bind 绑定请求并按 rule 标签校验，失败时已写出响应.
func bind(c *gin.Context, obj any, binder func(any) error) bool {
	if err := binder(obj); err != nil {
		badRequest(c, err)
		return false
	}

	if err := rule.ValidateStruct(obj); err != nil {
		badRequest(c, err)
		return false
	}

	return true
}

var errMissingFile = errors.New("multipart field \"file\" is required")

// actor 以认证中间件识别的用户构造调用方上下文.
func actor(c *gin.Context, tenants service.TenantLookup) *service.RequestActor {
	return service.NewActor(cfctx.GetUserID(c.Request.Context()), tenants)
}
