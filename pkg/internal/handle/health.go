package handle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cfctx "github.com/yeisme/casefile/pkg/context"
)

const timeout = 2 * time.Second

var errNotInitialized = errors.New("client not initialized")

func health(c *gin.Context, component string, check func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := check(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
}

// HealthDB 数据库健康检查.
//
//	@Summary	数据库健康检查
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/health/db [get]
func HealthDB(c *gin.Context) {
	health(c, "db", func(ctx context.Context) error {
		dbc := cfctx.GetDBClient(ctx)
		if dbc == nil || dbc.DB == nil {
			return errNotInitialized
		}

		return dbc.Ping(ctx)
	})
}

// HealthS3 对象存储健康检查，要求文档桶存在.
//
//	@Summary	对象存储健康检查
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/health/s3 [get]
func HealthS3(c *gin.Context) {
	health(c, "s3", func(ctx context.Context) error {
		s3c := cfctx.GetS3Client(ctx)
		if s3c == nil || s3c.Client == nil {
			return errNotInitialized
		}

		return s3c.HealthCheck(ctx)
	})
}

// HealthMQ 消息队列健康检查，未启用事件广播时视为不可用.
//
//	@Summary	消息队列健康检查
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/health/mq [get]
func HealthMQ(c *gin.Context) {
	health(c, "mq", func(ctx context.Context) error {
		if cfctx.GetMQClient(ctx) == nil {
			return errNotInitialized
		}

		return nil
	})
}
