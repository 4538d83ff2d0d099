package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/casefile/pkg/internal/types"
	"github.com/yeisme/casefile/pkg/scheduler"
)

// SchedulerHandlers 后台任务查看与手动触发.
type SchedulerHandlers struct {
	sched *scheduler.Scheduler
}

// NewSchedulerHandlers 创建调度器处理器.
func NewSchedulerHandlers(sched *scheduler.Scheduler) *SchedulerHandlers {
	return &SchedulerHandlers{sched: sched}
}

// Jobs 返回所有已注册任务的状态.
//
//	@Summary	列出后台任务
//	@Tags		scheduler
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Router		/api/v1/scheduler/jobs [get]
func (h *SchedulerHandlers) Jobs() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "jobs": h.sched.GetJobInfos()})
	}
}

// Run 立即触发一次任务，需要 admin 角色.
//
//	@Summary	手动触发任务
//	@Tags		scheduler
//	@Produce	json
//	@Param		name	path		string	true	"任务名，如 documents.lineage_repair"
//	@Success	202		{object}	map[string]any
//	@Failure	403		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/api/v1/scheduler/jobs/{name}/run [post]
func (h *SchedulerHandlers) Run() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")

		if err := h.sched.RunNow(name); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, scheduler.ErrJobNotFound) {
				status = http.StatusNotFound
			}

			c.JSON(status, types.ErrorResponse{Success: false, Error: err.Error()})

			return
		}

		c.JSON(http.StatusAccepted, gin.H{"success": true, "job": name})
	}
}
