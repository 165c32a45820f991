package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/flarecloud/pkg/internal/types"
	"github.com/yeisme/flarecloud/pkg/middleware"
	"github.com/yeisme/flarecloud/pkg/scheduler"
)

// SchedulerJobs 返回所有调度器任务信息.
func SchedulerJobs(c *gin.Context) {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.JSON(http.StatusOK, types.JobsResponse{Jobs: []scheduler.JobInfo{}})
		return
	}

	c.JSON(http.StatusOK, types.JobsResponse{Jobs: sched.GetJobInfos()})
}

// SchedulerRunJob 立即触发一次指定任务，返回 202；任务在调度器的 goroutine 中执行.
func SchedulerRunJob(c *gin.Context) {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "scheduler not running"})
		return
	}

	name := c.Param("name")

	if err := sched.RunNow(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "job not found"})
			return
		}

		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})

		return
	}

	c.JSON(http.StatusAccepted, types.MessageResponse{Message: "job triggered"})
}
