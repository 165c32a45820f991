package middleware

import (
	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/flarecloud/pkg/context"
	"github.com/yeisme/flarecloud/pkg/scheduler"
)

// SchedulerMiddleware 注入调度器，供 /scheduler 路由查询和手动触发任务.
// sched 为 nil 时不注入.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	if sched == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(ctxPkg.WithScheduler(c.Request.Context(), sched))
		c.Next()
	}
}

// GetScheduler 返回请求中注入的调度器.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	return ctxPkg.GetScheduler(c.Request.Context())
}
