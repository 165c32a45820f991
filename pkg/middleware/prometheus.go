package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/flarecloud/pkg/metrics"
)

// unmatchedRoute 未命中 API 路由的请求（静态资源、404）共用一个 endpoint 标签.
const unmatchedRoute = "unmatched"

// PrometheusMiddleware Prometheus监控中间件.
// endpoint 使用路由模板（如 /files/:filename），避免按文件名产生大量时间序列.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		// 执行下一个中间件/处理器
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = unmatchedRoute
		}

		metrics.ObserveRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}
