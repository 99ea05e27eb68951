package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cabin-roster/backend/pkg/metrics"
)

// Metrics Prometheus HTTP 指标中间件
// 以路由模板（而非原始路径）作为标签，未匹配路由记为 "unmatched"
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
