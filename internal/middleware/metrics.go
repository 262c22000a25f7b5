package middleware

import (
	"strconv"
	"time"

	"github.com/haierkeys/agent-scrum-service/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 记录请求数与耗时，路由使用注册时的模板避免标签爆炸
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
