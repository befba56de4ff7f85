package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// 慢请求阈值，目录服务抖动时从日志里直接能看出来
const slowRequestThreshold = time.Second

// Logger 请求日志中间件
// 记录完整路径（含查询串）、响应状态、耗时和已登录用户
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		userID := GetUserID(c)

		if latency >= slowRequestThreshold {
			log.Printf("[HTTP] 慢请求 %s %s status=%d user=%d 耗时 %v",
				c.Request.Method, path, status, userID, latency)
			return
		}
		log.Printf("[HTTP] %s %s status=%d user=%d %v ip=%s",
			c.Request.Method, path, status, userID, latency, c.ClientIP())
	}
}
