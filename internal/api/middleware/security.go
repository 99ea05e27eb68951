package middleware

import (
	"github.com/gin-gonic/gin"
)

// apiSecurityHeaders 服务只返回 JSON 与 Excel 下载，不渲染页面
var apiSecurityHeaders = [][2]string{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cache-Control", "no-store"}, // 分配结果含员工姓名，不进入共享缓存
}

// SecurityHeaders 安全 HTTP 头中间件
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range apiSecurityHeaders {
			h.Set(kv[0], kv[1])
		}
		c.Next()
	}
}
