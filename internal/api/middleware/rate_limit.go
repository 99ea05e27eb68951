package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cabin-roster/backend/pkg/redis"
	"cabin-roster/backend/pkg/response"
)

const rateLimitKeyPrefix = "rate_limit:"

// rateLimitKey 按操作范围与调用方计数：已登录时用操作员姓名，否则用客户端 IP
func rateLimitKey(c *gin.Context, scope string) string {
	subject := "ip:" + c.ClientIP()
	if op := c.GetString("operator"); op != "" {
		subject = "op:" + op
	}
	return rateLimitKeyPrefix + scope + ":" + subject
}

// RateLimit 限制某类操作（如生成分配）的频率
//
// 同一操作员在 window 内最多执行 limit 次，超出时返回 429 并带 Retry-After。
// rdb 为 nil 或 limit <= 0 时不限流；Redis 出错时降级放行。
func RateLimit(rdb *redis.Client, scope string, limit int, window time.Duration) gin.HandlerFunc {
	retryAfter := strconv.Itoa(max(1, int(window.Seconds())))

	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), rateLimitKey(c, scope), limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", retryAfter)
			response.TooManyRequests(c, 10004, "操作过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
