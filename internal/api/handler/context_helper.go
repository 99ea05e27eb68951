package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"cabin-roster/backend/pkg/response"
)

// GetOperator 读取 JWT 中的操作员名称，登录时未填写则为空
func GetOperator(c *gin.Context) string {
	return c.GetString("operator")
}

// MustGetTokenInfo 从 Gin 上下文中安全提取当前 Token 的 jti 与过期时间。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetTokenInfo(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString("token_jti")
	if jti == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	v, exists := c.Get("token_exp")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	exp, ok := v.(time.Time)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	return jti, exp, true
}
