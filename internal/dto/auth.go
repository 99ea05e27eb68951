package dto

// ── 认证模块 DTO ──

// LoginRequest 口令登录请求
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
	Operator string `json:"operator" binding:"omitempty,max=100"` // 操作员名称，写入审计字段
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // Access Token 有效期（秒）
	Operator    string `json:"operator,omitempty"`
}
