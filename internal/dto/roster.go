package dto

// ── 当班名单 DTO ──

// ReplaceRosterRequest 替换名单请求
type ReplaceRosterRequest struct {
	Names []string `json:"names" binding:"max=1000,dive,max=200"`
}

// RosterResponse 名单响应
type RosterResponse struct {
	Names []string `json:"names"`
	Count int      `json:"count"`
}
