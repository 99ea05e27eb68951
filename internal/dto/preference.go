package dto

// ── 偏好模块 DTO ──

// PreferenceItem 单个员工的偏好
type PreferenceItem struct {
	WorkerName          string   `json:"worker_name"          binding:"required,max=200"`
	TaskPreferences     []string `json:"task_preferences"     binding:"max=50,dive,max=100"`
	AreaPreferences     []string `json:"area_preferences"     binding:"max=7,dive,area_code"`
	PyyhintaPreferences []string `json:"pyyhinta_preferences" binding:"max=7,dive,area_code"`
}

// ImportPreferencesRequest 批量导入偏好（JSON）
type ImportPreferencesRequest struct {
	Preferences []PreferenceItem `json:"preferences" binding:"required,min=1,max=2000,dive"`
}

// PreferenceResponse 偏好响应
type PreferenceResponse struct {
	WorkerName          string   `json:"worker_name"` // 规范化姓名
	DisplayName         string   `json:"display_name"`
	TaskPreferences     []string `json:"task_preferences"`
	AreaPreferences     []string `json:"area_preferences"`
	PyyhintaPreferences []string `json:"pyyhinta_preferences"`
	Position            int      `json:"position"`
	UpdatedAt           string   `json:"updated_at"`
}

// ClearPreferencesResponse 清空偏好响应
type ClearPreferencesResponse struct {
	Removed int64 `json:"removed"`
}

// MatchRequest 任务匹配调试请求
type MatchRequest struct {
	Task       string `json:"task"       binding:"required,max=100"`
	Preference string `json:"preference" binding:"required,max=100"`
}

// MatchResponse 任务匹配调试响应
type MatchResponse struct {
	Matches              bool   `json:"matches"`
	NormalizedTask       string `json:"normalized_task"`
	NormalizedPreference string `json:"normalized_preference"`
	BaseType             string `json:"base_type"`
}
