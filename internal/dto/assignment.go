package dto

import "cabin-roster/backend/internal/roster"

// ── 分配记录 DTO ──

// RunResponse 分配记录详情
type RunResponse struct {
	RunID            string                 `json:"run_id"`
	Status           string                 `json:"status"`
	Mapping          roster.Mapping         `json:"mapping"`
	Tasks            []roster.TaskLabel     `json:"tasks"`
	Leftovers        []roster.LeftoverEntry `json:"leftovers"`
	Stats            roster.Stats           `json:"stats"`
	UnrankedFallback bool                   `json:"unranked_fallback"`
	Version          int                    `json:"version"`
	CreatedBy        string                 `json:"created_by,omitempty"`
	CreatedAt        string                 `json:"created_at"`
	UpdatedAt        string                 `json:"updated_at"`
}

// RunSummary 分配记录列表项
type RunSummary struct {
	RunID     string       `json:"run_id"`
	Status    string       `json:"status"`
	Stats     roster.Stats `json:"stats"`
	Version   int          `json:"version"`
	CreatedBy string       `json:"created_by,omitempty"`
	CreatedAt string       `json:"created_at"`
}

// UpdateCellRequest 手动修改单个任务格
type UpdateCellRequest struct {
	AreaID  string `json:"area_id"  binding:"required,max=64"`
	TaskKey string `json:"task_key" binding:"required,max=200"`
	Worker  string `json:"worker"   binding:"max=200"` // 空字符串表示清空
	Version int    `json:"version"  binding:"required,min=1"`
}

// DuplicatesResponse 重复员工检查结果
type DuplicatesResponse struct {
	RunID      string             `json:"run_id"`
	Duplicates []roster.Duplicate `json:"duplicates"`
}
