package model

import "cabin-roster/backend/internal/roster"

// WorkerPreference 员工偏好表 — 对应 worker_preferences
//
// NameKey 为规范化姓名；重复上传整体覆盖，Position 保持首次写入时的位置。
type WorkerPreference struct {
	NameKey             string      `gorm:"type:varchar(200);primaryKey"  json:"name_key"`
	DisplayName         string      `gorm:"type:varchar(200);not null"    json:"display_name"`
	TaskPreferences     StringArray `gorm:"type:text[];not null"          json:"task_preferences"`
	AreaPreferences     StringArray `gorm:"type:text[];not null"          json:"area_preferences"`
	PyyhintaPreferences StringArray `gorm:"type:text[];not null"          json:"pyyhinta_preferences"`
	Position            int         `gorm:"not null;index"                json:"position"`
	BaseModel
}

func (WorkerPreference) TableName() string { return "worker_preferences" }

// ToDomain 转换为引擎使用的偏好
func (p *WorkerPreference) ToDomain() roster.WorkerPreference {
	return roster.WorkerPreference{
		WorkerName:          p.NameKey,
		TaskPreferences:     []string(p.TaskPreferences),
		AreaPreferences:     []string(p.AreaPreferences),
		PyyhintaPreferences: []string(p.PyyhintaPreferences),
	}
}
