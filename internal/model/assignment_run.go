package model

import (
	"database/sql/driver"

	"cabin-roster/backend/internal/roster"
)

// 分配记录状态
const (
	RunStatusGenerated = "generated"
	RunStatusEdited    = "edited"
)

// RunMapping 有序的区域 → 任务 → 员工 映射，JSONB
type RunMapping struct {
	roster.Mapping
}

// Scan 实现 sql.Scanner
func (m *RunMapping) Scan(src interface{}) error {
	return scanJSON(src, &m.Mapping, "RunMapping")
}

// Value 实现 driver.Valuer
func (m RunMapping) Value() (driver.Value, error) {
	return valueJSON(m.Mapping)
}

// TaskLabels 任务展示信息，JSONB
type TaskLabels []roster.TaskLabel

// Scan 实现 sql.Scanner
func (l *TaskLabels) Scan(src interface{}) error {
	return scanJSON(src, (*[]roster.TaskLabel)(l), "TaskLabels")
}

// Value 实现 driver.Valuer
func (l TaskLabels) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return valueJSON([]roster.TaskLabel(l))
}

// LeftoverList 剩余员工，JSONB
type LeftoverList []roster.LeftoverEntry

// Scan 实现 sql.Scanner
func (l *LeftoverList) Scan(src interface{}) error {
	return scanJSON(src, (*[]roster.LeftoverEntry)(l), "LeftoverList")
}

// Value 实现 driver.Valuer
func (l LeftoverList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return valueJSON([]roster.LeftoverEntry(l))
}

// AssignmentRun 分配记录表 — 对应 assignment_runs
type AssignmentRun struct {
	RunID                  string       `gorm:"type:uuid;primaryKey"                          json:"run_id"`
	Status                 string       `gorm:"type:varchar(20);not null;default:'generated'" json:"status"` // generated | edited
	Mapping                RunMapping   `gorm:"type:jsonb;not null"                           json:"mapping"`
	Tasks                  TaskLabels   `gorm:"type:jsonb;not null"                           json:"tasks"`
	Leftovers              LeftoverList `gorm:"type:jsonb;not null"                           json:"leftovers"`
	UnrankedFallback       bool         `gorm:"not null;default:true"                         json:"unranked_fallback"`
	TotalTasks             int          `gorm:"not null;default:0"                            json:"total_tasks"`
	AssignedTasks          int          `gorm:"not null;default:0"                            json:"assigned_tasks"`
	UnassignedTasks        int          `gorm:"not null;default:0"                            json:"unassigned_tasks"`
	RosterSize             int          `gorm:"not null;default:0"                            json:"roster_size"`
	WorkersWithPreferences int          `gorm:"not null;default:0"                            json:"workers_with_preferences"`
	AssignedWorkers        int          `gorm:"not null;default:0"                            json:"assigned_workers"`
	LeftoverWorkers        int          `gorm:"not null;default:0"                            json:"leftover_workers"`
	WorkersNeeded          int          `gorm:"not null;default:0"                            json:"workers_needed"`
	VersionedModel
}

func (AssignmentRun) TableName() string { return "assignment_runs" }

// Stats 统计字段
func (r *AssignmentRun) Stats() roster.Stats {
	return roster.Stats{
		TotalTasks:             r.TotalTasks,
		AssignedTasks:          r.AssignedTasks,
		UnassignedTasks:        r.UnassignedTasks,
		RosterSize:             r.RosterSize,
		WorkersWithPreferences: r.WorkersWithPreferences,
		AssignedWorkers:        r.AssignedWorkers,
		LeftoverWorkers:        r.LeftoverWorkers,
		WorkersNeeded:          r.WorkersNeeded,
	}
}

// SetStats 写入统计字段
func (r *AssignmentRun) SetStats(s roster.Stats) {
	r.TotalTasks = s.TotalTasks
	r.AssignedTasks = s.AssignedTasks
	r.UnassignedTasks = s.UnassignedTasks
	r.RosterSize = s.RosterSize
	r.WorkersWithPreferences = s.WorkersWithPreferences
	r.AssignedWorkers = s.AssignedWorkers
	r.LeftoverWorkers = s.LeftoverWorkers
	r.WorkersNeeded = s.WorkersNeeded
}
