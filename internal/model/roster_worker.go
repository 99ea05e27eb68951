package model

import "time"

// RosterWorker 当班名单 — 对应 roster_workers（每次上传整体替换）
type RosterWorker struct {
	Position  int       `gorm:"primaryKey;autoIncrement:false"     json:"position"`
	Name      string    `gorm:"type:varchar(200);not null"         json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (RosterWorker) TableName() string { return "roster_workers" }
