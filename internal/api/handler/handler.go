package handler

import (
	"cabin-roster/backend/config"
	"cabin-roster/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Preference *PreferenceHandler
	Roster     *RosterHandler
	Area       *AreaHandler
	Assignment *AssignmentHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Preference: NewPreferenceHandler(svc.Preference, cfg.Upload.MaxBytes),
		Roster:     NewRosterHandler(svc.Roster, cfg.Upload.MaxBytes),
		Area:       NewAreaHandler(svc.Area),
		Assignment: NewAssignmentHandler(svc.Assignment),
		Export:     NewExportHandler(svc.Export),
	}
}
