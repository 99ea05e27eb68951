package model

import (
	"database/sql/driver"

	"cabin-roster/backend/internal/roster"
)

// SuiteFlags 套房开关，JSONB
type SuiteFlags map[string]bool

// Scan 实现 sql.Scanner
func (f *SuiteFlags) Scan(src interface{}) error {
	m := SuiteFlags{}
	if err := scanJSON(src, &m, "SuiteFlags"); err != nil {
		return err
	}
	*f = m
	return nil
}

// Value 实现 driver.Valuer
func (f SuiteFlags) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	return valueJSON(map[string]bool(f))
}

// AreaSetting 区域配置表 — 对应 area_configs
type AreaSetting struct {
	AreaID            string     `gorm:"type:varchar(64);primaryKey"    json:"area_id"`
	Cabins            int        `gorm:"not null;default:0"             json:"cabins"`
	Beds              *int       `json:"beds,omitempty"`
	Suites            SuiteFlags `gorm:"type:jsonb;not null;default:'{}'" json:"suites"`
	Full              bool       `gorm:"not null;default:false"         json:"full"`
	AdditionalWorkers int        `gorm:"not null;default:0"             json:"additional_workers"`
	Position          int        `gorm:"not null;default:0"             json:"position"`
	VersionedModel
}

func (AreaSetting) TableName() string { return "area_configs" }

// ToDomain 转换为任务生成使用的配置（Beds 为空视为 0）
func (a *AreaSetting) ToDomain() roster.AreaConfig {
	cfg := roster.AreaConfig{
		ID:                a.AreaID,
		Cabins:            a.Cabins,
		Suites:            map[string]bool{},
		Full:              a.Full,
		AdditionalWorkers: a.AdditionalWorkers,
	}
	if a.Beds != nil {
		cfg.Beds = *a.Beds
	}
	for k, v := range a.Suites {
		cfg.Suites[k] = v
	}
	return cfg
}

// AreaSettingFromDomain 由默认配置构造数据库行
func AreaSettingFromDomain(cfg roster.AreaConfig, position int) *AreaSetting {
	a := &AreaSetting{
		AreaID:            cfg.ID,
		Cabins:            cfg.Cabins,
		Suites:            SuiteFlags{},
		Full:              cfg.Full,
		AdditionalWorkers: cfg.AdditionalWorkers,
		Position:          position,
	}
	if cfg.Beds > 0 {
		beds := cfg.Beds
		a.Beds = &beds
	}
	for k, v := range cfg.Suites {
		a.Suites[k] = v
	}
	return a
}
