package model

import "cabin-roster/backend/internal/roster"

// SpecialOptions 特殊区域选项 — 对应 special_area_options（单行强类型）
type SpecialOptions struct {
	Singleton      bool `gorm:"primaryKey;default:true"  json:"-"`
	Lattiakaivot   bool `gorm:"not null;default:false"   json:"lattiakaivot"`
	KonffaImuri    bool `gorm:"not null;default:false"   json:"konffa_imuri"`
	VistaDeck      bool `gorm:"not null;default:false"   json:"vista_deck"`
	Terrace        bool `gorm:"not null;default:false"   json:"terrace"`
	TerraceWorkers int  `gorm:"not null;default:1"       json:"terrace_workers"`
	BaseModel
}

func (SpecialOptions) TableName() string { return "special_area_options" }

// ToDomain 转换为任务生成选项
func (o *SpecialOptions) ToDomain() roster.SpecialAreaOptions {
	return roster.SpecialAreaOptions{
		Lattiakaivot:   o.Lattiakaivot,
		KonffaImuri:    o.KonffaImuri,
		VistaDeck:      o.VistaDeck,
		Terrace:        o.Terrace,
		TerraceWorkers: o.TerraceWorkers,
	}
}
