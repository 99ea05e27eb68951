package dto

// ── 区域配置 DTO ──

// AreaResponse 区域配置响应
type AreaResponse struct {
	AreaID            string          `json:"area_id"`
	Cabins            int             `json:"cabins"`
	Beds              *int            `json:"beds,omitempty"`
	Suites            map[string]bool `json:"suites"`
	SuiteNames        []string        `json:"suite_names,omitempty"` // 该区域可选的套房
	Full              bool            `json:"full"`
	FullCapable       bool            `json:"full_capable"`
	AdditionalWorkers int             `json:"additional_workers"`
	Version           int             `json:"version"`
}

// UpdateAreaRequest 更新区域配置（字段为空表示不修改；beds 为 0 表示不填）
type UpdateAreaRequest struct {
	Cabins            *int            `json:"cabins"             binding:"omitempty,min=0,max=2000"`
	Beds              *int            `json:"beds"               binding:"omitempty,min=0,max=5000"`
	Suites            map[string]bool `json:"suites"`
	Full              *bool           `json:"full"`
	AdditionalWorkers *int            `json:"additional_workers" binding:"omitempty,min=0,max=2000"`
	Version           int             `json:"version"            binding:"required,min=1"`
}

// SpecialOptionsRequest 特殊区域选项
type SpecialOptionsRequest struct {
	Lattiakaivot   bool `json:"lattiakaivot"`
	KonffaImuri    bool `json:"konffa_imuri"`
	VistaDeck      bool `json:"vista_deck"`
	Terrace        bool `json:"terrace"`
	TerraceWorkers int  `json:"terrace_workers" binding:"omitempty,oneof=1 2"`
}

// SpecialOptionsResponse 特殊区域选项响应
type SpecialOptionsResponse struct {
	Lattiakaivot   bool `json:"lattiakaivot"`
	KonffaImuri    bool `json:"konffa_imuri"`
	VistaDeck      bool `json:"vista_deck"`
	Terrace        bool `json:"terrace"`
	TerraceWorkers int  `json:"terrace_workers"`
}

// AreaNeedResponse 单个区域所需人数
type AreaNeedResponse struct {
	AreaID  string `json:"area_id"`
	Workers int    `json:"workers"`
}

// NeedsResponse 所需人数估算
type NeedsResponse struct {
	WorkersNeeded int                `json:"workers_needed"`
	RosterSize    int                `json:"roster_size"`
	Shortfall     int                `json:"shortfall"` // 名单不足的人数
	Surplus       int                `json:"surplus"`   // 多出的人数
	Areas         []AreaNeedResponse `json:"areas"`
}
