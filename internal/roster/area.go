package roster

import "strings"

// ── 区域标识 ──

const (
	AreaD9         = "D9"
	AreaD10        = "D10"
	AreaUnassigned = "UNASSIGNED"

	Area8000 = "8000+8300"
	Area8100 = "8100+8400"
	Area8200 = "8200+8500"
	Area8600 = "8600+8700+8800"
	Area7600 = "7600+7700+7800"
	Area7500 = "7500+7200+7100+7000"
	Area6500 = "6500+6200+6100+6000"
	Area6600 = "6600+6700+6800"
	Area5000 = "5000+5300"
	Area5400 = "5400+5200"
	Area5600 = "5600+5700+5800"
)

// AreaConfig 单个客舱区域的配置
type AreaConfig struct {
	ID                string          `json:"id"`
	Cabins            int             `json:"cabins"`
	Beds              int             `json:"beds,omitempty"` // 0 表示未声明床位数
	Suites            map[string]bool `json:"suites,omitempty"`
	Full              bool            `json:"full"`
	AdditionalWorkers int             `json:"additional_workers,omitempty"`
}

// SpecialAreaOptions D9 / D10 特殊区域的可选任务开关
type SpecialAreaOptions struct {
	Lattiakaivot   bool `json:"lattiakaivot"`
	KonffaImuri    bool `json:"konffa_imuri"`
	VistaDeck      bool `json:"vista_deck"`
	Terrace        bool `json:"terrace"`
	TerraceWorkers int  `json:"terrace_workers"` // 1 | 2
}

// ── 区域偏好代码 ──

// AreaPreferenceCodes 七个区域偏好代码（上传文件与模板使用的顺序）
var AreaPreferenceCodes = []string{
	"7 FRONT",
	"7 BACK",
	"8 FRONT",
	"8 BACK",
	"DECK 5",
	"6 FRONT",
	"6 BACK",
}

var areaPreferenceMapping = map[string][]string{
	"7 FRONT": {Area7600},
	"7 BACK":  {Area7500},
	"8 FRONT": {Area8600},
	"8 BACK":  {Area8000, Area8100, Area8200},
	"DECK 5":  {Area5000, Area5400, Area5600},
	"6 FRONT": {Area6600},
	"6 BACK":  {Area6500},
}

// NormalizeAreaCode 统一区域偏好代码的大小写与空白
func NormalizeAreaCode(code string) string {
	return strings.Join(strings.Fields(strings.ToUpper(code)), " ")
}

// AreaIDsForPreference 将区域偏好代码解析为具体区域 ID，未知代码返回 nil
func AreaIDsForPreference(code string) []string {
	return areaPreferenceMapping[NormalizeAreaCode(code)]
}

// IsAreaPreferenceCode 判断是否为已知的区域偏好代码
func IsAreaPreferenceCode(code string) bool {
	_, ok := areaPreferenceMapping[NormalizeAreaCode(code)]
	return ok
}

// ── 默认区域配置 ──

// suiteNames 带套房的区域及其套房（固定顺序）
var suiteNames = map[string][]string{
	Area8600: {"SUITE 8626", "SUITE 8827"},
	Area7600: {"SUITE 7823", "SUITE 7622"},
}

// SuiteNames 返回区域内可配置的套房名称
func SuiteNames(areaID string) []string {
	return suiteNames[areaID]
}

// fullCapableAreas 允许开启满员追加任务组的区域
var fullCapableAreas = map[string]bool{
	Area8000: true,
	Area8100: true,
	Area8200: true,
	Area5000: true,
	Area5400: true,
}

// IsFullCapable 区域是否支持 full 追加任务组
func IsFullCapable(areaID string) bool {
	return fullCapableAreas[areaID]
}

// DefaultAreaConfigs 返回进程启动时的默认区域列表，客舱数均为 0
func DefaultAreaConfigs() []AreaConfig {
	return []AreaConfig{
		{ID: Area8000},
		{ID: Area8100},
		{ID: Area8200},
		{ID: Area8600, Suites: map[string]bool{"SUITE 8626": false, "SUITE 8827": false}},
		{ID: Area7600, Suites: map[string]bool{"SUITE 7823": false, "SUITE 7622": false}},
		{ID: Area7500},
		{ID: Area6500},
		{ID: Area6600},
		{ID: Area5000},
		{ID: Area5400},
		{ID: Area5600},
	}
}

// DefaultSpecialAreaOptions 默认特殊选项：全部关闭，露台人数为 1
func DefaultSpecialAreaOptions() SpecialAreaOptions {
	return SpecialAreaOptions{TerraceWorkers: 1}
}
