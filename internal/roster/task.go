package roster

import (
	"fmt"
	"strconv"
	"strings"
)

// TaskCategory 任务类别，决定分配阶段
type TaskCategory string

const (
	CategoryWash  TaskCategory = "WASH"  // PESU 区块
	CategoryWipe  TaskCategory = "WIPE"  // PYYHINTÄ 区块及特殊区域的擦拭任务
	CategoryOther TaskCategory = "OTHER" // 其余任务
)

// TaskKey 区域内唯一的任务标识
//
// 特殊区域：Section|Task|Ordinal；常规区域：Section|Ordinal（Task 为空）
type TaskKey struct {
	Section string
	Task    string
	Ordinal int
}

// String 输出边界使用的稳定序列化
func (k TaskKey) String() string {
	if k.Task == "" {
		return k.Section + "|" + strconv.Itoa(k.Ordinal)
	}
	return k.Section + "|" + k.Task + "|" + strconv.Itoa(k.Ordinal)
}

// ParseTaskKey 解析 TaskKey.String() 的输出
func ParseTaskKey(s string) (TaskKey, error) {
	parts := strings.Split(s, "|")
	if len(parts) < 2 || len(parts) > 3 {
		return TaskKey{}, fmt.Errorf("无效的任务键 %q", s)
	}
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || n < 0 {
		return TaskKey{}, fmt.Errorf("无效的任务键序号 %q", s)
	}
	k := TaskKey{Section: parts[0], Ordinal: n}
	if len(parts) == 3 {
		k.Task = parts[1]
	}
	return k, nil
}

// Task 一次运行中生成的单个任务
type Task struct {
	AreaID   string       `json:"area_id"`
	Section  string       `json:"section"`
	Name     string       `json:"name"`
	Key      TaskKey      `json:"-"`
	BaseType string       `json:"base_type"`
	Category TaskCategory `json:"category"`
}

// Section 区域内按标题分组的任务
type Section struct {
	Heading string
	Tasks   []Task
}

// AreaPlan 单个区域的任务分组
type AreaPlan struct {
	AreaID   string
	Sections []Section
}

// Headings 区域的分组标题（有序）
func (p *AreaPlan) Headings() []string {
	out := make([]string, 0, len(p.Sections))
	for _, s := range p.Sections {
		out = append(out, s.Heading)
	}
	return out
}

// TaskPlan 一次运行的完整任务清单
type TaskPlan struct {
	Areas []AreaPlan
}

// Tasks 按生成顺序展开全部任务
func (p *TaskPlan) Tasks() []Task {
	var out []Task
	for _, a := range p.Areas {
		for _, s := range a.Sections {
			out = append(out, s.Tasks...)
		}
	}
	return out
}

// Count 任务总数
func (p *TaskPlan) Count() int {
	n := 0
	for _, a := range p.Areas {
		for _, s := range a.Sections {
			n += len(s.Tasks)
		}
	}
	return n
}

// ── 特殊区域模板 ──

type zoneTask struct {
	name string
	wipe bool // 走 PYYHINTÄ 阶段
}

type zoneSection struct {
	heading string
	tasks   []zoneTask
}

func specialZones(opts SpecialAreaOptions) (d9, d10 []zoneSection) {
	d9 = []zoneSection{
		{"TORGET", []zoneTask{
			{name: "KIDS+HANGOUT+ PORTAAT IMURI"},
			{name: "TORGET IMURI"},
			{name: "WC:T TORGET+PYYHINTÄ", wipe: true},
			{name: "KIDS+HANGOUT+TORGET PYYHINTÄ", wipe: true},
		}},
		{"CONFERNCE", []zoneTask{{name: "KONFFA WC:t"}}},
		{"PORTAIKOT", []zoneTask{
			{name: "HISSIT+KEULAPORTAAT IMURI 5-11"},
			{name: "KEULAPORTAAT PYYHINTÄ + AULAT", wipe: true},
			{name: "HISSIT+KESKIPORTAAT IMURI 5-11"},
			{name: "KESKIPORTAAT PYYHINTÄ + AULAT", wipe: true},
			{name: "HISSIT+PERÄPORTAAT IMURI 6-11"},
			{name: "PERÄPORTAAT PYYHINTÄ + AULAT", wipe: true},
		}},
	}
	d10 = []zoneSection{
		{"MARKET", []zoneTask{
			{name: "MARKET IMURI"},
			{name: "MARKET KONE"},
			{name: "MARKET PYYHINTÄ", wipe: true},
			{name: "MARKET WC:t"},
		}},
		{"KEITTIÖ", []zoneTask{{name: "KEITTIÖ"}, {name: "WC:T 10+11"}}},
		{"VISTA", []zoneTask{
			{name: "IMURI LOUNGE ->"},
			{name: "IMURI CASINO ->"},
			{name: "BACKSTAGE WC:T+ PYYHINTÄ", wipe: true},
			{name: "VISTA WC:t 10+11"},
		}},
		{"EXTRAS", []zoneTask{
			{name: "SLIDING DOOR D6/D7"},
			{name: "ROSKASTUS"},
			{name: "SMOKING ROOM + KONE"},
			{name: "MARKET EXTRA"},
		}},
	}

	if opts.KonffaImuri {
		d9[1].tasks = append(d9[1].tasks, zoneTask{name: "KONFFA IMURI"})
	}
	if opts.Lattiakaivot {
		d10[1].tasks = append(d10[1].tasks, zoneTask{name: "LATTIAKAIVOT"})
	}
	if opts.VistaDeck {
		d10[2].tasks = append(d10[2].tasks, zoneTask{name: "VISTA DECK"})
	}
	if opts.Terrace {
		d10[3].tasks = append(d10[3].tasks, zoneTask{name: "TERRACE"})
		if opts.TerraceWorkers == 2 {
			d10[3].tasks = append(d10[3].tasks, zoneTask{name: "TERRACE"})
		}
	}
	return d9, d10
}

func zonePlan(areaID string, sections []zoneSection) AreaPlan {
	plan := AreaPlan{AreaID: areaID}
	for _, zs := range sections {
		sec := Section{Heading: zs.heading}
		for i, zt := range zs.tasks {
			cat := CategoryOther
			if zt.wipe {
				cat = CategoryWipe
			}
			sec.Tasks = append(sec.Tasks, Task{
				AreaID:   areaID,
				Section:  zs.heading,
				Name:     zt.name,
				Key:      TaskKey{Section: zs.heading, Task: zt.name, Ordinal: i},
				BaseType: BaseTaskType(zt.name),
				Category: cat,
			})
		}
		plan.Sections = append(plan.Sections, sec)
	}
	return plan
}

// ── 常规区域规模计算 ──

// sectionSize 常规区域内一个任务分组的规模
type sectionSize struct {
	heading  string
	count    int
	category TaskCategory
	names    []string // 非空时直接使用（套房）
}

// petausSkipAreas 不安排铺床任务的区域
var petausSkipAreas = map[string]bool{
	Area8000: true,
	Area8100: true,
	Area8200: true,
}

// petausDoubleAreas 使用 "PETAUS DOUBLE" 的区域
var petausDoubleAreas = map[string]bool{
	Area8600: true,
	Area7600: true,
	Area6600: true,
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// petausSize 铺床任务的人数与标签
func petausSize(a AreaConfig) (int, string) {
	label := "PETAUS"
	if petausDoubleAreas[a.ID] {
		label = "PETAUS DOUBLE"
	}

	var n int
	switch {
	case a.Beds > 0 && petausDoubleAreas[a.ID]:
		n = ceilDiv(a.Beds*2, 45) // beds / 22.5
	case a.Beds > 0:
		n = ceilDiv(a.Beds, 30)
	default:
		n = ceilDiv(a.Cabins, 13)
	}
	return max(1, n), label
}

// areaSections 计算常规区域各任务分组的规模，生成器与人数估算共用
func areaSections(a AreaConfig) []sectionSize {
	c := a.Cabins
	if c <= 0 {
		return nil
	}

	var out []sectionSize

	// 垃圾 / 吸尘
	if c < 35 {
		out = append(out, sectionSize{heading: "ROSKAT+IMURI", count: 1, category: CategoryOther})
	} else {
		out = append(out,
			sectionSize{heading: "ROSKAT", count: ceilDiv(c, 90), category: CategoryOther},
			sectionSize{heading: "IMURI", count: ceilDiv(c, 120), category: CategoryOther},
		)
	}

	// 清洗
	out = append(out, sectionSize{heading: "PESU", count: max(1, ceilDiv(c, 13)), category: CategoryWash})

	// 铺床
	if !petausSkipAreas[a.ID] {
		n, label := petausSize(a)
		out = append(out, sectionSize{heading: label, count: n, category: CategoryOther})
	}

	// 擦拭
	switch {
	case a.ID == Area6500:
		out = append(out, sectionSize{heading: "PYYHINTÄ + INVA JAKO", count: max(1, ceilDiv(c, 50)), category: CategoryWipe})
	case a.ID == Area8600:
		out = append(out, sectionSize{heading: "PYYHINTÄ+JAKO", count: 1, category: CategoryWipe})
	case a.ID == Area7600, c <= 90:
		out = append(out, sectionSize{heading: "PYYHINTÄ", count: 1, category: CategoryWipe})
	default:
		out = append(out, sectionSize{heading: "PYYHINTÄ", count: ceilDiv(c, 90), category: CategoryWipe})
	}

	if a.ID == Area8600 || a.ID == Area7600 {
		out = append(out, sectionSize{heading: "REP+SETIT", count: 1, category: CategoryOther})
	}

	// 满员追加
	if fullCapableAreas[a.ID] && a.Full && a.AdditionalWorkers > 0 {
		out = append(out,
			sectionSize{heading: "REP", count: ceilDiv(a.AdditionalWorkers, 50), category: CategoryOther},
			sectionSize{heading: "SETIT", count: 1, category: CategoryOther},
			sectionSize{heading: "JAKO", count: 1, category: CategoryOther},
		)
	}

	// 套房
	var suites []string
	for _, name := range suiteNames[a.ID] {
		if a.Suites[name] {
			suites = append(suites, name)
		}
	}
	if len(suites) > 0 {
		out = append(out, sectionSize{heading: "SUITES", count: len(suites), category: CategoryOther, names: suites})
	}

	return out
}

func regularPlan(a AreaConfig) AreaPlan {
	plan := AreaPlan{AreaID: a.ID}
	for _, sz := range areaSections(a) {
		sec := Section{Heading: sz.heading}
		for i := 0; i < sz.count; i++ {
			name := sz.heading
			base := sz.heading
			switch {
			case sz.names != nil:
				name = sz.names[i]
				base = name
			case sz.count > 1:
				name = fmt.Sprintf("%s %d", sz.heading, i+1)
			}
			sec.Tasks = append(sec.Tasks, Task{
				AreaID:   a.ID,
				Section:  sz.heading,
				Name:     name,
				Key:      TaskKey{Section: sz.heading, Ordinal: i},
				BaseType: base,
				Category: sz.category,
			})
		}
		plan.Sections = append(plan.Sections, sec)
	}
	return plan
}

// GenerateTasks 根据区域配置与特殊选项生成完整任务清单
//
// 顺序：D9、D10，然后按配置顺序的常规区域（客舱数为 0 的区域跳过，重复 ID 只取第一个）
func GenerateTasks(areas []AreaConfig, opts SpecialAreaOptions) *TaskPlan {
	d9, d10 := specialZones(opts)
	plan := &TaskPlan{Areas: []AreaPlan{
		zonePlan(AreaD9, d9),
		zonePlan(AreaD10, d10),
	}}

	seen := map[string]bool{AreaD9: true, AreaD10: true, AreaUnassigned: true}
	for _, a := range areas {
		if a.Cabins <= 0 || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		plan.Areas = append(plan.Areas, regularPlan(a))
	}
	return plan
}

// TaskCatalog 偏好模板中列出的可选任务名
func TaskCatalog() []string {
	out := []string{
		"ROSKAT", "IMURI", "ROSKAT+IMURI", "PESU", "PETAUS", "PETAUS DOUBLE",
		"PYYHINTÄ", "PYYHINTÄ+JAKO", "PYYHINTÄ + INVA JAKO", "REP+SETIT", "REP", "SETIT", "JAKO",
	}
	for _, id := range []string{Area8600, Area7600} {
		out = append(out, suiteNames[id]...)
	}
	d9, d10 := specialZones(SpecialAreaOptions{
		Lattiakaivot: true, KonffaImuri: true, VistaDeck: true, Terrace: true, TerraceWorkers: 1,
	})
	for _, zs := range append(d9, d10...) {
		for _, zt := range zs.tasks {
			out = append(out, zt.name)
		}
	}
	return append(out, "MATTOPESU + REP")
}
