package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ── 输出约定中的保留键 ──

const (
	SectionsKey       = "__sections"
	UnassignedSection = "UNASSIGNED WORKERS"
	LeftoverKey       = "UNASSIGNED WORKERS|workers"
	MatWashRepKey     = "MATTOPESU+REP|0"
	LeftoverSeparator = " | "
)

// AreaMapping 单个区域的 taskKey → 员工 映射，保留键的生成顺序
type AreaMapping struct {
	ID       string
	Sections []string
	keys     []string
	values   map[string]string
}

func newAreaMapping(id string, sections []string) *AreaMapping {
	return &AreaMapping{ID: id, Sections: sections, values: make(map[string]string)}
}

// Keys 任务键（有序）
func (a *AreaMapping) Keys() []string {
	return append([]string(nil), a.keys...)
}

// Get 读取任务键的分配值
func (a *AreaMapping) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Set 写入任务键，新键追加到末尾
func (a *AreaMapping) Set(key, worker string) {
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = worker
}

// Mapping 区域 → 任务 → 员工 的最终结果，区域按输出顺序排列
type Mapping struct {
	Areas []*AreaMapping
}

// Area 按 ID 查找区域
func (m *Mapping) Area(id string) *AreaMapping {
	for _, a := range m.Areas {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (m *Mapping) addArea(id string, sections []string) *AreaMapping {
	a := newAreaMapping(id, sections)
	m.Areas = append(m.Areas, a)
	return a
}

// CountAssigned 统计已分配与未分配的任务数（不含 UNASSIGNED 区域）
func (m *Mapping) CountAssigned() (assigned, unassigned int) {
	for _, a := range m.Areas {
		if a.ID == AreaUnassigned {
			continue
		}
		for _, k := range a.keys {
			if strings.TrimSpace(a.values[k]) != "" {
				assigned++
			} else {
				unassigned++
			}
		}
	}
	return assigned, unassigned
}

// MarshalJSON 输出 {"D9": {"__sections": [...], "TORGET|...|0": "NAME", ...}, ...}，保持顺序
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range m.Areas {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(&buf, a.ID)
		buf.WriteString(":{")

		writeJSONString(&buf, SectionsKey)
		buf.WriteByte(':')
		sections := a.Sections
		if sections == nil {
			sections = []string{}
		}
		sb, err := json.Marshal(sections)
		if err != nil {
			return nil, err
		}
		buf.Write(sb)

		for _, k := range a.keys {
			buf.WriteByte(',')
			writeJSONString(&buf, k)
			buf.WriteByte(':')
			writeJSONString(&buf, a.values[k])
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

// UnmarshalJSON 按出现顺序还原区域与任务键
func (m *Mapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	m.Areas = nil
	for dec.More() {
		areaID, err := readKey(dec)
		if err != nil {
			return err
		}
		area := m.addArea(areaID, nil)

		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		for dec.More() {
			key, err := readKey(dec)
			if err != nil {
				return err
			}
			if key == SectionsKey {
				if err := dec.Decode(&area.Sections); err != nil {
					return fmt.Errorf("解析 %s.%s 失败: %w", areaID, SectionsKey, err)
				}
				continue
			}
			var v string
			if err := dec.Decode(&v); err != nil {
				return fmt.Errorf("解析 %s.%s 失败: %w", areaID, key, err)
			}
			area.Set(key, v)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("期望 %q，实际 %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("期望对象键，实际 %v", tok)
	}
	return s, nil
}

// ── 分配结果 ──

// TaskLabel 已生成任务的展示信息，供导出与界面分组使用
type TaskLabel struct {
	AreaID   string       `json:"area_id"`
	Section  string       `json:"section"`
	Key      string       `json:"key"`
	Name     string       `json:"name"`
	Category TaskCategory `json:"category"`
}

// LeftoverEntry 未分配员工
type LeftoverEntry struct {
	Worker         string   `json:"worker"`
	HasPreferences bool     `json:"has_preferences"`
	Preferences    []string `json:"preferences,omitempty"`
}

// String 剩余池中的展示文本
func (e LeftoverEntry) String() string {
	if e.HasPreferences {
		return fmt.Sprintf("%s (HAS PREFERENCES: [%s] - All tasks filled or no matching tasks)",
			e.Worker, strings.Join(e.Preferences, ", "))
	}
	return e.Worker + " (NO PREFERENCES PROVIDED)"
}

// Stats 分配统计
type Stats struct {
	TotalTasks             int `json:"total_tasks"`
	AssignedTasks          int `json:"assigned_tasks"`
	UnassignedTasks        int `json:"unassigned_tasks"`
	RosterSize             int `json:"roster_size"`
	WorkersWithPreferences int `json:"workers_with_preferences"`
	AssignedWorkers        int `json:"assigned_workers"`
	LeftoverWorkers        int `json:"leftover_workers"`
	WorkersNeeded          int `json:"workers_needed"`
}

// Result 一次分配运行的完整输出
type Result struct {
	Mapping   Mapping         `json:"mapping"`
	Tasks     []TaskLabel     `json:"tasks"`
	Leftovers []LeftoverEntry `json:"leftovers"`
	Stats     Stats           `json:"stats"`
}

// ── 重复检查 ──

// Duplicate 在多个任务格中出现的员工
type Duplicate struct {
	Worker    string   `json:"worker"`
	Locations []string `json:"locations"` // "AREA / taskKey"
}

// FindDuplicates 扫描（可能经过人工修改的）结果，找出重复出现的员工
//
// 剩余池按分隔符拆分并去掉注释后参与比较；MATTOPESU+REP 格不参与。
func FindDuplicates(m Mapping) []Duplicate {
	locations := make(map[string][]string)
	display := make(map[string]string)
	var order []string

	add := func(name, loc string) {
		key := NormalizeWorkerName(name)
		if key == "" {
			return
		}
		if _, ok := locations[key]; !ok {
			order = append(order, key)
			display[key] = strings.TrimSpace(name)
		}
		locations[key] = append(locations[key], loc)
	}

	for _, a := range m.Areas {
		for _, k := range a.keys {
			if strings.HasPrefix(k, "__") || k == MatWashRepKey {
				continue
			}
			v := a.values[k]
			if k == LeftoverKey {
				for _, entry := range strings.Split(v, LeftoverSeparator) {
					add(stripLeftoverNote(entry), a.ID+" / "+k)
				}
				continue
			}
			add(v, a.ID+" / "+k)
		}
	}

	var out []Duplicate
	for _, key := range order {
		if len(locations[key]) > 1 {
			out = append(out, Duplicate{Worker: display[key], Locations: locations[key]})
		}
	}
	return out
}

func stripLeftoverNote(entry string) string {
	for _, marker := range []string{" (HAS PREFERENCES:", " (NO PREFERENCES PROVIDED)"} {
		if i := strings.Index(entry, marker); i >= 0 {
			return entry[:i]
		}
	}
	return entry
}
