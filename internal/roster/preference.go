package roster

import (
	"sort"
	"strings"
)

// WorkerPreference 单个员工上传的偏好
type WorkerPreference struct {
	WorkerName          string   `json:"worker_name"`
	TaskPreferences     []string `json:"task_preferences"`
	AreaPreferences     []string `json:"area_preferences,omitempty"`     // 仅用于 PESU
	PyyhintaPreferences []string `json:"pyyhinta_preferences,omitempty"` // 仅用于 PYYHINTÄ
}

// TotalPreferences 声明的任务偏好数量
func (p *WorkerPreference) TotalPreferences() int {
	return len(p.TaskPreferences)
}

// TaskLevel 返回第一条与任务匹配的偏好序号，未匹配返回 -1
func (p *WorkerPreference) TaskLevel(task string) int {
	for i, pref := range p.TaskPreferences {
		if TaskMatches(task, pref) {
			return i
		}
	}
	return -1
}

// Accepts 员工是否接受该任务
func (p *WorkerPreference) Accepts(task string) bool {
	return p.TaskLevel(task) >= 0
}

const (
	areaLevelNoPreference = 500 // 未声明区域偏好
	areaLevelOtherArea    = 999 // 声明了区域偏好但不含该区域
)

// areaLevel 区域偏好序号：命中为声明位置，未声明为 500，声明了其他区域为 999
func areaLevel(codes []string, areaID string) int {
	if len(codes) == 0 {
		return areaLevelNoPreference
	}
	for i, code := range codes {
		for _, id := range AreaIDsForPreference(code) {
			if id == areaID {
				return i
			}
		}
	}
	return areaLevelOtherArea
}

// PreferenceStore 员工偏好存储
//
// 以规范化姓名为键，保留插入顺序；重复写入整体覆盖但保持原位置。
// 运行期间只读，调用方负责串行化上传与分配。
type PreferenceStore struct {
	entries map[string]*WorkerPreference
	order   []string
}

// NewPreferenceStore 创建空的偏好存储
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{entries: make(map[string]*WorkerPreference)}
}

// Set 写入（覆盖）单个员工的偏好，姓名规范化后为空时忽略
func (s *PreferenceStore) Set(p WorkerPreference) bool {
	key := NormalizeWorkerName(p.WorkerName)
	if key == "" {
		return false
	}

	stored := &WorkerPreference{
		WorkerName:          key,
		TaskPreferences:     cleanList(p.TaskPreferences),
		AreaPreferences:     cleanList(p.AreaPreferences),
		PyyhintaPreferences: cleanList(p.PyyhintaPreferences),
	}
	if _, ok := s.entries[key]; !ok {
		s.order = append(s.order, key)
	}
	s.entries[key] = stored
	return true
}

// SetMany 批量写入，返回写入条数
func (s *PreferenceStore) SetMany(prefs []WorkerPreference) int {
	n := 0
	for _, p := range prefs {
		if s.Set(p) {
			n++
		}
	}
	return n
}

// Get 按规范化姓名精确读取
func (s *PreferenceStore) Get(name string) (*WorkerPreference, bool) {
	p, ok := s.entries[NormalizeWorkerName(name)]
	return p, ok
}

// Lookup 查找员工偏好：精确键 → 规范化键 → 词序变体模糊匹配（按插入顺序扫描）
func (s *PreferenceStore) Lookup(name string) (*WorkerPreference, bool) {
	if p, ok := s.entries[name]; ok {
		return p, true
	}

	normalized := NormalizeWorkerName(name)
	if normalized == "" {
		return nil, false
	}
	if p, ok := s.entries[normalized]; ok {
		return p, true
	}

	targets := nameVariations(normalized)
	for _, key := range s.order {
		for _, sv := range nameVariations(key) {
			for _, tv := range targets {
				if sv == tv {
					return s.entries[key], true
				}
			}
		}
	}
	return nil, false
}

// Remove 删除员工偏好
func (s *PreferenceStore) Remove(name string) bool {
	key := NormalizeWorkerName(name)
	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear 清空全部偏好
func (s *PreferenceStore) Clear() {
	s.entries = make(map[string]*WorkerPreference)
	s.order = nil
}

// Len 已存储的员工数
func (s *PreferenceStore) Len() int {
	return len(s.order)
}

// All 按插入顺序返回全部偏好副本
func (s *PreferenceStore) All() []WorkerPreference {
	out := make([]WorkerPreference, 0, len(s.order))
	for _, key := range s.order {
		p := s.entries[key]
		out = append(out, WorkerPreference{
			WorkerName:          p.WorkerName,
			TaskPreferences:     append([]string(nil), p.TaskPreferences...),
			AreaPreferences:     append([]string(nil), p.AreaPreferences...),
			PyyhintaPreferences: append([]string(nil), p.PyyhintaPreferences...),
		})
	}
	return out
}

// Candidate 排序后的候选员工
type Candidate struct {
	Key       string // 存储中的规范化姓名
	TaskLevel int
	AreaLevel int
	Total     int
}

// RankWorkers 返回接受该任务的员工，按优先级排序
//
// PESU：任务偏好序号 → 区域偏好序号 → 偏好总数（少者优先）
// PYYHINTÄ：同上，但使用擦拭区域偏好
// 其他：任务偏好序号 → 偏好总数
// 完全相同时保持插入顺序
func (s *PreferenceStore) RankWorkers(areaID string, category TaskCategory, task string) []Candidate {
	var out []Candidate
	for _, key := range s.order {
		p := s.entries[key]
		level := p.TaskLevel(task)
		if level < 0 {
			continue
		}

		c := Candidate{Key: key, TaskLevel: level, Total: p.TotalPreferences()}
		switch category {
		case CategoryWash:
			c.AreaLevel = areaLevel(p.AreaPreferences, areaID)
		case CategoryWipe:
			c.AreaLevel = areaLevel(p.PyyhintaPreferences, areaID)
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TaskLevel != b.TaskLevel {
			return a.TaskLevel < b.TaskLevel
		}
		if a.AreaLevel != b.AreaLevel {
			return a.AreaLevel < b.AreaLevel
		}
		return a.Total < b.Total
	})
	return out
}

// Reconciliation 名单与偏好存储的对应结果
type Reconciliation struct {
	With    []string // 有偏好的员工（名单顺序）
	Without []string // 无偏好的员工（名单顺序）

	prefs map[string]*WorkerPreference // 名单姓名 → 偏好
	byKey map[string][]string          // 存储键 → 名单姓名
}

// Preferences 名单姓名对应的偏好
func (r *Reconciliation) Preferences(worker string) (*WorkerPreference, bool) {
	p, ok := r.prefs[worker]
	return p, ok
}

// RosterNames 存储键对应的名单姓名
func (r *Reconciliation) RosterNames(key string) []string {
	return r.byKey[key]
}

// Reconcile 将上传名单与偏好存储对应
//
// 每个姓名先走 Lookup，再对全部存储项做一次首末词互换比对；
// 任务偏好为空的存储项视为无偏好。名单中的空白姓名与重复姓名被忽略。
func (s *PreferenceStore) Reconcile(roster []string) *Reconciliation {
	r := &Reconciliation{
		prefs: make(map[string]*WorkerPreference),
		byKey: make(map[string][]string),
	}

	seen := make(map[string]bool, len(roster))
	for _, raw := range roster {
		worker := strings.TrimSpace(raw)
		if worker == "" || seen[worker] {
			continue
		}
		seen[worker] = true

		p, ok := s.Lookup(worker)
		if !ok || len(p.TaskPreferences) == 0 {
			p, ok = s.swapScan(worker)
		}
		if !ok {
			r.Without = append(r.Without, worker)
			continue
		}

		r.With = append(r.With, worker)
		r.prefs[worker] = p
		r.byKey[p.WorkerName] = append(r.byKey[p.WorkerName], worker)
	}
	return r
}

// swapScan 首末词比对：首=首 且 末=末，或 首=末 且 末=首（忽略单字符词）
func (s *PreferenceStore) swapScan(worker string) (*WorkerPreference, bool) {
	uw := significantWords(NormalizeWorkerName(worker))
	if len(uw) < 2 {
		return nil, false
	}
	uFirst, uLast := uw[0], uw[len(uw)-1]

	for _, key := range s.order {
		p := s.entries[key]
		if len(p.TaskPreferences) == 0 {
			continue
		}
		pw := significantWords(key)
		if len(pw) < 2 {
			continue
		}
		pFirst, pLast := pw[0], pw[len(pw)-1]
		if (uFirst == pFirst && uLast == pLast) || (uFirst == pLast && uLast == pFirst) {
			return p, true
		}
	}
	return nil, false
}

func significantWords(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if len([]rune(w)) > 1 {
			out = append(out, w)
		}
	}
	return out
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
