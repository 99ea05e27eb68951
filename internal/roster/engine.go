package roster

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Engine 分配引擎
//
// 每次 Assign 都从空的已分配集合与空结果开始，不修改之前的结果。
// 偏好存储在运行期间只读。
type Engine struct {
	store            *PreferenceStore
	unrankedFallback bool
	logger           *zap.Logger
}

// Option 引擎选项
type Option func(*Engine)

// WithUnrankedFallback PESU / PYYHINTÄ 阶段是否回落到无偏好员工（默认开启）
func WithUnrankedFallback(enabled bool) Option {
	return func(e *Engine) { e.unrankedFallback = enabled }
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine 创建分配引擎，store 为 nil 时视为无任何偏好
func NewEngine(store *PreferenceStore, opts ...Option) *Engine {
	if store == nil {
		store = NewPreferenceStore()
	}
	e := &Engine{store: store, unrankedFallback: true, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// assignment 单次运行的可变状态
type assignment struct {
	rec      *Reconciliation
	assigned map[string]bool
	values   map[string]map[string]string // areaID → taskKey → worker
}

func (a *assignment) take(worker string) string {
	a.assigned[worker] = true
	return worker
}

// Assign 执行一次完整分配
//
// 阶段 0：名单与偏好对应；阶段 1：PESU；阶段 2：PYYHINTÄ；阶段 3：其余任务；最后构建剩余池。
func (e *Engine) Assign(roster []string, areas []AreaConfig, opts SpecialAreaOptions) *Result {
	plan := GenerateTasks(areas, opts)
	tasks := plan.Tasks()

	st := &assignment{
		rec:      e.store.Reconcile(roster),
		assigned: make(map[string]bool),
		values:   make(map[string]map[string]string),
	}
	for _, t := range tasks {
		if st.values[t.AreaID] == nil {
			st.values[t.AreaID] = make(map[string]string)
		}
		st.values[t.AreaID][t.Key.String()] = ""
	}

	e.logger.Debug("名单对应完成",
		zap.Int("with_preferences", len(st.rec.With)),
		zap.Int("without_preferences", len(st.rec.Without)),
		zap.Int("tasks", len(tasks)),
	)

	// ── 阶段 1 / 2：带区域偏好的 PESU 与 PYYHINTÄ ──
	for _, cat := range []TaskCategory{CategoryWash, CategoryWipe} {
		var group []Task
		for _, t := range tasks {
			if t.Category == cat {
				group = append(group, t)
			}
		}
		sort.SliceStable(group, func(i, j int) bool { return group[i].AreaID < group[j].AreaID })

		filled := 0
		for _, t := range group {
			worker := e.pickRanked(st, t)
			if worker == "" {
				worker = e.pickPreferring(st, t.BaseType)
			}
			if worker == "" && e.unrankedFallback {
				worker = e.pickUnranked(st)
			}
			if worker != "" {
				filled++
			}
			st.values[t.AreaID][t.Key.String()] = worker
		}
		e.logger.Debug("区域偏好阶段完成",
			zap.String("category", string(cat)),
			zap.Int("tasks", len(group)),
			zap.Int("filled", filled),
		)
	}

	// ── 阶段 3：其余任务，只使用有偏好的员工 ──
	for _, t := range tasks {
		if t.Category != CategoryOther {
			continue
		}
		st.values[t.AreaID][t.Key.String()] = e.pickPreferring(st, t.Name, t.BaseType)
	}

	return e.buildResult(plan, tasks, st, roster)
}

// pickRanked 按 RankWorkers 的顺序取第一个在名单中且未分配的员工
func (e *Engine) pickRanked(st *assignment, t Task) string {
	for _, c := range e.store.RankWorkers(t.AreaID, t.Category, t.BaseType) {
		for _, worker := range st.rec.RosterNames(c.Key) {
			if !st.assigned[worker] {
				return st.take(worker)
			}
		}
	}
	return ""
}

// pickPreferring 按名单顺序取第一个偏好匹配任意一个任务名的未分配员工
func (e *Engine) pickPreferring(st *assignment, names ...string) string {
	for _, worker := range st.rec.With {
		if st.assigned[worker] {
			continue
		}
		p, _ := st.rec.Preferences(worker)
		for _, name := range names {
			if p.Accepts(name) {
				return st.take(worker)
			}
		}
	}
	return ""
}

// pickUnranked 先到先得：第一个未分配的无偏好员工
func (e *Engine) pickUnranked(st *assignment) string {
	for _, worker := range st.rec.Without {
		if !st.assigned[worker] {
			return st.take(worker)
		}
	}
	return ""
}

func (e *Engine) buildResult(plan *TaskPlan, tasks []Task, st *assignment, roster []string) *Result {
	res := &Result{}

	for _, ap := range plan.Areas {
		area := res.Mapping.addArea(ap.AreaID, ap.Headings())
		for _, sec := range ap.Sections {
			for _, t := range sec.Tasks {
				area.Set(t.Key.String(), st.values[t.AreaID][t.Key.String()])
			}
		}
	}

	for _, t := range tasks {
		res.Tasks = append(res.Tasks, TaskLabel{
			AreaID:   t.AreaID,
			Section:  t.Section,
			Key:      t.Key.String(),
			Name:     t.Name,
			Category: t.Category,
		})
	}

	// 剩余池：有偏好的在前，无偏好的在后，各自保持名单顺序
	var entries []string
	for _, worker := range st.rec.With {
		if st.assigned[worker] {
			continue
		}
		p, _ := st.rec.Preferences(worker)
		le := LeftoverEntry{Worker: worker, HasPreferences: true, Preferences: append([]string(nil), p.TaskPreferences...)}
		res.Leftovers = append(res.Leftovers, le)
		entries = append(entries, le.String())
	}
	for _, worker := range st.rec.Without {
		if st.assigned[worker] {
			continue
		}
		le := LeftoverEntry{Worker: worker}
		res.Leftovers = append(res.Leftovers, le)
		entries = append(entries, le.String())
	}

	pool := res.Mapping.addArea(AreaUnassigned, []string{UnassignedSection})
	pool.Set(LeftoverKey, strings.Join(entries, LeftoverSeparator))
	pool.Set(MatWashRepKey, "")

	assignedTasks, unassignedTasks := res.Mapping.CountAssigned()
	res.Stats = Stats{
		TotalTasks:             len(tasks),
		AssignedTasks:          assignedTasks,
		UnassignedTasks:        unassignedTasks,
		RosterSize:             len(st.rec.With) + len(st.rec.Without),
		WorkersWithPreferences: len(st.rec.With),
		AssignedWorkers:        len(st.assigned),
		LeftoverWorkers:        len(res.Leftovers),
		WorkersNeeded:          plan.Count(),
	}

	e.logger.Info("分配完成",
		zap.Int("roster", len(roster)),
		zap.Int("tasks", res.Stats.TotalTasks),
		zap.Int("assigned_tasks", res.Stats.AssignedTasks),
		zap.Int("leftover_workers", res.Stats.LeftoverWorkers),
	)
	return res
}
