package service

import (
	"context"
	"errors"
	"testing"

	"cabin-roster/backend/internal/dto"
	"cabin-roster/backend/internal/model"
	"cabin-roster/backend/internal/roster"
	pkgerrors "cabin-roster/backend/pkg/errors"
)

// ── 测试辅助 ──

// setupAssignmentEnv 名单 Alice、Bob；Alice 偏好 PESU；一个 13 间客舱的区域 Z
func setupAssignmentEnv(t *testing.T) (*testEnv, AssignmentService) {
	t.Helper()
	env := newTestEnv()
	env.roster.set("Alice", "Bob")
	env.areas.areas["Z"] = &model.AreaSetting{
		AreaID:         "Z",
		Cabins:         13,
		Suites:         model.SuiteFlags{},
		Position:       1,
		VersionedModel: model.VersionedModel{Version: 1},
	}
	if _, err := env.preferenceService().Import(context.Background(), []dto.PreferenceItem{
		{WorkerName: "alice", TaskPreferences: []string{"PESU"}},
	}, ""); err != nil {
		t.Fatalf("导入偏好失败: %v", err)
	}
	return env, env.assignmentService()
}

func runCell(t *testing.T, m roster.Mapping, areaID, key string) string {
	t.Helper()
	area := m.Area(areaID)
	if area == nil {
		t.Fatalf("缺少区域 %s", areaID)
	}
	v, ok := area.Get(key)
	if !ok {
		t.Fatalf("缺少任务键 %s/%s", areaID, key)
	}
	return v
}

// ── Generate 测试 ──

func TestGenerate_PersistsAndCaches(t *testing.T) {
	env, svc := setupAssignmentEnv(t)

	run, err := svc.Generate(context.Background(), "Supervisor")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	if run.Status != model.RunStatusGenerated || run.Version != 1 {
		t.Errorf("新记录状态错误: status=%s version=%d", run.Status, run.Version)
	}
	if got := runCell(t, run.Mapping, "Z", "PESU|0"); got != "Alice" {
		t.Errorf("期望 PESU 分给 Alice，实际=%q", got)
	}
	if got := runCell(t, run.Mapping, "D10", "MARKET|MARKET PYYHINTÄ|2"); got != "Bob" {
		t.Errorf("期望无偏好的 Bob 回落到 D10 的 MARKET PYYHINTÄ，实际=%q", got)
	}
	if got := runCell(t, run.Mapping, "Z", "PYYHINTÄ|0"); got != "" {
		t.Errorf("D10 / D9 的擦拭任务排在 Z 之前，Z 的 PYYHINTÄ 应为空，实际=%q", got)
	}
	if run.Stats.RosterSize != 2 || run.Stats.AssignedWorkers != 2 || run.Stats.LeftoverWorkers != 0 {
		t.Errorf("统计错误: %+v", run.Stats)
	}
	if run.CreatedBy != "Supervisor" {
		t.Errorf("期望 CreatedBy=Supervisor，实际=%s", run.CreatedBy)
	}
	if len(run.Tasks) != run.Stats.TotalTasks {
		t.Errorf("任务标签数 %d 应等于任务总数 %d", len(run.Tasks), run.Stats.TotalTasks)
	}

	if _, ok := env.runs.runs[run.RunID]; !ok {
		t.Error("分配记录应被保存")
	}
	if !env.cache.has(cacheKeyLatestRun) {
		t.Error("最新分配应写入缓存")
	}
}

func TestGenerate_StrictModeLeavesUnrankedWorkers(t *testing.T) {
	env, _ := setupAssignmentEnv(t)
	env.cfg.Assignment.UnrankedFallback = false
	svc := env.assignmentService()

	run, err := svc.Generate(context.Background(), "")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	if got := runCell(t, run.Mapping, "Z", "PYYHINTÄ|0"); got != "" {
		t.Errorf("严格模式下 PYYHINTÄ 应为空，实际=%q", got)
	}
	if len(run.Leftovers) != 1 || run.Leftovers[0].Worker != "Bob" || run.Leftovers[0].HasPreferences {
		t.Errorf("期望 Bob 以无偏好进入剩余池，实际=%+v", run.Leftovers)
	}
	if run.UnrankedFallback {
		t.Error("记录应保存本次运行的回落开关")
	}
}

func TestGenerate_EachRunStartsClean(t *testing.T) {
	env, svc := setupAssignmentEnv(t)
	ctx := context.Background()

	first, _ := svc.Generate(ctx, "")
	second, _ := svc.Generate(ctx, "")
	if first.RunID == second.RunID {
		t.Error("每次运行应有新的 RunID")
	}
	if runCell(t, first.Mapping, "Z", "PESU|0") != runCell(t, second.Mapping, "Z", "PESU|0") {
		t.Error("相同输入两次运行结果应一致")
	}
	if len(env.runs.order) != 2 {
		t.Errorf("期望保存 2 条记录，实际=%d", len(env.runs.order))
	}
}

func TestGenerate_PersistFailure(t *testing.T) {
	env, svc := setupAssignmentEnv(t)
	env.runs.err = errors.New("db down")

	_, err := svc.Generate(context.Background(), "")
	if !errors.Is(err, ErrGenerateFailed) {
		t.Errorf("期望 ErrGenerateFailed，实际: %v", err)
	}
	if env.cache.has(cacheKeyLatestRun) {
		t.Error("失败的运行不应写入缓存")
	}
}

// ── 查询测试 ──

func TestLatestAndGet(t *testing.T) {
	env, svc := setupAssignmentEnv(t)
	ctx := context.Background()

	if _, err := svc.Latest(ctx); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("无记录时期望 ErrRunNotFound，实际: %v", err)
	}

	run, _ := svc.Generate(ctx, "")

	// 缓存失效后从仓库读取
	_ = env.cache.Delete(ctx, cacheKeyLatestRun)
	latest, err := svc.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest 应成功: %v", err)
	}
	if latest.RunID != run.RunID {
		t.Errorf("期望最新记录 %s，实际=%s", run.RunID, latest.RunID)
	}
	if got := runCell(t, latest.Mapping, "Z", "PESU|0"); got != "Alice" {
		t.Errorf("读取的映射应与生成时一致，实际=%q", got)
	}

	if _, err := svc.Get(ctx, "not-a-uuid"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("非法 ID 期望 ErrRunNotFound，实际: %v", err)
	}
	if _, err := svc.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("不存在的 ID 期望 ErrRunNotFound，实际: %v", err)
	}
}

func TestListRuns(t *testing.T) {
	_, svc := setupAssignmentEnv(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Generate(ctx, ""); err != nil {
			t.Fatalf("Generate 应成功: %v", err)
		}
	}

	list, total, err := svc.List(ctx, &dto.PaginationRequest{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 3 || len(list) != 1 {
		t.Errorf("期望 total=3、第 2 页 1 条，实际 total=%d len=%d", total, len(list))
	}
}

// ── UpdateCell 测试 ──

func TestUpdateCell_EditsAndRecounts(t *testing.T) {
	env, svc := setupAssignmentEnv(t)
	ctx := context.Background()
	run, _ := svc.Generate(ctx, "")

	updated, err := svc.UpdateCell(ctx, run.RunID, &dto.UpdateCellRequest{
		AreaID: "Z", TaskKey: "PETAUS|0", Worker: " Bob ", Version: 1,
	}, "Supervisor")
	if err != nil {
		t.Fatalf("UpdateCell 应成功: %v", err)
	}
	if updated.Status != model.RunStatusEdited || updated.Version != 2 {
		t.Errorf("期望 edited/2，实际 %s/%d", updated.Status, updated.Version)
	}
	if got := runCell(t, updated.Mapping, "Z", "PETAUS|0"); got != "Bob" {
		t.Errorf("期望 PETAUS|0=Bob，实际=%q", got)
	}
	if updated.Stats.AssignedTasks != run.Stats.AssignedTasks+1 {
		t.Errorf("已分配任务数应加 1，实际 %d → %d", run.Stats.AssignedTasks, updated.Stats.AssignedTasks)
	}
	if env.cache.has(cacheKeyLatestRun) {
		t.Error("修改后最新分配缓存应失效")
	}

	dups, err := svc.CheckDuplicates(ctx, run.RunID)
	if err != nil {
		t.Fatalf("CheckDuplicates 应成功: %v", err)
	}
	if len(dups.Duplicates) != 1 || dups.Duplicates[0].Worker != "Bob" {
		t.Errorf("期望 Bob 重复出现，实际=%+v", dups.Duplicates)
	}
}

func TestUpdateCell_Errors(t *testing.T) {
	_, svc := setupAssignmentEnv(t)
	ctx := context.Background()
	run, _ := svc.Generate(ctx, "")

	tests := []struct {
		name string
		req  dto.UpdateCellRequest
		want error
	}{
		{"元数据键", dto.UpdateCellRequest{AreaID: "Z", TaskKey: roster.SectionsKey, Version: 1}, ErrCellReadOnly},
		{"剩余员工池", dto.UpdateCellRequest{AreaID: roster.AreaUnassigned, TaskKey: roster.LeftoverKey, Version: 1}, ErrCellReadOnly},
		{"区域不存在", dto.UpdateCellRequest{AreaID: "NOPE", TaskKey: "PESU|0", Version: 1}, ErrCellNotFound},
		{"任务不存在", dto.UpdateCellRequest{AreaID: "Z", TaskKey: "PESU|9", Version: 1}, ErrCellNotFound},
		{"版本过期", dto.UpdateCellRequest{AreaID: "Z", TaskKey: "PESU|0", Version: 5}, pkgerrors.ErrOptimisticLock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.UpdateCell(ctx, run.RunID, &req, "")
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}

	// MATTOPESU+REP 可手动填写
	req := dto.UpdateCellRequest{AreaID: roster.AreaUnassigned, TaskKey: roster.MatWashRepKey, Worker: "Alice", Version: 1}
	if _, err := svc.UpdateCell(ctx, run.RunID, &req, ""); err != nil {
		t.Errorf("MATTOPESU+REP 应可修改: %v", err)
	}
}
