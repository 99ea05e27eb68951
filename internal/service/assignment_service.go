package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cabin-roster/backend/config"
	"cabin-roster/backend/internal/dto"
	"cabin-roster/backend/internal/model"
	"cabin-roster/backend/internal/repository"
	"cabin-roster/backend/internal/roster"
	pkgerrors "cabin-roster/backend/pkg/errors"
	"cabin-roster/backend/pkg/metrics"
)

// ── 分配模块业务错误 ──

var (
	ErrRunNotFound    = errors.New("分配记录不存在")
	ErrCellNotFound   = errors.New("该区域中不存在此任务")
	ErrCellReadOnly   = errors.New("该单元格不可手动修改")
	ErrGenerateFailed = errors.New("生成分配失败")
)

// AssignmentService 分配业务接口
type AssignmentService interface {
	Generate(ctx context.Context, operator string) (*dto.RunResponse, error)
	Get(ctx context.Context, runID string) (*dto.RunResponse, error)
	Latest(ctx context.Context) (*dto.RunResponse, error)
	List(ctx context.Context, page *dto.PaginationRequest) ([]dto.RunSummary, int64, error)
	UpdateCell(ctx context.Context, runID string, req *dto.UpdateCellRequest, operator string) (*dto.RunResponse, error)
	CheckDuplicates(ctx context.Context, runID string) (*dto.DuplicatesResponse, error)
}

type assignmentService struct {
	cfg    *config.Config
	repo   *repository.Repository
	cache  Cache
	gate   *sync.Mutex
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(
	cfg *config.Config,
	repo *repository.Repository,
	cache Cache,
	gate *sync.Mutex,
	logger *zap.Logger,
) AssignmentService {
	return &assignmentService{cfg: cfg, repo: repo, cache: cache, gate: gate, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Generate — 生成一次分配
// ═══════════════════════════════════════════════════════════
//
// 流程：
//  1. 持有工作流锁，读取名单、偏好、区域与特殊选项的快照
//  2. 用快照构建新的偏好库，每次运行互不影响
//  3. 运行分配引擎并保存结果
//  4. 缓存最新结果，记录指标

func (s *assignmentService) Generate(ctx context.Context, operator string) (*dto.RunResponse, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	start := time.Now()
	run, err := s.generate(ctx, operator)
	if err != nil {
		metrics.AssignmentRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ObserveRun(time.Since(start).Seconds(), run.AssignedTasks, run.UnassignedTasks, run.LeftoverWorkers)

	resp := toRunResponse(run)
	if err := s.cache.SetJSON(ctx, cacheKeyLatestRun, resp, s.cfg.Assignment.CacheTTL); err != nil {
		s.logger.Warn("写入最新分配缓存失败", zap.Error(err))
	}

	s.logger.Info("分配已生成",
		zap.String("run_id", run.RunID),
		zap.Int("roster_size", run.RosterSize),
		zap.Int("total_tasks", run.TotalTasks),
		zap.Int("assigned_tasks", run.AssignedTasks),
		zap.Int("leftover_workers", run.LeftoverWorkers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

func (s *assignmentService) generate(ctx context.Context, operator string) (*model.AssignmentRun, error) {
	// 1. 快照
	workers, err := s.repo.Roster.List(ctx)
	if err != nil {
		s.logger.Error("查询名单失败", zap.Error(err))
		return nil, err
	}
	prefs, err := s.repo.Preference.List(ctx)
	if err != nil {
		s.logger.Error("查询员工偏好失败", zap.Error(err))
		return nil, err
	}
	areas, err := s.repo.Area.List(ctx)
	if err != nil {
		s.logger.Error("查询区域配置失败", zap.Error(err))
		return nil, err
	}
	opts, err := s.repo.Area.GetOptions(ctx)
	if err != nil {
		s.logger.Error("查询特殊选项失败", zap.Error(err))
		return nil, err
	}

	// 2. 偏好库
	store := roster.NewPreferenceStore()
	for i := range prefs {
		store.Set(prefs[i].ToDomain())
	}
	names := make([]string, 0, len(workers))
	for _, w := range workers {
		names = append(names, w.Name)
	}

	// 3. 分配
	engine := roster.NewEngine(store,
		roster.WithUnrankedFallback(s.cfg.Assignment.UnrankedFallback),
		roster.WithLogger(s.logger),
	)
	res := engine.Assign(names, toAreaConfigs(areas), opts.ToDomain())

	run := &model.AssignmentRun{
		RunID:            uuid.NewString(),
		Status:           model.RunStatusGenerated,
		Mapping:          model.RunMapping{Mapping: res.Mapping},
		Tasks:            model.TaskLabels(res.Tasks),
		Leftovers:        model.LeftoverList(res.Leftovers),
		UnrankedFallback: s.cfg.Assignment.UnrankedFallback,
	}
	run.SetStats(res.Stats)
	run.Version = 1
	run.CreatedBy = operatorPtr(operator)
	run.UpdatedBy = operatorPtr(operator)

	if err := s.repo.AssignmentRun.Create(ctx, run); err != nil {
		s.logger.Error("保存分配记录失败", zap.Error(err))
		return nil, ErrGenerateFailed
	}
	return run, nil
}

// ──────────────────────── 查询 ────────────────────────

func (s *assignmentService) Get(ctx context.Context, runID string) (*dto.RunResponse, error) {
	run, err := loadRun(ctx, s.repo, s.logger, runID)
	if err != nil {
		return nil, err
	}
	return toRunResponse(run), nil
}

// Latest 最近一次分配，优先读缓存
func (s *assignmentService) Latest(ctx context.Context) (*dto.RunResponse, error) {
	var cached dto.RunResponse
	if ok, err := s.cache.GetJSON(ctx, cacheKeyLatestRun, &cached); err != nil {
		s.logger.Warn("读取最新分配缓存失败", zap.Error(err))
	} else if ok {
		return &cached, nil
	}

	run, err := s.repo.AssignmentRun.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		s.logger.Error("查询最新分配失败", zap.Error(err))
		return nil, err
	}
	resp := toRunResponse(run)
	if err := s.cache.SetJSON(ctx, cacheKeyLatestRun, resp, s.cfg.Assignment.CacheTTL); err != nil {
		s.logger.Warn("写入最新分配缓存失败", zap.Error(err))
	}
	return resp, nil
}

func (s *assignmentService) List(ctx context.Context, page *dto.PaginationRequest) ([]dto.RunSummary, int64, error) {
	runs, total, err := s.repo.AssignmentRun.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询分配记录失败", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.RunSummary, 0, len(runs))
	for i := range runs {
		r := &runs[i]
		list = append(list, dto.RunSummary{
			RunID:     r.RunID,
			Status:    r.Status,
			Stats:     r.Stats(),
			Version:   r.Version,
			CreatedBy: derefString(r.CreatedBy),
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		})
	}
	return list, total, nil
}

// ──────────────────────── 手动修改 ────────────────────────

// UpdateCell 修改单个任务格（乐观锁）
//
// 以 "__" 开头的元数据键和剩余员工池不可修改；工作人员写空字符串表示清空该格。
// 修改后记录状态变为 edited，已分配/未分配任务数重新统计。
func (s *assignmentService) UpdateCell(ctx context.Context, runID string, req *dto.UpdateCellRequest, operator string) (*dto.RunResponse, error) {
	if strings.HasPrefix(req.TaskKey, "__") ||
		(req.AreaID == roster.AreaUnassigned && req.TaskKey == roster.LeftoverKey) {
		return nil, ErrCellReadOnly
	}

	run, err := loadRun(ctx, s.repo, s.logger, runID)
	if err != nil {
		return nil, err
	}
	if run.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	area := run.Mapping.Area(req.AreaID)
	if area == nil {
		return nil, ErrCellNotFound
	}
	if _, ok := area.Get(req.TaskKey); !ok {
		return nil, ErrCellNotFound
	}
	area.Set(req.TaskKey, strings.TrimSpace(req.Worker))

	run.Status = model.RunStatusEdited
	run.AssignedTasks, run.UnassignedTasks = run.Mapping.CountAssigned()
	run.UpdatedBy = operatorPtr(operator)

	if err := s.repo.AssignmentRun.Update(ctx, run); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新分配记录失败", zap.String("run_id", runID), zap.Error(err))
		}
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, cacheKeyLatestRun)

	s.logger.Info("任务格已修改",
		zap.String("run_id", runID),
		zap.String("area_id", req.AreaID),
		zap.String("task_key", req.TaskKey),
		zap.Int("version", run.Version),
	)
	return toRunResponse(run), nil
}

// CheckDuplicates 找出在多个任务格中出现的员工
func (s *assignmentService) CheckDuplicates(ctx context.Context, runID string) (*dto.DuplicatesResponse, error) {
	run, err := loadRun(ctx, s.repo, s.logger, runID)
	if err != nil {
		return nil, err
	}
	dups := roster.FindDuplicates(run.Mapping.Mapping)
	if dups == nil {
		dups = []roster.Duplicate{}
	}
	return &dto.DuplicatesResponse{RunID: run.RunID, Duplicates: dups}, nil
}

// ── 辅助函数 ──

func loadRun(ctx context.Context, repo *repository.Repository, logger *zap.Logger, runID string) (*model.AssignmentRun, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, ErrRunNotFound
	}
	run, err := repo.AssignmentRun.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		logger.Error("查询分配记录失败", zap.String("run_id", runID), zap.Error(err))
		return nil, err
	}
	return run, nil
}

func toRunResponse(r *model.AssignmentRun) *dto.RunResponse {
	tasks := []roster.TaskLabel(r.Tasks)
	if tasks == nil {
		tasks = []roster.TaskLabel{}
	}
	leftovers := []roster.LeftoverEntry(r.Leftovers)
	if leftovers == nil {
		leftovers = []roster.LeftoverEntry{}
	}
	return &dto.RunResponse{
		RunID:            r.RunID,
		Status:           r.Status,
		Mapping:          r.Mapping.Mapping,
		Tasks:            tasks,
		Leftovers:        leftovers,
		Stats:            r.Stats(),
		UnrankedFallback: r.UnrankedFallback,
		Version:          r.Version,
		CreatedBy:        derefString(r.CreatedBy),
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.Format(time.RFC3339),
	}
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
