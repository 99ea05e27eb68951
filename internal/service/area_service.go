package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cabin-roster/backend/config"
	"cabin-roster/backend/internal/dto"
	"cabin-roster/backend/internal/model"
	"cabin-roster/backend/internal/repository"
	"cabin-roster/backend/internal/roster"
	pkgerrors "cabin-roster/backend/pkg/errors"
)

// ── 区域模块业务错误 ──

var (
	ErrAreaNotFound       = errors.New("区域不存在")
	ErrUnknownSuite       = errors.New("该区域没有此套房")
	ErrAreaNotFullCapable = errors.New("该区域不支持满员追加任务")
)

// AreaService 区域配置业务接口
type AreaService interface {
	List(ctx context.Context) ([]dto.AreaResponse, error)
	Update(ctx context.Context, areaID string, req *dto.UpdateAreaRequest, operator string) (*dto.AreaResponse, error)
	GetOptions(ctx context.Context) (*dto.SpecialOptionsResponse, error)
	UpdateOptions(ctx context.Context, req *dto.SpecialOptionsRequest, operator string) (*dto.SpecialOptionsResponse, error)
	Needs(ctx context.Context) (*dto.NeedsResponse, error)
	SeedDefaults(ctx context.Context) (int64, error)
}

type areaService struct {
	cfg    *config.Config
	repo   *repository.Repository
	cache  Cache
	gate   *sync.Mutex
	logger *zap.Logger
}

// NewAreaService 创建 AreaService 实例
func NewAreaService(
	cfg *config.Config,
	repo *repository.Repository,
	cache Cache,
	gate *sync.Mutex,
	logger *zap.Logger,
) AreaService {
	return &areaService{cfg: cfg, repo: repo, cache: cache, gate: gate, logger: logger}
}

// ──────────────────────── 区域 ────────────────────────

func (s *areaService) List(ctx context.Context) ([]dto.AreaResponse, error) {
	areas, err := s.repo.Area.List(ctx)
	if err != nil {
		s.logger.Error("查询区域配置失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.AreaResponse, 0, len(areas))
	for i := range areas {
		list = append(list, toAreaResponse(&areas[i]))
	}
	return list, nil
}

// Update 修改单个区域配置（乐观锁）
//
// 套房只能是该区域已定义的套房；full 只允许在支持追加任务组的区域开启。
// beds 传 0 表示清空床位数。
func (s *areaService) Update(ctx context.Context, areaID string, req *dto.UpdateAreaRequest, operator string) (*dto.AreaResponse, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	area, err := s.repo.Area.GetByID(ctx, areaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAreaNotFound
		}
		s.logger.Error("查询区域失败", zap.String("area_id", areaID), zap.Error(err))
		return nil, err
	}
	if area.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.Cabins != nil {
		area.Cabins = *req.Cabins
	}
	if req.Beds != nil {
		if *req.Beds == 0 {
			area.Beds = nil
		} else {
			beds := *req.Beds
			area.Beds = &beds
		}
	}
	if req.Suites != nil {
		allowed := make(map[string]bool)
		for _, name := range roster.SuiteNames(areaID) {
			allowed[name] = true
		}
		suites := model.SuiteFlags{}
		for name := range area.Suites {
			suites[name] = area.Suites[name]
		}
		for name, on := range req.Suites {
			if !allowed[name] {
				return nil, ErrUnknownSuite
			}
			suites[name] = on
		}
		area.Suites = suites
	}
	if req.Full != nil {
		if *req.Full && !roster.IsFullCapable(areaID) {
			return nil, ErrAreaNotFullCapable
		}
		area.Full = *req.Full
	}
	if req.AdditionalWorkers != nil {
		area.AdditionalWorkers = *req.AdditionalWorkers
	}
	area.UpdatedBy = operatorPtr(operator)

	if err := s.repo.Area.Update(ctx, area); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新区域失败", zap.String("area_id", areaID), zap.Error(err))
		}
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, cacheKeyNeeds)

	s.logger.Info("区域配置已更新",
		zap.String("area_id", areaID),
		zap.Int("cabins", area.Cabins),
		zap.Bool("full", area.Full),
		zap.Int("version", area.Version),
	)
	resp := toAreaResponse(area)
	return &resp, nil
}

// SeedDefaults 写入默认区域列表，已存在的区域不受影响
func (s *areaService) SeedDefaults(ctx context.Context) (int64, error) {
	defaults := roster.DefaultAreaConfigs()
	rows := make([]model.AreaSetting, 0, len(defaults))
	for i, cfg := range defaults {
		rows = append(rows, *model.AreaSettingFromDomain(cfg, i+1))
	}
	n, err := s.repo.Area.SeedDefaults(ctx, rows)
	if err != nil {
		s.logger.Error("写入默认区域失败", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		invalidate(ctx, s.cache, s.logger, cacheKeyNeeds)
		s.logger.Info("默认区域已写入", zap.Int64("created", n))
	}
	return n, nil
}

// ──────────────────────── 特殊选项 ────────────────────────

func (s *areaService) GetOptions(ctx context.Context) (*dto.SpecialOptionsResponse, error) {
	opts, err := s.repo.Area.GetOptions(ctx)
	if err != nil {
		s.logger.Error("查询特殊选项失败", zap.Error(err))
		return nil, err
	}
	return toOptionsResponse(opts), nil
}

// UpdateOptions 保存特殊选项，露台人数未填时为 1
func (s *areaService) UpdateOptions(ctx context.Context, req *dto.SpecialOptionsRequest, operator string) (*dto.SpecialOptionsResponse, error) {
	opts := &model.SpecialOptions{
		Lattiakaivot:   req.Lattiakaivot,
		KonffaImuri:    req.KonffaImuri,
		VistaDeck:      req.VistaDeck,
		Terrace:        req.Terrace,
		TerraceWorkers: req.TerraceWorkers,
	}
	if opts.TerraceWorkers == 0 {
		opts.TerraceWorkers = 1
	}
	opts.CreatedBy = operatorPtr(operator)
	opts.UpdatedBy = operatorPtr(operator)

	s.gate.Lock()
	defer s.gate.Unlock()

	if err := s.repo.Area.SaveOptions(ctx, opts); err != nil {
		s.logger.Error("保存特殊选项失败", zap.Error(err))
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, cacheKeyNeeds)
	return toOptionsResponse(opts), nil
}

// ──────────────────────── 人数估算 ────────────────────────

// Needs 估算当前配置所需人数并与名单人数比较，结果缓存到配置或名单变更为止
func (s *areaService) Needs(ctx context.Context) (*dto.NeedsResponse, error) {
	var cached dto.NeedsResponse
	if ok, err := s.cache.GetJSON(ctx, cacheKeyNeeds, &cached); err != nil {
		s.logger.Warn("读取人数缓存失败", zap.Error(err))
	} else if ok {
		return &cached, nil
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
	workers, err := s.repo.Roster.List(ctx)
	if err != nil {
		s.logger.Error("查询名单失败", zap.Error(err))
		return nil, err
	}

	resp := buildNeeds(toAreaConfigs(areas), opts.ToDomain(), len(workers))
	if err := s.cache.SetJSON(ctx, cacheKeyNeeds, resp, s.cfg.Assignment.CacheTTL); err != nil {
		s.logger.Warn("写入人数缓存失败", zap.Error(err))
	}
	return resp, nil
}

// ── 辅助函数 ──

func buildNeeds(areas []roster.AreaConfig, opts roster.SpecialAreaOptions, rosterSize int) *dto.NeedsResponse {
	resp := &dto.NeedsResponse{RosterSize: rosterSize}
	for _, n := range roster.NeedsByArea(areas, opts) {
		resp.WorkersNeeded += n.Workers
		resp.Areas = append(resp.Areas, dto.AreaNeedResponse{AreaID: n.AreaID, Workers: n.Workers})
	}
	if diff := resp.WorkersNeeded - rosterSize; diff > 0 {
		resp.Shortfall = diff
	} else {
		resp.Surplus = -diff
	}
	return resp
}

func toAreaConfigs(areas []model.AreaSetting) []roster.AreaConfig {
	out := make([]roster.AreaConfig, 0, len(areas))
	for i := range areas {
		out = append(out, areas[i].ToDomain())
	}
	return out
}

func toAreaResponse(a *model.AreaSetting) dto.AreaResponse {
	suites := make(map[string]bool, len(a.Suites))
	for k, v := range a.Suites {
		suites[k] = v
	}
	return dto.AreaResponse{
		AreaID:            a.AreaID,
		Cabins:            a.Cabins,
		Beds:              a.Beds,
		Suites:            suites,
		SuiteNames:        roster.SuiteNames(a.AreaID),
		Full:              a.Full,
		FullCapable:       roster.IsFullCapable(a.AreaID),
		AdditionalWorkers: a.AdditionalWorkers,
		Version:           a.Version,
	}
}

func toOptionsResponse(o *model.SpecialOptions) *dto.SpecialOptionsResponse {
	return &dto.SpecialOptionsResponse{
		Lattiakaivot:   o.Lattiakaivot,
		KonffaImuri:    o.KonffaImuri,
		VistaDeck:      o.VistaDeck,
		Terrace:        o.Terrace,
		TerraceWorkers: o.TerraceWorkers,
	}
}
