package service

import (
	"context"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"cabin-roster/backend/internal/dto"
	"cabin-roster/backend/internal/model"
	"cabin-roster/backend/internal/repository"
	"cabin-roster/backend/internal/roster"
	"cabin-roster/backend/pkg/metrics"
)

// RosterService 当班名单业务接口
type RosterService interface {
	Replace(ctx context.Context, names []string) (*dto.RosterResponse, error)
	ImportFile(ctx context.Context, r io.Reader) (*dto.ImportResult, error)
	List(ctx context.Context) (*dto.RosterResponse, error)
}

type rosterService struct {
	repo   *repository.Repository
	cache  Cache
	gate   *sync.Mutex
	logger *zap.Logger
}

// NewRosterService 创建 RosterService 实例
func NewRosterService(repo *repository.Repository, cache Cache, gate *sync.Mutex, logger *zap.Logger) RosterService {
	return &rosterService{repo: repo, cache: cache, gate: gate, logger: logger}
}

// Replace 整体替换名单：去掉首尾空白与空行，规范化后重复的姓名只保留第一次出现
func (s *rosterService) Replace(ctx context.Context, names []string) (*dto.RosterResponse, error) {
	cleaned := dedupeRoster(names)
	workers := make([]model.RosterWorker, len(cleaned))
	for i, name := range cleaned {
		workers[i] = model.RosterWorker{Position: i + 1, Name: name}
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	if err := s.repo.Roster.ReplaceAll(ctx, workers); err != nil {
		s.logger.Error("替换名单失败", zap.Error(err))
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, cacheKeyNeeds)

	s.logger.Info("名单已替换", zap.Int("count", len(cleaned)), zap.Int("dropped", len(names)-len(cleaned)))
	return &dto.RosterResponse{Names: cleaned, Count: len(cleaned)}, nil
}

// ImportFile 读取上传 Excel 第一个工作表的 A 列作为名单
func (s *rosterService) ImportFile(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	names, err := ParseRosterFile(r)
	if err != nil {
		return nil, err
	}
	resp, err := s.Replace(ctx, names)
	if err != nil {
		return nil, err
	}
	metrics.ImportedRows.WithLabelValues("roster").Add(float64(resp.Count))

	result := &dto.ImportResult{Imported: resp.Count}
	if dropped := len(names) - resp.Count; dropped > 0 {
		result.Warnings = append(result.Warnings, "名单中存在重复姓名，已合并")
	}
	return result, nil
}

func (s *rosterService) List(ctx context.Context) (*dto.RosterResponse, error) {
	workers, err := s.repo.Roster.List(ctx)
	if err != nil {
		s.logger.Error("查询名单失败", zap.Error(err))
		return nil, err
	}
	names := make([]string, 0, len(workers))
	for _, w := range workers {
		names = append(names, w.Name)
	}
	return &dto.RosterResponse{Names: names, Count: len(names)}, nil
}

// ParseRosterFile 返回第一个工作表 A 列的非空文本
func ParseRosterFile(r io.Reader) ([]string, error) {
	rows, err := readFirstSheet(r)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name := strings.TrimSpace(cellAt(row, 0)); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func dedupeRoster(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		name := strings.TrimSpace(n)
		key := roster.NormalizeWorkerName(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
