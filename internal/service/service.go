package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"cabin-roster/backend/config"
	"cabin-roster/backend/internal/repository"
	"cabin-roster/backend/pkg/jwt"
	"cabin-roster/backend/pkg/redis"
)

// 缓存键
const (
	cacheKeyNeeds     = "roster:needs"
	cacheKeyLatestRun = "roster:run:latest"
)

// Cache JSON 缓存（Redis 实现；未配置 Redis 时为空实现）
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// TokenBlacklist 已注销 Token 的黑名单
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

type noopCache struct{}

func (noopCache) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }
func (noopCache) SetJSON(context.Context, string, interface{}, time.Duration) error { return nil }
func (noopCache) Delete(context.Context, ...string) error { return nil }
func (noopCache) BlacklistToken(context.Context, string, time.Duration) error { return nil }
func (noopCache) IsBlacklisted(context.Context, string) (bool, error) { return false, nil }

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Preference PreferenceService
	Roster     RosterService
	Area       AreaService
	Assignment AssignmentService
	Export     ExportService
}

// NewService 创建 Service 聚合
//
// rdb 为 nil 时不使用缓存，注销的 Token 也不会进入黑名单。
// 上传名单、上传偏好、修改区域与生成分配共用同一把锁，保证生成时读到一致的快照。
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	var (
		cache     Cache          = noopCache{}
		blacklist TokenBlacklist = noopCache{}
	)
	if rdb != nil {
		cache = rdb
		blacklist = rdb
	}

	gate := &sync.Mutex{}
	return &Service{
		Auth:       NewAuthService(cfg, jwtMgr, blacklist, logger),
		Preference: NewPreferenceService(repo, gate, logger),
		Roster:     NewRosterService(repo, cache, gate, logger),
		Area:       NewAreaService(cfg, repo, cache, gate, logger),
		Assignment: NewAssignmentService(cfg, repo, cache, gate, logger),
		Export:     NewExportService(repo, logger),
	}
}

// operatorPtr 空操作员名称不写入审计字段
func operatorPtr(operator string) *string {
	if operator == "" {
		return nil
	}
	return &operator
}

// invalidate 删除缓存键，失败只记录日志
func invalidate(ctx context.Context, cache Cache, logger *zap.Logger, keys ...string) {
	if err := cache.Delete(ctx, keys...); err != nil {
		logger.Warn("清除缓存失败", zap.Strings("keys", keys), zap.Error(err))
	}
}
