package repository

import (
	"context"

	"gorm.io/gorm"

	"cabin-roster/backend/internal/model"
)

// RosterRepository 当班名单数据访问接口
type RosterRepository interface {
	List(ctx context.Context) ([]model.RosterWorker, error)
	ReplaceAll(ctx context.Context, workers []model.RosterWorker) error
}

type rosterRepo struct {
	db *gorm.DB
}

// NewRosterRepo 创建 RosterRepository 实例
func NewRosterRepo(db *gorm.DB) RosterRepository {
	return &rosterRepo{db: db}
}

func (r *rosterRepo) List(ctx context.Context) ([]model.RosterWorker, error) {
	var workers []model.RosterWorker
	err := r.db.WithContext(ctx).
		Order("position ASC").
		Find(&workers).Error
	return workers, err
}

func (r *rosterRepo) ReplaceAll(ctx context.Context, workers []model.RosterWorker) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 名单整体替换，旧名单无需保留
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&model.RosterWorker{}).Error; err != nil {
			return err
		}
		if len(workers) > 0 {
			if err := tx.Create(&workers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
