package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cabin-roster/backend/internal/model"
)

// PreferenceRepository 员工偏好数据访问接口
type PreferenceRepository interface {
	List(ctx context.Context) ([]model.WorkerPreference, error)
	UpsertMany(ctx context.Context, prefs []model.WorkerPreference) error
	Delete(ctx context.Context, nameKey string) error
	DeleteAll(ctx context.Context) (int64, error)
}

type preferenceRepo struct {
	db *gorm.DB
}

// NewPreferenceRepo 创建 PreferenceRepository 实例
func NewPreferenceRepo(db *gorm.DB) PreferenceRepository {
	return &preferenceRepo{db: db}
}

func (r *preferenceRepo) List(ctx context.Context) ([]model.WorkerPreference, error) {
	var prefs []model.WorkerPreference
	err := r.db.WithContext(ctx).
		Order("position ASC").
		Find(&prefs).Error
	return prefs, err
}

// UpsertMany 批量写入偏好：新员工追加到末尾，已有员工整体覆盖但保留 position
func (r *preferenceRepo) UpsertMany(ctx context.Context, prefs []model.WorkerPreference) error {
	if len(prefs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int
		if err := tx.Model(&model.WorkerPreference{}).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPos).Error; err != nil {
			return err
		}
		for i := range prefs {
			prefs[i].Position = maxPos + i + 1
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name",
				"task_preferences",
				"area_preferences",
				"pyyhinta_preferences",
				"updated_at",
				"updated_by",
			}),
		}).Create(&prefs).Error
	})
}

func (r *preferenceRepo) Delete(ctx context.Context, nameKey string) error {
	result := r.db.WithContext(ctx).
		Where("name_key = ?", nameKey).
		Delete(&model.WorkerPreference{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *preferenceRepo) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.WorkerPreference{})
	return result.RowsAffected, result.Error
}
