package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cabin-roster/backend/internal/model"
	pkgerrors "cabin-roster/backend/pkg/errors"
)

// AreaRepository 区域配置与特殊选项数据访问接口
type AreaRepository interface {
	List(ctx context.Context) ([]model.AreaSetting, error)
	GetByID(ctx context.Context, areaID string) (*model.AreaSetting, error)
	Update(ctx context.Context, area *model.AreaSetting) error
	SeedDefaults(ctx context.Context, areas []model.AreaSetting) (int64, error)

	GetOptions(ctx context.Context) (*model.SpecialOptions, error)
	SaveOptions(ctx context.Context, opts *model.SpecialOptions) error
}

type areaRepo struct {
	db *gorm.DB
}

// NewAreaRepo 创建 AreaRepository 实例
func NewAreaRepo(db *gorm.DB) AreaRepository {
	return &areaRepo{db: db}
}

func (r *areaRepo) List(ctx context.Context) ([]model.AreaSetting, error) {
	var areas []model.AreaSetting
	err := r.db.WithContext(ctx).
		Order("position ASC, area_id ASC").
		Find(&areas).Error
	return areas, err
}

func (r *areaRepo) GetByID(ctx context.Context, areaID string) (*model.AreaSetting, error) {
	var area model.AreaSetting
	err := r.db.WithContext(ctx).
		Where("area_id = ?", areaID).
		First(&area).Error
	if err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *areaRepo) Update(ctx context.Context, area *model.AreaSetting) error {
	oldVersion := area.Version
	result := r.db.WithContext(ctx).
		Model(area).
		Where("area_id = ? AND version = ?", area.AreaID, oldVersion).
		Updates(map[string]interface{}{
			"cabins":             area.Cabins,
			"beds":               area.Beds,
			"suites":             area.Suites,
			"full":               area.Full,
			"additional_workers": area.AdditionalWorkers,
			"updated_by":         area.UpdatedBy,
			"version":            oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	area.Version = oldVersion + 1
	return nil
}

// SeedDefaults 写入默认区域，已存在的区域保持不变，返回新写入的行数
func (r *areaRepo) SeedDefaults(ctx context.Context, areas []model.AreaSetting) (int64, error) {
	if len(areas) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&areas)
	return result.RowsAffected, result.Error
}

// GetOptions 读取特殊区域选项，尚未保存时返回默认值
func (r *areaRepo) GetOptions(ctx context.Context) (*model.SpecialOptions, error) {
	var opts model.SpecialOptions
	err := r.db.WithContext(ctx).
		Where("singleton = ?", true).
		First(&opts).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.SpecialOptions{Singleton: true, TerraceWorkers: 1}, nil
	}
	if err != nil {
		return nil, err
	}
	return &opts, nil
}

func (r *areaRepo) SaveOptions(ctx context.Context, opts *model.SpecialOptions) error {
	opts.Singleton = true
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "singleton"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"lattiakaivot", "konffa_imuri", "vista_deck", "terrace", "terrace_workers",
				"updated_at", "updated_by",
			}),
		}).
		Create(opts).Error
}
