package repository

import (
	"context"

	"gorm.io/gorm"

	"cabin-roster/backend/internal/model"
	pkgerrors "cabin-roster/backend/pkg/errors"
)

// AssignmentRunRepository 分配记录数据访问接口
type AssignmentRunRepository interface {
	Create(ctx context.Context, run *model.AssignmentRun) error
	GetByID(ctx context.Context, id string) (*model.AssignmentRun, error)
	GetLatest(ctx context.Context) (*model.AssignmentRun, error)
	List(ctx context.Context, offset, limit int) ([]model.AssignmentRun, int64, error)
	Update(ctx context.Context, run *model.AssignmentRun) error
}

type assignmentRunRepo struct {
	db *gorm.DB
}

// NewAssignmentRunRepo 创建 AssignmentRunRepository 实例
func NewAssignmentRunRepo(db *gorm.DB) AssignmentRunRepository {
	return &assignmentRunRepo{db: db}
}

func (r *assignmentRunRepo) Create(ctx context.Context, run *model.AssignmentRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *assignmentRunRepo) GetByID(ctx context.Context, id string) (*model.AssignmentRun, error) {
	var run model.AssignmentRun
	err := r.db.WithContext(ctx).
		Where("run_id = ?", id).
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *assignmentRunRepo) GetLatest(ctx context.Context) (*model.AssignmentRun, error) {
	var run model.AssignmentRun
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List 分页列出分配记录（不加载映射与任务明细）
func (r *assignmentRunRepo) List(ctx context.Context, offset, limit int) ([]model.AssignmentRun, int64, error) {
	var runs []model.AssignmentRun
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AssignmentRun{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Omit("mapping", "tasks", "leftovers").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&runs).Error
	return runs, total, err
}

func (r *assignmentRunRepo) Update(ctx context.Context, run *model.AssignmentRun) error {
	oldVersion := run.Version
	result := r.db.WithContext(ctx).
		Model(run).
		Where("run_id = ? AND version = ?", run.RunID, oldVersion).
		Updates(map[string]interface{}{
			"status":           run.Status,
			"mapping":          run.Mapping,
			"assigned_tasks":   run.AssignedTasks,
			"unassigned_tasks": run.UnassignedTasks,
			"updated_by":       run.UpdatedBy,
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	run.Version = oldVersion + 1
	return nil
}
