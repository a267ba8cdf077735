package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// TaskDetailRepository manages task details keyed by task id.
type TaskDetailRepository struct {
	db *gorm.DB
}

func NewTaskDetailRepository(db *gorm.DB) *TaskDetailRepository {
	return &TaskDetailRepository{db: db}
}

func (r *TaskDetailRepository) List(ctx context.Context) ([]model.TaskDetail, error) {
	var details []model.TaskDetail
	if err := r.db.WithContext(ctx).Find(&details).Error; err != nil {
		return nil, fmt.Errorf("list task details: %w", err)
	}
	return details, nil
}

func (r *TaskDetailRepository) GetByTaskID(ctx context.Context, taskID string) (*model.TaskDetail, error) {
	var detail model.TaskDetail
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&detail).Error; err != nil {
		return nil, notFound(err)
	}
	return &detail, nil
}

// Put upserts the full detail.
func (r *TaskDetailRepository) Put(ctx context.Context, detail *model.TaskDetail) error {
	if err := r.db.WithContext(ctx).Save(detail).Error; err != nil {
		return fmt.Errorf("put task detail: %w", err)
	}
	return nil
}

// Update reads, merges and writes one detail inside a transaction so the merge
// is atomic for that record. A missing detail yields ErrNotFound.
func (r *TaskDetailRepository) Update(ctx context.Context, taskID string, merge func(*model.TaskDetail)) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var detail model.TaskDetail
		if err := tx.Where("task_id = ?", taskID).First(&detail).Error; err != nil {
			return notFound(err)
		}
		merge(&detail)
		return tx.Save(&detail).Error
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update task detail: %w", err)
	}
	return nil
}

// Delete removes a detail; deleting a missing id is a no-op.
func (r *TaskDetailRepository) Delete(ctx context.Context, taskID string) error {
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&model.TaskDetail{}).Error; err != nil {
		return fmt.Errorf("delete task detail: %w", err)
	}
	return nil
}

func (r *TaskDetailRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.TaskDetail{}).Error; err != nil {
		return fmt.Errorf("clear task details: %w", err)
	}
	return nil
}
