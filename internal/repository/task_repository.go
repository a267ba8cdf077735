package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// TaskRepository handles CRUD for tasks. Query results are unordered; sorting
// by order is the caller's job.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListByCategory returns every task of a category, any status.
func (r *TaskRepository) ListByCategory(ctx context.Context, categoryID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks by category: %w", err)
	}
	return tasks, nil
}

// ListByCategoryAndStatus is an exact match on the (category_id, status) index.
func (r *TaskRepository) ListByCategoryAndStatus(ctx context.Context, categoryID string, status model.TaskStatus) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("category_id = ? AND status = ?", categoryID, status).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks by category and status: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Update writes the given columns; a missing id yields ErrNotFound.
func (r *TaskRepository) Update(ctx context.Context, id string, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a task row; deleting a missing id is a no-op.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// Save upserts a full record (used by backup import).
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

func (r *TaskRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	return nil
}
