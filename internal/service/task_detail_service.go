package service

import (
	"context"
	"errors"
	"fmt"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// TaskDetailService reads and writes task details.
type TaskDetailService struct {
	detailRepo *repository.TaskDetailRepository
	taskRepo   *repository.TaskRepository
	now        Clock
}

func NewTaskDetailService(detailRepo *repository.TaskDetailRepository, taskRepo *repository.TaskRepository, clock Clock) *TaskDetailService {
	return &TaskDetailService{detailRepo: detailRepo, taskRepo: taskRepo, now: orSystem(clock)}
}

func (s *TaskDetailService) GetByTaskID(ctx context.Context, taskID string) (*model.TaskDetail, error) {
	return s.detailRepo.GetByTaskID(ctx, taskID)
}

// GetOrCreate returns the detail of an existing task, creating an empty one
// the first time it is opened if none was stored.
func (s *TaskDetailService) GetOrCreate(ctx context.Context, taskID string) (*model.TaskDetail, error) {
	detail, err := s.detailRepo.GetByTaskID(ctx, taskID)
	if err == nil {
		return detail, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.taskRepo.GetByID(ctx, taskID); err != nil {
		return nil, fmt.Errorf("open detail of task %s: %w", taskID, err)
	}
	created := model.NewTaskDetail(taskID, s.now())
	if err := s.detailRepo.Put(ctx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update merges the patch and stamps updatedAt.
func (s *TaskDetailService) Update(ctx context.Context, taskID string, patch model.TaskDetailPatch) error {
	now := s.now()
	err := s.detailRepo.Update(ctx, taskID, func(d *model.TaskDetail) {
		patch.Apply(d)
		d.UpdatedAt = now
	})
	if err != nil {
		return fmt.Errorf("update detail of task %s: %w", taskID, err)
	}
	return nil
}

// Save writes all three sections of detail. A detail whose task was deleted
// in the meantime is not recreated; ErrNotFound is returned instead.
func (s *TaskDetailService) Save(ctx context.Context, detail model.TaskDetail) error {
	return s.Update(ctx, detail.TaskID, model.TaskDetailPatch{
		Description: &detail.Description,
		Plan:        &detail.Plan,
		Execution:   &detail.Execution,
	})
}
