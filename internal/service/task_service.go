package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// TaskService wraps task commands. Creating a task also creates its detail;
// deleting one removes the detail first.
type TaskService struct {
	taskRepo   *repository.TaskRepository
	detailRepo *repository.TaskDetailRepository
	now        Clock
}

func NewTaskService(taskRepo *repository.TaskRepository, detailRepo *repository.TaskDetailRepository, clock Clock) *TaskService {
	return &TaskService{taskRepo: taskRepo, detailRepo: detailRepo, now: orSystem(clock)}
}

func (s *TaskService) GetAll(ctx context.Context) ([]model.Task, error) {
	return s.taskRepo.List(ctx)
}

func (s *TaskService) GetByID(ctx context.Context, id string) (*model.Task, error) {
	return s.taskRepo.GetByID(ctx, id)
}

// GetByCategory returns the category's tasks in no particular order.
func (s *TaskService) GetByCategory(ctx context.Context, categoryID string) ([]model.Task, error) {
	return s.taskRepo.ListByCategory(ctx, categoryID)
}

// GetByCategoryAndStatus returns one board column, unordered.
func (s *TaskService) GetByCategoryAndStatus(ctx context.Context, categoryID string, status model.TaskStatus) ([]model.Task, error) {
	if !status.Valid() {
		return nil, invalid("unknown status %q", status)
	}
	return s.taskRepo.ListByCategoryAndStatus(ctx, categoryID, status)
}

// Create persists the task and its empty detail and returns the task id.
// Missing id, status, priority and timestamps are filled in; progress is quantized.
func (s *TaskService) Create(ctx context.Context, task model.Task) (string, error) {
	if strings.TrimSpace(task.Title) == "" {
		return "", invalid("title is required")
	}
	if task.CategoryID == "" {
		return "", invalid("category is required")
	}
	if task.Status == "" {
		task.Status = model.StatusTodo
	}
	if !task.Status.Valid() {
		return "", invalid("unknown status %q", task.Status)
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if !task.Priority.Valid() {
		return "", invalid("unknown priority %q", task.Priority)
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := s.now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = now
	}
	task.Progress = model.QuantizeProgress(task.Progress)

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return "", err
	}
	detail := model.NewTaskDetail(task.ID, now)
	if err := s.detailRepo.Put(ctx, &detail); err != nil {
		return task.ID, fmt.Errorf("create detail for task %s: %w", task.ID, err)
	}
	return task.ID, nil
}

// Update merges the patch and stamps updatedAt.
func (s *TaskService) Update(ctx context.Context, id string, patch model.TaskPatch) error {
	if patch.Status != nil && !patch.Status.Valid() {
		return invalid("unknown status %q", *patch.Status)
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return invalid("unknown priority %q", *patch.Priority)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return invalid("title is required")
	}
	if patch.Progress != nil {
		p := model.QuantizeProgress(*patch.Progress)
		patch.Progress = &p
	}
	cols := patch.Columns()
	cols["updated_at"] = s.now()
	if err := s.taskRepo.Update(ctx, id, cols); err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	return nil
}

// UpdateStatus performs an explicit status transition.
func (s *TaskService) UpdateStatus(ctx context.Context, id string, status model.TaskStatus) error {
	if !status.Valid() {
		return invalid("unknown status %q", status)
	}
	return s.Update(ctx, id, model.StatusTransition(status, s.now()))
}

// UpdateProgress stores progress rounded to a multiple of 10 within [0,100].
// It never touches completedAt.
func (s *TaskService) UpdateProgress(ctx context.Context, id string, progress int) error {
	p := model.QuantizeProgress(progress)
	return s.Update(ctx, id, model.TaskPatch{Progress: &p})
}

// Delete removes the detail and then the task. Missing ids are a no-op.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return runCascade(ctx, taskCascade(s.taskRepo, s.detailRepo, id))
}

// UpdateOrder writes new order values one task at a time, stamping updatedAt.
// Unknown ids are skipped; the first storage error stops the loop.
func (s *TaskService) UpdateOrder(ctx context.Context, updates []model.OrderUpdate) error {
	for _, u := range updates {
		order := u.Order
		cols := model.TaskPatch{Order: &order}.Columns()
		cols["updated_at"] = s.now()
		err := s.taskRepo.Update(ctx, u.ID, cols)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("update order of task %s: %w", u.ID, err)
		}
	}
	return nil
}
