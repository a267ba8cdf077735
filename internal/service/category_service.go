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

// CategoryService owns category commands, including the cascade delete.
type CategoryService struct {
	repo    *repository.CategoryRepository
	tasks   *repository.TaskRepository
	details *repository.TaskDetailRepository
	now     Clock
}

func NewCategoryService(repo *repository.CategoryRepository, tasks *repository.TaskRepository, details *repository.TaskDetailRepository, clock Clock) *CategoryService {
	return &CategoryService{repo: repo, tasks: tasks, details: details, now: orSystem(clock)}
}

// GetAll returns categories sorted by order.
func (s *CategoryService) GetAll(ctx context.Context) ([]model.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoryService) GetByID(ctx context.Context, id string) (*model.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// Create persists a category and returns its id. An empty ID gets a fresh uuid;
// a zero CreatedAt is stamped with the current time.
func (s *CategoryService) Create(ctx context.Context, category model.Category) (string, error) {
	if strings.TrimSpace(category.Name) == "" {
		return "", invalid("category name is required")
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = s.now()
	}
	if err := s.repo.Create(ctx, &category); err != nil {
		return "", err
	}
	return category.ID, nil
}

// Add creates a category placed after all existing ones.
func (s *CategoryService) Add(ctx context.Context, name string) (string, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return "", err
	}
	return s.Create(ctx, model.Category{Name: name, Order: count})
}

// Update merges the patch. Categories carry no updatedAt, so nothing is stamped.
func (s *CategoryService) Update(ctx context.Context, id string, patch model.CategoryPatch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return invalid("category name is required")
	}
	if err := s.repo.Update(ctx, id, patch.Columns()); err != nil {
		return fmt.Errorf("update category %s: %w", id, err)
	}
	return nil
}

// Reorder assigns order 0..n-1 following ids. Unknown ids are skipped.
func (s *CategoryService) Reorder(ctx context.Context, ids []string) error {
	for i, id := range ids {
		order := i
		err := s.repo.Update(ctx, id, model.CategoryPatch{Order: &order}.Columns())
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reorder categories: %w", err)
		}
	}
	return nil
}

// Delete removes every task of the category (detail first, then task) and
// finally the category itself. Steps run sequentially without a transaction;
// see CascadeError for the partial-failure contract.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	owned, err := s.tasks.ListByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	steps := make([]cascadeStep, 0, len(owned)*2+1)
	for _, task := range owned {
		steps = append(steps, taskCascade(s.tasks, s.details, task.ID)...)
	}
	steps = append(steps, cascadeStep{
		name: "category:" + id,
		run:  func(ctx context.Context) error { return s.repo.Delete(ctx, id) },
	})
	return runCascade(ctx, steps)
}
