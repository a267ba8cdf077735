package service

import (
	"context"
	"errors"
	"fmt"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// SettingsService manages the AppSettings singleton.
type SettingsService struct {
	repo *repository.SettingsRepository
	now  Clock
}

func NewSettingsService(repo *repository.SettingsRepository, clock Clock) *SettingsService {
	return &SettingsService{repo: repo, now: orSystem(clock)}
}

// Initialize writes the default settings on first launch and returns the
// stored settings either way.
func (s *SettingsService) Initialize(ctx context.Context) (*model.AppSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("initialize settings: %w", err)
	}
	defaults := model.DefaultSettings(s.now())
	if err := s.repo.Put(ctx, &defaults); err != nil {
		return nil, fmt.Errorf("initialize settings: %w", err)
	}
	return &defaults, nil
}

func (s *SettingsService) Get(ctx context.Context) (*model.AppSettings, error) {
	return s.repo.Get(ctx)
}

// Update merges the patch and stamps updatedAt.
func (s *SettingsService) Update(ctx context.Context, patch model.SettingsPatch) (*model.AppSettings, error) {
	if err := patch.Validate(); err != nil {
		return nil, invalid("%v", err)
	}
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	patch.Apply(settings)
	settings.UpdatedAt = s.now()
	if err := s.repo.Put(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
