package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// SettingsRepository stores the AppSettings singleton.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (*model.AppSettings, error) {
	var settings model.AppSettings
	if err := r.db.WithContext(ctx).Where("id = ?", model.SettingsID).First(&settings).Error; err != nil {
		return nil, notFound(err)
	}
	return &settings, nil
}

// Put upserts the singleton; the id is forced to the fixed key.
func (r *SettingsRepository) Put(ctx context.Context, settings *model.AppSettings) error {
	settings.ID = model.SettingsID
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}
