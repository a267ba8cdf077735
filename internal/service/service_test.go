package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"task-manager/internal/repository"
)

type testEnv struct {
	db           *gorm.DB
	categoryRepo *repository.CategoryRepository
	taskRepo     *repository.TaskRepository
	detailRepo   *repository.TaskDetailRepository
	settingsRepo *repository.SettingsRepository

	categories *CategoryService
	tasks      *TaskService
	details    *TaskDetailService
	settings   *SettingsService
	backup     *BackupService
	reminders  *ReminderService

	now time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{
		db:           db,
		categoryRepo: repository.NewCategoryRepository(db),
		taskRepo:     repository.NewTaskRepository(db),
		detailRepo:   repository.NewTaskDetailRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
		now:          time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }
	env.categories = NewCategoryService(env.categoryRepo, env.taskRepo, env.detailRepo, clock)
	env.tasks = NewTaskService(env.taskRepo, env.detailRepo, clock)
	env.details = NewTaskDetailService(env.detailRepo, env.taskRepo, clock)
	env.settings = NewSettingsService(env.settingsRepo, clock)
	env.backup = NewBackupService(env.categoryRepo, env.taskRepo, env.detailRepo, repository.NewTransactor(db), clock)
	env.reminders = NewReminderService(env.taskRepo, env.categoryRepo)
	return env
}

func mustCategory(t *testing.T, env *testEnv, name string) string {
	t.Helper()
	id, err := env.categories.Add(context.Background(), name)
	if err != nil {
		t.Fatalf("add category %s: %v", name, err)
	}
	return id
}
