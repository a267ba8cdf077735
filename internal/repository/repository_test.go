package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "data", "tasks.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestCategoryRepositoryOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(openTestDB(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, c := range []model.Category{
		{ID: "c", Name: "Study", Order: 1, CreatedAt: base},
		{ID: "a", Name: "Work", Order: 0, CreatedAt: base.Add(time.Minute)},
		{ID: "b", Name: "Home", Order: 1, CreatedAt: base.Add(-time.Minute)},
	} {
		c := c
		if err := repo.Create(ctx, &c); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := []string{}
	for _, c := range list {
		got = append(got, c.ID)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("order = %v, want [a b c]", got)
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 3 {
		t.Fatalf("count = %d, %v", n, err)
	}
}

func TestCategoryRepositoryUpdateMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(openTestDB(t))

	err := repo.Update(ctx, "nope", map[string]any{"name": "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "nope"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing = %v, want ErrNotFound", err)
	}
}

func TestTaskRepositoryQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t))
	now := time.Now().UTC()

	tasks := []model.Task{
		{ID: "t1", CategoryID: "c1", Title: "A", Status: model.StatusTodo, Priority: model.PriorityMedium, CreatedAt: now, UpdatedAt: now},
		{ID: "t2", CategoryID: "c1", Title: "B", Status: model.StatusDone, Priority: model.PriorityLow, CreatedAt: now, UpdatedAt: now},
		{ID: "t3", CategoryID: "c2", Title: "C", Status: model.StatusTodo, Priority: model.PriorityHigh, CreatedAt: now, UpdatedAt: now},
	}
	for i := range tasks {
		if err := repo.Create(ctx, &tasks[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	byCat, err := repo.ListByCategory(ctx, "c1")
	if err != nil || len(byCat) != 2 {
		t.Fatalf("by category = %d, %v", len(byCat), err)
	}
	group, err := repo.ListByCategoryAndStatus(ctx, "c1", model.StatusTodo)
	if err != nil || len(group) != 1 || group[0].ID != "t1" {
		t.Fatalf("by category and status = %+v, %v", group, err)
	}

	if err := repo.Update(ctx, "t1", map[string]any{"order": 4, "due_date": now}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Order != 4 || got.DueDate == nil {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := repo.Update(ctx, "t1", map[string]any{"due_date": nil}); err != nil {
		t.Fatalf("clear due: %v", err)
	}
	got, _ = repo.GetByID(ctx, "t1")
	if got.DueDate != nil {
		t.Fatalf("due date not cleared: %v", got.DueDate)
	}
}

func TestTaskDetailRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskDetailRepository(openTestDB(t))

	detail := model.NewTaskDetail("t1", time.Now().UTC())
	detail.Plan.AddItem("i1", "collect numbers")
	if err := repo.Put(ctx, &detail); err != nil {
		t.Fatalf("put: %v", err)
	}

	err := repo.Update(ctx, "t1", func(d *model.TaskDetail) {
		d.Description.SetText("hello")
		d.Plan.Checklist[0].Completed = true
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByTaskID(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description.Text != "hello" || len(got.Plan.Checklist) != 1 || !got.Plan.Checklist[0].Completed {
		t.Fatalf("unexpected detail: %+v", got)
	}
	if got.Execution.Checklist == nil {
		t.Fatal("empty checklist decoded as nil")
	}

	if err := repo.Update(ctx, "missing", func(*model.TaskDetail) {}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByTaskID(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete = %v", err)
	}
}

func TestSettingsRepositoryPut(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(openTestDB(t))

	if _, err := repo.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get before put = %v", err)
	}
	s := model.DefaultSettings(time.Now().UTC())
	s.ID = "other"
	s.Notifications.DailyReminder = true
	if err := repo.Put(ctx, &s); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != model.SettingsID || !got.Notifications.DailyReminder {
		t.Fatalf("unexpected settings: %+v", got)
	}
}

func TestSQLiteDSN(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		in, want string
	}{
		{":memory:", ":memory:"},
		{"file::memory:?cache=shared", "file::memory:?cache=shared"},
		{filepath.Join(dir, "a", "x.db"), "file:" + filepath.Join(dir, "a", "x.db") + "?" + sqlitePragmas},
		{"file:" + filepath.Join(dir, "y.db") + "?_busy_timeout=1", "file:" + filepath.Join(dir, "y.db") + "?_busy_timeout=1"},
	}
	for _, c := range cases {
		got, err := sqliteDSN(c.in)
		if err != nil {
			t.Fatalf("sqliteDSN(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "a")); err != nil {
		t.Fatalf("parent dir not created: %v", err)
	}
}
