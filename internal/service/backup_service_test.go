package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

func TestBackupRoundTrip(t *testing.T) {
	src := newTestEnv(t)
	ctx := context.Background()
	cat := mustCategory(t, src, "Work")
	id, err := src.tasks.Create(ctx, model.Task{CategoryID: cat, Title: "Report", Priority: model.PriorityHigh})
	if err != nil {
		t.Fatal(err)
	}
	detail, _ := src.details.GetOrCreate(ctx, id)
	detail.Plan.AddItem("i1", "numbers")
	if err := src.details.Save(ctx, *detail); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := src.backup.WriteTo(ctx, &buf); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := ReadBackup(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if file.Version != model.BackupVersion || len(file.Data.Tasks) != 1 {
		t.Fatalf("unexpected backup: %+v", file)
	}

	dst := newTestEnv(t)
	stale := mustCategory(t, dst, "Stale")
	if err := dst.backup.Import(ctx, file, ImportReplace); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := dst.categories.GetByID(ctx, stale); !errors.Is(err, ErrNotFound) {
		t.Fatalf("replace kept old category: %v", err)
	}
	task, err := dst.tasks.GetByID(ctx, id)
	if err != nil || task.Priority != model.PriorityHigh {
		t.Fatalf("task not imported: %+v, %v", task, err)
	}
	got, err := dst.details.GetByTaskID(ctx, id)
	if err != nil || len(got.Plan.Checklist) != 1 || got.Plan.Checklist[0].Text != "numbers" {
		t.Fatalf("detail not imported: %+v, %v", got, err)
	}
}

func TestBackupImportFailureKeepsPriorData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	keep := mustCategory(t, env, "Keep")
	kept, err := env.tasks.Create(ctx, model.Task{CategoryID: keep, Title: "existing"})
	if err != nil {
		t.Fatal(err)
	}

	errDisk := errors.New("disk full")
	failTasks := func(tx *gorm.DB) {
		if tx.Statement.Table == "tasks" {
			_ = tx.AddError(errDisk)
		}
	}
	if err := env.db.Callback().Create().Before("gorm:create").Register("test:fail_tasks", failTasks); err != nil {
		t.Fatal(err)
	}
	if err := env.db.Callback().Update().Before("gorm:update").Register("test:fail_tasks", failTasks); err != nil {
		t.Fatal(err)
	}

	file := &model.BackupFile{
		Version: model.BackupVersion,
		Data: model.BackupData{
			Categories: []model.Category{{ID: "c1", Name: "Imported"}},
			Tasks: []model.Task{{
				ID: "t1", CategoryID: "c1", Title: "from backup",
				Status: model.StatusTodo, Priority: model.PriorityLow,
			}},
		},
	}
	if err := env.backup.Import(ctx, file, ImportReplace); !errors.Is(err, errDisk) {
		t.Fatalf("import = %v, want disk error", err)
	}

	categories, err := env.categories.GetAll(ctx)
	if err != nil || len(categories) != 1 || categories[0].ID != keep {
		t.Fatalf("categories after failed import = %+v, %v", categories, err)
	}
	if _, err := env.tasks.GetByID(ctx, kept); err != nil {
		t.Fatalf("existing task lost: %v", err)
	}
	if _, err := env.details.GetByTaskID(ctx, kept); err != nil {
		t.Fatalf("existing detail lost: %v", err)
	}
}

func TestBackupMergeKeepsExistingDetail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cat := mustCategory(t, env, "Work")
	id, _ := env.tasks.Create(ctx, model.Task{CategoryID: cat, Title: "Keep"})
	detail, _ := env.details.GetOrCreate(ctx, id)
	detail.Description.SetText("existing")
	if err := env.details.Save(ctx, *detail); err != nil {
		t.Fatal(err)
	}

	file, err := env.backup.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	file.Data.TaskDetails = nil
	file.Data.Tasks[0].Title = "Renamed"

	if err := env.backup.Import(ctx, file, ImportMerge); err != nil {
		t.Fatalf("merge: %v", err)
	}
	task, _ := env.tasks.GetByID(ctx, id)
	if task.Title != "Renamed" {
		t.Fatalf("title = %q, want Renamed", task.Title)
	}
	got, _ := env.details.GetByTaskID(ctx, id)
	if got.Description.Text != "existing" {
		t.Fatalf("merge replaced detail: %+v", got)
	}
}

func TestReadBackupValidation(t *testing.T) {
	cases := map[string]string{
		"version":  `{"version":"2.0","data":{"categories":[],"tasks":[],"taskDetails":[]}}`,
		"orphan":   `{"version":"1.0","data":{"categories":[],"tasks":[{"id":"t","categoryId":"x","status":"todo","priority":"low"}],"taskDetails":[]}}`,
		"status":   `{"version":"1.0","data":{"categories":[{"id":"c"}],"tasks":[{"id":"t","categoryId":"c","status":"nope","priority":"low"}],"taskDetails":[]}}`,
		"detail":   `{"version":"1.0","data":{"categories":[],"tasks":[],"taskDetails":[{"taskId":"t"}]}}`,
		"not json": `{"version":`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadBackup(strings.NewReader(raw)); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}
