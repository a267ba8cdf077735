package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// ImportMode selects how a backup is applied.
type ImportMode string

const (
	// ImportReplace clears all three collections before writing the backup.
	ImportReplace ImportMode = "replace"
	// ImportMerge upserts backup records over existing ones.
	ImportMerge ImportMode = "merge"
)

// BackupService exports and imports categories, tasks and task details.
type BackupService struct {
	categories *repository.CategoryRepository
	tasks      *repository.TaskRepository
	details    *repository.TaskDetailRepository
	tx         *repository.Transactor
	now        Clock
}

func NewBackupService(categories *repository.CategoryRepository, tasks *repository.TaskRepository, details *repository.TaskDetailRepository, tx *repository.Transactor, clock Clock) *BackupService {
	return &BackupService{categories: categories, tasks: tasks, details: details, tx: tx, now: orSystem(clock)}
}

// Export snapshots the three collections.
func (s *BackupService) Export(ctx context.Context) (*model.BackupFile, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	details, err := s.details.List(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []model.Category{}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	if details == nil {
		details = []model.TaskDetail{}
	}
	return &model.BackupFile{
		Version:    model.BackupVersion,
		ExportDate: s.now(),
		Data: model.BackupData{
			Categories:  categories,
			Tasks:       tasks,
			TaskDetails: details,
		},
	}, nil
}

// WriteTo encodes an export as indented JSON.
func (s *BackupService) WriteTo(ctx context.Context, w io.Writer) error {
	file, err := s.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// ReadBackup decodes and validates a backup document.
func ReadBackup(r io.Reader) (*model.BackupFile, error) {
	var file model.BackupFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, invalid("decode backup: %v", err)
	}
	if err := ValidateBackup(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

// ValidateBackup checks the version and that every task and detail points at
// something that exists inside the same file.
func ValidateBackup(file *model.BackupFile) error {
	if file.Version != model.BackupVersion {
		return invalid("unsupported backup version %q", file.Version)
	}
	categoryIDs := make(map[string]bool, len(file.Data.Categories))
	for _, c := range file.Data.Categories {
		if c.ID == "" {
			return invalid("category without id")
		}
		categoryIDs[c.ID] = true
	}
	taskIDs := make(map[string]bool, len(file.Data.Tasks))
	for _, t := range file.Data.Tasks {
		if t.ID == "" {
			return invalid("task without id")
		}
		if !categoryIDs[t.CategoryID] {
			return invalid("task %s references unknown category %s", t.ID, t.CategoryID)
		}
		if !t.Status.Valid() {
			return invalid("task %s has unknown status %q", t.ID, t.Status)
		}
		if !t.Priority.Valid() {
			return invalid("task %s has unknown priority %q", t.ID, t.Priority)
		}
		taskIDs[t.ID] = true
	}
	for _, d := range file.Data.TaskDetails {
		if !taskIDs[d.TaskID] {
			return invalid("task detail references unknown task %s", d.TaskID)
		}
	}
	return nil
}

// Import writes a validated backup in a single transaction: on any error
// storage is left as it was. Tasks present without a detail get an empty
// one so every task keeps its companion.
func (s *BackupService) Import(ctx context.Context, file *model.BackupFile, mode ImportMode) error {
	if err := ValidateBackup(file); err != nil {
		return err
	}
	err := s.tx.Do(ctx, func(tx repository.Tx) error {
		return s.importInto(ctx, tx, file, mode)
	})
	if err != nil {
		return fmt.Errorf("import backup: %w", err)
	}
	return nil
}

func (s *BackupService) importInto(ctx context.Context, tx repository.Tx, file *model.BackupFile, mode ImportMode) error {
	if mode == ImportReplace {
		if err := tx.Details.DeleteAll(ctx); err != nil {
			return err
		}
		if err := tx.Tasks.DeleteAll(ctx); err != nil {
			return err
		}
		if err := tx.Categories.DeleteAll(ctx); err != nil {
			return err
		}
	}
	for i := range file.Data.Categories {
		if err := tx.Categories.Save(ctx, &file.Data.Categories[i]); err != nil {
			return err
		}
	}
	withDetail := make(map[string]bool, len(file.Data.TaskDetails))
	for i := range file.Data.TaskDetails {
		d := file.Data.TaskDetails[i]
		d.ID = d.TaskID
		if err := tx.Details.Put(ctx, &d); err != nil {
			return err
		}
		withDetail[d.TaskID] = true
	}
	for i := range file.Data.Tasks {
		t := file.Data.Tasks[i]
		t.Progress = model.QuantizeProgress(t.Progress)
		if err := tx.Tasks.Save(ctx, &t); err != nil {
			return err
		}
		if withDetail[t.ID] {
			continue
		}
		_, err := tx.Details.GetByTaskID(ctx, t.ID)
		if errors.Is(err, repository.ErrNotFound) {
			empty := model.NewTaskDetail(t.ID, s.now())
			err = tx.Details.Put(ctx, &empty)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
