package projection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"task-manager/internal/model"
	"task-manager/internal/ordering"
)

// TaskCommands is the durable side of the task cache.
type TaskCommands interface {
	GetAll(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, task model.Task) (string, error)
	Update(ctx context.Context, id string, patch model.TaskPatch) error
	Delete(ctx context.Context, id string) error
	UpdateOrder(ctx context.Context, updates []model.OrderUpdate) error
}

type TaskSnapshot struct {
	Tasks   []model.Task
	Version uint64
}

// TaskStore caches every task. Reads never touch durable storage.
type TaskStore struct {
	cmds TaskCommands
	opts options
	w    *writer
	hist history
	obs  observers[TaskSnapshot]

	mu      sync.RWMutex
	tasks   []model.Task
	led     ledger[model.Task]
	version uint64
}

func NewTaskStore(cmds TaskCommands, opts ...Option) *TaskStore {
	o := buildOptions(opts)
	return &TaskStore{
		cmds: cmds,
		opts: o,
		w:    newWriter(),
		hist: history{limit: o.historyLimit},
	}
}

// Load replaces the cache with the durable collection. Commands still
// waiting for their write are replayed on top of it.
func (s *TaskStore) Load(ctx context.Context) error {
	tasks, err := s.cmds.GetAll(ctx)
	if err != nil {
		s.opts.logger.Error("load tasks", "err", err)
		return fmt.Errorf("load tasks: %w", err)
	}
	s.mu.Lock()
	s.led.reset(tasks)
	s.tasks = s.led.rebuild()
	snap := s.bumpLocked()
	s.mu.Unlock()
	s.obs.publish(snap)
	return nil
}

func (s *TaskStore) Subscribe(fn func(TaskSnapshot)) (unsubscribe func()) {
	return s.obs.subscribe(fn)
}

func (s *TaskStore) Snapshot() TaskSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// TasksByCategory filters the cache by category, in cache order.
func (s *TaskStore) TasksByCategory(categoryID string) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Task
	for _, t := range s.tasks {
		if t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out
}

// TasksByStatus returns one board column sorted ascending by order.
func (s *TaskStore) TasksByStatus(categoryID string, status model.TaskStatus) []model.Task {
	s.mu.RLock()
	out := s.groupLocked(categoryID, status)
	s.mu.RUnlock()
	ordering.SortByOrder(out, func(t model.Task) int { return t.Order })
	return out
}

func (s *TaskStore) TaskByID(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.findLocked(id)
	if !ok {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

// AddTask creates a todo task appended after the category's existing todo
// tasks: its order is the number of todo tasks the category held before the add.
func (s *TaskStore) AddTask(categoryID, title string, priority model.Priority) (string, *Command) {
	if strings.TrimSpace(title) == "" {
		return "", failedCommand("addTask", "", errors.New("title is required"))
	}
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return "", failedCommand("addTask", "", fmt.Errorf("unknown priority %q", priority))
	}
	id := uuid.NewString()
	now := s.opts.now()

	s.mu.Lock()
	task := model.Task{
		ID:         id,
		CategoryID: categoryID,
		Title:      title,
		Status:     model.StatusTodo,
		Progress:   0,
		Priority:   priority,
		Order:      len(s.groupLocked(categoryID, model.StatusTodo)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	cmd := newCommand("addTask", id)
	snap := s.commitLocked(cmd, putTask(task), func(ctx context.Context) error {
		_, err := s.cmds.Create(ctx, task)
		return err
	})
	s.mu.Unlock()
	s.obs.publish(snap)
	return id, cmd
}

// UpdateTask merges patch into the cached task. Progress is quantized.
func (s *TaskStore) UpdateTask(id string, patch model.TaskPatch) *Command {
	return s.update("updateTask", id, patch)
}

// UpdateTaskStatus performs an explicit status transition; done also sets
// completedAt and progress 100.
func (s *TaskStore) UpdateTaskStatus(id string, status model.TaskStatus) *Command {
	if !status.Valid() {
		return failedCommand("updateTaskStatus", id, fmt.Errorf("unknown status %q", status))
	}
	return s.update("updateTaskStatus", id, model.StatusTransition(status, s.opts.now()))
}

// UpdateTaskProgress stores progress rounded to the nearest multiple of 10.
func (s *TaskStore) UpdateTaskProgress(id string, progress int) *Command {
	p := model.QuantizeProgress(progress)
	return s.update("updateTaskProgress", id, model.TaskPatch{Progress: &p})
}

func (s *TaskStore) update(name, id string, patch model.TaskPatch) *Command {
	if patch.Progress != nil {
		p := model.QuantizeProgress(*patch.Progress)
		patch.Progress = &p
	}
	now := s.opts.now()
	s.mu.Lock()
	if _, ok := s.findLocked(id); !ok {
		s.mu.Unlock()
		return failedCommand(name, id, fmt.Errorf("%s %s: %w", name, id, ErrNotCached))
	}
	cmd := newCommand(name, id)
	snap := s.commitLocked(cmd, patchTask(id, patch, now), func(ctx context.Context) error {
		return s.cmds.Update(ctx, id, patch)
	})
	s.mu.Unlock()
	s.obs.publish(snap)
	return cmd
}

// DeleteTask removes the task; the durable delete also removes its detail.
func (s *TaskStore) DeleteTask(id string) *Command {
	cmd := newCommand("deleteTask", id)
	s.mu.Lock()
	snap := s.commitLocked(cmd, removeTasks(func(t model.Task) bool { return t.ID == id }), func(ctx context.Context) error {
		return s.cmds.Delete(ctx, id)
	})
	s.mu.Unlock()
	s.obs.publish(snap)
	return cmd
}

// ReorderTasks applies new order values to the (categoryID, status) group.
// Updates naming tasks outside that group are dropped from both the cache
// change and the durable write.
func (s *TaskStore) ReorderTasks(categoryID string, status model.TaskStatus, updates []model.OrderUpdate) *Command {
	now := s.opts.now()
	s.mu.Lock()
	applied := make([]model.OrderUpdate, 0, len(updates))
	for _, u := range updates {
		i, ok := s.findLocked(u.ID)
		if !ok {
			continue
		}
		if t := s.tasks[i]; t.CategoryID != categoryID || t.Status != status {
			continue
		}
		applied = append(applied, u)
	}
	cmd := newCommand("reorderTasks", categoryID+"/"+string(status))
	snap := s.commitLocked(cmd, orderTasks(applied, now), func(ctx context.Context) error {
		if len(applied) == 0 {
			return nil
		}
		return s.cmds.UpdateOrder(ctx, applied)
	})
	s.mu.Unlock()
	s.obs.publish(snap)
	return cmd
}

// MoveTask moves a task to position to within its own (category, status)
// group and renumbers the group 0..n-1.
func (s *TaskStore) MoveTask(id string, to int) *Command {
	task, ok := s.TaskByID(id)
	if !ok {
		return failedCommand("moveTask", id, fmt.Errorf("move task %s: %w", id, ErrNotCached))
	}
	group := s.TasksByStatus(task.CategoryID, task.Status)
	from := ordering.IndexOf(group, func(t model.Task) bool { return t.ID == id })
	moved, err := ordering.Move(group, from, to)
	if err != nil {
		return failedCommand("moveTask", id, err)
	}
	ranks := ordering.Renumber(moved, func(t model.Task) string { return t.ID })
	updates := make([]model.OrderUpdate, len(ranks))
	for i, r := range ranks {
		updates[i] = model.OrderUpdate{ID: r.ID, Order: r.Order}
	}
	return s.ReorderTasks(task.CategoryID, task.Status, updates)
}

// DropCategory evicts the cached tasks of a deleted category. It performs no
// durable write; the category delete already cascades.
func (s *TaskStore) DropCategory(categoryID string) {
	drop := removeTasks(func(t model.Task) bool { return t.CategoryID == categoryID })
	s.mu.Lock()
	s.led.confirm(drop)
	s.tasks = drop(s.tasks)
	snap := s.bumpLocked()
	s.mu.Unlock()
	s.obs.publish(snap)
}

func (s *TaskStore) Flush() {
	s.w.flush()
}

func (s *TaskStore) History() []*Command {
	return s.hist.list()
}

func (s *TaskStore) Pending() []*Command {
	return s.hist.pending()
}

// commitLocked applies the command's effect to the cache, tracks it as
// pending and queues the durable write. Callers publish the returned snapshot
// after releasing s.mu.
func (s *TaskStore) commitLocked(cmd *Command, apply effect[model.Task], write func(ctx context.Context) error) TaskSnapshot {
	s.tasks = apply(s.tasks)
	s.led.track(cmd, apply)
	s.hist.add(cmd)
	s.w.submit(job{cmd: cmd, write: write, after: s.settle})
	return s.bumpLocked()
}

// settle runs on the writer goroutine once a write has resolved.
func (s *TaskStore) settle(cmd *Command, err error) {
	s.mu.Lock()
	s.led.resolve(cmd, err)
	if err == nil {
		s.mu.Unlock()
		s.opts.logger.Debug("task write confirmed", "command", cmd.Name, "id", cmd.EntityID)
		return
	}
	s.opts.logger.Error("task write failed", "command", cmd.Name, "id", cmd.EntityID, "policy", s.opts.policy, "err", err)
	switch s.opts.policy {
	case RefetchOnFailure:
		s.mu.Unlock()
		if err := s.Load(context.Background()); err != nil {
			s.opts.logger.Warn("refetch after failed write", "err", err)
		}
	case RevertOnFailure:
		s.tasks = s.led.rebuild()
		snap := s.bumpLocked()
		s.mu.Unlock()
		s.obs.publish(snap)
	default:
		s.mu.Unlock()
	}
}

func putTask(task model.Task) effect[model.Task] {
	return func(tasks []model.Task) []model.Task {
		if i := ordering.IndexOf(tasks, func(t model.Task) bool { return t.ID == task.ID }); i >= 0 {
			tasks[i] = task
			return tasks
		}
		return append(tasks, task)
	}
}

func patchTask(id string, patch model.TaskPatch, now time.Time) effect[model.Task] {
	return func(tasks []model.Task) []model.Task {
		if i := ordering.IndexOf(tasks, func(t model.Task) bool { return t.ID == id }); i >= 0 {
			patch.Apply(&tasks[i])
			tasks[i].UpdatedAt = now
		}
		return tasks
	}
}

func removeTasks(match func(model.Task) bool) effect[model.Task] {
	return func(tasks []model.Task) []model.Task {
		kept := tasks[:0:0]
		for _, t := range tasks {
			if !match(t) {
				kept = append(kept, t)
			}
		}
		return kept
	}
}

func orderTasks(updates []model.OrderUpdate, now time.Time) effect[model.Task] {
	return func(tasks []model.Task) []model.Task {
		for _, u := range updates {
			if i := ordering.IndexOf(tasks, func(t model.Task) bool { return t.ID == u.ID }); i >= 0 {
				tasks[i].Order = u.Order
				tasks[i].UpdatedAt = now
			}
		}
		return tasks
	}
}

func (s *TaskStore) groupLocked(categoryID string, status model.TaskStatus) []model.Task {
	var out []model.Task
	for _, t := range s.tasks {
		if t.CategoryID == categoryID && t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

func (s *TaskStore) findLocked(id string) (int, bool) {
	i := ordering.IndexOf(s.tasks, func(t model.Task) bool { return t.ID == id })
	return i, i >= 0
}

func (s *TaskStore) bumpLocked() TaskSnapshot {
	s.version++
	return s.snapshotLocked()
}

func (s *TaskStore) snapshotLocked() TaskSnapshot {
	return TaskSnapshot{Tasks: append([]model.Task{}, s.tasks...), Version: s.version}
}
