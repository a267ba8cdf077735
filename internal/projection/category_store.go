package projection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"task-manager/internal/model"
	"task-manager/internal/ordering"
)

// CategoryCommands is the durable side of the category cache.
type CategoryCommands interface {
	GetAll(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, category model.Category) (string, error)
	Update(ctx context.Context, id string, patch model.CategoryPatch) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, ids []string) error
}

// CategorySnapshot is what subscribers receive after each change.
// Version increases monotonically; a subscriber may drop a snapshot older than one it has seen.
type CategorySnapshot struct {
	Categories []model.Category
	SelectedID string
	Version    uint64
}

// CategoryStore caches all categories plus the selected category id.
type CategoryStore struct {
	cmds CategoryCommands
	opts options
	w    *writer
	hist history
	obs  observers[CategorySnapshot]

	mu         sync.RWMutex
	categories []model.Category
	led        ledger[model.Category]
	selectedID string
	version    uint64
}

func NewCategoryStore(cmds CategoryCommands, opts ...Option) *CategoryStore {
	o := buildOptions(opts)
	return &CategoryStore{
		cmds: cmds,
		opts: o,
		w:    newWriter(),
		hist: history{limit: o.historyLimit},
	}
}

// Load replaces the cache with the durable collection. The previous selection
// survives if it still exists; otherwise the first category is selected.
// Commands still waiting for their write are replayed on top of it.
func (s *CategoryStore) Load(ctx context.Context) error {
	categories, err := s.cmds.GetAll(ctx)
	if err != nil {
		s.opts.logger.Error("load categories", "err", err)
		return fmt.Errorf("load categories: %w", err)
	}
	s.mu.Lock()
	s.led.reset(categories)
	s.categories = sortCategories(s.led.rebuild())
	s.fixSelectionLocked()
	snap := s.bumpLocked()
	s.mu.Unlock()
	s.obs.publish(snap)
	return nil
}

// Subscribe registers fn for every published snapshot. Snapshots may arrive
// from a background goroutine when a failed write is reconciled.
func (s *CategoryStore) Subscribe(fn func(CategorySnapshot)) (unsubscribe func()) {
	return s.obs.subscribe(fn)
}

// Snapshot returns the current cache contents.
func (s *CategoryStore) Snapshot() CategorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Categories returns the cached categories sorted by order.
func (s *CategoryStore) Categories() []model.Category {
	return s.Snapshot().Categories
}

func (s *CategoryStore) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

// Selected returns the selected category, if any.
func (s *CategoryStore) Selected() (model.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.findLocked(s.selectedID)
	if !ok {
		return model.Category{}, false
	}
	return s.categories[i], true
}

// Select changes the selection. It is purely in-memory.
func (s *CategoryStore) Select(id string) error {
	s.mu.Lock()
	if _, ok := s.findLocked(id); !ok {
		s.mu.Unlock()
		return fmt.Errorf("select category %s: %w", id, ErrNotCached)
	}
	s.selectedID = id
	snap := s.bumpLocked()
	s.mu.Unlock()
	s.obs.publish(snap)
	return nil
}

// AddCategory appends a category after the current last one and selects it.
func (s *CategoryStore) AddCategory(name string) (string, *Command) {
	if strings.TrimSpace(name) == "" {
		return "", failedCommand("addCategory", "", errors.New("category name is required"))
	}
	id := uuid.NewString()
	cmd := newCommand("addCategory", id)
	s.mu.Lock()
	order := 0
	for _, c := range s.categories {
		if c.Order >= order {
			order = c.Order + 1
		}
	}
	category := model.Category{ID: id, Name: name, CreatedAt: s.opts.now(), Order: order}
	s.selectedID = id
	snap := s.commitLocked(cmd, putCategory(category), func(ctx context.Context) error {
		_, err := s.cmds.Create(ctx, category)
		return err
	})
	s.mu.Unlock()
	s.obs.publish(snap)
	return id, cmd
}

// UpdateCategory merges patch into the cached category and persists it.
func (s *CategoryStore) UpdateCategory(id string, patch model.CategoryPatch) *Command {
	s.mu.Lock()
	if _, ok := s.findLocked(id); !ok {
		s.mu.Unlock()
		return failedCommand("updateCategory", id, fmt.Errorf("update category %s: %w", id, ErrNotCached))
	}
	cmd := newCommand("updateCategory", id)
	snap := s.commitLocked(cmd, patchCategory(id, patch), func(ctx context.Context) error {
		return s.cmds.Update(ctx, id, patch)
	})
	s.mu.Unlock()
	s.obs.publish(snap)
	return cmd
}

// DeleteCategory drops the category and re-selects the first remaining one.
// The durable delete cascades to the category's tasks and their details;
// callers holding a TaskStore should also call TaskStore.DropCategory.
func (s *CategoryStore) DeleteCategory(id string) *Command {
	cmd := newCommand("deleteCategory", id)
	s.mu.Lock()
	s.selectedID = ""
	snap := s.commitLocked(cmd, removeCategory(id), func(ctx context.Context) error {
		return s.cmds.Delete(ctx, id)
	})
	s.mu.Unlock()
	s.obs.publish(snap)
	return cmd
}

// ReorderCategories renumbers categories 0..n-1 following ids. Cached
// categories missing from ids keep their relative order after the listed ones.
func (s *CategoryStore) ReorderCategories(ids []string) *Command {
	s.mu.Lock()
	byID := make(map[string]model.Category, len(s.categories))
	for _, c := range s.categories {
		byID[c.ID] = c
	}
	next := make([]model.Category, 0, len(s.categories))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok && !seen[id] {
			next = append(next, c)
			seen[id] = true
		}
	}
	for _, c := range s.categories {
		if !seen[c.ID] {
			next = append(next, c)
		}
	}
	ranks := ordering.Renumber(next, func(c model.Category) string { return c.ID })
	ordered := make([]string, len(ranks))
	for i, r := range ranks {
		ordered[i] = r.ID
	}
	cmd := newCommand("reorderCategories", "")
	snap := s.commitLocked(cmd, rankCategories(ranks), func(ctx context.Context) error {
		return s.cmds.Reorder(ctx, ordered)
	})
	s.mu.Unlock()
	s.obs.publish(snap)
	return cmd
}

// MoveCategory moves the category at position from to position to (drag and drop).
func (s *CategoryStore) MoveCategory(from, to int) *Command {
	current := s.Categories()
	moved, err := ordering.Move(current, from, to)
	if err != nil {
		return failedCommand("moveCategory", "", err)
	}
	ids := make([]string, len(moved))
	for i, c := range moved {
		ids[i] = c.ID
	}
	return s.ReorderCategories(ids)
}

// Flush waits until all submitted durable writes have resolved.
func (s *CategoryStore) Flush() {
	s.w.flush()
}

// History returns the most recent commands, oldest first.
func (s *CategoryStore) History() []*Command {
	return s.hist.list()
}

// Pending returns commands whose durable write has not resolved yet.
func (s *CategoryStore) Pending() []*Command {
	return s.hist.pending()
}

// commitLocked applies the command's effect to the cache, tracks it as
// pending and queues the durable write.
func (s *CategoryStore) commitLocked(cmd *Command, apply effect[model.Category], write func(ctx context.Context) error) CategorySnapshot {
	s.categories = apply(s.categories)
	s.led.track(cmd, apply)
	s.fixSelectionLocked()
	s.hist.add(cmd)
	s.w.submit(job{cmd: cmd, write: write, after: s.settle})
	return s.bumpLocked()
}

func (s *CategoryStore) settle(cmd *Command, err error) {
	s.mu.Lock()
	s.led.resolve(cmd, err)
	if err == nil {
		s.mu.Unlock()
		s.opts.logger.Debug("category write confirmed", "command", cmd.Name, "id", cmd.EntityID)
		return
	}
	s.opts.logger.Error("category write failed", "command", cmd.Name, "id", cmd.EntityID, "policy", s.opts.policy, "err", err)
	switch s.opts.policy {
	case RefetchOnFailure:
		s.mu.Unlock()
		if err := s.Load(context.Background()); err != nil {
			s.opts.logger.Warn("refetch after failed write", "err", err)
		}
	case RevertOnFailure:
		s.categories = sortCategories(s.led.rebuild())
		s.fixSelectionLocked()
		snap := s.bumpLocked()
		s.mu.Unlock()
		s.obs.publish(snap)
	default:
		s.mu.Unlock()
	}
}

// fixSelectionLocked keeps the selection on an existing category, falling
// back to the first one.
func (s *CategoryStore) fixSelectionLocked() {
	if _, ok := s.findLocked(s.selectedID); !ok {
		s.selectFirstLocked()
	}
}

func sortCategories(categories []model.Category) []model.Category {
	ordering.SortByOrder(categories, func(c model.Category) int { return c.Order })
	return categories
}

func putCategory(category model.Category) effect[model.Category] {
	return func(categories []model.Category) []model.Category {
		if i := ordering.IndexOf(categories, func(c model.Category) bool { return c.ID == category.ID }); i >= 0 {
			categories[i] = category
		} else {
			categories = append(categories, category)
		}
		return sortCategories(categories)
	}
}

func patchCategory(id string, patch model.CategoryPatch) effect[model.Category] {
	return func(categories []model.Category) []model.Category {
		if i := ordering.IndexOf(categories, func(c model.Category) bool { return c.ID == id }); i >= 0 {
			patch.Apply(&categories[i])
		}
		return sortCategories(categories)
	}
}

func removeCategory(id string) effect[model.Category] {
	return func(categories []model.Category) []model.Category {
		if i := ordering.IndexOf(categories, func(c model.Category) bool { return c.ID == id }); i >= 0 {
			return append(categories[:i:i], categories[i+1:]...)
		}
		return categories
	}
}

func rankCategories(ranks []ordering.Rank) effect[model.Category] {
	return func(categories []model.Category) []model.Category {
		for _, r := range ranks {
			if i := ordering.IndexOf(categories, func(c model.Category) bool { return c.ID == r.ID }); i >= 0 {
				categories[i].Order = r.Order
			}
		}
		return sortCategories(categories)
	}
}

func (s *CategoryStore) findLocked(id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	i := ordering.IndexOf(s.categories, func(c model.Category) bool { return c.ID == id })
	return i, i >= 0
}

func (s *CategoryStore) selectFirstLocked() {
	s.selectedID = ""
	if len(s.categories) > 0 {
		s.selectedID = s.categories[0].ID
	}
}

func (s *CategoryStore) bumpLocked() CategorySnapshot {
	s.version++
	return s.snapshotLocked()
}

func (s *CategoryStore) snapshotLocked() CategorySnapshot {
	return CategorySnapshot{
		Categories: append([]model.Category{}, s.categories...),
		SelectedID: s.selectedID,
		Version:    s.version,
	}
}
