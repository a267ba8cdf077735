package projection

import (
	"context"
	"errors"
	"sync"

	"task-manager/internal/model"
)

var errWrite = errors.New("disk full")

type fakeTasks struct {
	mu    sync.Mutex
	tasks map[string]model.Task
	fail  bool
	// failNext fails that many upcoming writes, then recovers.
	failNext int
	calls    []string
	gate  chan struct{}
	order [][]model.OrderUpdate
}

func newFakeTasks(seed ...model.Task) *fakeTasks {
	f := &fakeTasks{tasks: make(map[string]model.Task)}
	for _, t := range seed {
		f.tasks[t.ID] = t
	}
	return f
}

func (f *fakeTasks) record(call string) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.failNext > 0 {
		f.failNext--
		return errWrite
	}
	if f.fail {
		return errWrite
	}
	return nil
}

func (f *fakeTasks) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *fakeTasks) GetAll(context.Context) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTasks) Create(_ context.Context, task model.Task) (string, error) {
	if err := f.record("create:" + task.ID); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.tasks[task.ID] = task
	f.mu.Unlock()
	return task.ID, nil
}

func (f *fakeTasks) Update(_ context.Context, id string, patch model.TaskPatch) error {
	if err := f.record("update:" + id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return errors.New("not found")
	}
	patch.Apply(&t)
	f.tasks[id] = t
	return nil
}

func (f *fakeTasks) Delete(_ context.Context, id string) error {
	if err := f.record("delete:" + id); err != nil {
		return err
	}
	f.mu.Lock()
	delete(f.tasks, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeTasks) UpdateOrder(_ context.Context, updates []model.OrderUpdate) error {
	if err := f.record("order"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = append(f.order, append([]model.OrderUpdate(nil), updates...))
	for _, u := range updates {
		if t, ok := f.tasks[u.ID]; ok {
			t.Order = u.Order
			f.tasks[u.ID] = t
		}
	}
	return nil
}

func (f *fakeTasks) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeCategories struct {
	mu         sync.Mutex
	categories map[string]model.Category
	fail       bool
	failNext   int
	gate       chan struct{}
	reordered  [][]string
}

// begin blocks on the gate, then locks f and reports whether this write fails.
func (f *fakeCategories) begin() bool {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	if f.failNext > 0 {
		f.failNext--
		return true
	}
	return f.fail
}

func newFakeCategories(seed ...model.Category) *fakeCategories {
	f := &fakeCategories{categories: make(map[string]model.Category)}
	for _, c := range seed {
		f.categories[c.ID] = c
	}
	return f
}

func (f *fakeCategories) GetAll(context.Context) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategories) Create(_ context.Context, c model.Category) (string, error) {
	failing := f.begin()
	defer f.mu.Unlock()
	if failing {
		return "", errWrite
	}
	f.categories[c.ID] = c
	return c.ID, nil
}

func (f *fakeCategories) Update(_ context.Context, id string, patch model.CategoryPatch) error {
	failing := f.begin()
	defer f.mu.Unlock()
	if failing {
		return errWrite
	}
	c := f.categories[id]
	patch.Apply(&c)
	f.categories[id] = c
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, id string) error {
	failing := f.begin()
	defer f.mu.Unlock()
	if failing {
		return errWrite
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeCategories) Reorder(_ context.Context, ids []string) error {
	failing := f.begin()
	defer f.mu.Unlock()
	if failing {
		return errWrite
	}
	f.reordered = append(f.reordered, append([]string(nil), ids...))
	for i, id := range ids {
		if c, ok := f.categories[id]; ok {
			c.Order = i
			f.categories[id] = c
		}
	}
	return nil
}
