// Package projection holds the in-memory caches the UI reads from. Every
// mutation is applied to the cache and published first, then written to the
// command layer in the background. A failed write does not roll the cache back
// unless a reconciliation Policy other than IgnoreFailures is configured, so
// with the default policy the cache can diverge from durable state.
package projection

import (
	"context"
	"sync"
)

// CommandState tracks one optimistic mutation.
type CommandState int

const (
	// Applied means the cache changed and the durable write is pending.
	Applied CommandState = iota
	// Confirmed means the durable write succeeded.
	Confirmed
	// Failed means the durable write (or the precondition) failed.
	Failed
)

func (s CommandState) String() string {
	switch s {
	case Applied:
		return "applied"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Command is the handle returned by every mutating store method. The cache
// was already updated when the caller receives it; Wait reports the durable outcome.
type Command struct {
	Name     string
	EntityID string

	mu    sync.Mutex
	state CommandState
	err   error
	done  chan struct{}
}

func newCommand(name, entityID string) *Command {
	return &Command{Name: name, EntityID: entityID, done: make(chan struct{})}
}

// failedCommand returns a command that never reached the cache.
func failedCommand(name, entityID string, err error) *Command {
	c := newCommand(name, entityID)
	c.finish(err)
	return c
}

func (c *Command) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Applied {
		return
	}
	if err != nil {
		c.state = Failed
		c.err = err
	} else {
		c.state = Confirmed
	}
	close(c.done)
}

func (c *Command) State() CommandState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the durable failure, if any.
func (c *Command) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Done is closed once the command is confirmed or failed.
func (c *Command) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the durable write resolves or ctx ends.
func (c *Command) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// history keeps the most recent commands of a store.
type history struct {
	mu    sync.Mutex
	limit int
	cmds  []*Command
}

func (h *history) add(c *Command) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cmds = append(h.cmds, c)
	if h.limit > 0 && len(h.cmds) > h.limit {
		h.cmds = append([]*Command(nil), h.cmds[len(h.cmds)-h.limit:]...)
	}
}

func (h *history) list() []*Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Command(nil), h.cmds...)
}

func (h *history) pending() []*Command {
	var out []*Command
	for _, c := range h.list() {
		if c.State() == Applied {
			out = append(out, c)
		}
	}
	return out
}
