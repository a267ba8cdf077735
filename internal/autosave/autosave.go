// Package autosave debounces edits to the open task detail into single durable writes.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"task-manager/internal/model"
)

// ErrNoSession is returned by edits issued while no detail is open.
var ErrNoSession = errors.New("no task detail open")

// State of the open editing session.
type State int

const (
	Idle State = iota
	// Pending means an edit is waiting for the debounce timer.
	Pending
	Saving
	// Saved is the short window after a successful write; it decays to Idle.
	Saved
	// Failed means the last write failed; the edit stays dirty until the next
	// edit re-arms the timer or SaveNow is called.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Saving:
		return "saving"
	case Saved:
		return "saved"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// SwitchPolicy decides what happens to unsaved edits when another task is
// opened or the coordinator is closed.
type SwitchPolicy int

const (
	// FlushOnSwitch writes pending edits of the previous session before switching.
	FlushOnSwitch SwitchPolicy = iota
	// DiscardOnSwitch drops pending edits of the previous session.
	DiscardOnSwitch
)

// Saver performs the durable write of a full detail.
type Saver interface {
	Save(ctx context.Context, detail model.TaskDetail) error
}

// Timer is the cancellable handle returned by AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it via StdAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// StdAfterFunc schedules on the runtime timer.
func StdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Options struct {
	// Delay is the quiet period after the last edit before saving. Default 1s.
	Delay time.Duration
	// SavedIndicator is how long the Saved state lasts. Default 500ms.
	SavedIndicator time.Duration
	Switch         SwitchPolicy
	AfterFunc      AfterFunc
	Logger         *slog.Logger
	// OnStateChange is called outside the coordinator's lock after each transition.
	OnStateChange func(taskID string, state State)
	// NewID generates checklist item ids. Default uuid.NewString.
	NewID func() string
}

type session struct {
	taskID string
	detail model.TaskDetail
	state  State
	dirty  bool
	ended  bool

	rev       uint64 // bumped by every edit
	armed     uint64 // generation of the live debounce timer
	timer     Timer
	indicator Timer
}

// Coordinator owns at most one open session. Writes are serialized so at
// most one durable write is in flight at any time.
type Coordinator struct {
	saver Saver
	opts  Options

	saveMu sync.Mutex

	mu      sync.Mutex
	session *session
}

func New(saver Saver, opts Options) *Coordinator {
	if opts.Delay <= 0 {
		opts.Delay = time.Second
	}
	if opts.SavedIndicator <= 0 {
		opts.SavedIndicator = 500 * time.Millisecond
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = StdAfterFunc
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Coordinator{saver: saver, opts: opts}
}

// Open starts a session for detail. The previous session, if any, is ended
// according to the switch policy; a flush error is returned but the new
// session is open regardless.
func (c *Coordinator) Open(ctx context.Context, detail model.TaskDetail) error {
	next := &session{taskID: detail.TaskID, detail: detail.Clone(), state: Idle}
	c.mu.Lock()
	prev := c.session
	c.session = next
	c.mu.Unlock()
	c.notify(next.taskID, Idle)
	if prev == nil {
		return nil
	}
	return c.end(ctx, prev)
}

// Close ends the open session (teardown). No timer of that session fires afterwards.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	return c.end(ctx, s)
}

func (c *Coordinator) end(ctx context.Context, s *session) error {
	c.mu.Lock()
	stopTimer(s.timer)
	stopTimer(s.indicator)
	s.timer, s.indicator = nil, nil
	s.ended = true
	dirty := s.dirty
	c.mu.Unlock()
	if !dirty || c.opts.Switch == DiscardOnSwitch {
		if dirty {
			c.opts.Logger.Warn("discarding unsaved task detail", "task", s.taskID)
		}
		return nil
	}
	return c.flush(ctx, s, false, 0)
}

// Edit applies fn to the in-memory detail and (re)arms the debounce timer.
// If fn fails the detail is left unchanged.
func (c *Coordinator) Edit(fn func(*model.TaskDetail) error) error {
	c.mu.Lock()
	s := c.session
	if s == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	work := s.detail.Clone()
	if err := fn(&work); err != nil {
		c.mu.Unlock()
		return err
	}
	s.detail = work
	s.dirty = true
	s.rev++
	c.armLocked(s)
	s.state = Pending
	taskID := s.taskID
	c.mu.Unlock()
	c.notify(taskID, Pending)
	return nil
}

func (c *Coordinator) armLocked(s *session) {
	stopTimer(s.timer)
	stopTimer(s.indicator)
	s.indicator = nil
	s.armed++
	gen := s.armed
	s.timer = c.opts.AfterFunc(c.opts.Delay, func() { c.fire(s, gen) })
}

func (c *Coordinator) fire(s *session, gen uint64) {
	c.mu.Lock()
	live := !s.ended && c.session == s && s.armed == gen && s.dirty
	c.mu.Unlock()
	if !live {
		return
	}
	if err := c.flush(context.Background(), s, false, gen); err != nil {
		c.opts.Logger.Error("autosave task detail", "task", s.taskID, "err", err)
	}
}

// SaveNow cancels the pending timer and writes the latest in-memory detail
// immediately, even if nothing changed since the last write.
func (c *Coordinator) SaveNow(ctx context.Context) error {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil {
		return ErrNoSession
	}
	return c.flush(ctx, s, true, 0)
}

// flush writes s. A non-zero timerGen marks a debounce-timer write, which is
// dropped if the session ended or was re-armed while it waited for saveMu.
func (c *Coordinator) flush(ctx context.Context, s *session, force bool, timerGen uint64) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	if timerGen != 0 && (s.ended || s.armed != timerGen) {
		c.mu.Unlock()
		return nil
	}
	if !s.dirty && !force {
		c.mu.Unlock()
		return nil
	}
	stopTimer(s.timer)
	s.timer = nil
	snapshot := s.detail.Clone()
	rev := s.rev
	s.dirty = false
	s.state = Saving
	c.mu.Unlock()
	c.notify(s.taskID, Saving)

	err := c.saver.Save(ctx, snapshot)

	c.mu.Lock()
	var state State
	switch {
	case err != nil:
		s.dirty = true
		state = Failed
		if s.rev != rev && !s.ended {
			state = Pending
		}
	case s.rev != rev:
		// edited while saving; the edit already re-armed the timer
		state = Pending
	default:
		state = Saved
		if !s.ended {
			gen := s.armed
			s.indicator = c.opts.AfterFunc(c.opts.SavedIndicator, func() { c.decay(s, gen) })
		}
	}
	s.state = state
	c.mu.Unlock()
	c.notify(s.taskID, state)

	if err != nil {
		c.opts.Logger.Error("save task detail", "task", s.taskID, "err", err)
		return err
	}
	c.opts.Logger.Debug("saved task detail", "task", s.taskID)
	return nil
}

func (c *Coordinator) decay(s *session, gen uint64) {
	c.mu.Lock()
	if s.state != Saved || s.armed != gen || s.ended {
		c.mu.Unlock()
		return
	}
	s.state = Idle
	s.indicator = nil
	c.mu.Unlock()
	c.notify(s.taskID, Idle)
}

// State reports the open session's state (Idle when nothing is open).
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Idle
	}
	return c.session.state
}

// Dirty reports whether the open session has unsaved edits.
func (c *Coordinator) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.dirty
}

// Detail returns a copy of the open detail.
func (c *Coordinator) Detail() (model.TaskDetail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return model.TaskDetail{}, false
	}
	return c.session.detail.Clone(), true
}

func (c *Coordinator) notify(taskID string, state State) {
	if c.opts.OnStateChange != nil {
		c.opts.OnStateChange(taskID, state)
	}
}

func stopTimer(t Timer) {
	if t != nil {
		t.Stop()
	}
}
