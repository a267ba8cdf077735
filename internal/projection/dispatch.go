package projection

import (
	"context"
	"sync"
)

type job struct {
	cmd   *Command
	write func(ctx context.Context) error
	after func(cmd *Command, err error)
}

// writer runs durable writes one at a time in submission order, off the
// caller's goroutine. The worker goroutine exits whenever the queue drains.
type writer struct {
	mu      sync.Mutex
	queue   []job
	running bool
	idle    *sync.Cond
}

func newWriter() *writer {
	w := &writer{}
	w.idle = sync.NewCond(&w.mu)
	return w
}

func (w *writer) submit(j job) {
	w.mu.Lock()
	w.queue = append(w.queue, j)
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()
	go w.drain()
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.running = false
			w.idle.Broadcast()
			w.mu.Unlock()
			return
		}
		j := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		err := j.write(context.Background())
		if j.after != nil {
			j.after(j.cmd, err)
		}
		j.cmd.finish(err)
	}
}

// flush blocks until every submitted write has resolved.
func (w *writer) flush() {
	w.mu.Lock()
	for w.running {
		w.idle.Wait()
	}
	w.mu.Unlock()
}
