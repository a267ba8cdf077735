package projection

import "sync"

type observers[S any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(S)
}

func (o *observers[S]) subscribe(fn func(S)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func(S))
	}
	id := o.next
	o.next++
	o.fns[id] = fn
	return func() {
		o.mu.Lock()
		delete(o.fns, id)
		o.mu.Unlock()
	}
}

func (o *observers[S]) publish(s S) {
	o.mu.Lock()
	fns := make([]func(S), 0, len(o.fns))
	for _, fn := range o.fns {
		fns = append(fns, fn)
	}
	o.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
