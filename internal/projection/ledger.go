package projection

// effect is the cache change of one command, replayable on any copy of the collection.
type effect[T any] func(items []T) []T

type pendingEffect[T any] struct {
	cmd   *Command
	apply effect[T]
}

// ledger tracks the last durably confirmed collection and the effects of
// commands whose writes have not resolved yet, in submission order.
// Callers hold the owning store's lock.
type ledger[T any] struct {
	confirmed []T
	pending   []pendingEffect[T]
}

// reset adopts a freshly loaded collection as confirmed.
func (l *ledger[T]) reset(items []T) {
	l.confirmed = append([]T(nil), items...)
}

func (l *ledger[T]) track(cmd *Command, apply effect[T]) {
	l.pending = append(l.pending, pendingEffect[T]{cmd: cmd, apply: apply})
}

// resolve drops cmd from the pending effects and folds its effect into the
// confirmed collection when the write succeeded.
func (l *ledger[T]) resolve(cmd *Command, err error) {
	for i, p := range l.pending {
		if p.cmd != cmd {
			continue
		}
		l.pending = append(l.pending[:i:i], l.pending[i+1:]...)
		if err == nil {
			l.confirmed = p.apply(l.confirmed)
		}
		return
	}
}

// confirm applies a change that storage already holds, such as a cascade.
func (l *ledger[T]) confirm(apply effect[T]) {
	l.confirmed = apply(l.confirmed)
}

// rebuild returns the confirmed collection with every pending effect replayed.
func (l *ledger[T]) rebuild() []T {
	out := append([]T(nil), l.confirmed...)
	for _, p := range l.pending {
		out = p.apply(out)
	}
	return out
}
