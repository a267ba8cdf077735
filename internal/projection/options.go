package projection

import (
	"errors"
	"log/slog"
	"time"
)

// ErrNotCached is returned for mutations that target an id the cache does not hold.
var ErrNotCached = errors.New("not in cache")

const defaultHistoryLimit = 64

type options struct {
	policy       Policy
	logger       *slog.Logger
	historyLimit int
	now          func() time.Time
}

// Option configures a store.
type Option func(*options)

// WithPolicy sets the reconciliation policy for failed writes.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHistoryLimit bounds how many commands History returns.
func WithHistoryLimit(n int) Option {
	return func(o *options) { o.historyLimit = n }
}

// WithClock overrides the time source used for optimistic timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		policy:       IgnoreFailures,
		logger:       slog.Default(),
		historyLimit: defaultHistoryLimit,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
