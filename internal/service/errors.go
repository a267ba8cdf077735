package service

import (
	"errors"
	"fmt"
	"strings"

	"task-manager/internal/repository"
)

var (
	// ErrNotFound is returned when an update targets a missing id.
	// Deletes of missing ids succeed silently.
	ErrNotFound = repository.ErrNotFound
	// ErrInvalidInput marks caller-supplied values that cannot be clamped.
	ErrInvalidInput = errors.New("invalid input")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// CascadeError reports a cascade delete that stopped part-way. Steps listed in
// Completed already took effect and are not rolled back; re-running the same
// delete converges because every step is idempotent.
type CascadeError struct {
	Completed []string
	Failed    string
	Err       error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade stopped at %s after [%s]: %v", e.Failed, strings.Join(e.Completed, ", "), e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }
