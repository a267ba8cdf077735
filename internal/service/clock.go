package service

import "time"

// Clock returns the current time. Services stamp timestamps through it.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

func orSystem(c Clock) Clock {
	if c == nil {
		return systemClock
	}
	return c
}
