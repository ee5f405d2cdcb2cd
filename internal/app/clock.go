package app

import "time"

// Clock returns the current instant. Jobs and scenarios take one so tests can pin time.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

func orSystemClock(c Clock) Clock {
	if c == nil {
		return systemClock
	}
	return c
}
