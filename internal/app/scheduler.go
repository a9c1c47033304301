package app

import "time"

// TimerHandle is a cancellable scheduled callback
type TimerHandle interface {
	// Stop cancels the timer if it has not fired yet. It reports whether the
	// call prevented the timer from firing.
	Stop() bool
}

// Scheduler schedules delayed callbacks and supplies the current time. Timer
// handles live here rather than on the room entity, so room snapshots stay
// plain data. Tests substitute a manual implementation to drive timers
// deterministically.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) TimerHandle
	Now() time.Time
}

type clockScheduler struct{}

// NewScheduler returns a Scheduler backed by the runtime timers
func NewScheduler() Scheduler {
	return clockScheduler{}
}

func (clockScheduler) AfterFunc(d time.Duration, fn func()) TimerHandle {
	return time.AfterFunc(d, fn)
}

func (clockScheduler) Now() time.Time {
	return time.Now()
}
