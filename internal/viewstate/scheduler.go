package viewstate

import "time"

// Timer is a cancellable one-shot callback.
type Timer interface {
	Stop() bool
}

// Scheduler defers callbacks. Tests swap in a manual implementation.
type Scheduler interface {
	AfterFunc(delay time.Duration, fn func()) Timer
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(delay time.Duration, fn func()) Timer {
	return time.AfterFunc(delay, fn)
}

// WallClock schedules callbacks on real time.
func WallClock() Scheduler {
	return wallScheduler{}
}
