package core

import "time"

type (
	// Scheduler schedules a call to run after a delay. The production
	// implementation wraps time.AfterFunc; tests substitute a virtual one so
	// timer behavior can be driven deterministically.
	Scheduler interface {
		AfterFunc(d time.Duration, fn func()) Timer
	}

	// Timer is a pending scheduled call. Stop reports whether the call was
	// cancelled before firing.
	Timer interface {
		Stop() bool
	}
)

type realScheduler struct{}

func NewScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
