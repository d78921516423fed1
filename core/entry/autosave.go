package entry

import (
	"fmt"
	"sync"
	"time"

	"github.com/AcaDesk/acadesk-server/core"
)

// CommitFunc commits the current drafts to the remote store. The auto-saver
// calls it with no user-facing surface: failures are logged, never toasted.
type CommitFunc func() error

// AutoSaver debounces draft mutations into a single silent batch commit.
// Exactly one timer is live per instance: every Arm cancels and reschedules
// rather than queueing, so arming N times within the delay window fires the
// commit once.
//
// A failed silent commit leaves the saver dirty; the next Arm cycle or an
// explicit Flush retries it. A failed silent commit never blocks Flush.
type AutoSaver struct {
	mu     sync.Mutex
	sched  core.Scheduler
	delay  time.Duration
	commit CommitFunc
	log    core.Logger

	timer  core.Timer
	dirty  bool
	saving bool
}

func NewAutoSaver(sched core.Scheduler, delay time.Duration, commit CommitFunc, log core.Logger) *AutoSaver {
	return &AutoSaver{
		sched:  sched,
		delay:  delay,
		commit: commit,
		log:    log,
	}
}

// Arm marks the drafts dirty and (re)starts the idle timer. Call it on every
// draft mutation.
func (s *AutoSaver) Arm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.sched.AfterFunc(s.delay, s.fire)
}

// Disarm cancels any pending commit. Call it on unmount/navigation-away so
// no commit fires against a destroyed context.
func (s *AutoSaver) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Dirty reports whether edits exist that have not been successfully committed.
func (s *AutoSaver) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Flush is the explicit-save path: it cancels the pending timer and commits
// now, returning the commit error to the caller. Draft state is the
// caller's; on failure nothing is cleared, so a retry sends the same rows.
func (s *AutoSaver) Flush() error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return nil // a commit is already in flight; rows stay editable
	}
	s.saving = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	err := s.commit()

	s.mu.Lock()
	s.saving = false
	if err == nil {
		s.dirty = false
	}
	s.mu.Unlock()
	return err
}

// fire is the timer callback: same commit path as Flush, but silent.
func (s *AutoSaver) fire() {
	s.mu.Lock()
	if s.saving || !s.dirty {
		// an explicit save is in flight, or it already cleaned up after us
		s.mu.Unlock()
		return
	}
	s.saving = true
	s.mu.Unlock()

	err := s.commit()

	s.mu.Lock()
	s.saving = false
	if err == nil {
		s.dirty = false
	} else if s.log != nil {
		// stays dirty; retried on the next debounce cycle or explicit save
		s.log.Warn(fmt.Sprintf("auto-save failed: %v", err), err)
	}
	s.mu.Unlock()
}
