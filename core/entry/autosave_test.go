package entry

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/AcaDesk/acadesk-server/core"
)

// virtual scheduler: timers fire only when the test says so

type fakeTimer struct {
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeScheduler struct {
	timers []*fakeTimer
}

var _ core.Scheduler = (*fakeScheduler)(nil)

func (s *fakeScheduler) AfterFunc(_ time.Duration, fn func()) core.Timer {
	t := &fakeTimer{fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// elapse fires every live timer, as if the delay passed with no activity.
func (s *fakeScheduler) elapse() {
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			t.fn()
		}
	}
}

type testLogger struct {
	warns []string
}

var _ core.Logger = (*testLogger)(nil)

func (l *testLogger) Debug(msg string, args ...interface{}) {}
func (l *testLogger) Info(msg string, args ...interface{})  {}
func (l *testLogger) Warn(msg string, args ...interface{})  { l.warns = append(l.warns, msg) }
func (l *testLogger) Error(msg string, args ...interface{}) {}
func (l *testLogger) Fatal(msg string, args ...interface{}) {}

func TestAutoSaverDebounce(t *testing.T) {
	sched := &fakeScheduler{}
	var commits int
	saver := NewAutoSaver(sched, 2*time.Second, func() error {
		commits++
		return nil
	}, &testLogger{})

	// five mutations within the delay window
	for i := 0; i < 5; i++ {
		saver.Arm()
	}
	sched.elapse()

	if commits != 1 {
		t.Errorf("commits = %d, want exactly 1 after 5 arms", commits)
	}
	if saver.Dirty() {
		t.Error("saver still dirty after successful silent commit")
	}

	// nothing further scheduled; elapsing again must not re-commit
	sched.elapse()
	if commits != 1 {
		t.Errorf("commits = %d after idle elapse, want 1", commits)
	}
}

func TestAutoSaverDisarm(t *testing.T) {
	sched := &fakeScheduler{}
	var commits int
	saver := NewAutoSaver(sched, 2*time.Second, func() error {
		commits++
		return nil
	}, &testLogger{})

	saver.Arm()
	saver.Disarm() // unmount/navigation-away
	sched.elapse()

	if commits != 0 {
		t.Errorf("commits = %d after Disarm, want 0", commits)
	}
	if !saver.Dirty() {
		t.Error("uncommitted edits should remain dirty after Disarm")
	}
}

func TestAutoSaverSilentFailureRetries(t *testing.T) {
	sched := &fakeScheduler{}
	log := &testLogger{}
	var calls int
	saver := NewAutoSaver(sched, 2*time.Second, func() error {
		calls++
		if calls == 1 {
			return errors.New("boom")
		}
		return nil
	}, log)

	saver.Arm()
	sched.elapse()

	if !saver.Dirty() {
		t.Fatal("failed silent commit must leave drafts dirty")
	}
	if len(log.warns) != 1 {
		t.Errorf("warns = %d, want the failure logged once (and only logged)", len(log.warns))
	}

	// next debounce cycle retries and succeeds
	saver.Arm()
	sched.elapse()
	if calls != 2 {
		t.Errorf("commit calls = %d, want 2", calls)
	}
	if saver.Dirty() {
		t.Error("saver still dirty after successful retry")
	}
}

func TestAutoSaverFlush(t *testing.T) {
	sched := &fakeScheduler{}
	var commits int
	saver := NewAutoSaver(sched, 2*time.Second, func() error {
		commits++
		return nil
	}, &testLogger{})

	saver.Arm()
	if err := saver.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if commits != 1 {
		t.Fatalf("commits = %d after Flush, want 1", commits)
	}

	// the pending timer was cancelled by Flush; no double commit
	sched.elapse()
	if commits != 1 {
		t.Errorf("commits = %d after elapse, want still 1", commits)
	}
}

func TestAutoSaverFlushReturnsError(t *testing.T) {
	sched := &fakeScheduler{}
	wantErr := errors.New("transport down")
	saver := NewAutoSaver(sched, 2*time.Second, func() error { return wantErr }, &testLogger{})

	saver.Arm()
	if err := saver.Flush(); errors.Cause(err) != wantErr {
		t.Errorf("Flush() error = %v, want %v", err, wantErr)
	}
	if !saver.Dirty() {
		t.Error("failed explicit save must preserve dirty state for retry")
	}
}
