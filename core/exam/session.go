package exam

import (
	"context"
	"sync"
	"time"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/entry"
)

// EntrySession holds one editor's in-flight drafts for an exam: every cell
// edit lands here, re-arms the auto-saver, and is flushed either silently
// after the idle delay or explicitly via Save.
//
// The session is bound to the actor that opened it; silent commits are
// stamped with that actor's org like any manual save.
type EntrySession struct {
	mu     sync.Mutex
	svc    *Service
	actor  core.Actor
	exam   Exam
	drafts entry.DraftSet
	saver  *entry.AutoSaver

	lastResult SaveResult
}

// NewEntrySession seeds a grade-entry session from the committed snapshot.
func (svc *Service) NewEntrySession(
	ctx context.Context,
	actor core.Actor,
	examID string,
	rosterIDs []string,
	sched core.Scheduler,
	autosaveDelay time.Duration,
) (*EntrySession, error) {
	ex, err := svc.Get(ctx, actor, examID)
	if err != nil {
		return nil, err
	}
	drafts, err := svc.SeedDrafts(ctx, actor, ex, rosterIDs)
	if err != nil {
		return nil, err
	}

	s := &EntrySession{
		svc:    svc,
		actor:  actor,
		exam:   ex,
		drafts: drafts,
	}
	s.saver = entry.NewAutoSaver(sched, autosaveDelay, s.commit, svc.log)
	return s, nil
}

func (s *EntrySession) Exam() Exam {
	return s.exam
}

// SetScoreText records a keystroke in one student's score cell and re-arms
// the auto-saver.
func (s *EntrySession) SetScoreText(studentID, text string) entry.ScoreDraft {
	s.mu.Lock()
	s.drafts = s.drafts.SetScoreText(studentID, text)
	d := s.drafts.Get(studentID)
	s.mu.Unlock()

	s.saver.Arm()
	return d
}

// SetFeedback records feedback for one student and re-arms the auto-saver.
func (s *EntrySession) SetFeedback(studentID, feedback string) entry.ScoreDraft {
	s.mu.Lock()
	s.drafts = s.drafts.SetFeedback(studentID, feedback)
	d := s.drafts.Get(studentID)
	s.mu.Unlock()

	s.saver.Arm()
	return d
}

// Drafts returns the current rows ordered by student id.
func (s *EntrySession) Drafts() []entry.ScoreDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts.Drafts()
}

// Summary recomputes the KPI view over the current drafts (not the last
// committed snapshot), so the figures track every keystroke.
func (s *EntrySession) Summary(opts ...entry.SummaryOpts) entry.Summary {
	s.mu.Lock()
	drafts := s.drafts.Drafts()
	s.mu.Unlock()
	return entry.Summarize(drafts, opts...)
}

// Dirty reports whether edits exist that have not been committed.
func (s *EntrySession) Dirty() bool {
	return s.saver.Dirty()
}

// Save is the explicit-save path: commit now and surface the error.
func (s *EntrySession) Save() (SaveResult, error) {
	err := s.saver.Flush()

	s.mu.Lock()
	res := s.lastResult
	s.mu.Unlock()
	if err != nil {
		return SaveResult{}, err
	}
	return res, nil
}

// Close cancels any pending auto-save. An in-flight commit is not awaited
// or rolled back.
func (s *EntrySession) Close() {
	s.saver.Disarm()
}

func (s *EntrySession) commit() error {
	s.mu.Lock()
	actor, examID, drafts := s.actor, s.exam.ID, s.drafts
	s.mu.Unlock()

	res, err := s.svc.SaveScores(context.Background(), actor, examID, drafts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lastResult = res
	s.mu.Unlock()
	return nil
}
