package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/entry"
)

// Sheet holds one editor's in-flight marks for a session: status clicks land
// here, re-arm the auto-saver, and are flushed silently after the idle delay
// or explicitly via Save. Same batch-upsert path either way.
type Sheet struct {
	mu      sync.Mutex
	svc     *Service
	actor   core.Actor
	session Session
	marks   map[string]MarkDraft
	saver   *entry.AutoSaver

	lastResult SaveResult
}

// NewSheet seeds an attendance sheet from the committed records: marked rows
// keep their status, the rest of the roster starts unmarked.
func (svc *Service) NewSheet(
	ctx context.Context,
	actor core.Actor,
	sessionID string,
	rosterIDs []string,
	sched core.Scheduler,
	autosaveDelay time.Duration,
) (*Sheet, error) {
	sess, err := svc.GetSession(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	records, err := svc.repo.QueryRecords(ctx, actor.OrgID, sessionID)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]MarkDraft, len(records))
	for _, r := range records {
		existing[r.StudentID] = markDraft(r)
	}
	marks := make(map[string]MarkDraft, len(rosterIDs))
	for _, id := range rosterIDs {
		if m, ok := existing[id]; ok {
			marks[id] = m
		} else {
			marks[id] = MarkDraft{StudentID: id}
		}
	}

	s := &Sheet{
		svc:     svc,
		actor:   actor,
		session: sess,
		marks:   marks,
	}
	s.saver = entry.NewAutoSaver(sched, autosaveDelay, s.commit, svc.log)
	return s, nil
}

func (s *Sheet) Session() Session {
	return s.session
}

// Mark sets one student's status (and optional note) and re-arms the
// auto-saver. Unknown statuses are rejected before touching the draft.
func (s *Sheet) Mark(studentID, status, note string) (MarkDraft, error) {
	if status != "" && !ValidStatus(status) {
		return MarkDraft{}, ErrInvalidStatus
	}

	s.mu.Lock()
	m := s.marks[studentID]
	m.StudentID = studentID
	m.Status = status
	m.Note = note
	s.marks[studentID] = m
	s.mu.Unlock()

	s.saver.Arm()
	return m, nil
}

// Marks returns the current rows ordered by student id.
func (s *Sheet) Marks() []MarkDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Sheet) snapshot() []MarkDraft {
	marks := make([]MarkDraft, 0, len(s.marks))
	for _, m := range s.marks {
		marks = append(marks, m)
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].StudentID < marks[j].StudentID })
	return marks
}

// Summary recomputes the rate view over the current marks.
func (s *Sheet) Summary() RateSummary {
	s.mu.Lock()
	marks := s.snapshot()
	roster := len(s.marks)
	s.mu.Unlock()
	return SummarizeMarks(marks, roster)
}

func (s *Sheet) Dirty() bool {
	return s.saver.Dirty()
}

// Save is the explicit-save path: commit now and surface the error.
func (s *Sheet) Save() (SaveResult, error) {
	err := s.saver.Flush()

	s.mu.Lock()
	res := s.lastResult
	s.mu.Unlock()
	if err != nil {
		return SaveResult{}, err
	}
	return res, nil
}

// Close cancels any pending auto-save.
func (s *Sheet) Close() {
	s.saver.Disarm()
}

func (s *Sheet) commit() error {
	s.mu.Lock()
	actor, sessionID, marks := s.actor, s.session.ID, s.snapshot()
	s.mu.Unlock()

	res, err := s.svc.SaveMarks(context.Background(), actor, sessionID, marks)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lastResult = res
	s.mu.Unlock()
	return nil
}
