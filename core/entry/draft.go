package entry

import "sort"

// ScoreDraft is the locally held, not-yet-committed edit state for one
// student row on the grade-entry screen.
type ScoreDraft struct {
	StudentID string
	RawText   string // what the user typed, kept verbatim when unparseable
	Correct   *int   // nil until a score parses
	Total     int
	Percent   int
	Feedback  string
}

// Entered reports whether the row holds a valid parsed score.
func (d ScoreDraft) Entered() bool {
	return d.Correct != nil && d.Total > 0
}

// Complete reports whether the row passes the minimal completeness predicate
// for committing: both correct and total present.
func (d ScoreDraft) Complete() bool {
	return d.Correct != nil && d.Total > 0
}

// Change describes a partial update to one draft; nil fields are left untouched.
type Change struct {
	RawText  *string
	Score    *Score
	Feedback *string
}

// DraftSet maps student id -> ScoreDraft. Mutating methods are
// copy-on-write: they return a new set and never alias records between sets,
// so holding an old set across an update cannot observe the new edit.
type DraftSet struct {
	records      map[string]ScoreDraft
	defaultTotal int
}

// SeedScoreDrafts builds the initial draft set for a roster: each student id
// gets its existing remote row if one exists, else an empty draft whose
// total defaults to the exam-wide question count.
func SeedScoreDrafts(studentIDs []string, existing []ScoreDraft, defaultTotal int) DraftSet {
	byID := make(map[string]ScoreDraft, len(existing))
	for _, d := range existing {
		byID[d.StudentID] = d
	}

	records := make(map[string]ScoreDraft, len(studentIDs))
	for _, id := range studentIDs {
		if d, ok := byID[id]; ok {
			records[id] = d
		} else {
			records[id] = ScoreDraft{StudentID: id, Total: defaultTotal}
		}
	}
	return DraftSet{records: records, defaultTotal: defaultTotal}
}

func (s DraftSet) clone() DraftSet {
	records := make(map[string]ScoreDraft, len(s.records))
	for id, d := range s.records {
		records[id] = d
	}
	return DraftSet{records: records, defaultTotal: s.defaultTotal}
}

// Get returns the draft for id, or the default empty draft if absent.
func (s DraftSet) Get(id string) ScoreDraft {
	if d, ok := s.records[id]; ok {
		return d
	}
	return ScoreDraft{StudentID: id, Total: s.defaultTotal}
}

// Update applies a partial change to one row and returns the new set.
// Unrelated rows are untouched; repeated application of the same change is
// idempotent; last write wins per key.
func (s DraftSet) Update(id string, change Change) DraftSet {
	next := s.clone()
	d := next.Get(id)

	if change.RawText != nil {
		d.RawText = *change.RawText
	}
	if change.Score != nil {
		correct := change.Score.Correct
		d.Correct = &correct
		d.Total = change.Score.Total
		d.Percent = Percent(correct, change.Score.Total)
	}
	if change.Feedback != nil {
		d.Feedback = *change.Feedback
	}

	next.records[id] = d
	return next
}

// SetScoreText runs the user's keystroke through the tolerant parser: a
// parseable value updates the score fields, anything else stores the raw
// text and demotes the row to not-entered (percent 0).
func (s DraftSet) SetScoreText(id, text string) DraftSet {
	next := s.clone()
	d := next.Get(id)
	d.RawText = text

	if score, ok := ParseScore(text, s.defaultTotal); ok {
		d.Correct = &score.Correct
		d.Total = score.Total
		d.Percent = Percent(score.Correct, score.Total)
	} else {
		d.Correct = nil
		d.Percent = 0
	}

	next.records[id] = d
	return next
}

// SetFeedback replaces one row's feedback text.
func (s DraftSet) SetFeedback(id, feedback string) DraftSet {
	return s.Update(id, Change{Feedback: &feedback})
}

func (s DraftSet) Len() int { return len(s.records) }

// DefaultTotal is the context-wide total the set was seeded with.
func (s DraftSet) DefaultTotal() int { return s.defaultTotal }

// Drafts returns all rows ordered by student id.
func (s DraftSet) Drafts() []ScoreDraft {
	drafts := make([]ScoreDraft, 0, len(s.records))
	for _, d := range s.records {
		drafts = append(drafts, d)
	}
	sort.Slice(drafts, func(i, j int) bool { return drafts[i].StudentID < drafts[j].StudentID })
	return drafts
}

// CompleteDrafts returns the rows passing the completeness predicate,
// ordered by student id. Incomplete rows are skipped, not errored.
func (s DraftSet) CompleteDrafts() []ScoreDraft {
	drafts := make([]ScoreDraft, 0, len(s.records))
	for _, d := range s.records {
		if d.Complete() {
			drafts = append(drafts, d)
		}
	}
	sort.Slice(drafts, func(i, j int) bool { return drafts[i].StudentID < drafts[j].StudentID })
	return drafts
}
