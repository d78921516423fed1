package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AcaDesk/acadesk-server/core"
)

// Attendance statuses
const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
	StatusExcused = "excused"
)

var AllStatuses = []string{StatusPresent, StatusLate, StatusAbsent, StatusExcused}

func ValidStatus(status string) bool {
	for _, s := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Session struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	ClassID     string    `json:"class_id"`
	SessionDate time.Time `json:"session_date"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Record is the committed mark for one student in one session. Its natural
// key is (session_id, student_id); repeated commits overwrite.
type Record struct {
	OrgID     string    `json:"org_id"`
	SessionID string    `json:"session_id"`
	StudentID string    `json:"student_id"`
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarkDraft is the locally held, not-yet-committed mark for one student row.
type MarkDraft struct {
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
	Note      string `json:"note"`
}

// Marked reports whether the row has been given a status yet; unmarked rows
// are skipped by the commit filter, not errored.
func (d MarkDraft) Marked() bool {
	return d.Status != ""
}

func markDraft(r Record) MarkDraft {
	return MarkDraft{StudentID: r.StudentID, Status: r.Status, Note: r.Note}
}

func recordFromDraft(actor core.Actor, sessionID string, d MarkDraft, now time.Time) Record {
	return Record{
		OrgID:     actor.OrgID,
		SessionID: sessionID,
		StudentID: d.StudentID,
		Status:    d.Status,
		Note:      d.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewSession contains information needed to create a new Session.
type NewSession struct {
	ClassID     string    `json:"class_id" validate:"required"`
	SessionDate time.Time `json:"session_date" validate:"required"`
	Notes       string    `json:"notes"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Notes = core.CleanString(ns.Notes)
	return validate.Struct(ns)
}

type QueryFilter struct {
	ClassID string
	From    time.Time
	To      time.Time
}

// RateSummary is the derived attendance view of a session; recomputed from
// the full record set on every call, never persisted.
type RateSummary struct {
	Marked   int `json:"marked"`
	Unmarked int `json:"unmarked"`
	Present  int `json:"present"`
	Late     int `json:"late"`
	Absent   int `json:"absent"`
	Excused  int `json:"excused"`
	// Rate is (present + late) / marked as a whole percentage.
	Rate int `json:"rate"`
}
