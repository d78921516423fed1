package exam

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/entry"
)

type Exam struct {
	ID             string    `json:"id"`
	OrgID          string    `json:"org_id"`
	ClassID        string    `json:"class_id"`
	Name           string    `json:"name"`
	ExamDate       time.Time `json:"exam_date"`
	TotalQuestions int       `json:"total_questions"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

// StudentScore is the committed shape of one graded row. Its natural key is
// (exam_id, student_id): repeated commits overwrite, never duplicate.
type StudentScore struct {
	OrgID     string    `json:"org_id"`
	ExamID    string    `json:"exam_id"`
	StudentID string    `json:"student_id"`
	Correct   int       `json:"correct"`
	Total     int       `json:"total"`
	Percent   int       `json:"percent"`
	RawText   string    `json:"raw_text"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// scoreDraft maps a committed row to its draft shape; the inverse lives in
// scoreFromDraft. Remote-schema drift is caught here, not in UI code.
func scoreDraft(s StudentScore) entry.ScoreDraft {
	correct := s.Correct
	return entry.ScoreDraft{
		StudentID: s.StudentID,
		RawText:   s.RawText,
		Correct:   &correct,
		Total:     s.Total,
		Percent:   s.Percent,
		Feedback:  s.Feedback,
	}
}

func scoreFromDraft(actor core.Actor, examID string, d entry.ScoreDraft, now time.Time) StudentScore {
	var correct int
	if d.Correct != nil {
		correct = *d.Correct
	}
	return StudentScore{
		OrgID:     actor.OrgID,
		ExamID:    examID,
		StudentID: d.StudentID,
		Correct:   correct,
		Total:     d.Total,
		Percent:   entry.Percent(correct, d.Total),
		RawText:   d.RawText,
		Feedback:  d.Feedback,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewExam contains information needed to create a new Exam.
type NewExam struct {
	ClassID        string    `json:"class_id" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	ExamDate       time.Time `json:"exam_date" validate:"required"`
	TotalQuestions int       `json:"total_questions" validate:"required,gt=0"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	return validate.Struct(ne)
}

// UpdateExam defines what information may be provided to modify an existing Exam.
type UpdateExam struct {
	Name           string    `json:"name"`
	ExamDate       time.Time `json:"exam_date"`
	TotalQuestions int       `json:"total_questions" validate:"omitempty,gt=0"`
}

func (ue *UpdateExam) Validate(validate *validator.Validate) error {
	ue.Name = core.CleanString(ue.Name)
	return validate.Struct(ue)
}

type QueryFilter struct {
	ClassID string
	From    time.Time
	To      time.Time
}
