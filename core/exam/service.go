package exam

import (
	"context"
	"errors"
	"time"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/entry"
)

var (
	// errors
	ErrNotFound = errors.New("exam not found")
)

type (
	Repository interface {
		CreateExam(ctx context.Context, ex Exam) (Exam, error)
		GetExam(ctx context.Context, orgID, id string) (Exam, error)
		// FilterExams applies AND operation on available QueryFilter fields.
		FilterExams(ctx context.Context, orgID string, filter QueryFilter, ordering []core.DBOrdering) ([]Exam, error)
		UpdateExam(ctx context.Context, ex Exam) (Exam, error)
		DeleteExam(ctx context.Context, orgID, id string) error

		QueryStudentScores(ctx context.Context, orgID, examID string) ([]StudentScore, error)
		// UpsertStudentScores commits the batch in one statement with
		// insert-or-update-on-conflict semantics on (exam_id, student_id).
		UpsertStudentScores(ctx context.Context, scores []StudentScore) (int, error)
	}

	Service struct {
		repo Repository
		log  core.Logger
	}
)

func NewService(repo Repository, log core.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SaveResult reports a batch commit: rows written vs rows skipped by the
// completeness filter.
type SaveResult struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
}

func (svc *Service) Create(ctx context.Context, actor core.Actor, ne NewExam) (Exam, error) {
	if !actor.Valid() {
		return Exam{}, core.ErrMissingActor
	}
	now := time.Now().UTC()
	ex := Exam{
		OrgID:          actor.OrgID,
		ClassID:        ne.ClassID,
		Name:           ne.Name,
		ExamDate:       ne.ExamDate,
		TotalQuestions: ne.TotalQuestions,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateExam(ctx, ex)
}

func (svc *Service) Get(ctx context.Context, actor core.Actor, id string) (Exam, error) {
	if !actor.Valid() {
		return Exam{}, core.ErrMissingActor
	}
	return svc.repo.GetExam(ctx, actor.OrgID, id)
}

func (svc *Service) Filter(ctx context.Context, actor core.Actor, filter QueryFilter, ordering ...core.DBOrdering) ([]Exam, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	return svc.repo.FilterExams(ctx, actor.OrgID, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, actor core.Actor, id string, ue UpdateExam) (Exam, error) {
	if !actor.Valid() {
		return Exam{}, core.ErrMissingActor
	}
	ex, err := svc.repo.GetExam(ctx, actor.OrgID, id)
	if err != nil {
		return Exam{}, err
	}
	if ue.Name != "" {
		ex.Name = ue.Name
	}
	if !ue.ExamDate.IsZero() {
		ex.ExamDate = ue.ExamDate
	}
	if ue.TotalQuestions > 0 {
		ex.TotalQuestions = ue.TotalQuestions
	}
	ex.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateExam(ctx, ex)
}

func (svc *Service) Delete(ctx context.Context, actor core.Actor, id string) error {
	if !actor.Valid() {
		return core.ErrMissingActor
	}
	return svc.repo.DeleteExam(ctx, actor.OrgID, id)
}

// Scores returns the committed snapshot for an exam.
func (svc *Service) Scores(ctx context.Context, actor core.Actor, examID string) ([]StudentScore, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	return svc.repo.QueryStudentScores(ctx, actor.OrgID, examID)
}

// SeedDrafts builds the grade-entry draft set for an exam roster: each
// student gets their committed row if one exists, else an empty draft
// defaulting to the exam's question count.
func (svc *Service) SeedDrafts(ctx context.Context, actor core.Actor, ex Exam, rosterIDs []string) (entry.DraftSet, error) {
	if !actor.Valid() {
		return entry.DraftSet{}, core.ErrMissingActor
	}
	scores, err := svc.repo.QueryStudentScores(ctx, actor.OrgID, ex.ID)
	if err != nil {
		return entry.DraftSet{}, err
	}
	existing := make([]entry.ScoreDraft, 0, len(scores))
	for _, s := range scores {
		existing = append(existing, scoreDraft(s))
	}
	return entry.SeedScoreDrafts(rosterIDs, existing, ex.TotalQuestions), nil
}

// SaveScores commits a draft set as one batch upsert. Rows failing the
// completeness predicate are skipped silently; the rest are written in a
// single conflict-tolerant statement. On error the caller's drafts are
// untouched and a retry sends the same rows.
func (svc *Service) SaveScores(ctx context.Context, actor core.Actor, examID string, set entry.DraftSet) (SaveResult, error) {
	if !actor.Valid() {
		return SaveResult{}, core.ErrMissingActor
	}

	complete := set.CompleteDrafts()
	result := SaveResult{Skipped: set.Len() - len(complete)}
	if len(complete) == 0 {
		return result, nil
	}

	now := time.Now().UTC()
	scores := make([]StudentScore, 0, len(complete))
	for _, d := range complete {
		scores = append(scores, scoreFromDraft(actor, examID, d, now))
	}

	saved, err := svc.repo.UpsertStudentScores(ctx, scores)
	if err != nil {
		return SaveResult{}, err
	}
	result.Saved = saved
	return result, nil
}

// Summary recomputes the exam's KPI view from the committed scores.
func (svc *Service) Summary(ctx context.Context, actor core.Actor, examID string, opts ...entry.SummaryOpts) (entry.Summary, error) {
	if !actor.Valid() {
		return entry.Summary{}, core.ErrMissingActor
	}
	scores, err := svc.repo.QueryStudentScores(ctx, actor.OrgID, examID)
	if err != nil {
		return entry.Summary{}, err
	}
	drafts := make([]entry.ScoreDraft, 0, len(scores))
	for _, s := range scores {
		drafts = append(drafts, scoreDraft(s))
	}
	return entry.Summarize(drafts, opts...), nil
}
