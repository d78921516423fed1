package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/entry"
)

var (
	// errors
	ErrNotFound      = errors.New("attendance session not found")
	ErrInvalidStatus = errors.New("invalid attendance status")
)

type (
	Repository interface {
		CreateSession(ctx context.Context, sess Session) (Session, error)
		GetSession(ctx context.Context, orgID, id string) (Session, error)
		FilterSessions(ctx context.Context, orgID string, filter QueryFilter, ordering []core.DBOrdering) ([]Session, error)
		DeleteSession(ctx context.Context, orgID, id string) error

		QueryRecords(ctx context.Context, orgID, sessionID string) ([]Record, error)
		// UpsertRecords commits the batch in one statement with
		// insert-or-update-on-conflict semantics on (session_id, student_id).
		UpsertRecords(ctx context.Context, records []Record) (int, error)
	}

	Service struct {
		repo Repository
		log  core.Logger
	}
)

func NewService(repo Repository, log core.Logger) *Service {
	return &Service{repo: repo, log: log}
}

type SaveResult struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
}

func (svc *Service) CreateSession(ctx context.Context, actor core.Actor, ns NewSession) (Session, error) {
	if !actor.Valid() {
		return Session{}, core.ErrMissingActor
	}
	now := time.Now().UTC()
	sess := Session{
		OrgID:       actor.OrgID,
		ClassID:     ns.ClassID,
		SessionDate: ns.SessionDate,
		Notes:       ns.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateSession(ctx, sess)
}

func (svc *Service) GetSession(ctx context.Context, actor core.Actor, id string) (Session, error) {
	if !actor.Valid() {
		return Session{}, core.ErrMissingActor
	}
	return svc.repo.GetSession(ctx, actor.OrgID, id)
}

func (svc *Service) FilterSessions(ctx context.Context, actor core.Actor, filter QueryFilter, ordering ...core.DBOrdering) ([]Session, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	return svc.repo.FilterSessions(ctx, actor.OrgID, filter, ordering)
}

func (svc *Service) DeleteSession(ctx context.Context, actor core.Actor, id string) error {
	if !actor.Valid() {
		return core.ErrMissingActor
	}
	return svc.repo.DeleteSession(ctx, actor.OrgID, id)
}

// Records returns the committed snapshot for a session.
func (svc *Service) Records(ctx context.Context, actor core.Actor, sessionID string) ([]Record, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	return svc.repo.QueryRecords(ctx, actor.OrgID, sessionID)
}

// SaveMarks commits a sheet's marks as one batch upsert; unmarked rows are
// skipped silently.
func (svc *Service) SaveMarks(ctx context.Context, actor core.Actor, sessionID string, marks []MarkDraft) (SaveResult, error) {
	if !actor.Valid() {
		return SaveResult{}, core.ErrMissingActor
	}

	now := time.Now().UTC()
	records := make([]Record, 0, len(marks))
	var skipped int
	for _, m := range marks {
		if !m.Marked() {
			skipped++
			continue
		}
		if !ValidStatus(m.Status) {
			return SaveResult{}, ErrInvalidStatus
		}
		records = append(records, recordFromDraft(actor, sessionID, m, now))
	}

	result := SaveResult{Skipped: skipped}
	if len(records) == 0 {
		return result, nil
	}

	saved, err := svc.repo.UpsertRecords(ctx, records)
	if err != nil {
		return SaveResult{}, err
	}
	result.Saved = saved
	return result, nil
}

// Summary recomputes the session's attendance rates from the committed records.
func (svc *Service) Summary(ctx context.Context, actor core.Actor, sessionID string, rosterSize int) (RateSummary, error) {
	if !actor.Valid() {
		return RateSummary{}, core.ErrMissingActor
	}
	records, err := svc.repo.QueryRecords(ctx, actor.OrgID, sessionID)
	if err != nil {
		return RateSummary{}, err
	}
	marks := make([]MarkDraft, 0, len(records))
	for _, r := range records {
		marks = append(marks, markDraft(r))
	}
	return SummarizeMarks(marks, rosterSize), nil
}

// SummarizeMarks derives the session rate view from a set of marks. The
// rate counts late arrivals as attended; rosterSize bounds the unmarked
// count when the sheet has fewer rows than the roster.
func SummarizeMarks(marks []MarkDraft, rosterSize int) RateSummary {
	var sum RateSummary
	for _, m := range marks {
		switch m.Status {
		case StatusPresent:
			sum.Present++
		case StatusLate:
			sum.Late++
		case StatusAbsent:
			sum.Absent++
		case StatusExcused:
			sum.Excused++
		default:
			continue
		}
		sum.Marked++
	}

	sum.Unmarked = rosterSize - sum.Marked
	if sum.Unmarked < 0 {
		sum.Unmarked = 0
	}
	sum.Rate = entry.Percent(sum.Present+sum.Late, sum.Marked)
	return sum
}
