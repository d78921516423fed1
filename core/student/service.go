package student

import (
	"context"
	"errors"
	"time"

	"github.com/AcaDesk/acadesk-server/core"
)

var (
	// errors
	ErrNotFound         = errors.New("student not found")
	ErrGuardianNotFound = errors.New("guardian not found")
	ErrCodeExists       = errors.New("a student with this code already exists")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, orgID, code string, excludedIDs ...string) error
		CreateStudent(ctx context.Context, st Student) (Student, error)
		GetStudent(ctx context.Context, orgID, id string) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		FilterStudents(ctx context.Context, orgID string, filter QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		DeleteStudent(ctx context.Context, orgID, id string) error

		CreateGuardian(ctx context.Context, g Guardian) (Guardian, error)
		QueryGuardians(ctx context.Context, orgID, studentID string) ([]Guardian, error)
		DeleteGuardian(ctx context.Context, orgID, id string) error
	}

	Service struct {
		repo Repository
		log  core.Logger
	}
)

func NewService(repo Repository, log core.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (svc *Service) checkCodeUniqueness(ctx context.Context, orgID, code string, exclIDs ...string) error {
	if code == "" {
		return nil
	}
	if err := svc.repo.CheckCodeUniqueness(ctx, orgID, code, exclIDs...); err != nil {
		if err == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, actor core.Actor, ns NewStudent) (Student, error) {
	if !actor.Valid() {
		return Student{}, core.ErrMissingActor
	}
	if err := svc.checkCodeUniqueness(ctx, actor.OrgID, ns.Code); err != nil {
		return Student{}, err
	}
	now := time.Now().UTC()
	st := Student{
		OrgID:      actor.OrgID,
		Code:       ns.Code,
		Name:       ns.Name,
		GradeLevel: ns.GradeLevel,
		School:     ns.School,
		Phone:      ns.Phone,
		Email:      ns.Email,
		Status:     StatusActive,
		Notes:      ns.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateStudent(ctx, st)
}

func (svc *Service) Get(ctx context.Context, actor core.Actor, id string) (Student, error) {
	if !actor.Valid() {
		return Student{}, core.ErrMissingActor
	}
	return svc.repo.GetStudent(ctx, actor.OrgID, id)
}

func (svc *Service) Filter(ctx context.Context, actor core.Actor, filter QueryFilter, ordering ...core.DBOrdering) ([]Student, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	return svc.repo.FilterStudents(ctx, actor.OrgID, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, actor core.Actor, id string, us UpdateStudent) (Student, error) {
	if !actor.Valid() {
		return Student{}, core.ErrMissingActor
	}
	st, err := svc.repo.GetStudent(ctx, actor.OrgID, id)
	if err != nil {
		return Student{}, err
	}
	if us.Name != "" {
		st.Name = us.Name
	}
	if us.GradeLevel != "" {
		st.GradeLevel = us.GradeLevel
	}
	if us.School != "" {
		st.School = us.School
	}
	if us.Phone != "" {
		st.Phone = us.Phone
	}
	if us.Email != "" {
		st.Email = us.Email
	}
	if us.Status != "" {
		if !ValidStatus(us.Status) {
			return Student{}, core.NewValidationError(nil, core.FieldError{Field: "status", Error: "unknown enrollment status"})
		}
		st.Status = us.Status
	}
	if us.Notes != "" {
		st.Notes = us.Notes
	}
	st.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, st)
}

func (svc *Service) Delete(ctx context.Context, actor core.Actor, id string) error {
	if !actor.Valid() {
		return core.ErrMissingActor
	}
	return svc.repo.DeleteStudent(ctx, actor.OrgID, id)
}

func (svc *Service) AddGuardian(ctx context.Context, actor core.Actor, ng NewGuardian) (Guardian, error) {
	if !actor.Valid() {
		return Guardian{}, core.ErrMissingActor
	}
	// the student must exist within the actor's org
	if _, err := svc.repo.GetStudent(ctx, actor.OrgID, ng.StudentID); err != nil {
		return Guardian{}, err
	}
	now := time.Now().UTC()
	g := Guardian{
		OrgID:        actor.OrgID,
		StudentID:    ng.StudentID,
		Name:         ng.Name,
		Relationship: ng.Relationship,
		Phone:        ng.Phone,
		Email:        ng.Email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateGuardian(ctx, g)
}

func (svc *Service) Guardians(ctx context.Context, actor core.Actor, studentID string) ([]Guardian, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	return svc.repo.QueryGuardians(ctx, actor.OrgID, studentID)
}

func (svc *Service) RemoveGuardian(ctx context.Context, actor core.Actor, id string) error {
	if !actor.Valid() {
		return core.ErrMissingActor
	}
	return svc.repo.DeleteGuardian(ctx, actor.OrgID, id)
}
