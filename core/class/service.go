package class

import (
	"context"
	"errors"
	"time"

	"github.com/AcaDesk/acadesk-server/core"
)

var (
	// errors
	ErrNotFound        = errors.New("class not found")
	ErrAlreadyEnrolled = errors.New("student already enrolled in this class")
	ErrClassFull       = errors.New("class is at capacity")
)

type (
	Repository interface {
		CreateClass(ctx context.Context, cl Class) (Class, error)
		GetClass(ctx context.Context, orgID, id string) (Class, error)
		FilterClasses(ctx context.Context, orgID string, filter QueryFilter, ordering []core.DBOrdering) ([]Class, error)
		UpdateClass(ctx context.Context, cl Class) (Class, error)
		DeleteClass(ctx context.Context, orgID, id string) error

		CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		QueryRoster(ctx context.Context, orgID, classID string) ([]Enrollment, error)
		DeleteEnrollment(ctx context.Context, orgID, classID, studentID string) error
	}

	Service struct {
		repo Repository
		log  core.Logger
	}
)

func NewService(repo Repository, log core.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (svc *Service) Create(ctx context.Context, actor core.Actor, nc NewClass) (Class, error) {
	if !actor.Valid() {
		return Class{}, core.ErrMissingActor
	}
	now := time.Now().UTC()
	cl := Class{
		OrgID:     actor.OrgID,
		Name:      nc.Name,
		Subject:   nc.Subject,
		Capacity:  nc.Capacity,
		Schedule:  nc.Schedule,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateClass(ctx, cl)
}

func (svc *Service) Get(ctx context.Context, actor core.Actor, id string) (Class, error) {
	if !actor.Valid() {
		return Class{}, core.ErrMissingActor
	}
	return svc.repo.GetClass(ctx, actor.OrgID, id)
}

func (svc *Service) Filter(ctx context.Context, actor core.Actor, filter QueryFilter, ordering ...core.DBOrdering) ([]Class, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	return svc.repo.FilterClasses(ctx, actor.OrgID, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, actor core.Actor, id string, uc UpdateClass) (Class, error) {
	if !actor.Valid() {
		return Class{}, core.ErrMissingActor
	}
	cl, err := svc.repo.GetClass(ctx, actor.OrgID, id)
	if err != nil {
		return Class{}, err
	}
	if uc.Name != "" {
		cl.Name = uc.Name
	}
	if uc.Subject != "" {
		cl.Subject = uc.Subject
	}
	if uc.Capacity > 0 {
		cl.Capacity = uc.Capacity
	}
	if uc.Schedule != "" {
		cl.Schedule = uc.Schedule
	}
	cl.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, cl)
}

func (svc *Service) Delete(ctx context.Context, actor core.Actor, id string) error {
	if !actor.Valid() {
		return core.ErrMissingActor
	}
	return svc.repo.DeleteClass(ctx, actor.OrgID, id)
}

// Enroll adds a student to a class roster, guarding capacity and duplicates.
func (svc *Service) Enroll(ctx context.Context, actor core.Actor, classID, studentID string) (Enrollment, error) {
	if !actor.Valid() {
		return Enrollment{}, core.ErrMissingActor
	}
	cl, err := svc.repo.GetClass(ctx, actor.OrgID, classID)
	if err != nil {
		return Enrollment{}, err
	}
	roster, err := svc.repo.QueryRoster(ctx, actor.OrgID, classID)
	if err != nil {
		return Enrollment{}, err
	}
	for _, e := range roster {
		if e.StudentID == studentID {
			return Enrollment{}, core.NewValidationError(ErrAlreadyEnrolled,
				core.FieldError{Field: "student_id", Error: ErrAlreadyEnrolled.Error()})
		}
	}
	if cl.Capacity > 0 && len(roster) >= cl.Capacity {
		return Enrollment{}, core.NewValidationError(ErrClassFull,
			core.FieldError{Field: "class_id", Error: ErrClassFull.Error()})
	}

	e := Enrollment{
		OrgID:      actor.OrgID,
		ClassID:    classID,
		StudentID:  studentID,
		EnrolledAt: time.Now().UTC(),
	}
	return svc.repo.CreateEnrollment(ctx, e)
}

// Roster returns the class's enrollments.
func (svc *Service) Roster(ctx context.Context, actor core.Actor, classID string) ([]Enrollment, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	return svc.repo.QueryRoster(ctx, actor.OrgID, classID)
}

// RosterIDs returns the student ids enrolled in a class; the entry screens
// seed their draft sets from this.
func (svc *Service) RosterIDs(ctx context.Context, actor core.Actor, classID string) ([]string, error) {
	roster, err := svc.Roster(ctx, actor, classID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(roster))
	for _, e := range roster {
		ids = append(ids, e.StudentID)
	}
	return ids, nil
}

func (svc *Service) Unenroll(ctx context.Context, actor core.Actor, classID, studentID string) error {
	if !actor.Valid() {
		return core.ErrMissingActor
	}
	return svc.repo.DeleteEnrollment(ctx, actor.OrgID, classID, studentID)
}
