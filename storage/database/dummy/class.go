package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/class"
)

type classRepository struct {
	db *classTable
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db.class}
}

func (repo *classRepository) CreateClass(ctx context.Context, cl class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cl.ID = uuid.New().String()
	repo.db.classes[cl.ID] = &cl
	return cl, nil
}

func (repo *classRepository) GetClass(ctx context.Context, orgID, id string) (class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cl, ok := repo.db.classes[id]; ok && cl.OrgID == orgID {
		return *cl, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) FilterClasses(ctx context.Context, orgID string, filter class.QueryFilter, ordering []core.DBOrdering) ([]class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var classes []class.Class
	for _, cl := range repo.db.classes {
		if cl.OrgID != orgID {
			continue
		}
		if filter.Search != "" {
			kw := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(cl.Name), kw) &&
				!strings.Contains(strings.ToLower(cl.Subject), kw) {
				continue
			}
		}
		if filter.Subject != "" && cl.Subject != filter.Subject {
			continue
		}
		classes = append(classes, *cl)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, cl class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.classes[cl.ID]; ok && orig.OrgID == cl.OrgID {
		repo.db.classes[cl.ID] = &cl
		return cl, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) DeleteClass(ctx context.Context, orgID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if cl, ok := repo.db.classes[id]; ok && cl.OrgID == orgID {
		delete(repo.db.classes, id)
	}
	return nil
}

func (repo *classRepository) CreateEnrollment(ctx context.Context, e class.Enrollment) (class.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.enrollments = append(repo.db.enrollments, e)
	return e, nil
}

func (repo *classRepository) QueryRoster(ctx context.Context, orgID, classID string) ([]class.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var roster []class.Enrollment
	for _, e := range repo.db.enrollments {
		if e.OrgID == orgID && e.ClassID == classID {
			roster = append(roster, e)
		}
	}
	return roster, nil
}

func (repo *classRepository) DeleteEnrollment(ctx context.Context, orgID, classID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, e := range repo.db.enrollments {
		if e.OrgID == orgID && e.ClassID == classID && e.StudentID == studentID {
			repo.db.enrollments = append(repo.db.enrollments[:i], repo.db.enrollments[i+1:]...)
			return nil
		}
	}
	return nil
}
