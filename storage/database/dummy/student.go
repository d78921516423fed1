package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) CheckCodeUniqueness(ctx context.Context, orgID, code string, excludedIDs ...string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, st := range repo.db.students {
		if st.OrgID != orgID || st.Code != code {
			continue
		}
		var excluded bool
		for _, id := range excludedIDs {
			if st.ID == id {
				excluded = true
				break
			}
		}
		if !excluded {
			return student.ErrCodeExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	st.ID = uuid.New().String()
	repo.db.students[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, orgID, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if st, ok := repo.db.students[id]; ok && st.OrgID == orgID {
		return *st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(ctx context.Context, orgID string, filter student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var students []student.Student
	for _, st := range repo.db.students {
		if st.OrgID != orgID {
			continue
		}
		if filter.Search != "" {
			kw := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(st.Name), kw) &&
				!strings.Contains(strings.ToLower(st.Code), kw) &&
				!strings.Contains(strings.ToLower(st.School), kw) {
				continue
			}
		}
		if filter.Status != "" && st.Status != filter.Status {
			continue
		}
		if filter.GradeLevel != "" && st.GradeLevel != filter.GradeLevel {
			continue
		}
		students = append(students, *st)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.students[st.ID]; ok && orig.OrgID == st.OrgID {
		repo.db.students[st.ID] = &st
		return st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, orgID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if st, ok := repo.db.students[id]; ok && st.OrgID == orgID {
		delete(repo.db.students, id)
	}
	return nil
}

func (repo *studentRepository) CreateGuardian(ctx context.Context, g student.Guardian) (student.Guardian, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	g.ID = uuid.New().String()
	repo.db.guardians[g.ID] = &g
	return g, nil
}

func (repo *studentRepository) QueryGuardians(ctx context.Context, orgID, studentID string) ([]student.Guardian, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var guardians []student.Guardian
	for _, g := range repo.db.guardians {
		if g.OrgID == orgID && g.StudentID == studentID {
			guardians = append(guardians, *g)
		}
	}
	sort.Slice(guardians, func(i, j int) bool { return guardians[i].ID < guardians[j].ID })
	return guardians, nil
}

func (repo *studentRepository) DeleteGuardian(ctx context.Context, orgID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if g, ok := repo.db.guardians[id]; ok && g.OrgID == orgID {
		delete(repo.db.guardians, id)
		return nil
	}
	return student.ErrGuardianNotFound
}
