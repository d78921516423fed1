package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/exam"
)

type examRepository struct {
	db *examTable
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) exam.Repository {
	return &examRepository{db: db.exam}
}

func (repo *examRepository) CreateExam(ctx context.Context, ex exam.Exam) (exam.Exam, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ex.ID = uuid.New().String()
	repo.db.exams[ex.ID] = &ex
	return ex, nil
}

func (repo *examRepository) GetExam(ctx context.Context, orgID, id string) (exam.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ex, ok := repo.db.exams[id]; ok && ex.OrgID == orgID {
		return *ex, nil
	}
	return exam.Exam{}, exam.ErrNotFound
}

func (repo *examRepository) FilterExams(ctx context.Context, orgID string, filter exam.QueryFilter, ordering []core.DBOrdering) ([]exam.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var exams []exam.Exam
	for _, ex := range repo.db.exams {
		if ex.OrgID != orgID {
			continue
		}
		if filter.ClassID != "" && ex.ClassID != filter.ClassID {
			continue
		}
		if !filter.From.IsZero() && ex.ExamDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && ex.ExamDate.After(filter.To) {
			continue
		}
		exams = append(exams, *ex)
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].ID < exams[j].ID })
	return exams, nil
}

func (repo *examRepository) UpdateExam(ctx context.Context, ex exam.Exam) (exam.Exam, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.exams[ex.ID]; ok && orig.OrgID == ex.OrgID {
		repo.db.exams[ex.ID] = &ex
		return ex, nil
	}
	return exam.Exam{}, exam.ErrNotFound
}

func (repo *examRepository) DeleteExam(ctx context.Context, orgID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if ex, ok := repo.db.exams[id]; ok && ex.OrgID == orgID {
		delete(repo.db.exams, id)
		delete(repo.db.scores, id)
	}
	return nil
}

func (repo *examRepository) QueryStudentScores(ctx context.Context, orgID, examID string) ([]exam.StudentScore, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var scores []exam.StudentScore
	for _, s := range repo.db.scores[examID] {
		if s.OrgID == orgID {
			scores = append(scores, *s)
		}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].StudentID < scores[j].StudentID })
	return scores, nil
}

func (repo *examRepository) UpsertStudentScores(ctx context.Context, scores []exam.StudentScore) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i := range scores {
		s := scores[i]
		byStudent, ok := repo.db.scores[s.ExamID]
		if !ok {
			byStudent = make(map[string]*exam.StudentScore)
			repo.db.scores[s.ExamID] = byStudent
		}
		if existing, ok := byStudent[s.StudentID]; ok {
			s.CreatedAt = existing.CreatedAt
		}
		byStudent[s.StudentID] = &s
	}
	return len(scores), nil
}
