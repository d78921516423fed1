package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) CreateSession(ctx context.Context, sess attendance.Session) (attendance.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sess.ID = uuid.New().String()
	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *attendanceRepository) GetSession(ctx context.Context, orgID, id string) (attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sess, ok := repo.db.sessions[id]; ok && sess.OrgID == orgID {
		return *sess, nil
	}
	return attendance.Session{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) FilterSessions(ctx context.Context, orgID string, filter attendance.QueryFilter, ordering []core.DBOrdering) ([]attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var sessions []attendance.Session
	for _, sess := range repo.db.sessions {
		if sess.OrgID != orgID {
			continue
		}
		if filter.ClassID != "" && sess.ClassID != filter.ClassID {
			continue
		}
		if !filter.From.IsZero() && sess.SessionDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && sess.SessionDate.After(filter.To) {
			continue
		}
		sessions = append(sessions, *sess)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

func (repo *attendanceRepository) DeleteSession(ctx context.Context, orgID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if sess, ok := repo.db.sessions[id]; ok && sess.OrgID == orgID {
		delete(repo.db.sessions, id)
		delete(repo.db.records, id)
	}
	return nil
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, orgID, sessionID string) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var records []attendance.Record
	for _, r := range repo.db.records[sessionID] {
		if r.OrgID == orgID {
			records = append(records, *r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].StudentID < records[j].StudentID })
	return records, nil
}

func (repo *attendanceRepository) UpsertRecords(ctx context.Context, records []attendance.Record) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i := range records {
		r := records[i]
		byStudent, ok := repo.db.records[r.SessionID]
		if !ok {
			byStudent = make(map[string]*attendance.Record)
			repo.db.records[r.SessionID] = byStudent
		}
		if existing, ok := byStudent[r.StudentID]; ok {
			r.CreatedAt = existing.CreatedAt
		}
		byStudent[r.StudentID] = &r
	}
	return len(records), nil
}
