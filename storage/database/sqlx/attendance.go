package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/strmangle"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/attendance"
)

type sessionRow struct {
	ID          string      `db:"id"`
	OrgID       string      `db:"org_id"`
	ClassID     string      `db:"class_id"`
	SessionDate null.Time   `db:"session_date"`
	Notes       null.String `db:"notes"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
	DeletedAt   null.Time   `db:"deleted_at"`
}

func (r sessionRow) toSession() attendance.Session {
	return attendance.Session{
		ID:          r.ID,
		OrgID:       r.OrgID,
		ClassID:     r.ClassID,
		SessionDate: r.SessionDate.Time,
		Notes:       r.Notes.String,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

type recordRow struct {
	OrgID     string      `db:"org_id"`
	SessionID string      `db:"session_id"`
	StudentID string      `db:"student_id"`
	Status    string      `db:"status"`
	Note      null.String `db:"note"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (r recordRow) toRecord() attendance.Record {
	return attendance.Record{
		OrgID:     r.OrgID,
		SessionID: r.SessionID,
		StudentID: r.StudentID,
		Status:    r.Status,
		Note:      r.Note.String,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return attendance.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo attendanceRepository) CreateSession(ctx context.Context, sess attendance.Session) (attendance.Session, error) {
	sess.ID = uuid.New().String()
	row := sessionRow{
		ID:          sess.ID,
		OrgID:       sess.OrgID,
		ClassID:     sess.ClassID,
		SessionDate: null.NewTime(sess.SessionDate.UTC(), !sess.SessionDate.IsZero()),
		Notes:       null.NewString(sess.Notes, sess.Notes != ""),
		CreatedAt:   null.NewTime(sess.CreatedAt.UTC(), !sess.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(sess.UpdatedAt.UTC(), !sess.UpdatedAt.IsZero()),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO attendance_session (id, org_id, class_id, session_date, notes, created_at, updated_at)
		VALUES (:id, :org_id, :class_id, :session_date, :notes, :created_at, :updated_at)`,
		row)
	if err != nil {
		return attendance.Session{}, errors.Wrap(err, "inserting attendance session")
	}
	return sess, nil
}

func (repo attendanceRepository) GetSession(ctx context.Context, orgID, id string) (attendance.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.Session{}, attendance.ErrNotFound
	}
	var row sessionRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM attendance_session WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL`, orgID, id)
	if err != nil {
		return attendance.Session{}, repo.trapNoRowsErr(err, "finding attendance session")
	}
	return row.toSession(), nil
}

func (repo attendanceRepository) FilterSessions(ctx context.Context, orgID string, filter attendance.QueryFilter, ordering []core.DBOrdering) ([]attendance.Session, error) {
	q := `SELECT * FROM attendance_session WHERE org_id = $1 AND deleted_at IS NULL`
	args := []interface{}{orgID}

	if filter.ClassID != "" {
		q += ` AND class_id = ` + placeholderAt(len(args)+1)
		args = append(args, filter.ClassID)
	}
	if !filter.From.IsZero() {
		q += ` AND session_date >= ` + placeholderAt(len(args)+1)
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		q += ` AND session_date <= ` + placeholderAt(len(args)+1)
		args = append(args, filter.To.UTC())
	}
	q += orderClause(ordering)

	var rows []sessionRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance sessions")
	}
	sessions := make([]attendance.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.toSession())
	}
	return sessions, nil
}

func (repo attendanceRepository) DeleteSession(ctx context.Context, orgID, id string) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE attendance_session SET deleted_at = $1 WHERE org_id = $2 AND id = $3 AND deleted_at IS NULL`,
		time.Now().UTC(), orgID, id)
	if err != nil {
		return errors.Wrap(err, "deleting attendance session")
	}
	return nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, orgID, sessionID string) ([]attendance.Record, error) {
	var rows []recordRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM attendance_record WHERE org_id = $1 AND session_id = $2 ORDER BY student_id`,
		orgID, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toRecord())
	}
	return records, nil
}

// recordCols is the column count of one attendance_record VALUES group.
const recordCols = 7

func (repo attendanceRepository) UpsertRecords(ctx context.Context, records []attendance.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	q := `
		INSERT INTO attendance_record (org_id, session_id, student_id, status, note, created_at, updated_at)
		VALUES ` + strmangle.Placeholders(true, len(records)*recordCols, 1, recordCols) + `
		ON CONFLICT (session_id, student_id) DO UPDATE SET
			status = EXCLUDED.status, note = EXCLUDED.note, updated_at = EXCLUDED.updated_at`

	args := make([]interface{}, 0, len(records)*recordCols)
	for _, r := range records {
		args = append(args,
			r.OrgID, r.SessionID, r.StudentID, r.Status,
			null.NewString(r.Note, r.Note != ""),
			r.CreatedAt.UTC(), r.UpdatedAt.UTC())
	}

	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "upserting attendance records")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "upserting attendance records")
	}
	return int(n), nil
}
