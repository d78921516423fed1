package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/class"
)

type classRow struct {
	ID        string      `db:"id"`
	OrgID     string      `db:"org_id"`
	Name      string      `db:"name"`
	Subject   null.String `db:"subject"`
	Capacity  null.Int    `db:"capacity"`
	Schedule  null.String `db:"schedule"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
	DeletedAt null.Time   `db:"deleted_at"`
}

func (r classRow) toClass() class.Class {
	return class.Class{
		ID:        r.ID,
		OrgID:     r.OrgID,
		Name:      r.Name,
		Subject:   r.Subject.String,
		Capacity:  r.Capacity.Int,
		Schedule:  r.Schedule.String,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func classRowFrom(cl class.Class) classRow {
	return classRow{
		ID:        cl.ID,
		OrgID:     cl.OrgID,
		Name:      cl.Name,
		Subject:   null.NewString(cl.Subject, cl.Subject != ""),
		Capacity:  null.NewInt(cl.Capacity, cl.Capacity > 0),
		Schedule:  null.NewString(cl.Schedule, cl.Schedule != ""),
		CreatedAt: null.NewTime(cl.CreatedAt.UTC(), !cl.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(cl.UpdatedAt.UTC(), !cl.UpdatedAt.IsZero()),
	}
}

type enrollmentRow struct {
	OrgID      string    `db:"org_id"`
	ClassID    string    `db:"class_id"`
	StudentID  string    `db:"student_id"`
	EnrolledAt null.Time `db:"enrolled_at"`
}

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{db: db}
}

func (repo classRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return class.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo classRepository) CreateClass(ctx context.Context, cl class.Class) (class.Class, error) {
	cl.ID = uuid.New().String()
	row := classRowFrom(cl)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO class (id, org_id, name, subject, capacity, schedule, created_at, updated_at)
		VALUES (:id, :org_id, :name, :subject, :capacity, :schedule, :created_at, :updated_at)`,
		row)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return cl, nil
}

func (repo classRepository) GetClass(ctx context.Context, orgID, id string) (class.Class, error) {
	if _, err := uuid.Parse(id); err != nil {
		return class.Class{}, class.ErrNotFound
	}
	var row classRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM class WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL`, orgID, id)
	if err != nil {
		return class.Class{}, repo.trapNoRowsErr(err, "finding class")
	}
	return row.toClass(), nil
}

func (repo classRepository) FilterClasses(ctx context.Context, orgID string, filter class.QueryFilter, ordering []core.DBOrdering) ([]class.Class, error) {
	q := `SELECT * FROM class WHERE org_id = $1 AND deleted_at IS NULL`
	args := []interface{}{orgID}

	if filter.Search != "" {
		p := placeholderAt(len(args) + 1)
		q += ` AND (name ILIKE ` + p + ` OR subject ILIKE ` + p + `)`
		args = append(args, like(filter.Search))
	}
	if filter.Subject != "" {
		q += ` AND subject = ` + placeholderAt(len(args)+1)
		args = append(args, filter.Subject)
	}
	q += orderClause(ordering)

	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]class.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.toClass())
	}
	return classes, nil
}

func (repo classRepository) UpdateClass(ctx context.Context, cl class.Class) (class.Class, error) {
	row := classRowFrom(cl)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE class SET
			name = :name, subject = :subject, capacity = :capacity, schedule = :schedule, updated_at = :updated_at
		WHERE org_id = :org_id AND id = :id AND deleted_at IS NULL`,
		row)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return cl, nil
}

func (repo classRepository) DeleteClass(ctx context.Context, orgID, id string) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE class SET deleted_at = $1 WHERE org_id = $2 AND id = $3 AND deleted_at IS NULL`,
		time.Now().UTC(), orgID, id)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return nil
}

func (repo classRepository) CreateEnrollment(ctx context.Context, e class.Enrollment) (class.Enrollment, error) {
	row := enrollmentRow{
		OrgID:      e.OrgID,
		ClassID:    e.ClassID,
		StudentID:  e.StudentID,
		EnrolledAt: null.NewTime(e.EnrolledAt.UTC(), !e.EnrolledAt.IsZero()),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO enrollment (org_id, class_id, student_id, enrolled_at)
		VALUES (:org_id, :class_id, :student_id, :enrolled_at)`,
		row)
	if err != nil {
		return class.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return e, nil
}

func (repo classRepository) QueryRoster(ctx context.Context, orgID, classID string) ([]class.Enrollment, error) {
	var rows []enrollmentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM enrollment WHERE org_id = $1 AND class_id = $2 ORDER BY enrolled_at`,
		orgID, classID)
	if err != nil {
		return nil, errors.Wrap(err, "querying roster")
	}
	roster := make([]class.Enrollment, 0, len(rows))
	for _, r := range rows {
		roster = append(roster, class.Enrollment{
			OrgID:      r.OrgID,
			ClassID:    r.ClassID,
			StudentID:  r.StudentID,
			EnrolledAt: r.EnrolledAt.Time,
		})
	}
	return roster, nil
}

func (repo classRepository) DeleteEnrollment(ctx context.Context, orgID, classID, studentID string) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM enrollment WHERE org_id = $1 AND class_id = $2 AND student_id = $3`,
		orgID, classID, studentID)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return nil
}
