package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/student"
)

type studentRow struct {
	ID         string      `db:"id"`
	OrgID      string      `db:"org_id"`
	Code       null.String `db:"code"`
	Name       string      `db:"name"`
	GradeLevel null.String `db:"grade_level"`
	School     null.String `db:"school"`
	Phone      null.String `db:"phone"`
	Email      null.String `db:"email"`
	Status     string      `db:"status"`
	Notes      null.String `db:"notes"`
	CreatedAt  null.Time   `db:"created_at"`
	UpdatedAt  null.Time   `db:"updated_at"`
	DeletedAt  null.Time   `db:"deleted_at"`
}

func (r studentRow) toStudent() student.Student {
	return student.Student{
		ID:         r.ID,
		OrgID:      r.OrgID,
		Code:       r.Code.String,
		Name:       r.Name,
		GradeLevel: r.GradeLevel.String,
		School:     r.School.String,
		Phone:      r.Phone.String,
		Email:      r.Email.String,
		Status:     r.Status,
		Notes:      r.Notes.String,
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
}

func studentRowFrom(st student.Student) studentRow {
	return studentRow{
		ID:         st.ID,
		OrgID:      st.OrgID,
		Code:       null.NewString(st.Code, st.Code != ""),
		Name:       st.Name,
		GradeLevel: null.NewString(st.GradeLevel, st.GradeLevel != ""),
		School:     null.NewString(st.School, st.School != ""),
		Phone:      null.NewString(st.Phone, st.Phone != ""),
		Email:      null.NewString(st.Email, st.Email != ""),
		Status:     st.Status,
		Notes:      null.NewString(st.Notes, st.Notes != ""),
		CreatedAt:  null.NewTime(st.CreatedAt.UTC(), !st.CreatedAt.IsZero()),
		UpdatedAt:  null.NewTime(st.UpdatedAt.UTC(), !st.UpdatedAt.IsZero()),
	}
}

type guardianRow struct {
	ID           string      `db:"id"`
	OrgID        string      `db:"org_id"`
	StudentID    string      `db:"student_id"`
	Name         string      `db:"name"`
	Relationship null.String `db:"relationship"`
	Phone        null.String `db:"phone"`
	Email        null.String `db:"email"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
	DeletedAt    null.Time   `db:"deleted_at"`
}

func (r guardianRow) toGuardian() student.Guardian {
	return student.Guardian{
		ID:           r.ID,
		OrgID:        r.OrgID,
		StudentID:    r.StudentID,
		Name:         r.Name,
		Relationship: r.Relationship.String,
		Phone:        r.Phone.String,
		Email:        r.Email.String,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CheckCodeUniqueness(ctx context.Context, orgID, code string, excludedIDs ...string) error {
	q := `SELECT EXISTS (SELECT 1 FROM student WHERE org_id = $1 AND code = $2 AND deleted_at IS NULL`
	args := []interface{}{orgID, code}
	if len(excludedIDs) > 0 {
		q += ` AND NOT (id = ANY($3))`
		args = append(args, pq.Array(excludedIDs))
	}
	q += `)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, q, args...); err != nil {
		return errors.Wrap(err, "checking student code uniqueness")
	}
	if exists {
		return student.ErrCodeExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	row := studentRowFrom(st)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO student (id, org_id, code, name, grade_level, school, phone, email, status, notes, created_at, updated_at)
		VALUES (:id, :org_id, :code, :name, :grade_level, :school, :phone, :email, :status, :notes, :created_at, :updated_at)`,
		row)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, orgID, id string) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM student WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL`, orgID, id)
	if err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "finding student")
	}
	return row.toStudent(), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, orgID string, filter student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	q := `SELECT * FROM student WHERE org_id = $1 AND deleted_at IS NULL`
	args := []interface{}{orgID}

	if filter.Search != "" {
		p := placeholderAt(len(args) + 1)
		q += ` AND (name ILIKE ` + p + ` OR code ILIKE ` + p + ` OR school ILIKE ` + p + `)`
		args = append(args, like(filter.Search))
	}
	if filter.Status != "" {
		q += ` AND status = ` + placeholderAt(len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.GradeLevel != "" {
		q += ` AND grade_level = ` + placeholderAt(len(args)+1)
		args = append(args, filter.GradeLevel)
	}
	q += orderClause(ordering)

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toStudent())
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	row := studentRowFrom(st)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE student SET
			code = :code, name = :name, grade_level = :grade_level, school = :school,
			phone = :phone, email = :email, status = :status, notes = :notes, updated_at = :updated_at
		WHERE org_id = :org_id AND id = :id AND deleted_at IS NULL`,
		row)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, orgID, id string) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE student SET deleted_at = $1 WHERE org_id = $2 AND id = $3 AND deleted_at IS NULL`,
		time.Now().UTC(), orgID, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return nil
}

func (repo studentRepository) CreateGuardian(ctx context.Context, g student.Guardian) (student.Guardian, error) {
	g.ID = uuid.New().String()
	row := guardianRow{
		ID:           g.ID,
		OrgID:        g.OrgID,
		StudentID:    g.StudentID,
		Name:         g.Name,
		Relationship: null.NewString(g.Relationship, g.Relationship != ""),
		Phone:        null.NewString(g.Phone, g.Phone != ""),
		Email:        null.NewString(g.Email, g.Email != ""),
		CreatedAt:    null.NewTime(g.CreatedAt.UTC(), !g.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(g.UpdatedAt.UTC(), !g.UpdatedAt.IsZero()),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO guardian (id, org_id, student_id, name, relationship, phone, email, created_at, updated_at)
		VALUES (:id, :org_id, :student_id, :name, :relationship, :phone, :email, :created_at, :updated_at)`,
		row)
	if err != nil {
		return student.Guardian{}, errors.Wrap(err, "inserting guardian")
	}
	return g, nil
}

func (repo studentRepository) QueryGuardians(ctx context.Context, orgID, studentID string) ([]student.Guardian, error) {
	var rows []guardianRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM guardian WHERE org_id = $1 AND student_id = $2 AND deleted_at IS NULL ORDER BY created_at`,
		orgID, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying guardians")
	}
	guardians := make([]student.Guardian, 0, len(rows))
	for _, r := range rows {
		guardians = append(guardians, r.toGuardian())
	}
	return guardians, nil
}

func (repo studentRepository) DeleteGuardian(ctx context.Context, orgID, id string) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE guardian SET deleted_at = $1 WHERE org_id = $2 AND id = $3 AND deleted_at IS NULL`,
		time.Now().UTC(), orgID, id)
	if err != nil {
		return errors.Wrap(err, "deleting guardian")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrGuardianNotFound
	}
	return nil
}
