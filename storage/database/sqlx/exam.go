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
	"github.com/AcaDesk/acadesk-server/core/exam"
)

type examRow struct {
	ID             string    `db:"id"`
	OrgID          string    `db:"org_id"`
	ClassID        string    `db:"class_id"`
	Name           string    `db:"name"`
	ExamDate       null.Time `db:"exam_date"`
	TotalQuestions int       `db:"total_questions"`
	CreatedAt      null.Time `db:"created_at"`
	UpdatedAt      null.Time `db:"updated_at"`
	DeletedAt      null.Time `db:"deleted_at"`
}

func (r examRow) toExam() exam.Exam {
	return exam.Exam{
		ID:             r.ID,
		OrgID:          r.OrgID,
		ClassID:        r.ClassID,
		Name:           r.Name,
		ExamDate:       r.ExamDate.Time,
		TotalQuestions: r.TotalQuestions,
		CreatedAt:      r.CreatedAt.Time,
		UpdatedAt:      r.UpdatedAt.Time,
	}
}

func examRowFrom(ex exam.Exam) examRow {
	return examRow{
		ID:             ex.ID,
		OrgID:          ex.OrgID,
		ClassID:        ex.ClassID,
		Name:           ex.Name,
		ExamDate:       null.NewTime(ex.ExamDate.UTC(), !ex.ExamDate.IsZero()),
		TotalQuestions: ex.TotalQuestions,
		CreatedAt:      null.NewTime(ex.CreatedAt.UTC(), !ex.CreatedAt.IsZero()),
		UpdatedAt:      null.NewTime(ex.UpdatedAt.UTC(), !ex.UpdatedAt.IsZero()),
	}
}

type scoreRow struct {
	OrgID     string      `db:"org_id"`
	ExamID    string      `db:"exam_id"`
	StudentID string      `db:"student_id"`
	Correct   int         `db:"correct"`
	Total     int         `db:"total"`
	Percent   int         `db:"percent"`
	RawText   null.String `db:"raw_text"`
	Feedback  null.String `db:"feedback"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (r scoreRow) toScore() exam.StudentScore {
	return exam.StudentScore{
		OrgID:     r.OrgID,
		ExamID:    r.ExamID,
		StudentID: r.StudentID,
		Correct:   r.Correct,
		Total:     r.Total,
		Percent:   r.Percent,
		RawText:   r.RawText.String,
		Feedback:  r.Feedback.String,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

type examRepository struct {
	db *sqlx.DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *sqlx.DB) *examRepository {
	return &examRepository{db: db}
}

func (repo examRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return exam.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo examRepository) CreateExam(ctx context.Context, ex exam.Exam) (exam.Exam, error) {
	ex.ID = uuid.New().String()
	row := examRowFrom(ex)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO exam (id, org_id, class_id, name, exam_date, total_questions, created_at, updated_at)
		VALUES (:id, :org_id, :class_id, :name, :exam_date, :total_questions, :created_at, :updated_at)`,
		row)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "inserting exam")
	}
	return ex, nil
}

func (repo examRepository) GetExam(ctx context.Context, orgID, id string) (exam.Exam, error) {
	if _, err := uuid.Parse(id); err != nil {
		return exam.Exam{}, exam.ErrNotFound
	}
	var row examRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM exam WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL`, orgID, id)
	if err != nil {
		return exam.Exam{}, repo.trapNoRowsErr(err, "finding exam")
	}
	return row.toExam(), nil
}

func (repo examRepository) FilterExams(ctx context.Context, orgID string, filter exam.QueryFilter, ordering []core.DBOrdering) ([]exam.Exam, error) {
	q := `SELECT * FROM exam WHERE org_id = $1 AND deleted_at IS NULL`
	args := []interface{}{orgID}

	if filter.ClassID != "" {
		q += ` AND class_id = ` + placeholderAt(len(args)+1)
		args = append(args, filter.ClassID)
	}
	if !filter.From.IsZero() {
		q += ` AND exam_date >= ` + placeholderAt(len(args)+1)
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		q += ` AND exam_date <= ` + placeholderAt(len(args)+1)
		args = append(args, filter.To.UTC())
	}
	q += orderClause(ordering)

	var rows []examRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}
	exams := make([]exam.Exam, 0, len(rows))
	for _, r := range rows {
		exams = append(exams, r.toExam())
	}
	return exams, nil
}

func (repo examRepository) UpdateExam(ctx context.Context, ex exam.Exam) (exam.Exam, error) {
	row := examRowFrom(ex)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE exam SET
			name = :name, exam_date = :exam_date, total_questions = :total_questions, updated_at = :updated_at
		WHERE org_id = :org_id AND id = :id AND deleted_at IS NULL`,
		row)
	if err != nil {
		return exam.Exam{}, errors.Wrap(err, "updating exam")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.Exam{}, exam.ErrNotFound
	}
	return ex, nil
}

func (repo examRepository) DeleteExam(ctx context.Context, orgID, id string) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE exam SET deleted_at = $1 WHERE org_id = $2 AND id = $3 AND deleted_at IS NULL`,
		time.Now().UTC(), orgID, id)
	if err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return nil
}

func (repo examRepository) QueryStudentScores(ctx context.Context, orgID, examID string) ([]exam.StudentScore, error) {
	var rows []scoreRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM student_score WHERE org_id = $1 AND exam_id = $2 ORDER BY student_id`,
		orgID, examID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student scores")
	}
	scores := make([]exam.StudentScore, 0, len(rows))
	for _, r := range rows {
		scores = append(scores, r.toScore())
	}
	return scores, nil
}

// scoreCols is the column count of one student_score VALUES group.
const scoreCols = 10

func (repo examRepository) UpsertStudentScores(ctx context.Context, scores []exam.StudentScore) (int, error) {
	if len(scores) == 0 {
		return 0, nil
	}

	q := `
		INSERT INTO student_score (org_id, exam_id, student_id, correct, total, percent, raw_text, feedback, created_at, updated_at)
		VALUES ` + strmangle.Placeholders(true, len(scores)*scoreCols, 1, scoreCols) + `
		ON CONFLICT (exam_id, student_id) DO UPDATE SET
			correct = EXCLUDED.correct, total = EXCLUDED.total, percent = EXCLUDED.percent,
			raw_text = EXCLUDED.raw_text, feedback = EXCLUDED.feedback, updated_at = EXCLUDED.updated_at`

	args := make([]interface{}, 0, len(scores)*scoreCols)
	for _, s := range scores {
		args = append(args,
			s.OrgID, s.ExamID, s.StudentID, s.Correct, s.Total, s.Percent,
			null.NewString(s.RawText, s.RawText != ""),
			null.NewString(s.Feedback, s.Feedback != ""),
			s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	}

	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "upserting student scores")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "upserting student scores")
	}
	return int(n), nil
}
