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
	"github.com/AcaDesk/acadesk-server/core/library"
)

type bookRow struct {
	ID        string      `db:"id"`
	OrgID     string      `db:"org_id"`
	Title     string      `db:"title"`
	Author    null.String `db:"author"`
	Barcode   null.String `db:"barcode"`
	Copies    int         `db:"copies"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
	DeletedAt null.Time   `db:"deleted_at"`
}

func (r bookRow) toBook() library.Book {
	return library.Book{
		ID:        r.ID,
		OrgID:     r.OrgID,
		Title:     r.Title,
		Author:    r.Author.String,
		Barcode:   r.Barcode.String,
		Copies:    r.Copies,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

type loanRow struct {
	ID         string    `db:"id"`
	OrgID      string    `db:"org_id"`
	BookID     string    `db:"book_id"`
	StudentID  string    `db:"student_id"`
	LoanedAt   null.Time `db:"loaned_at"`
	DueAt      null.Time `db:"due_at"`
	ReturnedAt null.Time `db:"returned_at"`
	CreatedAt  null.Time `db:"created_at"`
	UpdatedAt  null.Time `db:"updated_at"`
}

func (r loanRow) toLoan() library.Loan {
	return library.Loan{
		ID:         r.ID,
		OrgID:      r.OrgID,
		BookID:     r.BookID,
		StudentID:  r.StudentID,
		LoanedAt:   r.LoanedAt.Time,
		DueAt:      r.DueAt.Time,
		ReturnedAt: r.ReturnedAt.Ptr(),
		CreatedAt:  r.CreatedAt.Time,
		UpdatedAt:  r.UpdatedAt.Time,
	}
}

func loanRowFrom(l library.Loan) loanRow {
	return loanRow{
		ID:         l.ID,
		OrgID:      l.OrgID,
		BookID:     l.BookID,
		StudentID:  l.StudentID,
		LoanedAt:   null.NewTime(l.LoanedAt.UTC(), !l.LoanedAt.IsZero()),
		DueAt:      null.NewTime(l.DueAt.UTC(), !l.DueAt.IsZero()),
		ReturnedAt: null.TimeFromPtr(l.ReturnedAt),
		CreatedAt:  null.NewTime(l.CreatedAt.UTC(), !l.CreatedAt.IsZero()),
		UpdatedAt:  null.NewTime(l.UpdatedAt.UTC(), !l.UpdatedAt.IsZero()),
	}
}

type libraryRepository struct {
	db *sqlx.DB
}

var _ library.Repository = (*libraryRepository)(nil) // interface compliance check

func NewLibraryRepository(db *sqlx.DB) *libraryRepository {
	return &libraryRepository{db: db}
}

func (repo libraryRepository) CreateBook(ctx context.Context, b library.Book) (library.Book, error) {
	b.ID = uuid.New().String()
	row := bookRow{
		ID:        b.ID,
		OrgID:     b.OrgID,
		Title:     b.Title,
		Author:    null.NewString(b.Author, b.Author != ""),
		Barcode:   null.NewString(b.Barcode, b.Barcode != ""),
		Copies:    b.Copies,
		CreatedAt: null.NewTime(b.CreatedAt.UTC(), !b.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(b.UpdatedAt.UTC(), !b.UpdatedAt.IsZero()),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO book (id, org_id, title, author, barcode, copies, created_at, updated_at)
		VALUES (:id, :org_id, :title, :author, :barcode, :copies, :created_at, :updated_at)`,
		row)
	if err != nil {
		return library.Book{}, errors.Wrap(err, "inserting book")
	}
	return b, nil
}

func (repo libraryRepository) GetBook(ctx context.Context, orgID, id string) (library.Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return library.Book{}, library.ErrBookNotFound
	}
	var row bookRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM book WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL`, orgID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return library.Book{}, library.ErrBookNotFound
		}
		return library.Book{}, errors.Wrap(err, "finding book")
	}
	return row.toBook(), nil
}

func (repo libraryRepository) FilterBooks(ctx context.Context, orgID string, filter library.QueryFilter, ordering []core.DBOrdering) ([]library.Book, error) {
	q := `SELECT * FROM book WHERE org_id = $1 AND deleted_at IS NULL`
	args := []interface{}{orgID}

	if filter.Search != "" {
		p := placeholderAt(len(args) + 1)
		q += ` AND (title ILIKE ` + p + ` OR author ILIKE ` + p + ` OR barcode ILIKE ` + p + `)`
		args = append(args, like(filter.Search))
	}
	q += orderClause(ordering)

	var rows []bookRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying books")
	}
	books := make([]library.Book, 0, len(rows))
	for _, r := range rows {
		books = append(books, r.toBook())
	}
	return books, nil
}

func (repo libraryRepository) DeleteBook(ctx context.Context, orgID, id string) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE book SET deleted_at = $1 WHERE org_id = $2 AND id = $3 AND deleted_at IS NULL`,
		time.Now().UTC(), orgID, id)
	if err != nil {
		return errors.Wrap(err, "deleting book")
	}
	return nil
}

func (repo libraryRepository) CreateLoan(ctx context.Context, l library.Loan) (library.Loan, error) {
	l.ID = uuid.New().String()
	row := loanRowFrom(l)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO loan (id, org_id, book_id, student_id, loaned_at, due_at, returned_at, created_at, updated_at)
		VALUES (:id, :org_id, :book_id, :student_id, :loaned_at, :due_at, :returned_at, :created_at, :updated_at)`,
		row)
	if err != nil {
		return library.Loan{}, errors.Wrap(err, "inserting loan")
	}
	return l, nil
}

func (repo libraryRepository) GetLoan(ctx context.Context, orgID, id string) (library.Loan, error) {
	if _, err := uuid.Parse(id); err != nil {
		return library.Loan{}, library.ErrLoanNotFound
	}
	var row loanRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM loan WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return library.Loan{}, library.ErrLoanNotFound
		}
		return library.Loan{}, errors.Wrap(err, "finding loan")
	}
	return row.toLoan(), nil
}

func (repo libraryRepository) QueryLoans(ctx context.Context, orgID, bookID, studentID string, openOnly bool) ([]library.Loan, error) {
	q := `SELECT * FROM loan WHERE org_id = $1`
	args := []interface{}{orgID}

	if bookID != "" {
		q += ` AND book_id = ` + placeholderAt(len(args)+1)
		args = append(args, bookID)
	}
	if studentID != "" {
		q += ` AND student_id = ` + placeholderAt(len(args)+1)
		args = append(args, studentID)
	}
	if openOnly {
		q += ` AND returned_at IS NULL`
	}
	q += ` ORDER BY loaned_at`

	var rows []loanRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying loans")
	}
	loans := make([]library.Loan, 0, len(rows))
	for _, r := range rows {
		loans = append(loans, r.toLoan())
	}
	return loans, nil
}

func (repo libraryRepository) UpdateLoan(ctx context.Context, l library.Loan) (library.Loan, error) {
	row := loanRowFrom(l)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE loan SET due_at = :due_at, returned_at = :returned_at, updated_at = :updated_at
		WHERE org_id = :org_id AND id = :id`,
		row)
	if err != nil {
		return library.Loan{}, errors.Wrap(err, "updating loan")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return library.Loan{}, library.ErrLoanNotFound
	}
	return l, nil
}
