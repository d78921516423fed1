package library

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AcaDesk/acadesk-server/core"
)

type Book struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Barcode   string    `json:"barcode"`
	Copies    int       `json:"copies"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type Loan struct {
	ID         string     `json:"id"`
	OrgID      string     `json:"org_id"`
	BookID     string     `json:"book_id"`
	StudentID  string     `json:"student_id"`
	LoanedAt   time.Time  `json:"loaned_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (l Loan) Returned() bool {
	return l.ReturnedAt != nil
}

func (l Loan) Overdue(now time.Time) bool {
	return !l.Returned() && now.After(l.DueAt)
}

// NewBook contains information needed to register a Book.
type NewBook struct {
	Title   string `json:"title" validate:"required"`
	Author  string `json:"author"`
	Barcode string `json:"barcode" validate:"omitempty,alphanum_"`
	Copies  int    `json:"copies" validate:"omitempty,gt=0"`
}

func (nb *NewBook) Validate(validate *validator.Validate) error {
	nb.Title = core.CleanString(nb.Title)
	nb.Author = core.CleanString(nb.Author)
	nb.Barcode = core.CleanString(nb.Barcode, true /* lower */)
	return validate.Struct(nb)
}

// NewLoan checks a book out to a student.
type NewLoan struct {
	BookID    string    `json:"book_id" validate:"required"`
	StudentID string    `json:"student_id" validate:"required"`
	DueAt     time.Time `json:"due_at" validate:"required"`
}

func (nl *NewLoan) Validate(validate *validator.Validate) error {
	return validate.Struct(nl)
}

type QueryFilter struct {
	// Search does a case-insensitive match on Title, Author or Barcode.
	Search string
}
