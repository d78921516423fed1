package library

import (
	"context"
	"errors"
	"time"

	"github.com/AcaDesk/acadesk-server/core"
)

var (
	// errors
	ErrBookNotFound  = errors.New("book not found")
	ErrLoanNotFound  = errors.New("loan not found")
	ErrNoCopiesLeft  = errors.New("no copies available")
	ErrAlreadyReturned = errors.New("loan already returned")
)

type (
	Repository interface {
		CreateBook(ctx context.Context, b Book) (Book, error)
		GetBook(ctx context.Context, orgID, id string) (Book, error)
		FilterBooks(ctx context.Context, orgID string, filter QueryFilter, ordering []core.DBOrdering) ([]Book, error)
		DeleteBook(ctx context.Context, orgID, id string) error

		CreateLoan(ctx context.Context, l Loan) (Loan, error)
		GetLoan(ctx context.Context, orgID, id string) (Loan, error)
		// QueryLoans returns loans for a book and/or student; open-only when openOnly.
		QueryLoans(ctx context.Context, orgID, bookID, studentID string, openOnly bool) ([]Loan, error)
		UpdateLoan(ctx context.Context, l Loan) (Loan, error)
	}

	Service struct {
		repo Repository
		log  core.Logger
	}
)

func NewService(repo Repository, log core.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (svc *Service) AddBook(ctx context.Context, actor core.Actor, nb NewBook) (Book, error) {
	if !actor.Valid() {
		return Book{}, core.ErrMissingActor
	}
	copies := nb.Copies
	if copies == 0 {
		copies = 1
	}
	now := time.Now().UTC()
	b := Book{
		OrgID:     actor.OrgID,
		Title:     nb.Title,
		Author:    nb.Author,
		Barcode:   nb.Barcode,
		Copies:    copies,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateBook(ctx, b)
}

func (svc *Service) GetBook(ctx context.Context, actor core.Actor, id string) (Book, error) {
	if !actor.Valid() {
		return Book{}, core.ErrMissingActor
	}
	return svc.repo.GetBook(ctx, actor.OrgID, id)
}

func (svc *Service) FilterBooks(ctx context.Context, actor core.Actor, filter QueryFilter, ordering ...core.DBOrdering) ([]Book, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	return svc.repo.FilterBooks(ctx, actor.OrgID, filter, ordering)
}

func (svc *Service) RemoveBook(ctx context.Context, actor core.Actor, id string) error {
	if !actor.Valid() {
		return core.ErrMissingActor
	}
	return svc.repo.DeleteBook(ctx, actor.OrgID, id)
}

// Checkout loans a book copy to a student if one is available.
func (svc *Service) Checkout(ctx context.Context, actor core.Actor, nl NewLoan) (Loan, error) {
	if !actor.Valid() {
		return Loan{}, core.ErrMissingActor
	}
	b, err := svc.repo.GetBook(ctx, actor.OrgID, nl.BookID)
	if err != nil {
		return Loan{}, err
	}
	open, err := svc.repo.QueryLoans(ctx, actor.OrgID, nl.BookID, "", true /* openOnly */)
	if err != nil {
		return Loan{}, err
	}
	if len(open) >= b.Copies {
		return Loan{}, core.NewValidationError(ErrNoCopiesLeft,
			core.FieldError{Field: "book_id", Error: ErrNoCopiesLeft.Error()})
	}

	now := time.Now().UTC()
	l := Loan{
		OrgID:     actor.OrgID,
		BookID:    nl.BookID,
		StudentID: nl.StudentID,
		LoanedAt:  now,
		DueAt:     nl.DueAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateLoan(ctx, l)
}

// Return closes a loan.
func (svc *Service) Return(ctx context.Context, actor core.Actor, loanID string) (Loan, error) {
	if !actor.Valid() {
		return Loan{}, core.ErrMissingActor
	}
	l, err := svc.repo.GetLoan(ctx, actor.OrgID, loanID)
	if err != nil {
		return Loan{}, err
	}
	if l.Returned() {
		return Loan{}, core.NewValidationError(ErrAlreadyReturned,
			core.FieldError{Field: "loan_id", Error: ErrAlreadyReturned.Error()})
	}
	now := time.Now().UTC()
	l.ReturnedAt = &now
	l.UpdatedAt = now
	return svc.repo.UpdateLoan(ctx, l)
}

// StudentLoans returns a student's loans, open ones first by the repo's ordering.
func (svc *Service) StudentLoans(ctx context.Context, actor core.Actor, studentID string) ([]Loan, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	return svc.repo.QueryLoans(ctx, actor.OrgID, "", studentID, false)
}

// Overdue lists all open loans past their due date.
func (svc *Service) Overdue(ctx context.Context, actor core.Actor) ([]Loan, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	open, err := svc.repo.QueryLoans(ctx, actor.OrgID, "", "", true)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	overdue := make([]Loan, 0, len(open))
	for _, l := range open {
		if l.Overdue(now) {
			overdue = append(overdue, l)
		}
	}
	return overdue, nil
}
