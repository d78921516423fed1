package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/library"
)

type libraryRepository struct {
	db *libraryTable
}

var _ library.Repository = (*libraryRepository)(nil) // interface compliance check

func NewLibraryRepository(db *DB) library.Repository {
	return &libraryRepository{db: db.library}
}

func (repo *libraryRepository) CreateBook(ctx context.Context, b library.Book) (library.Book, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	b.ID = uuid.New().String()
	repo.db.books[b.ID] = &b
	return b, nil
}

func (repo *libraryRepository) GetBook(ctx context.Context, orgID, id string) (library.Book, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if b, ok := repo.db.books[id]; ok && b.OrgID == orgID {
		return *b, nil
	}
	return library.Book{}, library.ErrBookNotFound
}

func (repo *libraryRepository) FilterBooks(ctx context.Context, orgID string, filter library.QueryFilter, ordering []core.DBOrdering) ([]library.Book, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var books []library.Book
	for _, b := range repo.db.books {
		if b.OrgID != orgID {
			continue
		}
		if filter.Search != "" {
			kw := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(b.Title), kw) &&
				!strings.Contains(strings.ToLower(b.Author), kw) &&
				!strings.Contains(strings.ToLower(b.Barcode), kw) {
				continue
			}
		}
		books = append(books, *b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

func (repo *libraryRepository) DeleteBook(ctx context.Context, orgID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if b, ok := repo.db.books[id]; ok && b.OrgID == orgID {
		delete(repo.db.books, id)
	}
	return nil
}

func (repo *libraryRepository) CreateLoan(ctx context.Context, l library.Loan) (library.Loan, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	l.ID = uuid.New().String()
	repo.db.loans[l.ID] = &l
	return l, nil
}

func (repo *libraryRepository) GetLoan(ctx context.Context, orgID, id string) (library.Loan, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if l, ok := repo.db.loans[id]; ok && l.OrgID == orgID {
		return *l, nil
	}
	return library.Loan{}, library.ErrLoanNotFound
}

func (repo *libraryRepository) QueryLoans(ctx context.Context, orgID, bookID, studentID string, openOnly bool) ([]library.Loan, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var loans []library.Loan
	for _, l := range repo.db.loans {
		if l.OrgID != orgID {
			continue
		}
		if bookID != "" && l.BookID != bookID {
			continue
		}
		if studentID != "" && l.StudentID != studentID {
			continue
		}
		if openOnly && l.Returned() {
			continue
		}
		loans = append(loans, *l)
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans, nil
}

func (repo *libraryRepository) UpdateLoan(ctx context.Context, l library.Loan) (library.Loan, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.loans[l.ID]; ok && orig.OrgID == l.OrgID {
		repo.db.loans[l.ID] = &l
		return l, nil
	}
	return library.Loan{}, library.ErrLoanNotFound
}
