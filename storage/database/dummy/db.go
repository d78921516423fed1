// Package dummydb provides in-memory repositories for tests.
package dummydb

import (
	"sync"

	"github.com/AcaDesk/acadesk-server/core/attendance"
	"github.com/AcaDesk/acadesk-server/core/billing"
	"github.com/AcaDesk/acadesk-server/core/class"
	"github.com/AcaDesk/acadesk-server/core/exam"
	"github.com/AcaDesk/acadesk-server/core/library"
	"github.com/AcaDesk/acadesk-server/core/notification"
	"github.com/AcaDesk/acadesk-server/core/student"
	"github.com/AcaDesk/acadesk-server/core/user"
)

type (
	DB struct {
		user         *userTable
		student      *studentTable
		class        *classTable
		exam         *examTable
		attendance   *attendanceTable
		billing      *billingTable
		library      *libraryTable
		notification *messageTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	studentTable struct {
		sync.RWMutex
		students  map[string]*student.Student
		guardians map[string]*student.Guardian
	}

	classTable struct {
		sync.RWMutex
		classes     map[string]*class.Class
		enrollments []class.Enrollment
	}

	examTable struct {
		sync.RWMutex
		exams  map[string]*exam.Exam
		scores map[string]map[string]*exam.StudentScore // examID -> studentID
	}

	attendanceTable struct {
		sync.RWMutex
		sessions map[string]*attendance.Session
		records  map[string]map[string]*attendance.Record // sessionID -> studentID
	}

	billingTable struct {
		sync.RWMutex
		invoices map[string]*billing.Invoice
		payments map[string][]billing.Payment // invoiceID
	}

	libraryTable struct {
		sync.RWMutex
		books map[string]*library.Book
		loans map[string]*library.Loan
	}

	messageTable struct {
		sync.RWMutex
		table map[string]*notification.Message
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		student: &studentTable{students: make(map[string]*student.Student), guardians: make(map[string]*student.Guardian)},
		class:   &classTable{classes: make(map[string]*class.Class)},
		exam:    &examTable{exams: make(map[string]*exam.Exam), scores: make(map[string]map[string]*exam.StudentScore)},
		attendance: &attendanceTable{
			sessions: make(map[string]*attendance.Session),
			records:  make(map[string]map[string]*attendance.Record),
		},
		billing:      &billingTable{invoices: make(map[string]*billing.Invoice), payments: make(map[string][]billing.Payment)},
		library:      &libraryTable{books: make(map[string]*library.Book), loans: make(map[string]*library.Loan)},
		notification: &messageTable{table: make(map[string]*notification.Message)},
	}
	return db, nil
}
