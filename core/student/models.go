package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AcaDesk/acadesk-server/core"
)

// Enrollment statuses
const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusWithdrawn = "withdrawn"
)

var AllStatuses = []string{StatusActive, StatusPaused, StatusWithdrawn}

func ValidStatus(status string) bool {
	for _, s := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Student struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"org_id"`
	Code       string    `json:"code"` // external/short id printed on cards
	Name       string    `json:"name"`
	GradeLevel string    `json:"grade_level"`
	School     string    `json:"school"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

type Guardian struct {
	ID           string    `json:"id"`
	OrgID        string    `json:"org_id"`
	StudentID    string    `json:"student_id"`
	Name         string    `json:"name"`
	Relationship string    `json:"relationship"` // mother, father, other
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Code       string `json:"code" validate:"omitempty,alphanum_"`
	Name       string `json:"name" validate:"required"`
	GradeLevel string `json:"grade_level"`
	School     string `json:"school"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	Email      string `json:"email" validate:"omitempty,email"`
	Notes      string `json:"notes"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Code = core.CleanString(ns.Code, true /* lower */)
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an
// existing Student. Empty fields are left unchanged.
type UpdateStudent struct {
	Name       string `json:"name"`
	GradeLevel string `json:"grade_level"`
	School     string `json:"school"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	Email      string `json:"email" validate:"omitempty,email"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Email = core.CleanString(us.Email, true /* lower */)
	us.Phone = core.CleanString(us.Phone)
	return validate.Struct(us)
}

// NewGuardian contains information needed to attach a Guardian to a Student.
type NewGuardian struct {
	StudentID    string `json:"student_id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone" validate:"omitempty,phone"`
	Email        string `json:"email" validate:"omitempty,email"`
}

func (ng *NewGuardian) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Email = core.CleanString(ng.Email, true /* lower */)
	ng.Phone = core.CleanString(ng.Phone)
	return validate.Struct(ng)
}

type QueryFilter struct {
	// Search does a case-insensitive match on one of Name, Code or School.
	Search     string
	Status     string
	GradeLevel string
}
