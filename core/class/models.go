package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AcaDesk/acadesk-server/core"
)

type Class struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Capacity  int       `json:"capacity"`
	Schedule  string    `json:"schedule"` // free text, e.g. "Mon/Wed 16:00"
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Enrollment links a student to a class.
type Enrollment struct {
	OrgID      string    `json:"org_id"`
	ClassID    string    `json:"class_id"`
	StudentID  string    `json:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name     string `json:"name" validate:"required"`
	Subject  string `json:"subject"`
	Capacity int    `json:"capacity" validate:"omitempty,gt=0"`
	Schedule string `json:"schedule"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Subject = core.CleanString(nc.Subject)
	return validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing
// Class. Empty fields are left unchanged.
type UpdateClass struct {
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Capacity int    `json:"capacity" validate:"omitempty,gt=0"`
	Schedule string `json:"schedule"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Subject = core.CleanString(uc.Subject)
	return validate.Struct(uc)
}

type QueryFilter struct {
	// Search does a case-insensitive match on Name or Subject.
	Search  string
	Subject string
}
