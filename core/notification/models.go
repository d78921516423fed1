package notification

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AcaDesk/acadesk-server/core"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Message statuses
const (
	StatusQueued = "queued"
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Message is one row of the outbound notification log. Delivery is
// fire-and-forget; the log records intent and outcome, nothing blocks on it.
type Message struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	StudentID string    `json:"student_id"`
	Channel   string    `json:"channel"`
	Recipient string    `json:"recipient"` // email address or phone number
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	SentAt    *time.Time `json:"sent_at"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewMessage contains information needed to queue a Message.
type NewMessage struct {
	StudentID string `json:"student_id"`
	Channel   string `json:"channel" validate:"required,oneof=email sms"`
	Recipient string `json:"recipient" validate:"required"`
	Subject   string `json:"subject"`
	Body      string `json:"body" validate:"required"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.Recipient = core.CleanString(nm.Recipient)
	nm.Subject = core.CleanString(nm.Subject)
	return validate.Struct(nm)
}

type QueryFilter struct {
	StudentID string
	Channel   string
	Status    string
}
