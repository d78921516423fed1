package billing

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AcaDesk/acadesk-server/core"
)

// Invoice statuses
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
	StatusVoid    = "void"
)

// Invoice is a monthly tuition bill. Amounts are integer cents; figures
// derived from them share the app-wide rounding rule.
type Invoice struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	StudentID   string    `json:"student_id"`
	Period      string    `json:"period"` // "2026-01"
	AmountCents int64     `json:"amount_cents"`
	DueDate     time.Time `json:"due_date"`
	Status      string    `json:"status"`
	Memo        string    `json:"memo"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type Payment struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	InvoiceID   string    `json:"invoice_id"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"` // card, transfer, cash
	PaidAt      time.Time `json:"paid_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewInvoice contains information needed to issue an Invoice.
type NewInvoice struct {
	StudentID   string    `json:"student_id" validate:"required"`
	Period      string    `json:"period" validate:"required"`
	AmountCents int64     `json:"amount_cents" validate:"required,gt=0"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	Memo        string    `json:"memo"`
}

func (ni *NewInvoice) Validate(validate *validator.Validate) error {
	ni.Period = core.CleanString(ni.Period)
	ni.Memo = core.CleanString(ni.Memo)
	return validate.Struct(ni)
}

// NewPayment records money received against an Invoice.
type NewPayment struct {
	InvoiceID   string `json:"invoice_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Method      string `json:"method"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.Method = core.CleanString(np.Method, true /* lower */)
	return validate.Struct(np)
}

type QueryFilter struct {
	StudentID string
	Period    string
	Status    string
}

// RevenueSummary is derived from an invoice snapshot; never persisted.
type RevenueSummary struct {
	Period         string `json:"period"`
	InvoicedCents  int64  `json:"invoiced_cents"`
	CollectedCents int64  `json:"collected_cents"`
	PendingCount   int    `json:"pending_count"`
	PaidCount      int    `json:"paid_count"`
	OverdueCount   int    `json:"overdue_count"`
	// CollectionRate is collected/invoiced as a whole percentage.
	CollectionRate int `json:"collection_rate"`
}
