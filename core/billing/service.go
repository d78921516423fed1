package billing

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/AcaDesk/acadesk-server/core"
)

var (
	// errors
	ErrNotFound          = errors.New("invoice not found")
	ErrInvalidTransition = errors.New("invalid invoice status transition")
)

// legal status transitions; anything else is rejected
var transitions = map[string][]string{
	StatusPending: {StatusPaid, StatusOverdue, StatusVoid},
	StatusOverdue: {StatusPaid, StatusVoid},
	StatusPaid:    {},
	StatusVoid:    {},
}

func canTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type (
	Repository interface {
		CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error)
		GetInvoice(ctx context.Context, orgID, id string) (Invoice, error)
		FilterInvoices(ctx context.Context, orgID string, filter QueryFilter, ordering []core.DBOrdering) ([]Invoice, error)
		UpdateInvoice(ctx context.Context, inv Invoice) (Invoice, error)

		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		QueryPayments(ctx context.Context, orgID, invoiceID string) ([]Payment, error)
	}

	Service struct {
		repo Repository
		log  core.Logger
	}
)

func NewService(repo Repository, log core.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (svc *Service) Issue(ctx context.Context, actor core.Actor, ni NewInvoice) (Invoice, error) {
	if !actor.Valid() {
		return Invoice{}, core.ErrMissingActor
	}
	now := time.Now().UTC()
	inv := Invoice{
		OrgID:       actor.OrgID,
		StudentID:   ni.StudentID,
		Period:      ni.Period,
		AmountCents: ni.AmountCents,
		DueDate:     ni.DueDate,
		Status:      StatusPending,
		Memo:        ni.Memo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateInvoice(ctx, inv)
}

func (svc *Service) Get(ctx context.Context, actor core.Actor, id string) (Invoice, error) {
	if !actor.Valid() {
		return Invoice{}, core.ErrMissingActor
	}
	return svc.repo.GetInvoice(ctx, actor.OrgID, id)
}

func (svc *Service) Filter(ctx context.Context, actor core.Actor, filter QueryFilter, ordering ...core.DBOrdering) ([]Invoice, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	return svc.repo.FilterInvoices(ctx, actor.OrgID, filter, ordering)
}

// SetStatus moves an invoice along the legal transition graph.
func (svc *Service) SetStatus(ctx context.Context, actor core.Actor, id, status string) (Invoice, error) {
	if !actor.Valid() {
		return Invoice{}, core.ErrMissingActor
	}
	inv, err := svc.repo.GetInvoice(ctx, actor.OrgID, id)
	if err != nil {
		return Invoice{}, err
	}
	if !canTransition(inv.Status, status) {
		return Invoice{}, core.NewValidationError(ErrInvalidTransition,
			core.FieldError{Field: "status", Error: inv.Status + " -> " + status})
	}
	inv.Status = status
	inv.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateInvoice(ctx, inv)
}

// RecordPayment stores a payment and marks the invoice paid once payments
// cover its amount.
func (svc *Service) RecordPayment(ctx context.Context, actor core.Actor, np NewPayment) (Payment, error) {
	if !actor.Valid() {
		return Payment{}, core.ErrMissingActor
	}
	inv, err := svc.repo.GetInvoice(ctx, actor.OrgID, np.InvoiceID)
	if err != nil {
		return Payment{}, err
	}
	if inv.Status == StatusPaid || inv.Status == StatusVoid {
		return Payment{}, core.NewValidationError(ErrInvalidTransition,
			core.FieldError{Field: "invoice_id", Error: "invoice is " + inv.Status})
	}

	now := time.Now().UTC()
	p := Payment{
		OrgID:       actor.OrgID,
		InvoiceID:   np.InvoiceID,
		AmountCents: np.AmountCents,
		Method:      np.Method,
		PaidAt:      now,
		CreatedAt:   now,
	}
	p, err = svc.repo.CreatePayment(ctx, p)
	if err != nil {
		return Payment{}, err
	}

	payments, err := svc.repo.QueryPayments(ctx, actor.OrgID, np.InvoiceID)
	if err != nil {
		return Payment{}, err
	}
	var total int64
	for _, pay := range payments {
		total += pay.AmountCents
	}
	if total >= inv.AmountCents {
		inv.Status = StatusPaid
		inv.UpdatedAt = now
		if _, err = svc.repo.UpdateInvoice(ctx, inv); err != nil {
			return Payment{}, err
		}
	}
	return p, nil
}

// Payments returns an invoice's payments, oldest first.
func (svc *Service) Payments(ctx context.Context, actor core.Actor, invoiceID string) ([]Payment, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	if _, err := svc.repo.GetInvoice(ctx, actor.OrgID, invoiceID); err != nil {
		return nil, err
	}
	return svc.repo.QueryPayments(ctx, actor.OrgID, invoiceID)
}

// Revenue recomputes the per-period rollup from the invoice snapshot.
func (svc *Service) Revenue(ctx context.Context, actor core.Actor, period string) (RevenueSummary, error) {
	if !actor.Valid() {
		return RevenueSummary{}, core.ErrMissingActor
	}
	invoices, err := svc.repo.FilterInvoices(ctx, actor.OrgID, QueryFilter{Period: period}, nil)
	if err != nil {
		return RevenueSummary{}, err
	}
	return SummarizeRevenue(period, invoices), nil
}

// SummarizeRevenue derives the period rollup from an invoice list; void
// invoices are excluded entirely.
func SummarizeRevenue(period string, invoices []Invoice) RevenueSummary {
	sum := RevenueSummary{Period: period}
	for _, inv := range invoices {
		switch inv.Status {
		case StatusVoid:
			continue
		case StatusPaid:
			sum.PaidCount++
			sum.CollectedCents += inv.AmountCents
		case StatusOverdue:
			sum.OverdueCount++
		default:
			sum.PendingCount++
		}
		sum.InvoicedCents += inv.AmountCents
	}
	if sum.InvoicedCents > 0 {
		// same rounding rule as score percentages: half away from zero
		sum.CollectionRate = int(math.Round(float64(sum.CollectedCents) / float64(sum.InvoicedCents) * 100))
	}
	return sum
}
