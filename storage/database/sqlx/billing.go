package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/billing"
)

type invoiceRow struct {
	ID          string      `db:"id"`
	OrgID       string      `db:"org_id"`
	StudentID   string      `db:"student_id"`
	Period      string      `db:"period"`
	AmountCents int64       `db:"amount_cents"`
	DueDate     null.Time   `db:"due_date"`
	Status      string      `db:"status"`
	Memo        null.String `db:"memo"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func (r invoiceRow) toInvoice() billing.Invoice {
	return billing.Invoice{
		ID:          r.ID,
		OrgID:       r.OrgID,
		StudentID:   r.StudentID,
		Period:      r.Period,
		AmountCents: r.AmountCents,
		DueDate:     r.DueDate.Time,
		Status:      r.Status,
		Memo:        r.Memo.String,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

func invoiceRowFrom(inv billing.Invoice) invoiceRow {
	return invoiceRow{
		ID:          inv.ID,
		OrgID:       inv.OrgID,
		StudentID:   inv.StudentID,
		Period:      inv.Period,
		AmountCents: inv.AmountCents,
		DueDate:     null.NewTime(inv.DueDate.UTC(), !inv.DueDate.IsZero()),
		Status:      inv.Status,
		Memo:        null.NewString(inv.Memo, inv.Memo != ""),
		CreatedAt:   null.NewTime(inv.CreatedAt.UTC(), !inv.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(inv.UpdatedAt.UTC(), !inv.UpdatedAt.IsZero()),
	}
}

type paymentRow struct {
	ID          string      `db:"id"`
	OrgID       string      `db:"org_id"`
	InvoiceID   string      `db:"invoice_id"`
	AmountCents int64       `db:"amount_cents"`
	Method      null.String `db:"method"`
	PaidAt      null.Time   `db:"paid_at"`
	CreatedAt   null.Time   `db:"created_at"`
}

func (r paymentRow) toPayment() billing.Payment {
	return billing.Payment{
		ID:          r.ID,
		OrgID:       r.OrgID,
		InvoiceID:   r.InvoiceID,
		AmountCents: r.AmountCents,
		Method:      r.Method.String,
		PaidAt:      r.PaidAt.Time,
		CreatedAt:   r.CreatedAt.Time,
	}
}

type billingRepository struct {
	db *sqlx.DB
}

var _ billing.Repository = (*billingRepository)(nil) // interface compliance check

func NewBillingRepository(db *sqlx.DB) *billingRepository {
	return &billingRepository{db: db}
}

func (repo billingRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return billing.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo billingRepository) CreateInvoice(ctx context.Context, inv billing.Invoice) (billing.Invoice, error) {
	inv.ID = uuid.New().String()
	row := invoiceRowFrom(inv)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO invoice (id, org_id, student_id, period, amount_cents, due_date, status, memo, created_at, updated_at)
		VALUES (:id, :org_id, :student_id, :period, :amount_cents, :due_date, :status, :memo, :created_at, :updated_at)`,
		row)
	if err != nil {
		return billing.Invoice{}, errors.Wrap(err, "inserting invoice")
	}
	return inv, nil
}

func (repo billingRepository) GetInvoice(ctx context.Context, orgID, id string) (billing.Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return billing.Invoice{}, billing.ErrNotFound
	}
	var row invoiceRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM invoice WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return billing.Invoice{}, repo.trapNoRowsErr(err, "finding invoice")
	}
	return row.toInvoice(), nil
}

func (repo billingRepository) FilterInvoices(ctx context.Context, orgID string, filter billing.QueryFilter, ordering []core.DBOrdering) ([]billing.Invoice, error) {
	q := `SELECT * FROM invoice WHERE org_id = $1`
	args := []interface{}{orgID}

	if filter.StudentID != "" {
		q += ` AND student_id = ` + placeholderAt(len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.Period != "" {
		q += ` AND period = ` + placeholderAt(len(args)+1)
		args = append(args, filter.Period)
	}
	if filter.Status != "" {
		q += ` AND status = ` + placeholderAt(len(args)+1)
		args = append(args, filter.Status)
	}
	q += orderClause(ordering)

	var rows []invoiceRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying invoices")
	}
	invoices := make([]billing.Invoice, 0, len(rows))
	for _, r := range rows {
		invoices = append(invoices, r.toInvoice())
	}
	return invoices, nil
}

func (repo billingRepository) UpdateInvoice(ctx context.Context, inv billing.Invoice) (billing.Invoice, error) {
	row := invoiceRowFrom(inv)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE invoice SET
			amount_cents = :amount_cents, due_date = :due_date, status = :status, memo = :memo, updated_at = :updated_at
		WHERE org_id = :org_id AND id = :id`,
		row)
	if err != nil {
		return billing.Invoice{}, errors.Wrap(err, "updating invoice")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return billing.Invoice{}, billing.ErrNotFound
	}
	return inv, nil
}

func (repo billingRepository) CreatePayment(ctx context.Context, p billing.Payment) (billing.Payment, error) {
	p.ID = uuid.New().String()
	row := paymentRow{
		ID:          p.ID,
		OrgID:       p.OrgID,
		InvoiceID:   p.InvoiceID,
		AmountCents: p.AmountCents,
		Method:      null.NewString(p.Method, p.Method != ""),
		PaidAt:      null.NewTime(p.PaidAt.UTC(), !p.PaidAt.IsZero()),
		CreatedAt:   null.NewTime(p.CreatedAt.UTC(), !p.CreatedAt.IsZero()),
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO payment (id, org_id, invoice_id, amount_cents, method, paid_at, created_at)
		VALUES (:id, :org_id, :invoice_id, :amount_cents, :method, :paid_at, :created_at)`,
		row)
	if err != nil {
		return billing.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo billingRepository) QueryPayments(ctx context.Context, orgID, invoiceID string) ([]billing.Payment, error) {
	var rows []paymentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM payment WHERE org_id = $1 AND invoice_id = $2 ORDER BY paid_at`,
		orgID, invoiceID)
	if err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	payments := make([]billing.Payment, 0, len(rows))
	for _, r := range rows {
		payments = append(payments, r.toPayment())
	}
	return payments, nil
}
