package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/billing"
)

type billingRepository struct {
	db *billingTable
}

var _ billing.Repository = (*billingRepository)(nil) // interface compliance check

func NewBillingRepository(db *DB) billing.Repository {
	return &billingRepository{db: db.billing}
}

func (repo *billingRepository) CreateInvoice(ctx context.Context, inv billing.Invoice) (billing.Invoice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inv.ID = uuid.New().String()
	repo.db.invoices[inv.ID] = &inv
	return inv, nil
}

func (repo *billingRepository) GetInvoice(ctx context.Context, orgID, id string) (billing.Invoice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if inv, ok := repo.db.invoices[id]; ok && inv.OrgID == orgID {
		return *inv, nil
	}
	return billing.Invoice{}, billing.ErrNotFound
}

func (repo *billingRepository) FilterInvoices(ctx context.Context, orgID string, filter billing.QueryFilter, ordering []core.DBOrdering) ([]billing.Invoice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var invoices []billing.Invoice
	for _, inv := range repo.db.invoices {
		if inv.OrgID != orgID {
			continue
		}
		if filter.StudentID != "" && inv.StudentID != filter.StudentID {
			continue
		}
		if filter.Period != "" && inv.Period != filter.Period {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		invoices = append(invoices, *inv)
	}
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].ID < invoices[j].ID })
	return invoices, nil
}

func (repo *billingRepository) UpdateInvoice(ctx context.Context, inv billing.Invoice) (billing.Invoice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.invoices[inv.ID]; ok && orig.OrgID == inv.OrgID {
		repo.db.invoices[inv.ID] = &inv
		return inv, nil
	}
	return billing.Invoice{}, billing.ErrNotFound
}

func (repo *billingRepository) CreatePayment(ctx context.Context, p billing.Payment) (billing.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p.ID = uuid.New().String()
	repo.db.payments[p.InvoiceID] = append(repo.db.payments[p.InvoiceID], p)
	return p, nil
}

func (repo *billingRepository) QueryPayments(ctx context.Context, orgID, invoiceID string) ([]billing.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var payments []billing.Payment
	for _, p := range repo.db.payments[invoiceID] {
		if p.OrgID == orgID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}
