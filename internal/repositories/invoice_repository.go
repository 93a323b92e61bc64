package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/silasdani/bullet-services-sub001/internal/fsm"
	"github.com/silasdani/bullet-services-sub001/internal/models"
)

type InvoiceRepository struct {
	DB *sql.DB
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id int) (models.Invoice, error) {
	const q = `
SELECT id, work_order_id, status, final_status, amount_inc_vat, amount_ex_vat, created_at, updated_at
FROM invoices WHERE id = $1`
	var inv models.Invoice
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&inv.ID, &inv.WorkOrderID, &inv.Status, &inv.FinalStatus,
		&inv.AmountIncVAT, &inv.AmountExVAT, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Invoice{}, models.ErrInvoiceNotFound
	}
	if err != nil {
		return models.Invoice{}, err
	}
	return inv, nil
}

// IDByWorkOrderReference resolves the local invoice whose work order
// reference matches a remote invoice number. Used by sync to link mirrors.
func (r *InvoiceRepository) IDByWorkOrderReference(ctx context.Context, reference string) (int, error) {
	const q = `
SELECT i.id FROM invoices i
JOIN work_orders w ON w.id = i.work_order_id
WHERE w.reference = $1
ORDER BY i.created_at DESC LIMIT 1`
	var id int
	err := r.DB.QueryRowContext(ctx, q, reference).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrInvoiceNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *InvoiceRepository) Create(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	const q = `
INSERT INTO invoices (work_order_id, status, final_status, amount_inc_vat, amount_ex_vat, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
RETURNING id, created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, q,
		inv.WorkOrderID, inv.Status, inv.FinalStatus, inv.AmountIncVAT, inv.AmountExVAT,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return models.Invoice{}, err
	}
	return inv, nil
}

// ApplyStatus moves the invoice from one status to another with the status
// column acting as the optimistic token. Returns ErrStatusConflict when a
// concurrent writer got there first.
func (r *InvoiceRepository) ApplyStatus(ctx context.Context, invoiceID int, from, to string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fsm.Apply(ctx, tx, invoiceID, from, to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrStatusConflict
		}
		return err
	}
	return tx.Commit()
}

func (r *InvoiceRepository) SetFinalStatus(ctx context.Context, invoiceID int, finalStatus string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE invoices SET final_status = $1, updated_at = NOW() WHERE id = $2`,
		finalStatus, invoiceID)
	return err
}

// UpdateAmounts refreshes the cached VAT-inclusive/exclusive amounts from
// the gateway's authoritative total.
func (r *InvoiceRepository) UpdateAmounts(ctx context.Context, invoiceID int, incVAT, exVAT float64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE invoices SET amount_inc_vat = $1, amount_ex_vat = $2, updated_at = NOW() WHERE id = $3`,
		incVAT, exVAT, invoiceID)
	return err
}
